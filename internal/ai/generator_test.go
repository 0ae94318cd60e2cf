package ai

import "context"

// mockGenerator scripts model responses for tests.
type mockGenerator struct {
	text      string
	err       error
	textCalls int
	imgCalls  int

	lastPrompt   string
	lastMimeType string
}

func (m *mockGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.textCalls++
	m.lastPrompt = prompt
	return m.text, m.err
}

func (m *mockGenerator) GenerateFromImage(ctx context.Context, prompt, mimeType string, imageData []byte) (string, error) {
	m.imgCalls++
	m.lastPrompt = prompt
	m.lastMimeType = mimeType
	return m.text, m.err
}
