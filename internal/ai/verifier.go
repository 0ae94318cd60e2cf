package ai

import (
	"context"
	"fmt"
	"strings"
)

const verifyPrompt = "Is this image a currency? Just return one of 2 options: True/False."

// Verifier answers the binary "is this a currency note" question.
type Verifier struct {
	generator Generator
}

func NewVerifier(generator Generator) *Verifier {
	return &Verifier{generator: generator}
}

// Verify returns whether the image depicts a currency note. A transport or
// API failure is an error, distinct from a negative classification: the two
// must never be conflated.
func (v *Verifier) Verify(ctx context.Context, mimeType string, imageData []byte) (bool, error) {
	text, err := v.generator.GenerateFromImage(ctx, verifyPrompt, mimeType, imageData)
	if err != nil {
		return false, fmt.Errorf("verifying note: %w", err)
	}

	return strings.TrimSpace(text) == "True", nil
}
