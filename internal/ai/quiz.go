package ai

import (
	"context"
	"fmt"
)

const quizSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"properties": {
			"question": {"type": "string"},
			"options": {"type": "array", "items": {"type": "string"}, "minItems": 2},
			"answer": {"type": "string"}
		},
		"required": ["question", "options", "answer"]
	},
	"minItems": 1
}`

const quizPrompt = `Generate 5 multiple-choice questions about world currencies.
Each question should have:
- a "question" field (string),
- an "options" field (array of 4 strings),
- an "answer" field (the correct option from the options array).
Return the result as a valid JSON array. Do not include any extra explanation or text before or after the array. Format:
[
  {
    "question": "Which country uses the Yen?",
    "options": ["China", "Japan", "Thailand", "Vietnam"],
    "answer": "Japan"
  },
  ...
]`

// QuizGenerator produces multiple-choice currency quizzes.
type QuizGenerator struct {
	generator Generator
	extractor *Extractor[[]QuizQuestion]
}

func NewQuizGenerator(generator Generator) (*QuizGenerator, error) {
	g := &QuizGenerator{generator: generator}

	// Malformed quiz output is an error, not a fallback: there is no
	// sensible defaulted quiz to show.
	extractor, err := NewArrayExtractor(quizSchema, func(string) []QuizQuestion { return nil })
	if err != nil {
		return nil, fmt.Errorf("building quiz extractor: %w", err)
	}
	g.extractor = extractor
	return g, nil
}

func (g *QuizGenerator) GenerateQuiz(ctx context.Context) ([]QuizQuestion, error) {
	text, err := g.generator.GenerateText(ctx, quizPrompt)
	if err != nil {
		return nil, fmt.Errorf("requesting quiz: %w", err)
	}

	questions, err := g.extractor.DecodeStrict(text)
	if err != nil {
		return nil, fmt.Errorf("invalid quiz format returned from model: %w", err)
	}
	return questions, nil
}
