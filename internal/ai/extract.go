package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Extractor performs best-effort structured decoding of untrusted model
// output against a declared JSON schema. On any failure (no JSON span in
// the text, invalid JSON, schema violation, unmarshal error) Decode
// returns the schema's fallback value instead of an error. Every call site
// that asks a text model for JSON goes through one of these.
type Extractor[T any] struct {
	schema   *gojsonschema.Schema
	array    bool
	fallback func(raw string) T
}

func NewObjectExtractor[T any](schemaJSON string, fallback func(raw string) T) (*Extractor[T], error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Extractor[T]{schema: schema, fallback: fallback}, nil
}

func NewArrayExtractor[T any](schemaJSON string, fallback func(raw string) T) (*Extractor[T], error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return &Extractor[T]{schema: schema, array: true, fallback: fallback}, nil
}

// Decode extracts and validates a value from text. The second return value
// reports whether the text actually parsed; false means the fallback was
// substituted.
func (e *Extractor[T]) Decode(text string) (T, bool) {
	value, err := e.decode(text)
	if err != nil {
		return e.fallback(text), false
	}
	return value, true
}

// DecodeStrict is Decode without the fallback: extraction failure is an
// error. Used where the caller treats malformed output as a failure (quiz).
func (e *Extractor[T]) DecodeStrict(text string) (T, error) {
	return e.decode(text)
}

func (e *Extractor[T]) decode(text string) (T, error) {
	var zero T

	span, ok := extractSpan(text, e.array)
	if !ok {
		return zero, fmt.Errorf("no JSON found in model output")
	}

	result, err := e.schema.Validate(gojsonschema.NewStringLoader(span))
	if err != nil {
		return zero, fmt.Errorf("validating model output: %w", err)
	}
	if !result.Valid() {
		return zero, fmt.Errorf("model output does not match schema: %s", result.Errors()[0].String())
	}

	var value T
	if err := json.Unmarshal([]byte(span), &value); err != nil {
		return zero, fmt.Errorf("unmarshaling model output: %w", err)
	}
	return value, nil
}

// extractSpan locates the outermost {...} or [...] span in free text.
// Models routinely wrap JSON in prose or markdown fences.
func extractSpan(text string, array bool) (string, bool) {
	open, closing := "{", "}"
	if array {
		open, closing = "[", "]"
	}

	start := strings.Index(text, open)
	end := strings.LastIndex(text, closing)
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
