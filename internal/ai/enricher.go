package ai

import (
	"context"
	"fmt"
	"strings"
)

const currencyDetailSchema = `{
	"type": "object",
	"properties": {
		"denomination": {"type": "string"},
		"country": {"type": "string"},
		"currency_code": {"type": "string"},
		"year": {"type": "string"},
		"series": {"type": "string"},
		"security_features": {"type": ["array", "string"], "items": {"type": "string"}},
		"dimensions": {"type": "string"},
		"color_scheme": {"type": ["array", "string"], "items": {"type": "string"}},
		"material": {"type": "string"},
		"description": {"type": "string"},
		"historical_info": {"type": "string"}
	}
}`

const notAvailable = "Not available"

// Enricher asks the text model for structured detail about a predicted
// banknote label such as "INR-500".
type Enricher struct {
	generator Generator
	extractor *Extractor[CurrencyDetail]
}

func NewEnricher(generator Generator) (*Enricher, error) {
	e := &Enricher{generator: generator}

	extractor, err := NewObjectExtractor(currencyDetailSchema, e.fallbackDetail)
	if err != nil {
		return nil, fmt.Errorf("building currency detail extractor: %w", err)
	}
	e.extractor = extractor
	return e, nil
}

// CurrencyInfo fetches enrichment detail for a prediction label. Parse
// failures are not errors: a fallback object with the raw model text as
// description is returned instead. Only a transport failure errors out.
func (e *Enricher) CurrencyInfo(ctx context.Context, label string) (*CurrencyDetail, error) {
	prompt := fmt.Sprintf(`You are a currency expert. The detected banknote is: %s.
Return ONLY valid JSON with these fields (omit unknown fields):
{
  "denomination": string,
  "country": string,
  "currency_code": string,
  "year": string,
  "series": string,
  "security_features": string[],
  "dimensions": string,
  "color_scheme": string[],
  "material": string,
  "description": string,
  "historical_info": string
}`, label)

	text, err := e.generator.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("requesting currency info: %w", err)
	}

	detail, parsed := e.extractor.Decode(text)
	if !parsed && label != "" {
		// Best-effort code from the label so the fallback is not fully blank.
		code := strings.SplitN(label, "-", 2)[0]
		if len(code) == 3 {
			detail.CurrencyCode = strings.ToUpper(code)
		}
	}
	return &detail, nil
}

func (e *Enricher) fallbackDetail(raw string) CurrencyDetail {
	description := raw
	if description == "" {
		description = "Detailed information could not be parsed."
	}
	return CurrencyDetail{
		Denomination:     notAvailable,
		Country:          notAvailable,
		CurrencyCode:     notAvailable,
		Year:             notAvailable,
		Series:           notAvailable,
		SecurityFeatures: StringList{"Information not available from AI"},
		Dimensions:       notAvailable,
		ColorScheme:      StringList{notAvailable},
		Material:         notAvailable,
		Description:      description,
		HistoricalInfo:   notAvailable,
	}
}
