package ai

import (
	"context"
	"fmt"
)

const conditionSchema = `{
	"type": "object",
	"properties": {
		"overall_condition": {"type": "string"},
		"condition_score": {"type": ["number", "string"]},
		"physical_damage": {
			"type": "object",
			"properties": {
				"tears": {"type": "string"},
				"holes": {"type": "string"},
				"creases": {"type": "string"},
				"stains": {"type": "string"},
				"fading": {"type": "string"}
			}
		},
		"structural_integrity": {"type": "string"},
		"collectible_value": {"type": "string"},
		"marketability": {"type": "string"},
		"preservation_tips": {"type": ["array", "string"], "items": {"type": "string"}},
		"detailed_assessment": {"type": "string"}
	},
	"required": ["overall_condition"]
}`

const conditionPrompt = `Analyze this currency note image in detail and provide a comprehensive condition assessment.

Please respond with a JSON object in exactly this format:
{
	"overall_condition": "Overall condition description (e.g., Excellent, Very Fine, Fine, Fair, Poor)",
	"condition_score": "numerical score from 0-100",
	"physical_damage": {
		"tears": "Description of any tears or rips",
		"holes": "Description of any holes or punctures",
		"creases": "Description of fold marks and creases",
		"stains": "Description of any stains or discoloration",
		"fading": "Description of color fading or ink issues"
	},
	"structural_integrity": "Assessment of the note's structural soundness",
	"collectible_value": "Assessment of collectible/numismatic value",
	"marketability": "Assessment of market value and sellability",
	"preservation_tips": [
		"List of specific preservation recommendations"
	],
	"detailed_assessment": "Comprehensive paragraph describing the overall condition, key observations, and condition factors"
}

Grading scale reference:
- Uncirculated/Mint (90-100): No signs of wear, crisp and clean
- Extremely Fine (80-89): Very light wear, sharp corners
- Very Fine (60-79): Light wear, some softening of corners
- Fine (40-59): Moderate wear, visible circulation
- Fair (20-39): Heavy wear but complete
- Poor (0-19): Heavily damaged, torn, or incomplete

Analyze the image carefully for:
- Physical damage (tears, holes, stains, writing)
- Wear patterns and circulation damage
- Color retention and fading
- Paper quality and texture
- Edge condition and corner sharpness
- Overall aesthetic appeal

Provide practical preservation advice and realistic value assessment.
Use "None" or "Minimal" for categories with no significant issues.
Be specific and detailed in your analysis.`

// ConditionAssessor grades the physical condition of an uploaded note.
type ConditionAssessor struct {
	generator Generator
	extractor *Extractor[ConditionReport]
}

func NewConditionAssessor(generator Generator) (*ConditionAssessor, error) {
	a := &ConditionAssessor{generator: generator}

	extractor, err := NewObjectExtractor(conditionSchema, fallbackConditionReport)
	if err != nil {
		return nil, fmt.Errorf("building condition extractor: %w", err)
	}
	a.extractor = extractor
	return a, nil
}

func (a *ConditionAssessor) AssessCondition(ctx context.Context, mimeType string, imageData []byte) (*ConditionReport, error) {
	text, err := a.generator.GenerateFromImage(ctx, conditionPrompt, mimeType, imageData)
	if err != nil {
		return nil, fmt.Errorf("requesting condition assessment: %w", err)
	}

	report, _ := a.extractor.Decode(text)
	return &report, nil
}

func fallbackConditionReport(raw string) ConditionReport {
	assessment := raw
	if assessment == "" {
		assessment = "Detailed analysis could not be processed."
	}
	return ConditionReport{
		OverallCondition: "Fair",
		ConditionScore:   50,
		PhysicalDamage: PhysicalDamage{
			Tears:   "Analysis unavailable",
			Holes:   "Analysis unavailable",
			Creases: "Analysis unavailable",
			Stains:  "Analysis unavailable",
			Fading:  "Analysis unavailable",
		},
		StructuralIntegrity: "Analysis unavailable",
		CollectibleValue:    "Analysis unavailable",
		Marketability:       "Analysis unavailable",
		PreservationTips: StringList{
			"Keep in a dry, cool environment",
			"Handle minimally",
			"Store flat between acid-free materials",
		},
		DetailedAssessment: assessment,
	}
}
