package ai

import (
	"encoding/json"
	"strconv"
	"strings"
)

// StringList unmarshals either a JSON array of strings or a single string.
// Text models sometimes return a scalar where an array was requested.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*s = StringList{single}
	return nil
}

// Score unmarshals a number or a numeric string and clamps to 0..100.
type Score float64

func (s *Score) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return err
		}
		f = parsed
	}
	if f < 0 {
		f = 0
	}
	if f > 100 {
		f = 100
	}
	*s = Score(f)
	return nil
}

// CurrencyDetail is the enrichment schema for a predicted banknote.
type CurrencyDetail struct {
	Denomination     string     `json:"denomination"`
	Country          string     `json:"country"`
	CurrencyCode     string     `json:"currency_code"`
	Year             string     `json:"year"`
	Series           string     `json:"series"`
	SecurityFeatures StringList `json:"security_features"`
	Dimensions       string     `json:"dimensions"`
	ColorScheme      StringList `json:"color_scheme"`
	Material         string     `json:"material"`
	Description      string     `json:"description"`
	HistoricalInfo   string     `json:"historical_info"`
}

// ConditionReport grades the physical state of a note.
type ConditionReport struct {
	OverallCondition    string         `json:"overall_condition"`
	ConditionScore      Score          `json:"condition_score"`
	PhysicalDamage      PhysicalDamage `json:"physical_damage"`
	StructuralIntegrity string         `json:"structural_integrity"`
	CollectibleValue    string         `json:"collectible_value"`
	Marketability       string         `json:"marketability"`
	PreservationTips    StringList     `json:"preservation_tips"`
	DetailedAssessment  string         `json:"detailed_assessment"`
}

type PhysicalDamage struct {
	Tears   string `json:"tears"`
	Holes   string `json:"holes"`
	Creases string `json:"creases"`
	Stains  string `json:"stains"`
	Fading  string `json:"fading"`
}

// AuthenticityReport is the counterfeit assessment schema.
type AuthenticityReport struct {
	AuthenticityStatus   string           `json:"authenticity_status"`
	ConfidenceScore      Score            `json:"confidence_score"`
	SecurityFeatures     SecurityFeatures `json:"security_features"`
	PaperQuality         string           `json:"paper_quality"`
	PrintingQuality      string           `json:"printing_quality"`
	SerialNumberAnalysis string           `json:"serial_number_analysis"`
	OverallAssessment    string           `json:"overall_assessment"`
	RedFlags             StringList       `json:"red_flags"`
	AuthenticationTips   StringList       `json:"authentication_tips"`
	DetailedAnalysis     string           `json:"detailed_analysis"`
}

type SecurityFeatures struct {
	Watermark        string `json:"watermark"`
	SecurityThread   string `json:"security_thread"`
	Microprinting    string `json:"microprinting"`
	ColorChangingInk string `json:"color_changing_ink"`
	RaisedPrinting   string `json:"raised_printing"`
	UVFeatures       string `json:"uv_features"`
}

// QuizQuestion is one multiple-choice question about world currencies.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}
