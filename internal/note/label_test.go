package note

import "testing"

func TestParseLabel(t *testing.T) {
	tests := []struct {
		name      string
		label     string
		wantCode  string
		wantDenom float64
		wantNil   bool
	}{
		{name: "valid", label: "INR-500", wantCode: "INR", wantDenom: 500},
		{name: "lowercase code uppercased", label: "usd-20", wantCode: "USD", wantDenom: 20},
		{name: "fractional denomination", label: "GBP-0.5", wantCode: "GBP", wantDenom: 0.5},
		{name: "empty", label: "", wantNil: true},
		{name: "no delimiter", label: "INR500", wantNil: true},
		{name: "two delimiters", label: "INR-500-new", wantNil: true},
		{name: "empty code", label: "-500", wantNil: true},
		{name: "empty amount", label: "INR-", wantNil: true},
		{name: "non numeric amount", label: "INR-five", wantNil: true},
		{name: "zero amount", label: "INR-0", wantNil: true},
		{name: "negative amount survives split", label: "INR--5", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLabel(tt.label)
			if tt.wantNil {
				if got != nil {
					t.Errorf("ParseLabel(%q) = %+v, want nil", tt.label, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseLabel(%q) = nil, want parsed label", tt.label)
			}
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Denomination != tt.wantDenom {
				t.Errorf("Denomination = %v, want %v", got.Denomination, tt.wantDenom)
			}
		})
	}
}
