package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Table maps currency codes to rates relative to a base code.
type Table map[string]float64

// Conversion is one derived target amount: amount = baseAmount * rate.
type Conversion struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

// Targets is the fixed set of codes conversions are shown against.
var Targets = []string{"USD", "EUR", "GBP", "JPY", "INR", "AUD", "CAD"}

// fallbackTable is the explicit constant substituted when the live fetch
// fails. It is not a general fallback mechanism.
var fallbackTable = Table{
	"USD": 1,
	"EUR": 0.9,
	"GBP": 0.77,
	"JPY": 150,
	"INR": 83,
	"AUD": 1.48,
	"CAD": 1.36,
}

// FallbackTable returns a copy of the embedded static rate table.
func FallbackTable() Table {
	table := make(Table, len(fallbackTable))
	for code, rate := range fallbackTable {
		table[code] = rate
	}
	return table
}

// ExchangeClient fetches live conversion rates from the FX provider.
type ExchangeClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewExchangeClient(apiKey, baseURL string) *ExchangeClient {
	return &ExchangeClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type latestResponse struct {
	ConversionRates Table `json:"conversion_rates"`
}

// Latest fetches the live rate table for a base code. Tables are fetched
// per request and never cached.
func (c *ExchangeClient) Latest(ctx context.Context, base string) (Table, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", c.baseURL, c.apiKey, base)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fx latest failed: status %d", resp.StatusCode)
	}

	var latest latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&latest); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(latest.ConversionRates) == 0 {
		return nil, fmt.Errorf("fx latest returned no rates")
	}

	return latest.ConversionRates, nil
}

// LatestOrFallback returns the live table, or the static table when the
// provider is unreachable. The second return value reports whether the
// rates are live.
func (c *ExchangeClient) LatestOrFallback(ctx context.Context, base string) (Table, bool) {
	table, err := c.Latest(ctx, base)
	if err != nil {
		return FallbackTable(), false
	}
	return table, true
}

// Convert derives target amounts for the fixed target set, excluding the
// base code itself. A code missing from the table converts to 0.
func Convert(table Table, baseCode string, baseAmount float64) []Conversion {
	conversions := make([]Conversion, 0, len(Targets))
	for _, code := range Targets {
		if code == baseCode {
			continue
		}
		conversions = append(conversions, Conversion{
			Code:   code,
			Amount: table[code] * baseAmount,
		})
	}
	return conversions
}

// ConvertPair converts an amount between two codes in the same table.
func ConvertPair(table Table, to string, amount float64) (rate, result float64, ok bool) {
	rate, ok = table[to]
	if !ok {
		return 0, 0, false
	}
	return rate, amount * rate, true
}
