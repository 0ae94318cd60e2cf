package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test-key/latest/INR", r.URL.Path)
		w.Write([]byte(`{"result": "success", "conversion_rates": {"USD": 0.012, "EUR": 0.011}}`))
	}))
	defer server.Close()

	c := NewExchangeClient("test-key", server.URL)
	table, err := c.Latest(context.Background(), "INR")
	require.NoError(t, err)
	assert.Equal(t, 0.012, table["USD"])
	assert.Equal(t, 0.011, table["EUR"])
}

func TestLatestErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		_, err := NewExchangeClient("k", server.URL).Latest(context.Background(), "USD")
		assert.Error(t, err)
	})

	t.Run("empty rate table", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"conversion_rates": {}}`))
		}))
		defer server.Close()

		_, err := NewExchangeClient("k", server.URL).Latest(context.Background(), "USD")
		assert.Error(t, err)
	})
}

func TestLatestOrFallback(t *testing.T) {
	// Server is closed before the call so the fetch must fail.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	table, live := NewExchangeClient("k", server.URL).LatestOrFallback(context.Background(), "USD")
	assert.False(t, live)
	assert.Equal(t, FallbackTable(), table)

	// The returned table is a copy; mutating it must not poison later calls.
	table["EUR"] = 999
	again, _ := NewExchangeClient("k", server.URL).LatestOrFallback(context.Background(), "USD")
	assert.Equal(t, 0.9, again["EUR"])
}

func TestConvert(t *testing.T) {
	table := Table{"USD": 1, "EUR": 0.9, "GBP": 0.77, "JPY": 150, "INR": 83, "AUD": 1.48, "CAD": 1.36}

	conversions := Convert(table, "USD", 10)
	require.Len(t, conversions, len(Targets)-1)
	for _, conv := range conversions {
		assert.NotEqual(t, "USD", conv.Code, "base code must be excluded")
	}
	assert.Equal(t, Conversion{Code: "EUR", Amount: 9}, conversions[0])
}

func TestConvertMissingCodeIsZero(t *testing.T) {
	conversions := Convert(Table{"EUR": 0.9}, "XYZ", 10)
	for _, conv := range conversions {
		if conv.Code != "EUR" {
			assert.Zero(t, conv.Amount, "code %s missing from table", conv.Code)
		}
	}
}

func TestConvertPair(t *testing.T) {
	table := Table{"EUR": 0.9}

	rate, result, ok := ConvertPair(table, "EUR", 100)
	require.True(t, ok)
	assert.Equal(t, 0.9, rate)
	assert.Equal(t, 90.0, result)

	_, _, ok = ConvertPair(table, "XXX", 100)
	assert.False(t, ok)
}
