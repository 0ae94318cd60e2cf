package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"coinvision/internal/rates"
)

type convertRequest struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

type convertResponse struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
	Rate   float64 `json:"rate"`
	Result float64 `json:"result"`
	Live   bool    `json:"live"`
}

func (app *App) ConvertHandler(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.From = strings.ToUpper(strings.TrimSpace(req.From))
	req.To = strings.ToUpper(strings.TrimSpace(req.To))
	if len(req.From) != 3 || len(req.To) != 3 {
		respondError(w, http.StatusBadRequest, "from and to must be 3-letter currency codes")
		return
	}
	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	table, live := app.Exchange.LatestOrFallback(r.Context(), req.From)

	rate, result, ok := rates.ConvertPair(table, req.To, req.Amount)
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown target currency code")
		return
	}

	respondJSON(w, http.StatusOK, convertResponse{
		From:   req.From,
		To:     req.To,
		Amount: req.Amount,
		Rate:   rate,
		Result: result,
		Live:   live,
	})
}

func (app *App) RatesHandler(w http.ResponseWriter, r *http.Request) {
	base := strings.ToUpper(chi.URLParam(r, "base"))
	if len(base) != 3 {
		respondError(w, http.StatusBadRequest, "base must be a 3-letter currency code")
		return
	}

	table, live := app.Exchange.LatestOrFallback(r.Context(), base)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"base":             base,
		"conversion_rates": table,
		"live":             live,
	})
}

type historyRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Days int    `json:"days"`
}

func (app *App) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.From = strings.ToUpper(strings.TrimSpace(req.From))
	if req.To == "" {
		req.To = "USD"
	}
	req.To = strings.ToUpper(strings.TrimSpace(req.To))
	if req.Days <= 0 {
		req.Days = 90
	}

	points, err := app.History.History(r.Context(), req.From, req.To, req.Days)
	if err != nil {
		if errors.Is(err, rates.ErrNoSeries) {
			respondError(w, http.StatusNotFound, "no historical series for currency pair")
			return
		}
		app.Log.WithError(err).Error("history fetch failed", nil)
		respondError(w, http.StatusBadGateway, "failed to fetch historical rates")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"rates": points})
}

// FREDHandler proxies raw observations for a series id, defaulting to the
// US inflation series.
func (app *App) FREDHandler(w http.ResponseWriter, r *http.Request) {
	seriesID := r.URL.Query().Get("series_id")
	if seriesID == "" {
		seriesID = rates.InflationSeriesID("USD")
	}

	observations, err := app.FRED.Observations(r.Context(), seriesID, "", "")
	if err != nil {
		app.Log.WithError(err).Error("FRED fetch failed", map[string]interface{}{
			"series_id": seriesID,
		})
		respondError(w, http.StatusBadGateway, "failed to fetch observations")
		return
	}

	respondJSON(w, http.StatusOK, rates.FREDObservationsResponse{Observations: observations})
}

func (app *App) InflationHandler(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	if len(code) != 3 {
		respondError(w, http.StatusBadRequest, "code must be a 3-letter currency code")
		return
	}

	series, err := app.Inflation.Inflation(r.Context(), code)
	if err != nil {
		app.Log.WithError(err).Error("inflation fetch failed", nil)
		respondError(w, http.StatusBadGateway, "failed to fetch inflation data")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"code":        code,
		"series":      series,
		"value_trend": rates.ValueTrend(series, 100),
	})
}
