package tdapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/marketdata/SPY/quotes", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"SPY": {
				"symbol": "SPY",
				"description": "SPDR S&P 500 ETF",
				"bidPrice": 449.95,
				"askPrice": 450.05,
				"lastPrice": 450.0,
				"mark": 450.0,
				"totalVolume": 51234567
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &mockTokenProvider{token: "test-token"})

	quote, err := client.GetQuote(context.Background(), "spy")
	require.NoError(t, err)

	assert.Equal(t, "SPY", quote.Symbol)
	assert.Equal(t, 450.0, quote.LastPrice)
	assert.Equal(t, 449.95, quote.BidPrice)
	assert.Equal(t, 450.05, quote.AskPrice)
	assert.Equal(t, int64(51234567), quote.TotalVolume)
}

func TestClient_GetQuote_FillsMissingSymbol(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"QQQ": {"lastPrice": 380.5}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &mockTokenProvider{token: "test-token"})

	quote, err := client.GetQuote(context.Background(), "QQQ")
	require.NoError(t, err)
	assert.Equal(t, "QQQ", quote.Symbol)
	assert.Equal(t, 380.5, quote.LastPrice)
}

func TestClient_GetQuote_SymbolMissingFromResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &mockTokenProvider{token: "test-token"})

	_, err := client.GetQuote(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no quote returned for NOPE")
}

func TestClient_GetQuote_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"The access token being passed has expired or is invalid."}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &mockTokenProvider{token: "test-token"})

	_, err := client.GetQuote(context.Background(), "SPY")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsUnauthorized())
	assert.Contains(t, apiErr.Message, "expired")
}

func TestClient_GetQuote_EmptySymbol(t *testing.T) {
	client := NewClient("http://localhost", &mockTokenProvider{token: "test-token"})

	_, err := client.GetQuote(context.Background(), "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol is required")
}
