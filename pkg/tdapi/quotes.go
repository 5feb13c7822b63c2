package tdapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// GetQuote retrieves the quote for a single symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	path := fmt.Sprintf("/v1/marketdata/%s/quotes", url.PathEscape(symbol))
	resp, err := c.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := CheckResponse(resp); err != nil {
		return nil, err
	}

	var quotes QuotesResponse
	if err := DecodeJSON(resp, &quotes); err != nil {
		return nil, err
	}

	quote, ok := quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("no quote returned for %s", symbol)
	}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}

	return &quote, nil
}
