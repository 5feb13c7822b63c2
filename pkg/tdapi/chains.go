package tdapi

import (
	"context"
	"fmt"
	"strings"
)

// GetOptionChain retrieves the option chain matching the request.
func (c *Client) GetOptionChain(ctx context.Context, req OptionChainRequest) (*OptionChain, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	params := map[string]string{"symbol": symbol}
	if req.ContractType != "" {
		params["contractType"] = string(req.ContractType)
	}
	if req.StrikeRange != "" {
		params["range"] = string(req.StrikeRange)
	}
	if req.OptionType != "" {
		params["optionType"] = string(req.OptionType)
	}
	if req.FromDate != "" {
		params["fromDate"] = req.FromDate
	}
	if req.ToDate != "" {
		params["toDate"] = req.ToDate
	}

	resp, err := c.GetWithParams(ctx, "/v1/marketdata/chains", params)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := CheckResponse(resp); err != nil {
		return nil, err
	}

	var chain OptionChain
	if err := DecodeJSON(resp, &chain); err != nil {
		return nil, err
	}

	if chain.Status == "FAILED" {
		return nil, fmt.Errorf("option chain request for %s failed", symbol)
	}

	return &chain, nil
}
