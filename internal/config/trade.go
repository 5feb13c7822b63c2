package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonandersen/backspread/internal/selector"
	"github.com/jonandersen/backspread/internal/ticket"
)

// TradeSettings is the trade configuration read from the environment.
type TradeSettings struct {
	Symbol           string
	TradeType        selector.TradeType
	Selector         selector.Settings
	ProtectionFormat ticket.ProtectionFormat
}

// TradeSettingsFromEnv reads and validates the trade settings.
func TradeSettingsFromEnv(lookup LookupFunc) (*TradeSettings, error) {
	r := envReader{lookup: lookup}

	ts := &TradeSettings{
		Symbol: strings.ToUpper(r.required("SYMBOL")),
	}
	ts.Selector.TargetDTE = r.integer("TARGET_DTE")
	ts.Selector.OTMPriceTarget = r.float("OTM_PRICE_TARGET", true)
	ts.Selector.MinOTMPercent = r.float("MIN_OTM_PERCENT", false)
	ts.Selector.SpreadPriceTarget = r.float("SPREAD_PRICE_TARGET", true)
	ts.Selector.SpreadWidthTarget = r.float("SPREAD_WIDTH_TARGET", true)

	if raw := r.required("TRADE_TYPE"); raw != "" {
		tt, err := selector.ParseTradeType(raw)
		if err != nil {
			r.fail(err)
		}
		ts.TradeType = tt
	}

	pricing, err := selector.ParsePricing(r.optional("PRICING"))
	if err != nil {
		r.fail(err)
	}
	ts.Selector.Pricing = pricing

	format, err := ticket.ParseProtectionFormat(r.optional("PROTECTION_FORMAT"))
	if err != nil {
		r.fail(err)
	}
	ts.ProtectionFormat = format

	if r.err != nil {
		return nil, r.err
	}
	if err := ts.Selector.Validate(); err != nil {
		return nil, err
	}
	return ts, nil
}

// envReader collects the first error so callers can read every variable
// before checking.
type envReader struct {
	lookup LookupFunc
	err    error
}

func (r *envReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *envReader) optional(key string) string {
	v, _ := r.lookup(key)
	return strings.TrimSpace(v)
}

func (r *envReader) required(key string) string {
	v := r.optional(key)
	if v == "" {
		r.fail(fmt.Errorf("%s is not set", key))
	}
	return v
}

func (r *envReader) integer(key string) int {
	raw := r.required(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		r.fail(fmt.Errorf("%s must be an integer, got %q", key, raw))
	}
	return n
}

func (r *envReader) float(key string, required bool) float64 {
	var raw string
	if required {
		raw = r.required(key)
	} else {
		raw = r.optional(key)
	}
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.fail(fmt.Errorf("%s must be a number, got %q", key, raw))
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		r.fail(fmt.Errorf("%s must be a finite number, got %q", key, raw))
		return 0
	}
	return f
}
