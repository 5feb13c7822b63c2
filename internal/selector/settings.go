package selector

import (
	"fmt"
	"strings"

	"github.com/jonandersen/backspread/internal/chain"
)

// Pricing decides which side of the market a leg is valued at.
type Pricing string

const (
	// PricingMid values every leg at its mid price.
	PricingMid Pricing = "mid"
	// PricingNatural values sold legs at the bid and bought legs at the ask.
	PricingNatural Pricing = "natural"
)

// ParsePricing parses a pricing mode; empty means PricingMid.
func ParsePricing(s string) (Pricing, error) {
	switch Pricing(strings.ToLower(strings.TrimSpace(s))) {
	case "", PricingMid:
		return PricingMid, nil
	case PricingNatural:
		return PricingNatural, nil
	default:
		return "", fmt.Errorf("invalid pricing %q (must be mid or natural)", s)
	}
}

// TradeType is the ratio structure being priced.
type TradeType string

const (
	TradeType111     TradeType = "1.1.1"
	TradeType112     TradeType = "1.1.2"
	TradeTypeBear112 TradeType = "Bear 1.1.2"
)

// ParseTradeType parses a trade type name. Matching ignores case and
// surrounding whitespace.
func ParseTradeType(s string) (TradeType, error) {
	for _, t := range []TradeType{TradeType111, TradeType112, TradeTypeBear112} {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid trade type %q (must be 1.1.1, 1.1.2 or Bear 1.1.2)", s)
}

// OTMQuantity is the number of OTM contracts sold per spread.
func (t TradeType) OTMQuantity() int {
	if t == TradeType111 {
		return 1
	}
	return 2
}

// OTMSide is the chain the OTM leg is taken from.
func (t TradeType) OTMSide() chain.Side {
	if t == TradeTypeBear112 {
		return chain.Call
	}
	return chain.Put
}

// Settings are the targets the selectors search for.
type Settings struct {
	TargetDTE         int
	OTMPriceTarget    float64
	MinOTMPercent     float64 // fraction, 0.10 = 10%; 0 disables the gate
	SpreadPriceTarget float64
	SpreadWidthTarget float64
	Pricing           Pricing
}

// Validate checks that the settings describe a searchable target.
func (s Settings) Validate() error {
	if s.TargetDTE < 0 {
		return fmt.Errorf("target DTE must not be negative")
	}
	if s.MinOTMPercent < 0 {
		return fmt.Errorf("minimum OTM percent must not be negative")
	}
	if s.SpreadWidthTarget <= 0 {
		return fmt.Errorf("spread width target must be positive")
	}
	if _, err := ParsePricing(string(s.Pricing)); err != nil {
		return err
	}
	return nil
}
