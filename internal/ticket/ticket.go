// Package ticket renders a selection into a printable trade ticket.
package ticket

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jonandersen/backspread/internal/chain"
	"github.com/jonandersen/backspread/internal/selector"
)

// ProtectionFormat controls how downside protection is expressed.
type ProtectionFormat string

const (
	// ProtectionPercent is 100 × (1 − strike/last), printed with a % sign.
	ProtectionPercent ProtectionFormat = "percent"
	// ProtectionFraction is 1 − strike/last, unscaled.
	ProtectionFraction ProtectionFormat = "fraction"
)

// ParseProtectionFormat parses a protection format; empty means percent.
func ParseProtectionFormat(s string) (ProtectionFormat, error) {
	switch ProtectionFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", ProtectionPercent:
		return ProtectionPercent, nil
	case ProtectionFraction:
		return ProtectionFraction, nil
	default:
		return "", fmt.Errorf("invalid protection format %q (must be percent or fraction)", s)
	}
}

// Leg is one line of the order.
type Leg struct {
	Quantity    int     `json:"quantity"`
	Action      string  `json:"action"`
	Symbol      string  `json:"symbol"`
	Description string  `json:"description"`
	Strike      float64 `json:"strike"`
}

// Ticket is the priced structure.
type Ticket struct {
	Symbol           string             `json:"symbol"`
	TradeType        selector.TradeType `json:"tradeType"`
	Expiration       string             `json:"expiration"`
	LastPrice        decimal.Decimal    `json:"lastPrice"`
	Pricing          selector.Pricing   `json:"pricing"`
	Legs             []Leg              `json:"legs"`
	ShortQuantity    int                `json:"shortQuantity"`
	ShortPremium     decimal.Decimal    `json:"shortPremium"`
	SpreadPremium    decimal.Decimal    `json:"spreadPremium"`
	TotalPremium     decimal.Decimal    `json:"totalPremium"`
	Protection       decimal.Decimal    `json:"protection"`
	ProtectionFormat ProtectionFormat   `json:"protectionFormat"`
}

// Build prices a selection. Premiums are recomputed from the contract quotes
// in decimal so the total is exactly quantity × short − spread.
func Build(symbol string, lastPrice float64, sel *selector.Selection, pricing selector.Pricing, format ProtectionFormat) Ticket {
	shortPremium := premium(sel.OTM, pricing)
	spreadPremium := spreadPremium(sel.Spread, pricing)
	total := shortPremium.Mul(decimal.NewFromInt(int64(sel.OTMQuantity))).Sub(spreadPremium)

	last := decimal.NewFromFloat(lastPrice)

	return Ticket{
		Symbol:     strings.ToUpper(symbol),
		TradeType:  sel.TradeType,
		Expiration: sel.Expiration,
		LastPrice:  last,
		Pricing:    pricing,
		Legs: []Leg{
			newLeg(sel.OTMQuantity, "SELL", sel.OTM),
			newLeg(1, "SELL", sel.Spread.Short),
			newLeg(1, "BUY", sel.Spread.Long),
		},
		ShortQuantity:    sel.OTMQuantity,
		ShortPremium:     shortPremium,
		SpreadPremium:    spreadPremium,
		TotalPremium:     total,
		Protection:       Protection(sel.OTM.StrikePrice, lastPrice, format),
		ProtectionFormat: format,
	}
}

// Protection is the distance from the underlying down to strike.
func Protection(strike, lastPrice float64, format ProtectionFormat) decimal.Decimal {
	if lastPrice == 0 {
		return decimal.Zero
	}
	frac := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(strike).Div(decimal.NewFromFloat(lastPrice)))
	if format == ProtectionFraction {
		return frac
	}
	return frac.Mul(decimal.NewFromInt(100))
}

func newLeg(qty int, action string, c chain.Contract) Leg {
	return Leg{
		Quantity:    qty,
		Action:      action,
		Symbol:      c.Symbol,
		Description: c.Description,
		Strike:      c.StrikePrice,
	}
}

func mid(c chain.Contract) decimal.Decimal {
	return decimal.NewFromFloat(c.Bid).Add(decimal.NewFromFloat(c.Ask)).Div(decimal.NewFromInt(2))
}

// premium is what one sold contract brings in.
func premium(c chain.Contract, pricing selector.Pricing) decimal.Decimal {
	if pricing == selector.PricingNatural {
		return decimal.NewFromFloat(c.Bid)
	}
	return mid(c)
}

func spreadPremium(s selector.Spread, pricing selector.Pricing) decimal.Decimal {
	if pricing == selector.PricingNatural {
		return decimal.NewFromFloat(s.Long.Ask).Sub(decimal.NewFromFloat(s.Short.Bid))
	}
	return mid(s.Long).Sub(mid(s.Short))
}

// Lines returns the human-readable ticket.
func (t Ticket) Lines() []string {
	lines := make([]string, 0, len(t.Legs)+4)
	for _, leg := range t.Legs {
		lines = append(lines, fmt.Sprintf("%dx %s", leg.Quantity, leg.Description))
	}
	lines = append(lines,
		fmt.Sprintf("Short Premium: %dx $%s", t.ShortQuantity, t.ShortPremium),
		fmt.Sprintf("Spread Premium: 1x $%s", t.SpreadPremium),
		fmt.Sprintf("Total Premium: $%s", t.TotalPremium),
	)
	if t.ProtectionFormat == ProtectionFraction {
		lines = append(lines, fmt.Sprintf("Protection: %s", t.Protection.Round(4)))
	} else {
		lines = append(lines, fmt.Sprintf("Protection: %s%%", t.Protection.Round(2)))
	}
	return lines
}
