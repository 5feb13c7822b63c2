package ticket

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonandersen/backspread/internal/chain"
	"github.com/jonandersen/backspread/internal/selector"
)

func testSelection() *selector.Selection {
	return &selector.Selection{
		TradeType:   selector.TradeType112,
		Expiration:  "2025-01-17",
		OTMQuantity: 2,
		OTM: chain.Contract{
			Side: chain.Put, Symbol: "SPY_011725P85", Description: "SPY Jan 17 2025 85 Put",
			Bid: 0.5, Ask: 0.7, StrikePrice: 85,
		},
		Spread: selector.Spread{
			Short: chain.Contract{
				Side: chain.Put, Symbol: "SPY_011725P90", Description: "SPY Jan 17 2025 90 Put",
				Bid: 1.0, Ask: 1.2, StrikePrice: 90,
			},
			Long: chain.Contract{
				Side: chain.Put, Symbol: "SPY_011725P95", Description: "SPY Jan 17 2025 95 Put",
				Bid: 2.0, Ask: 2.4, StrikePrice: 95,
			},
			Price: 1.1,
		},
	}
}

func TestBuild_MidPricing(t *testing.T) {
	tk := Build("spy", 100, testSelection(), selector.PricingMid, ProtectionPercent)

	assert.Equal(t, "SPY", tk.Symbol)
	assert.Equal(t, 2, tk.ShortQuantity)
	assert.Equal(t, "0.6", tk.ShortPremium.String())
	assert.Equal(t, "1.1", tk.SpreadPremium.String())
	assert.Equal(t, "0.1", tk.TotalPremium.String())
	assert.Equal(t, "15", tk.Protection.String())

	require.Len(t, tk.Legs, 3)
	assert.Equal(t, Leg{Quantity: 2, Action: "SELL", Symbol: "SPY_011725P85", Description: "SPY Jan 17 2025 85 Put", Strike: 85}, tk.Legs[0])
	assert.Equal(t, "SELL", tk.Legs[1].Action)
	assert.Equal(t, "BUY", tk.Legs[2].Action)
}

func TestBuild_NaturalPricing(t *testing.T) {
	tk := Build("SPY", 100, testSelection(), selector.PricingNatural, ProtectionPercent)

	assert.Equal(t, "0.5", tk.ShortPremium.String())
	assert.Equal(t, "1.4", tk.SpreadPremium.String())
	assert.Equal(t, "-0.4", tk.TotalPremium.String())
}

func TestBuild_TotalIsExact(t *testing.T) {
	sel := testSelection()
	sel.OTM.Bid, sel.OTM.Ask = 0.1, 0.2
	sel.Spread.Short.Bid, sel.Spread.Short.Ask = 0.3, 0.35
	sel.Spread.Long.Bid, sel.Spread.Long.Ask = 0.45, 0.5

	tk := Build("SPY", 100, sel, selector.PricingMid, ProtectionPercent)

	want := tk.ShortPremium.Mul(decimal.NewFromInt(2)).Sub(tk.SpreadPremium)
	assert.True(t, want.Equal(tk.TotalPremium))
	assert.Equal(t, "0.15", tk.ShortPremium.String())
	assert.Equal(t, "0.15", tk.SpreadPremium.String())
	assert.Equal(t, "0.15", tk.TotalPremium.String())
	assert.Contains(t, tk.Lines(), "Total Premium: $0.15")
}

func TestProtection(t *testing.T) {
	assert.Equal(t, "15", Protection(85, 100, ProtectionPercent).String())
	assert.Equal(t, "0.15", Protection(85, 100, ProtectionFraction).String())
	assert.Equal(t, "11.11", Protection(400, 450, ProtectionPercent).Round(2).String())
	assert.Equal(t, "-10", Protection(110, 100, ProtectionPercent).String(), "calls above the underlying are negative")
	assert.True(t, Protection(85, 0, ProtectionPercent).IsZero())
}

func TestTicket_Lines(t *testing.T) {
	tk := Build("SPY", 100, testSelection(), selector.PricingMid, ProtectionPercent)

	assert.Equal(t, []string{
		"2x SPY Jan 17 2025 85 Put",
		"1x SPY Jan 17 2025 90 Put",
		"1x SPY Jan 17 2025 95 Put",
		"Short Premium: 2x $0.6",
		"Spread Premium: 1x $1.1",
		"Total Premium: $0.1",
		"Protection: 15%",
	}, tk.Lines())
}

func TestTicket_LinesFraction(t *testing.T) {
	tk := Build("SPY", 450, testSelection(), selector.PricingMid, ProtectionFraction)

	lines := tk.Lines()
	assert.Equal(t, "Protection: 0.8111", lines[len(lines)-1])
}

func TestTicket_LinesSingleOTM(t *testing.T) {
	sel := testSelection()
	sel.TradeType = selector.TradeType111
	sel.OTMQuantity = 1

	tk := Build("SPY", 100, sel, selector.PricingMid, ProtectionPercent)

	lines := tk.Lines()
	assert.Equal(t, "1x SPY Jan 17 2025 85 Put", lines[0])
	assert.Equal(t, "Short Premium: 1x $0.6", lines[3])
	assert.Equal(t, "Total Premium: $-0.5", lines[5])
}

func TestParseProtectionFormat(t *testing.T) {
	f, err := ParseProtectionFormat("")
	require.NoError(t, err)
	assert.Equal(t, ProtectionPercent, f)

	f, err = ParseProtectionFormat("FRACTION")
	require.NoError(t, err)
	assert.Equal(t, ProtectionFraction, f)

	_, err = ParseProtectionFormat("ratio")
	assert.Error(t, err)
}
