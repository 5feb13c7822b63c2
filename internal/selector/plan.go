package selector

import (
	"fmt"

	"github.com/jonandersen/backspread/internal/chain"
)

// Selection is the complete set of legs for one ticket.
type Selection struct {
	TradeType     TradeType      `json:"tradeType"`
	Expiration    string         `json:"expiration"`
	OTMExpiration string         `json:"otmExpiration"`
	OTM           chain.Contract `json:"otm"`
	OTMQuantity   int            `json:"otmQuantity"`
	Spread        Spread         `json:"spread"`
}

// Select runs the expiration, OTM and spread searches for a trade type.
// The spread always comes from the put chain; the OTM leg comes from the
// chain named by the trade type.
func Select(c *chain.Chain, t TradeType, lastPrice float64, s Settings) (*Selection, error) {
	if lastPrice <= 0 {
		return nil, fmt.Errorf("invalid last price %v for %s", lastPrice, c.Symbol)
	}

	spreadExp, err := Expiration(c.Puts, s.TargetDTE)
	if err != nil {
		return nil, fmt.Errorf("no put expiration near %d DTE: %w", s.TargetDTE, err)
	}

	otmExp := spreadExp
	if t.OTMSide() == chain.Call {
		otmExp, err = Expiration(c.Calls, s.TargetDTE)
		if err != nil {
			return nil, fmt.Errorf("no call expiration near %d DTE: %w", s.TargetDTE, err)
		}
	}

	otm, err := OTM(otmExp.Strikes, t.OTMSide(), lastPrice, s)
	if err != nil {
		return nil, fmt.Errorf("no OTM %s found in %s: %w", t.OTMSide(), otmExp.Date, err)
	}

	spread, err := PutSpread(spreadExp.Strikes, s)
	if err != nil {
		return nil, fmt.Errorf("no %v-wide put spread found in %s: %w", s.SpreadWidthTarget, spreadExp.Date, err)
	}

	return &Selection{
		TradeType:     t,
		Expiration:    spreadExp.Date,
		OTMExpiration: otmExp.Date,
		OTM:           otm,
		OTMQuantity:   t.OTMQuantity(),
		Spread:        spread,
	}, nil
}
