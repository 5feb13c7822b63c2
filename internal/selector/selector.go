// Package selector picks the expiration and strikes of a ratio spread.
//
// Every function is a pure nearest-neighbour search over a chain snapshot:
// strikes are scanned in ascending order and the first candidate with the
// smallest distance to the target wins.
package selector

import (
	"errors"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/jonandersen/backspread/internal/chain"
)

// ErrNotFound is returned when no candidate satisfies the search.
var ErrNotFound = errors.New("not found")

// Expiration returns the expiration whose DTE is closest to targetDTE.
func Expiration(exps []chain.Expiration, targetDTE int) (chain.Expiration, error) {
	best := -1
	distance := math.MaxInt
	for i, exp := range exps {
		delta := exp.DTE - targetDTE
		if delta < 0 {
			delta = -delta
		}
		if delta < distance {
			best = i
			distance = delta
		}
	}
	if best < 0 {
		return chain.Expiration{}, ErrNotFound
	}

	log.WithFields(log.Fields{
		"expiration": exps[best].Key,
		"target_dte": targetDTE,
	}).Debug("selected expiration")

	return exps[best], nil
}

// PercentOTM is how far strike lies from the underlying, as a fraction.
func PercentOTM(strike, lastPrice float64) float64 {
	return math.Abs(1 - strike/lastPrice)
}

// OTM returns the contract of the given side whose mid price is closest
// to s.OTMPriceTarget. Strikes nearer the money than s.MinOTMPercent are
// skipped when the gate is enabled.
func OTM(strikes chain.StrikeMap, side chain.Side, lastPrice float64, s Settings) (chain.Contract, error) {
	var (
		best     chain.Contract
		found    bool
		distance = math.Inf(1)
	)

	for _, strike := range strikes.Strikes() {
		c, ok := strike.Contract(side)
		if !ok {
			continue
		}

		if s.MinOTMPercent > 0 && PercentOTM(c.StrikePrice, lastPrice) < s.MinOTMPercent {
			continue
		}

		delta := math.Abs(s.OTMPriceTarget - c.Mid())
		if delta < distance {
			distance = delta
			best = c
			found = true
		}
	}

	if !found {
		return chain.Contract{}, ErrNotFound
	}

	log.WithFields(log.Fields{
		"strike": best.StrikePrice,
		"mid":    best.Mid(),
		"target": s.OTMPriceTarget,
	}).Debug("selected OTM strike")

	return best, nil
}

// Spread is a pair of puts one width apart. Short is the lower strike.
type Spread struct {
	Short chain.Contract `json:"short"`
	Long  chain.Contract `json:"long"`
	Price float64        `json:"price"`
}

// SpreadPrice prices buying long and selling short under the given mode.
func SpreadPrice(short, long chain.Contract, p Pricing) float64 {
	if p == PricingNatural {
		return long.Ask - short.Bid
	}
	return long.Mid() - short.Mid()
}

// PutSpread returns the put pair (K, K+width) whose price is closest to
// s.SpreadPriceTarget.
func PutSpread(strikes chain.StrikeMap, s Settings) (Spread, error) {
	var (
		best     Spread
		found    bool
		distance = math.Inf(1)
	)

	for _, shortStrike := range strikes.Strikes() {
		longStrike, ok := strikes.Lookup(shortStrike.Price + s.SpreadWidthTarget)
		if !ok {
			continue
		}

		short, ok := shortStrike.Contract(chain.Put)
		if !ok {
			continue
		}
		long, ok := longStrike.Contract(chain.Put)
		if !ok {
			continue
		}

		price := SpreadPrice(short, long, s.Pricing)
		delta := math.Abs(s.SpreadPriceTarget - price)
		if delta < distance {
			distance = delta
			best = Spread{Short: short, Long: long, Price: price}
			found = true
		}
	}

	if !found {
		return Spread{}, ErrNotFound
	}

	log.WithFields(log.Fields{
		"short":  best.Short.StrikePrice,
		"long":   best.Long.StrikePrice,
		"price":  best.Price,
		"target": s.SpreadPriceTarget,
	}).Debug("selected spread")

	return best, nil
}
