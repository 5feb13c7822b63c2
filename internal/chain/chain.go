// Package chain holds the option chain snapshot the selectors work on.
//
// Strikes are keyed by their numeric price rather than by the string the
// API used to encode them, so a derived strike such as short+width can be
// found regardless of how the upstream formatted its keys.
package chain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jonandersen/backspread/pkg/tdapi"
)

// StrikeEpsilon is the tolerance used when matching strike prices.
const StrikeEpsilon = 1e-6

// Side is the option right of a contract.
type Side string

const (
	Put  Side = "PUT"
	Call Side = "CALL"
)

// Contract is a single option contract quote.
type Contract struct {
	Side           Side    `json:"side"`
	Symbol         string  `json:"symbol"`
	Description    string  `json:"description"`
	Bid            float64 `json:"bid"`
	Ask            float64 `json:"ask"`
	StrikePrice    float64 `json:"strikePrice"`
	DTE            int     `json:"dte"`
	SettlementType string  `json:"settlementType,omitempty"`
}

// Mid returns the average of bid and ask.
func (c Contract) Mid() float64 {
	return (c.Bid + c.Ask) / 2
}

// Strike is every contract listed at one strike price.
type Strike struct {
	Price     float64
	Contracts []Contract
}

// Contract returns the first contract of the given side.
func (s Strike) Contract(side Side) (Contract, bool) {
	for _, c := range s.Contracts {
		if c.Side == side {
			return c, true
		}
	}
	return Contract{}, false
}

// StrikeMap is an ascending list of strikes with tolerant lookup.
type StrikeMap struct {
	strikes []Strike
}

// NewStrikeMap sorts the strikes by price.
func NewStrikeMap(strikes ...Strike) StrikeMap {
	sorted := make([]Strike, len(strikes))
	copy(sorted, strikes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })
	return StrikeMap{strikes: sorted}
}

// Strikes returns the strikes in ascending price order.
func (m StrikeMap) Strikes() []Strike {
	return m.strikes
}

// Len returns the number of strikes.
func (m StrikeMap) Len() int {
	return len(m.strikes)
}

// Lookup finds the strike whose price is within StrikeEpsilon of price.
func (m StrikeMap) Lookup(price float64) (Strike, bool) {
	i := sort.Search(len(m.strikes), func(i int) bool {
		return m.strikes[i].Price >= price-StrikeEpsilon
	})
	if i < len(m.strikes) && math.Abs(m.strikes[i].Price-price) <= StrikeEpsilon {
		return m.strikes[i], true
	}
	return Strike{}, false
}

// Expiration is one expiration bucket of the chain.
type Expiration struct {
	Key     string
	Date    string
	DTE     int
	Strikes StrikeMap
}

// Chain is the option chain for one underlying.
type Chain struct {
	Symbol          string
	UnderlyingPrice float64
	Puts            []Expiration
	Calls           []Expiration
}

// ParseExpirationKey splits an expiration key of the form "YYYY-MM-DD:DTE".
func ParseExpirationKey(key string) (date string, dte int, err error) {
	date, rawDTE, ok := strings.Cut(key, ":")
	if !ok {
		return "", 0, fmt.Errorf("invalid expiration key %q: missing days to expiration", key)
	}
	dte, err = strconv.Atoi(rawDTE)
	if err != nil {
		return "", 0, fmt.Errorf("invalid expiration key %q: %w", key, err)
	}
	return date, dte, nil
}

// FromAPI converts the chains endpoint response into a Chain.
func FromAPI(resp *tdapi.OptionChain) (*Chain, error) {
	puts, err := convertExpirations(resp.PutExpDateMap)
	if err != nil {
		return nil, fmt.Errorf("put chain: %w", err)
	}
	calls, err := convertExpirations(resp.CallExpDateMap)
	if err != nil {
		return nil, fmt.Errorf("call chain: %w", err)
	}

	return &Chain{
		Symbol:          resp.Symbol,
		UnderlyingPrice: resp.UnderlyingPrice,
		Puts:            puts,
		Calls:           calls,
	}, nil
}

// convertExpirations orders the buckets by key, which for ISO dates is the
// order the API lists them in.
func convertExpirations(m tdapi.ExpDateMap) ([]Expiration, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	exps := make([]Expiration, 0, len(keys))
	for _, key := range keys {
		date, dte, err := ParseExpirationKey(key)
		if err != nil {
			return nil, err
		}

		strikes := make([]Strike, 0, len(m[key]))
		for rawStrike, contracts := range m[key] {
			price, err := strconv.ParseFloat(strings.TrimSpace(rawStrike), 64)
			if err != nil {
				return nil, fmt.Errorf("expiration %s: invalid strike %q: %w", key, rawStrike, err)
			}
			strikes = append(strikes, Strike{Price: price, Contracts: convertContracts(contracts)})
		}

		exps = append(exps, Expiration{
			Key:     key,
			Date:    date,
			DTE:     dte,
			Strikes: NewStrikeMap(strikes...),
		})
	}
	return exps, nil
}

func convertContracts(in []tdapi.OptionContract) []Contract {
	out := make([]Contract, 0, len(in))
	for _, c := range in {
		out = append(out, Contract{
			Side:           Side(strings.ToUpper(c.PutCall)),
			Symbol:         c.Symbol,
			Description:    c.Description,
			Bid:            c.Bid,
			Ask:            c.Ask,
			StrikePrice:    c.StrikePrice,
			DTE:            c.DaysToExpiration,
			SettlementType: c.SettlementType,
		})
	}
	return out
}
