package tdapi

// Quote is the quote object for a single symbol.
type Quote struct {
	Symbol      string  `json:"symbol"`
	Description string  `json:"description"`
	BidPrice    float64 `json:"bidPrice"`
	AskPrice    float64 `json:"askPrice"`
	LastPrice   float64 `json:"lastPrice"`
	Mark        float64 `json:"mark"`
	TotalVolume int64   `json:"totalVolume"`
}

// QuotesResponse maps a symbol to its quote.
type QuotesResponse map[string]Quote

// StrikeRange filters the strikes returned in an option chain.
type StrikeRange string

// Strike ranges accepted by the chains endpoint.
const (
	RangeAll StrikeRange = "ALL"
	RangeITM StrikeRange = "ITM"
	RangeNTM StrikeRange = "NTM"
	RangeOTM StrikeRange = "OTM"
)

// OptionType filters standard versus non-standard contracts.
type OptionType string

const (
	OptionTypeStandard    OptionType = "S"
	OptionTypeNonStandard OptionType = "NS"
	OptionTypeAll         OptionType = "ALL"
)

// ContractType filters puts, calls or both.
type ContractType string

const (
	ContractTypeAll  ContractType = "ALL"
	ContractTypePut  ContractType = "PUT"
	ContractTypeCall ContractType = "CALL"
)

// OptionChainRequest holds the query for the chains endpoint.
type OptionChainRequest struct {
	Symbol       string
	ContractType ContractType
	StrikeRange  StrikeRange
	OptionType   OptionType
	FromDate     string // YYYY-MM-DD
	ToDate       string // YYYY-MM-DD
}

// OptionContract is one contract as returned inside an expiration map.
type OptionContract struct {
	PutCall          string  `json:"putCall"`
	Symbol           string  `json:"symbol"`
	Description      string  `json:"description"`
	Bid              float64 `json:"bid"`
	Ask              float64 `json:"ask"`
	StrikePrice      float64 `json:"strikePrice"`
	DaysToExpiration int     `json:"daysToExpiration"`
	SettlementType   string  `json:"settlementType"`
}

// StrikeMap maps a string-encoded strike price (e.g. "105.0") to the
// contracts at that strike.
type StrikeMap map[string][]OptionContract

// ExpDateMap maps an expiration key ("YYYY-MM-DD:DTE") to its strikes.
type ExpDateMap map[string]StrikeMap

// OptionChain is the chains endpoint response.
type OptionChain struct {
	Symbol          string     `json:"symbol"`
	Status          string     `json:"status"`
	UnderlyingPrice float64    `json:"underlyingPrice"`
	PutExpDateMap   ExpDateMap `json:"putExpDateMap"`
	CallExpDateMap  ExpDateMap `json:"callExpDateMap"`
}
