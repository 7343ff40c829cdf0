package schwab

import "github.com/shopspring/decimal"

// =============================================================================
// Account Types
// =============================================================================

// AccountNumber pairs a plain account number with the hash used in paths.
type AccountNumber struct {
	AccountNumber string `json:"accountNumber"`
	HashValue     string `json:"hashValue"`
}

// Account wraps a securities account as returned by /accounts.
type Account struct {
	SecuritiesAccount SecuritiesAccount `json:"securitiesAccount"`
}

// SecuritiesAccount holds balances and, when requested, positions.
type SecuritiesAccount struct {
	Type                    string     `json:"type"`
	AccountNumber           string     `json:"accountNumber"`
	RoundTrips              int        `json:"roundTrips"`
	IsDayTrader             bool       `json:"isDayTrader"`
	IsClosingOnlyRestricted bool       `json:"isClosingOnlyRestricted"`
	PfcbFlag                bool       `json:"pfcbFlag"`
	Positions               []Position `json:"positions,omitempty"`
	InitialBalances         Balances   `json:"initialBalances"`
	CurrentBalances         Balances   `json:"currentBalances"`
	ProjectedBalances       Balances   `json:"projectedBalances"`
}

// Balances is the subset of balance fields shared by cash and margin accounts.
type Balances struct {
	AccruedInterest    decimal.Decimal `json:"accruedInterest"`
	CashBalance        decimal.Decimal `json:"cashBalance"`
	AvailableFunds     decimal.Decimal `json:"availableFunds"`
	BuyingPower        decimal.Decimal `json:"buyingPower"`
	LiquidationValue   decimal.Decimal `json:"liquidationValue"`
	LongMarketValue    decimal.Decimal `json:"longMarketValue"`
	ShortMarketValue   decimal.Decimal `json:"shortMarketValue"`
	MoneyMarketFund    decimal.Decimal `json:"moneyMarketFund"`
	Equity             decimal.Decimal `json:"equity"`
	MaintenanceRequire decimal.Decimal `json:"maintenanceRequirement"`
}

// Position is a holding in an account. Long and short sizes are reported
// separately.
type Position struct {
	ShortQuantity                  decimal.Decimal    `json:"shortQuantity"`
	AveragePrice                   decimal.Decimal    `json:"averagePrice"`
	CurrentDayProfitLoss           decimal.Decimal    `json:"currentDayProfitLoss"`
	CurrentDayProfitLossPercentage decimal.Decimal    `json:"currentDayProfitLossPercentage"`
	LongQuantity                   decimal.Decimal    `json:"longQuantity"`
	SettledLongQuantity            decimal.Decimal    `json:"settledLongQuantity"`
	SettledShortQuantity           decimal.Decimal    `json:"settledShortQuantity"`
	MarketValue                    decimal.Decimal    `json:"marketValue"`
	MaintenanceRequirement         decimal.Decimal    `json:"maintenanceRequirement"`
	Instrument                     PositionInstrument `json:"instrument"`
}

// PositionInstrument identifies what a position holds.
type PositionInstrument struct {
	AssetType        string  `json:"assetType"`
	Cusip            string  `json:"cusip"`
	Symbol           string  `json:"symbol"`
	Description      string  `json:"description"`
	NetChange        float64 `json:"netChange"`
	Type             string  `json:"type"`
	PutCall          string  `json:"putCall,omitempty"`
	UnderlyingSymbol string  `json:"underlyingSymbol,omitempty"`
}

// =============================================================================
// Quote Types
// =============================================================================

// QuoteResponse is one entry of the quotes map, keyed by symbol.
type QuoteResponse struct {
	AssetMainType string     `json:"assetMainType"`
	AssetSubType  string     `json:"assetSubType"`
	QuoteType     string     `json:"quoteType"`
	Realtime      bool       `json:"realtime"`
	Ssid          int64      `json:"ssid"`
	Symbol        string     `json:"symbol"`
	Quote         *QuoteData `json:"quote,omitempty"`
	Reference     *Reference `json:"reference,omitempty"`
}

// QuoteData holds the live quote fields.
type QuoteData struct {
	WeekHigh52       float64 `json:"52WeekHigh"`
	WeekLow52        float64 `json:"52WeekLow"`
	AskPrice         float64 `json:"askPrice"`
	AskSize          int64   `json:"askSize"`
	BidPrice         float64 `json:"bidPrice"`
	BidSize          int64   `json:"bidSize"`
	ClosePrice       float64 `json:"closePrice"`
	HighPrice        float64 `json:"highPrice"`
	LastPrice        float64 `json:"lastPrice"`
	LastSize         int64   `json:"lastSize"`
	LowPrice         float64 `json:"lowPrice"`
	Mark             float64 `json:"mark"`
	NetChange        float64 `json:"netChange"`
	NetPercentChange float64 `json:"netPercentChange"`
	OpenPrice        float64 `json:"openPrice"`
	QuoteTime        int64   `json:"quoteTime"`
	TotalVolume      int64   `json:"totalVolume"`
	TradeTime        int64   `json:"tradeTime"`
	Volatility       float64 `json:"volatility,omitempty"`
	OpenInterest     int64   `json:"openInterest,omitempty"`
	Delta            float64 `json:"delta,omitempty"`
}

// Reference holds static instrument data attached to a quote.
type Reference struct {
	Cusip          string  `json:"cusip"`
	Description    string  `json:"description"`
	Exchange       string  `json:"exchange"`
	ExchangeName   string  `json:"exchangeName"`
	ContractType   string  `json:"contractType,omitempty"`
	StrikePrice    float64 `json:"strikePrice,omitempty"`
	ExpirationDay  int     `json:"expirationDay,omitempty"`
	ExpirationMon  int     `json:"expirationMonth,omitempty"`
	ExpirationYear int     `json:"expirationYear,omitempty"`
	Underlying     string  `json:"underlying,omitempty"`
}

// QuoteErrors lists symbols the quotes endpoint could not resolve.
type QuoteErrors struct {
	InvalidSymbols []string `json:"invalidSymbols"`
	InvalidCusips  []string `json:"invalidCusips"`
	InvalidSSIDs   []int64  `json:"invalidSSIDs"`
}

// =============================================================================
// Option Types
// =============================================================================

// ExpirationChain lists the available expirations for an underlying.
type ExpirationChain struct {
	Status         string       `json:"status"`
	ExpirationList []Expiration `json:"expirationList"`
}

// Expiration is one expiration date of an underlying's option series.
type Expiration struct {
	ExpirationDate   string `json:"expirationDate"`
	DaysToExpiration int    `json:"daysToExpiration"`
	ExpirationType   string `json:"expirationType"`
	SettlementType   string `json:"settlementType"`
	OptionRoots      string `json:"optionRoots"`
	Standard         bool   `json:"standard"`
}

// ExpDateMap maps "<yyyy-MM-dd>:<days to expiration>" to strike-price strings
// to the contracts at that strike (normally exactly one).
type ExpDateMap map[string]map[string][]OptionContract

// OptionChain is the payload of the chains endpoint.
type OptionChain struct {
	Symbol            string      `json:"symbol"`
	Status            string      `json:"status"`
	Underlying        *Underlying `json:"underlying,omitempty"`
	Strategy          string      `json:"strategy"`
	Interval          float64     `json:"interval"`
	IsDelayed         bool        `json:"isDelayed"`
	IsIndex           bool        `json:"isIndex"`
	InterestRate      float64     `json:"interestRate"`
	UnderlyingPrice   float64     `json:"underlyingPrice"`
	Volatility        float64     `json:"volatility"`
	DaysToExpiration  float64     `json:"daysToExpiration"`
	NumberOfContracts int         `json:"numberOfContracts"`
	CallExpDateMap    ExpDateMap  `json:"callExpDateMap"`
	PutExpDateMap     ExpDateMap  `json:"putExpDateMap"`
}

// Underlying describes the underlying instrument of a chain.
type Underlying struct {
	Symbol      string  `json:"symbol"`
	Description string  `json:"description"`
	Last        float64 `json:"last"`
	Mark        float64 `json:"mark"`
	Bid         float64 `json:"bid"`
	Ask         float64 `json:"ask"`
	Change      float64 `json:"change"`
	TotalVolume int64   `json:"totalVolume"`
}

// OptionContract is one leg (call or put) at one strike and expiration.
type OptionContract struct {
	PutCall                string  `json:"putCall"`
	Symbol                 string  `json:"symbol"`
	Description            string  `json:"description"`
	ExchangeName           string  `json:"exchangeName"`
	Bid                    float64 `json:"bid"`
	Ask                    float64 `json:"ask"`
	Last                   float64 `json:"last"`
	Mark                   float64 `json:"mark"`
	BidSize                int64   `json:"bidSize"`
	AskSize                int64   `json:"askSize"`
	LastSize               int64   `json:"lastSize"`
	HighPrice              float64 `json:"highPrice"`
	LowPrice               float64 `json:"lowPrice"`
	OpenPrice              float64 `json:"openPrice"`
	ClosePrice             float64 `json:"closePrice"`
	TotalVolume            int64   `json:"totalVolume"`
	NetChange              float64 `json:"netChange"`
	Volatility             float64 `json:"volatility"`
	Delta                  float64 `json:"delta"`
	Gamma                  float64 `json:"gamma"`
	Theta                  float64 `json:"theta"`
	Vega                   float64 `json:"vega"`
	Rho                    float64 `json:"rho"`
	OpenInterest           int64   `json:"openInterest"`
	TimeValue              float64 `json:"timeValue"`
	TheoreticalOptionValue float64 `json:"theoreticalOptionValue"`
	StrikePrice            float64 `json:"strikePrice"`
	ExpirationDate         string  `json:"expirationDate"`
	DaysToExpiration       int     `json:"daysToExpiration"`
	ExpirationType         string  `json:"expirationType"`
	Multiplier             float64 `json:"multiplier"`
	IntrinsicValue         float64 `json:"intrinsicValue"`
	ExtrinsicValue         float64 `json:"extrinsicValue"`
	InTheMoney             bool    `json:"inTheMoney"`
	OptionRoot             string  `json:"optionRoot"`
}

// =============================================================================
// Price History Types
// =============================================================================

// PriceHistory is the payload of the pricehistory endpoint.
type PriceHistory struct {
	Symbol            string   `json:"symbol"`
	Empty             bool     `json:"empty"`
	PreviousClose     float64  `json:"previousClose"`
	PreviousCloseDate int64    `json:"previousCloseDate"`
	Candles           []Candle `json:"candles"`
}

// Candle is one OHLCV bar. Datetime is epoch milliseconds.
type Candle struct {
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   int64   `json:"volume"`
	Datetime int64   `json:"datetime"`
}
