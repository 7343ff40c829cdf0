package chain

import (
	"strconv"

	"github.com/jonandersen/schwab/pkg/table"
)

// Row is one (expiration, strike) pair with both legs side by side.
type Row struct {
	CapturedAt       int64   `json:"captured_at" parquet:"captured_at"` // Unix milliseconds
	Expiration       string  `json:"expiration" parquet:"expiration"`
	ExpirationYear   int     `json:"expiration_year" parquet:"expiration_year"`
	ExpirationMonth  int     `json:"expiration_month" parquet:"expiration_month"`
	ExpirationDay    int     `json:"expiration_day" parquet:"expiration_day"`
	DaysToExpiration int     `json:"days_to_expiration" parquet:"days_to_expiration"`
	Strike           float64 `json:"strike" parquet:"strike"`

	CallSymbol    string  `json:"call_symbol" parquet:"call_symbol"`
	CallRoot      string  `json:"call_root" parquet:"call_root"`
	CallType      string  `json:"call_type" parquet:"call_type"`
	CallStrike    float64 `json:"call_strike" parquet:"call_strike"`
	CallVolume    int64   `json:"call_volume" parquet:"call_volume"`
	CallOI        int64   `json:"call_oi" parquet:"call_oi"`
	CallBid       float64 `json:"call_bid" parquet:"call_bid"`
	CallAsk       float64 `json:"call_ask" parquet:"call_ask"`
	CallLast      float64 `json:"call_last" parquet:"call_last"`
	CallNetChange float64 `json:"call_net_change" parquet:"call_net_change"`
	CallDelta     float64 `json:"call_delta" parquet:"call_delta"`
	CallGamma     float64 `json:"call_gamma" parquet:"call_gamma"`
	CallTheta     float64 `json:"call_theta" parquet:"call_theta"`
	CallVega      float64 `json:"call_vega" parquet:"call_vega"`
	CallRho       float64 `json:"call_rho" parquet:"call_rho"`
	CallIV        float64 `json:"call_iv" parquet:"call_iv"`
	CallITM       float64 `json:"call_itm" parquet:"call_itm"`

	PutSymbol    string  `json:"put_symbol" parquet:"put_symbol"`
	PutRoot      string  `json:"put_root" parquet:"put_root"`
	PutType      string  `json:"put_type" parquet:"put_type"`
	PutStrike    float64 `json:"put_strike" parquet:"put_strike"`
	PutVolume    int64   `json:"put_volume" parquet:"put_volume"`
	PutOI        int64   `json:"put_oi" parquet:"put_oi"`
	PutBid       float64 `json:"put_bid" parquet:"put_bid"`
	PutAsk       float64 `json:"put_ask" parquet:"put_ask"`
	PutLast      float64 `json:"put_last" parquet:"put_last"`
	PutNetChange float64 `json:"put_net_change" parquet:"put_net_change"`
	PutDelta     float64 `json:"put_delta" parquet:"put_delta"`
	PutGamma     float64 `json:"put_gamma" parquet:"put_gamma"`
	PutTheta     float64 `json:"put_theta" parquet:"put_theta"`
	PutVega      float64 `json:"put_vega" parquet:"put_vega"`
	PutRho       float64 `json:"put_rho" parquet:"put_rho"`
	PutIV        float64 `json:"put_iv" parquet:"put_iv"`
	PutITM       float64 `json:"put_itm" parquet:"put_itm"`
}

// Rows is a flattened chain.
type Rows []Row

// Headers lists the columns produced by Rows.Table, in Row field order.
var Headers = []string{
	"captured_at", "expiration", "expiration_year", "expiration_month", "expiration_day",
	"days_to_expiration", "strike",
	"call_symbol", "call_root", "call_type", "call_strike", "call_volume", "call_oi",
	"call_bid", "call_ask", "call_last", "call_net_change",
	"call_delta", "call_gamma", "call_theta", "call_vega", "call_rho", "call_iv", "call_itm",
	"put_symbol", "put_root", "put_type", "put_strike", "put_volume", "put_oi",
	"put_bid", "put_ask", "put_last", "put_net_change",
	"put_delta", "put_gamma", "put_theta", "put_vega", "put_rho", "put_iv", "put_itm",
}

// SummaryHeaders is the subset of Headers shown on a terminal.
var SummaryHeaders = []string{
	"expiration", "strike",
	"call_bid", "call_ask", "call_volume", "call_oi", "call_delta", "call_iv",
	"put_bid", "put_ask", "put_volume", "put_oi", "put_delta", "put_iv",
}

// Table renders the rows as a string grid with every column.
func (rs Rows) Table() *table.Table {
	t := table.New(Headers...)
	for _, r := range rs {
		t.Append(r.cells()...)
	}
	return t
}

func (r Row) cells() []string {
	return []string{
		formatInt(r.CapturedAt), r.Expiration,
		strconv.Itoa(r.ExpirationYear), strconv.Itoa(r.ExpirationMonth), strconv.Itoa(r.ExpirationDay),
		strconv.Itoa(r.DaysToExpiration), formatFloat(r.Strike),

		r.CallSymbol, r.CallRoot, r.CallType, formatFloat(r.CallStrike),
		formatInt(r.CallVolume), formatInt(r.CallOI),
		formatFloat(r.CallBid), formatFloat(r.CallAsk), formatFloat(r.CallLast), formatFloat(r.CallNetChange),
		formatFloat(r.CallDelta), formatFloat(r.CallGamma), formatFloat(r.CallTheta), formatFloat(r.CallVega),
		formatFloat(r.CallRho), formatFloat(r.CallIV), formatFloat(r.CallITM),

		r.PutSymbol, r.PutRoot, r.PutType, formatFloat(r.PutStrike),
		formatInt(r.PutVolume), formatInt(r.PutOI),
		formatFloat(r.PutBid), formatFloat(r.PutAsk), formatFloat(r.PutLast), formatFloat(r.PutNetChange),
		formatFloat(r.PutDelta), formatFloat(r.PutGamma), formatFloat(r.PutTheta), formatFloat(r.PutVega),
		formatFloat(r.PutRho), formatFloat(r.PutIV), formatFloat(r.PutITM),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
