package contract

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jonandersen/schwab/pkg/schwab"
	"github.com/jonandersen/schwab/pkg/table"
)

// Position is an account holding under internal names, with long and short
// sizes folded into one signed quantity.
type Position struct {
	Account      string           `json:"account"`
	Symbol       string           `json:"symbol"`
	AssetType    string           `json:"assetType"`
	Quantity     decimal.Decimal  `json:"quantity"`
	AveragePrice decimal.Decimal  `json:"averagePrice"`
	MarketValue  decimal.Decimal  `json:"marketValue"`
	DayPL        decimal.Decimal  `json:"dayPL"`
	Expiry       *time.Time       `json:"expiry,omitempty"`
	Strike       *decimal.Decimal `json:"strike,omitempty"`
}

// Positions flattens the positions of every account. Expiry and strike are
// set only for symbols that carry a contract specification.
func Positions(accounts []schwab.Account) []Position {
	var out []Position
	for _, a := range accounts {
		for _, p := range a.SecuritiesAccount.Positions {
			pos := Position{
				Account:      a.SecuritiesAccount.AccountNumber,
				Symbol:       p.Instrument.Symbol,
				AssetType:    p.Instrument.AssetType,
				Quantity:     p.LongQuantity.Sub(p.ShortQuantity),
				AveragePrice: p.AveragePrice,
				MarketValue:  p.MarketValue,
				DayPL:        p.CurrentDayProfitLoss,
			}
			if spec, ok := ParseSpec(p.Instrument.Symbol); ok {
				pos.Expiry = &spec.Expiry
				pos.Strike = &spec.Strike
			}
			out = append(out, pos)
		}
	}
	return out
}

// PositionHeaders lists the columns produced by PositionsTable.
var PositionHeaders = []string{
	"account", "symbol", "assetType", "quantity", "averagePrice", "marketValue", "dayPL", "expiry", "strike",
}

// PositionsTable renders positions as a string grid.
func PositionsTable(positions []Position) *table.Table {
	t := table.New(PositionHeaders...)
	for _, p := range positions {
		var expiry, strike string
		if p.Expiry != nil {
			expiry = p.Expiry.Format(ExpiryLayout)
		}
		if p.Strike != nil {
			strike = p.Strike.String()
		}
		t.Append(
			p.Account,
			p.Symbol,
			p.AssetType,
			p.Quantity.String(),
			p.AveragePrice.StringFixed(2),
			p.MarketValue.StringFixed(2),
			p.DayPL.StringFixed(2),
			expiry,
			strike,
		)
	}
	return t
}
