// Package contract extracts expiry, side and strike from compact option
// symbols such as "AAPL  240621C00150000".
package contract

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jonandersen/schwab/pkg/table"
)

// ExpiryLayout is how expiries are rendered in enriched tables.
const ExpiryLayout = "02-Jan-06"

var specPattern = regexp.MustCompile(`(\d{6})([CPS])(\d{8})`)

// Side is the one-letter side code embedded in the symbol.
type Side string

const (
	SideCall  Side = "C"
	SidePut   Side = "P"
	SideOther Side = "S"
)

// Spec is the contract specification carried by an option symbol.
type Spec struct {
	Expiry time.Time
	Side   Side
	Strike decimal.Decimal
}

// ExpiryString formats the expiry as 21-Jun-24.
func (s Spec) ExpiryString() string {
	return s.Expiry.Format(ExpiryLayout)
}

// ParseSpec finds the first date/side/strike group in symbol. It reports
// false when the symbol carries no such group.
func ParseSpec(symbol string) (Spec, bool) {
	m := specPattern.FindStringSubmatch(symbol)
	if m == nil {
		return Spec{}, false
	}
	expiry, err := time.Parse("060102", m[1])
	if err != nil {
		return Spec{}, false
	}
	strike, err := decimal.NewFromString(m[3])
	if err != nil {
		return Spec{}, false
	}
	return Spec{
		Expiry: expiry,
		Side:   Side(m[2]),
		Strike: strike.Shift(-3),
	}, true
}

// Annotate adds expiry and strikePrice columns derived from the symbols in
// column. Rows whose symbol does not parse get empty cells.
func Annotate(t *table.Table, column string) error {
	idx := t.Column(column)
	if idx < 0 {
		return &MissingColumnError{Column: column}
	}

	if err := t.AddColumn("expiry", func(row []string) string {
		if spec, ok := ParseSpec(row[idx]); ok {
			return spec.ExpiryString()
		}
		return ""
	}); err != nil {
		return err
	}
	return t.AddColumn("strikePrice", func(row []string) string {
		if spec, ok := ParseSpec(row[idx]); ok {
			return spec.Strike.String()
		}
		return ""
	})
}

// MissingColumnError is returned when the symbol column is not in the table.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return "no column named " + e.Column
}
