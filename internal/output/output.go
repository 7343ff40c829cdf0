// Package output renders tabular results as aligned text, JSON or CSV.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/jonandersen/schwab/pkg/table"
)

// Mode selects the output encoding.
type Mode int

const (
	ModeText Mode = iota
	ModeJSON
	ModeCSV
)

// ParseMode maps a --format flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "table":
		return ModeText, nil
	case "json":
		return ModeJSON, nil
	case "csv":
		return ModeCSV, nil
	default:
		return ModeText, fmt.Errorf("unsupported output format %q (use: table, json, csv)", s)
	}
}

// Formatter handles output formatting.
type Formatter struct {
	Writer io.Writer
	Mode   Mode
}

// New creates a new Formatter with the specified writer and mode.
func New(w io.Writer, mode Mode) *Formatter {
	return &Formatter{
		Writer: w,
		Mode:   mode,
	}
}

// Render writes t in the formatter's mode.
func (f *Formatter) Render(t *table.Table) error {
	return f.Table(t.Headers, t.Rows)
}

// Table outputs headers and rows in the formatter's mode. In JSON mode each
// row becomes an object keyed by header.
func (f *Formatter) Table(headers []string, rows [][]string) error {
	switch f.Mode {
	case ModeJSON:
		return f.tableAsJSON(headers, rows)
	case ModeCSV:
		return f.tableAsCSV(headers, rows)
	default:
		return f.tableAsText(headers, rows)
	}
}

// tableAsText renders a table with aligned columns.
func (f *Formatter) tableAsText(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
		return err
	}

	separators := make([]string, len(headers))
	for i, h := range headers {
		separators[i] = strings.Repeat("-", len(h))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(separators, "\t")); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func (f *Formatter) tableAsJSON(headers []string, rows [][]string) error {
	result := make([]map[string]string, 0, len(rows))

	for _, row := range rows {
		obj := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				obj[header] = row[i]
			} else {
				obj[header] = ""
			}
		}
		result = append(result, obj)
	}

	return f.encodeJSON(result)
}

func (f *Formatter) tableAsCSV(headers []string, rows [][]string) error {
	w := csv.NewWriter(f.Writer)
	if err := w.Write(headers); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

// Print outputs data as pretty-printed JSON in JSON mode and with %v
// otherwise.
func (f *Formatter) Print(data any) error {
	if f.Mode == ModeJSON {
		return f.encodeJSON(data)
	}

	_, err := fmt.Fprintf(f.Writer, "%v\n", data)
	return err
}

func (f *Formatter) encodeJSON(data any) error {
	encoder := json.NewEncoder(f.Writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// FormatVolume renders share or contract counts with thousands separators.
func FormatVolume(v int64) string {
	return humanize.Comma(v)
}

// FormatMoney renders an amount with two decimals and thousands separators.
func FormatMoney(d decimal.Decimal) string {
	rounded := d.Round(2)
	whole, frac, _ := strings.Cut(rounded.Abs().StringFixed(2), ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return rounded.StringFixed(2)
	}
	out := humanize.Comma(n) + "." + frac
	if rounded.IsNegative() {
		out = "-" + out
	}
	return out
}

// FormatPrice renders a price with two decimals.
func FormatPrice(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
