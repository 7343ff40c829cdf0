package export

import (
	"encoding/csv"
	"os"

	"github.com/jonandersen/schwab/pkg/chain"
)

// CSVSaver writes every chain column as CSV with a header row.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(rows chain.Rows, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	t := rows.Table()
	w := csv.NewWriter(f)
	if err := w.Write(t.Headers); err != nil {
		return err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return err
	}
	return f.Close()
}
