package export

import (
	"github.com/parquet-go/parquet-go"

	"github.com/jonandersen/schwab/pkg/chain"
)

// ParquetSaver writes the rows as a Parquet file.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(rows chain.Rows, path string) error {
	return parquet.WriteFile(path, []chain.Row(rows))
}
