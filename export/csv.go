package export

import (
	"errors"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/csv"
)

// WriteCSV writes the record as comma-separated values at path: a header row
// with the field names, then one line per row. No index column is added.
func WriteCSV(path string, rec arrow.Record) error {
	if rec == nil {
		return errors.New("nil record")
	}

	return writeFile(path, func(out io.Writer) error {
		w := csv.NewWriter(out, rec.Schema(), csv.WithComma(','), csv.WithHeader(true))
		if err := w.Write(rec); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	})
}
