package utils

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes a header row followed by data rows to w in RFC 4180 form:
// fields containing commas, quotes or newlines are quoted, and embedded double
// quotes are escaped by doubling.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for i, row := range rows {
		if len(row) != len(header) {
			return fmt.Errorf("csv row %d has %d fields, header has %d", i, len(row), len(header))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
