package parser

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// delimitedRecords reads the rows of a CSV or DSV table body.
func delimitedRecords(lines []string, comma rune) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return records, nil
}
