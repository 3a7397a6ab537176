package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVExtractor renders each data row as "header: value" pairs so tabular
// statements stay readable once flattened.
type CSVExtractor struct{}

func (p *CSVExtractor) Extract(r io.ReadSeeker) (string, error) {
	data, err := readAll(r)
	if err != nil {
		return "", err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	headers := records[0]
	var text strings.Builder
	text.WriteString("Columns: " + strings.Join(headers, ", ") + "\n")
	for _, row := range records[1:] {
		cells := make([]string, 0, len(row))
		for j, cell := range row {
			if j < len(headers) && headers[j] != "" {
				cells = append(cells, headers[j]+": "+cell)
			} else {
				cells = append(cells, cell)
			}
		}
		text.WriteString(strings.Join(cells, ", "))
		text.WriteString("\n")
	}

	return strings.TrimSpace(text.String()), nil
}
