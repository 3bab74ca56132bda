package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/timegrid/internal/timeline"
)

// CSVParser handles CSV and TSV spreadsheet exports. The first row is a
// header; a "type" column carries the element type tag, every other column
// becomes a payload field keyed by its lowercased header.
type CSVParser struct {
	Comma rune // field delimiter, ',' when zero
}

func (p *CSVParser) Parse(r io.Reader, filename string) ([]timeline.Element, error) {
	reader := csv.NewReader(r)
	if p.Comma != 0 {
		reader.Comma = p.Comma
	}
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := make([]string, len(rows[0]))
	typeCol := -1
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
		if headers[i] == "type" {
			typeCol = i
		}
	}
	if typeCol < 0 {
		return nil, fmt.Errorf("parse csv: missing %q column in header row", "type")
	}

	var elements []timeline.Element
	for _, row := range rows[1:] {
		if len(row) <= typeCol {
			continue
		}
		payload := make(map[string]string)
		for j, cell := range row {
			if j == typeCol || j >= len(headers) {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				payload[headers[j]] = cell
			}
		}
		elements = append(elements, timeline.Element{
			Type:    normalizeType(row[typeCol]),
			Payload: payload,
		})
	}

	return elements, nil
}
