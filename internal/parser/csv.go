package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ouslabs/docclass/internal/document"
)

// CSVParser handles CSV files. Each row is rendered as "header: value"
// pairs on one line.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (document.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return document.Document{}, fmt.Errorf("parse csv: %w", err)
	}

	out := document.Document{
		Title:    titleFromFilename(filename),
		Filename: filename,
	}
	if len(records) == 0 {
		return out, nil
	}

	headers := records[0]

	var b strings.Builder
	b.WriteString("Headers: " + strings.Join(headers, ", ") + "\n")
	for _, row := range records[1:] {
		for j, cell := range row {
			if j < len(headers) {
				b.WriteString(headers[j] + ": " + cell)
			} else {
				b.WriteString(cell)
			}
			if j < len(row)-1 {
				b.WriteString(", ")
			}
		}
		b.WriteString("\n")
	}

	out.Text = strings.TrimRight(b.String(), "\n")
	return out, nil
}
