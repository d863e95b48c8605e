package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/KaramelBytes/spendboard/internal/analysis"
)

type delimitedParser struct{}

func (delimitedParser) Name() string { return "delimited" }

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads comma, semicolon, tab or pipe separated text with a header row.
// Binary content is rejected so a workbook the spreadsheet reader could not
// open never turns into garbage columns.
func (delimitedParser) Parse(name string, content []byte, opt analysis.Options) (*analysis.Table, error) {
	if bytes.IndexByte(content, 0) >= 0 || !utf8.Valid(content) {
		return nil, errors.New("binary content")
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = sniffDelimiter(content)

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no columns to parse")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		if len(rec) > ncol {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("expected %d fields in line %d, saw %d", ncol, line, len(rec))
		}
		rows = append(rows, rec)
	}
	return analysis.NewTable(name, header, rows, opt), nil
}

// sniffDelimiter picks the candidate separator that occurs most often in the
// header line, ignoring quoted sections. Defaults to comma.
func sniffDelimiter(content []byte) rune {
	line := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}
	counts := map[rune]int{}
	inQuote := false
	for _, c := range string(line) {
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == ',' || c == ';' || c == '\t' || c == '|':
			counts[c]++
		}
	}
	best, bestN := ',', 0
	for _, c := range []rune{',', ';', '\t', '|'} {
		if counts[c] > bestN {
			best, bestN = c, counts[c]
		}
	}
	return best
}
