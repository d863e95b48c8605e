package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/spendboard/internal/analysis"
)

// TableParser turns raw file content into a Table.
type TableParser interface {
	Name() string
	Parse(name string, content []byte, opt analysis.Options) (*analysis.Table, error)
}

var registry []TableParser

// Register adds a parser implementation to the registry. Parsers are attempted
// in registration order.
func Register(p TableParser) {
	registry = append(registry, p)
}

// Parsers returns the registered parsers in attempt order.
func Parsers() []TableParser {
	out := make([]TableParser, len(registry))
	copy(out, registry)
	return out
}

// ParseFile loads path as a Table. The extension is not trusted: every
// registered parser is attempted in order and the first success wins.
func ParseFile(path string, opt analysis.Options) (*analysis.Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Path: path, Op: "stat", Err: ErrNotFound}
		}
		return nil, &LoadError{Path: path, Op: "stat", Err: ErrUnreadable, Cause: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Op: "read", Err: ErrUnreadable, Cause: err}
	}
	t, err := ParseBytes(filepath.Base(path), data, opt)
	if err != nil {
		return nil, &LoadError{Path: path, Op: "parse", Err: ErrUnreadable, Cause: err}
	}
	return t, nil
}

// ParseBytes runs content through every registered parser and returns the first
// table produced. The returned error joins each parser's failure.
func ParseBytes(name string, content []byte, opt analysis.Options) (*analysis.Table, error) {
	var errs []error
	for _, p := range registry {
		t, err := p.Parse(name, content, opt)
		if err == nil {
			return t, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	if len(errs) == 0 {
		return nil, errors.New("no parsers registered")
	}
	return nil, errors.Join(errs...)
}

func init() {
	// Spreadsheet first, delimited text as the fallback.
	Register(spreadsheetParser{})
	Register(delimitedParser{})
}
