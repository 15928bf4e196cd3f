package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/sheetdash-cli/internal/table"
)

// Options tunes how a spreadsheet is decoded into a table.
type Options struct {
	// SheetName selects an XLSX sheet by name (case-insensitive).
	SheetName string
	// SheetIndex is 1-based (Sheet1 == 1) and used when SheetName is empty.
	SheetIndex int
	// Delimiter for CSV. If 0, sniffs among ',', ';', '\t'.
	Delimiter rune
}

// Parser decodes one spreadsheet format into a table.
type Parser interface {
	CanParse(filename string) bool
	Parse(r io.Reader, opt Options) (table.Table, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported spreadsheet format")

// DecodeError reports a file that could not be turned into a table.
type DecodeError struct {
	File string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.File, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Supported reports whether any registered parser accepts filename.
func Supported(filename string) bool {
	return find(filename) != nil
}

// ParseFile opens path and decodes it with the parser matching its extension.
func ParseFile(path string, opt Options) (table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()
	return Parse(filepath.Base(path), f, opt)
}

// Parse decodes r, choosing the parser by name's extension.
func Parse(name string, r io.Reader, opt Options) (table.Table, error) {
	p := find(name)
	if p == nil {
		return nil, &DecodeError{File: name, Err: ErrUnsupported}
	}
	t, err := p.Parse(r, opt)
	if err != nil {
		return nil, &DecodeError{File: name, Err: err}
	}
	return t, nil
}

func find(name string) Parser {
	for _, p := range registry {
		if p.CanParse(name) {
			return p
		}
	}
	return nil
}

func init() {
	Register(xlsxParser{})
	Register(csvParser{})
}
