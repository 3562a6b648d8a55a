package docparser

import (
	"fmt"
	"strings"
)

// Parser extracts plain text from one document format.
type Parser interface {
	// Parse returns the document's text content.
	Parse(raw []byte) (string, error)
	// Exts lists the file extensions (without dot) this parser accepts.
	Exts() []string
}

var parsers = map[string]Parser{}

func register(p Parser) {
	for _, ext := range p.Exts() {
		parsers[ext] = p
	}
}

func init() {
	register(&TextParser{})
	register(&PDFParser{})
	register(&WordParser{})
	register(&ExcelParser{})
	register(&PowerPointParser{})
}

// Supported reports whether files with the given extension can be ingested.
func Supported(ext string) bool {
	_, ok := parsers[normalize(ext)]
	return ok
}

// Parse dispatches to the parser registered for ext.
func Parse(ext string, raw []byte) (string, error) {
	p, ok := parsers[normalize(ext)]
	if !ok {
		return "", fmt.Errorf("no parser registered for file type %q", ext)
	}
	return p.Parse(raw)
}

func normalize(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
