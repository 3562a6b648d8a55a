package docparser

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// TextParser handles plain text formats that need no decoding.
type TextParser struct{}

func (p *TextParser) Exts() []string {
	return []string{"txt", "md", "markdown", "csv", "json", "html", "htm", "log"}
}

func (p *TextParser) Parse(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) // BOM
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("text document is not valid utf-8")
	}
	return string(raw), nil
}
