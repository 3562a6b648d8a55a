package docparser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Office Open XML formats are zip archives of XML parts. No library in
// the ecosystem extracts plain text from all three formats without
// external binaries, so the text runs are pulled straight out of the
// relevant parts here. Legacy OLE binaries (.doc/.xls/.ppt) are not
// zip archives and stay unsupported; uploads keep them as stored files
// without an indexable item.

// WordParser reads text runs (<w:t>) from word/document.xml.
type WordParser struct{}

func (p *WordParser) Exts() []string {
	return []string{"docx"}
}

func (p *WordParser) Parse(raw []byte) (string, error) {
	return extractZipXMLText(raw, func(name string) bool {
		return name == "word/document.xml"
	}, "t", "\n")
}

// ExcelParser reads the shared string table; cell values referencing it
// cover the text content of a workbook.
type ExcelParser struct{}

func (p *ExcelParser) Exts() []string {
	return []string{"xlsx"}
}

func (p *ExcelParser) Parse(raw []byte) (string, error) {
	return extractZipXMLText(raw, func(name string) bool {
		return name == "xl/sharedStrings.xml"
	}, "t", "\n")
}

// PowerPointParser reads text runs (<a:t>) from every slide part.
type PowerPointParser struct{}

func (p *PowerPointParser) Exts() []string {
	return []string{"pptx"}
}

func (p *PowerPointParser) Parse(raw []byte) (string, error) {
	return extractZipXMLText(raw, func(name string) bool {
		return strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml")
	}, "t", "\n")
}

func extractZipXMLText(raw []byte, match func(name string) bool, textTag, sep string) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("failed to open office document, %w", err)
	}

	var parts []*zip.File
	for _, f := range zr.File {
		if match(f.Name) {
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("office document has no readable text part")
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Name < parts[j].Name })

	var sb strings.Builder
	for _, part := range parts {
		rc, err := part.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open part %s, %w", part.Name, err)
		}
		if err := collectTextRuns(rc, textTag, sep, &sb); err != nil {
			rc.Close()
			return "", fmt.Errorf("failed to parse part %s, %w", part.Name, err)
		}
		rc.Close()
	}

	return sb.String(), nil
}

func collectTextRuns(r io.Reader, textTag, sep string, sb *strings.Builder) error {
	decoder := xml.NewDecoder(r)
	inText := 0
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == textTag {
				inText++
			}
		case xml.EndElement:
			if t.Name.Local == textTag && inText > 0 {
				inText--
				sb.WriteString(sep)
			}
		case xml.CharData:
			if inText > 0 {
				sb.Write(t)
			}
		}
	}
}
