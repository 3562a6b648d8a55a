package docparser_test

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askbase-ai/askbase-ai/pkg/docparser"
)

func TestSupported(t *testing.T) {
	assert.True(t, docparser.Supported("txt"))
	assert.True(t, docparser.Supported(".PDF"))
	assert.True(t, docparser.Supported("docx"))
	assert.False(t, docparser.Supported("exe"))
}

func TestParseText(t *testing.T) {
	out, err := docparser.Parse("txt", []byte("plain content"))
	require.NoError(t, err)
	assert.Equal(t, "plain content", out)
}

func TestParseTextWithBOM(t *testing.T) {
	out, err := docparser.Parse("md", append([]byte{0xEF, 0xBB, 0xBF}, []byte("# title")...))
	require.NoError(t, err)
	assert.Equal(t, "# title", out)
}

func TestParseUnknownType(t *testing.T) {
	_, err := docparser.Parse("exe", []byte("MZ"))
	assert.Error(t, err)
}

func TestLegacyOfficeFormatsNotSupported(t *testing.T) {
	for _, ext := range []string{"doc", "xls", "ppt"} {
		assert.False(t, docparser.Supported(ext), ext)
	}

	// OLE compound document header, not a zip archive
	ole := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	_, err := docparser.Parse("doc", ole)
	assert.Error(t, err)
}

func TestParseWord(t *testing.T) {
	raw := buildZip(t, map[string]string{
		"word/document.xml": `<?xml version="1.0"?><w:document xmlns:w="ns"><w:body><w:p><w:r><w:t>first run</w:t></w:r><w:r><w:t>second run</w:t></w:r></w:p></w:body></w:document>`,
	})

	out, err := docparser.Parse("docx", raw)
	require.NoError(t, err)
	assert.Contains(t, out, "first run")
	assert.Contains(t, out, "second run")
}

func TestParsePowerPointReadsAllSlides(t *testing.T) {
	raw := buildZip(t, map[string]string{
		"ppt/slides/slide1.xml": `<p:sld xmlns:a="ns" xmlns:p="ns2"><a:t>slide one</a:t></p:sld>`,
		"ppt/slides/slide2.xml": `<p:sld xmlns:a="ns" xmlns:p="ns2"><a:t>slide two</a:t></p:sld>`,
	})

	out, err := docparser.Parse("pptx", raw)
	require.NoError(t, err)
	assert.Contains(t, out, "slide one")
	assert.Contains(t, out, "slide two")
}

func TestParseWordMissingPart(t *testing.T) {
	raw := buildZip(t, map[string]string{"other.xml": "<a/>"})
	_, err := docparser.Parse("docx", raw)
	assert.Error(t, err)
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
