package docparser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askbase-ai/askbase-ai/pkg/docparser"
)

func TestSplitShortText(t *testing.T) {
	chunks := docparser.Split("hello world", 600, 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplitRespectsChunkSize(t *testing.T) {
	text := strings.Repeat("这是一个完整的句子。", 200)
	chunks := docparser.Split(text, 100, 0)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 100)
	}
}

func TestSplitOverlap(t *testing.T) {
	text := strings.Repeat("sentence one. ", 40)
	chunks := docparser.Split(text, 100, 20)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		// each chunk after the first starts with the previous chunk's tail
		prev := []rune(strings.TrimPrefix(chunks[i-1], ""))
		tail := string(prev[max(0, len(prev)-20):])
		assert.True(t, strings.HasPrefix(chunks[i], tail))
	}
}

func TestSplitDropsEmptyParagraphs(t *testing.T) {
	chunks := docparser.Split("a\n\n\n\nb", 600, 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a\nb", chunks[0])
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
