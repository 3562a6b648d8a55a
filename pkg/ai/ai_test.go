package ai_test

import (
	"context"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askbase-ai/askbase-ai/pkg/ai"
)

func TestMaxRetrieveResults(t *testing.T) {
	n, err := ai.MaxRetrieveResults("what is the refund policy?", "gpt-4o-mini", 2048, 512)
	require.NoError(t, err)
	assert.Greater(t, n, 0)
	assert.LessOrEqual(t, n, 2048/512)
}

func TestMaxRetrieveResultsQuestionFillsWindow(t *testing.T) {
	question := strings.Repeat("refund policy details ", 300)
	n, err := ai.MaxRetrieveResults(question, "gpt-4o-mini", 100, 512)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMaxRetrieveResultsInvalidPieceSize(t *testing.T) {
	_, err := ai.MaxRetrieveResults("q", "gpt-4o-mini", 2048, 0)
	assert.Error(t, err)
}

func TestBuildMessagesFillsDocsSolt(t *testing.T) {
	opts := ai.NewQueryOptions(context.Background(), nil, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "question"},
	}).
		WithPrompt(ai.ANSWER_PROMPT_EN).
		WithDocs([]string{"piece one", "piece two"}).
		WithVar(ai.PROMPT_VAR_LANG, "English")

	messages := opts.BuildMessages()
	require.Len(t, messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "piece one")
	assert.Contains(t, messages[0].Content, "piece two")
	assert.Contains(t, messages[0].Content, "English")
	assert.NotContains(t, messages[0].Content, "{solt}")
	assert.NotContains(t, messages[0].Content, "{lang}")
	assert.Equal(t, "question", messages[1].Content)
}

func TestBuildMessagesWithoutPromptPassesThrough(t *testing.T) {
	query := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "raw question"},
	}
	messages := ai.NewQueryOptions(context.Background(), nil, query).BuildMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "raw question", messages[0].Content)
}

func TestNumTokens(t *testing.T) {
	n, err := ai.NumTokens([]openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "hello there"},
	}, "gpt-4o-mini")
	require.NoError(t, err)
	assert.Greater(t, n, 0)
}
