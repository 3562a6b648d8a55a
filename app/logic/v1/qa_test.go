package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/askbase-ai/askbase-ai/pkg/types"
)

func TestRetrievalPlan(t *testing.T) {
	// the owner's override always wins
	maxResults, tooLong := retrievalPlan(5, 0, true)
	assert.Equal(t, 5, maxResults)
	assert.False(t, tooLong)

	// no override, the derived budget applies
	maxResults, tooLong = retrievalPlan(0, 3, true)
	assert.Equal(t, 3, maxResults)
	assert.False(t, tooLong)

	// question fills the whole input window: strict bases fail before
	// the model is called
	maxResults, tooLong = retrievalPlan(0, 0, true)
	assert.Equal(t, 0, maxResults)
	assert.True(t, tooLong)

	// non-strict bases fall through to an unaugmented call instead
	maxResults, tooLong = retrievalPlan(0, 0, false)
	assert.Equal(t, 0, maxResults)
	assert.False(t, tooLong)
}

func TestSumLedgerPairs(t *testing.T) {
	prompt, answer := sumLedgerPairs([]string{"10", "20", "5", "7"})
	assert.Equal(t, 15, prompt)
	assert.Equal(t, 27, answer)

	// unreadable entries are skipped, positions still alternate
	prompt, answer = sumLedgerPairs([]string{"10", "x", "3"})
	assert.Equal(t, 13, prompt)
	assert.Equal(t, 0, answer)
}

func TestPromptTokenText(t *testing.T) {
	question := "what is a widget?"

	// unaugmented call: the question is the whole input, counted once
	assert.Equal(t, question, promptTokenText(question, question))

	// augmented call: system prompt plus the question
	system := "Below is the reference content..."
	assert.Equal(t, system+question, promptTokenText(system, question))
}

func TestCanOperateQaRecord(t *testing.T) {
	record := &types.KnowledgeBaseQaRecord{UserID: "owner"}

	assert.True(t, canOperateQaRecord(record, "owner", false))
	assert.False(t, canOperateQaRecord(record, "intruder", false))
	assert.True(t, canOperateQaRecord(record, "intruder", true))
}
