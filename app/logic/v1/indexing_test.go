package v1

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askbase-ai/askbase-ai/pkg/types"
)

func TestIndexStubsDropContent(t *testing.T) {
	batch := []types.KnowledgeBaseItem{
		{ID: 1, UUID: "item-1", KbUUID: "kb-1", SourceFileID: 11, Title: "a", Content: strings.Repeat("x", 1<<16)},
		{ID: 2, UUID: "item-2", KbUUID: "kb-1", SourceFileID: 12, Title: "b", Content: "short"},
	}

	stubs := indexStubs(batch)
	require.Len(t, stubs, 2)
	for i, stub := range stubs {
		assert.Empty(t, stub.Content, "queued items must not carry document text")
		assert.Equal(t, batch[i].ID, stub.ID)
		assert.Equal(t, batch[i].UUID, stub.UUID)
		assert.Equal(t, batch[i].KbUUID, stub.KbUUID)
		assert.Equal(t, batch[i].SourceFileID, stub.SourceFileID)
	}
}
