package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/askbase-ai/askbase-ai/pkg/types"
)

func TestRedisKeys(t *testing.T) {
	assert.Equal(t, "askbase:index:user:u1", types.IndexUserLockKey("u1"))
	assert.Equal(t, "askbase:qa:ask:u1:20250307", types.QaDayAskKey("u1", 20250307))
	assert.Equal(t, "askbase:qa:tokens:abc", types.QaTokenUsageKey("abc"))
	assert.Equal(t, "askbase:kb:stat:signal", types.KbStatSignalKey)
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "askbase_knowledge_base", types.TABLE_KNOWLEDGE_BASE.Name())
}
