package v1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/askbase-ai/askbase-ai/pkg/types"
	"github.com/askbase-ai/askbase-ai/pkg/utils"
)

func TestRequestQuotaReached(t *testing.T) {
	// no counter yet today
	assert.False(t, requestQuotaReached("", 100))

	assert.False(t, requestQuotaReached("99", 100))
	assert.True(t, requestQuotaReached("100", 100))
	assert.True(t, requestQuotaReached("250", 100))

	// a mangled counter never locks the user out
	assert.False(t, requestQuotaReached("garbage", 100))
}

func TestAskQuotaKeyRollsDaily(t *testing.T) {
	today := time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC)
	tomorrow := today.Add(2 * time.Minute)

	keyToday := types.QaDayAskKey("u1", utils.DayInt(today))
	keyTomorrow := types.QaDayAskKey("u1", utils.DayInt(tomorrow))

	assert.NotEqual(t, keyToday, keyTomorrow, "the ask counter must reset at midnight")
	assert.NotEqual(t, keyToday, types.QaDayAskKey("u2", utils.DayInt(today)), "counters are per user")
}
