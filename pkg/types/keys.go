package types

import "fmt"

// Redis key layout. Every key carries the service prefix so multiple
// deployments can share one redis instance.
const REDIS_KEY_PREFIX = "askbase:"

// IndexUserLockKey is the per-owner indexing mutex. Present while an
// indexing batch of that user is running.
func IndexUserLockKey(userID string) string {
	return fmt.Sprintf("%sindex:user:%s", REDIS_KEY_PREFIX, userID)
}

// QaDayAskKey counts questions asked by a user within one day (yyyymmdd).
func QaDayAskKey(userID string, day int) string {
	return fmt.Sprintf("%sqa:ask:%s:%d", REDIS_KEY_PREFIX, userID, day)
}

// QaTokenUsageKey holds a list of alternating input/output token counts
// accumulated while one answer is produced.
func QaTokenUsageKey(qaUUID string) string {
	return fmt.Sprintf("%sqa:tokens:%s", REDIS_KEY_PREFIX, qaUUID)
}

// KbStatSignalKey is the set of knowledge base uuids whose statistics
// need to be recalculated by the periodic job.
const KbStatSignalKey = REDIS_KEY_PREFIX + "kb:stat:signal"

// UserTokenCacheKey caches validated auth tokens.
func UserTokenCacheKey(tokenMD5 string) string {
	return fmt.Sprintf("%suser:token:%s", REDIS_KEY_PREFIX, tokenMD5)
}
