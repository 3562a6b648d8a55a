package v1

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/askbase-ai/askbase-ai/app/core"
	"github.com/askbase-ai/askbase-ai/pkg/errors"
	"github.com/askbase-ai/askbase-ai/pkg/i18n"
	"github.com/askbase-ai/askbase-ai/pkg/types"
	"github.com/askbase-ai/askbase-ai/pkg/utils"
)

type QuotaLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewQuotaLogic(ctx context.Context, core *core.Core) *QuotaLogic {
	return &QuotaLogic{ctx: ctx, core: core}
}

// CheckRequestTimesOrThrow enforces the per-user daily ask quota. The
// counter lives on a day-scoped redis key which expires on its own.
func (l *QuotaLogic) CheckRequestTimesOrThrow(userID string) error {
	day := utils.DayInt(time.Now())
	key := types.QaDayAskKey(userID, day)

	raw, err := l.core.Cache().Get(l.ctx, key)
	if err != nil {
		return errors.New("QuotaLogic.CheckRequestTimesOrThrow.Get", i18n.ERROR_INTERNAL, err)
	}
	if requestQuotaReached(raw, l.core.Cfg().Quota.MaxRequestsPerDay) {
		return errors.New("QuotaLogic.CheckRequestTimesOrThrow", i18n.ERROR_QA_ASK_LIMIT, nil).Code(http.StatusTooManyRequests)
	}

	if _, err = l.core.Cache().IncrWithDayExpire(l.ctx, key); err != nil {
		return errors.New("QuotaLogic.CheckRequestTimesOrThrow.Incr", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

// requestQuotaReached interprets the raw day counter. A missing key
// means no asks recorded today.
func requestQuotaReached(raw string, max int64) bool {
	if raw == "" {
		return false
	}
	used, _ := strconv.ParseInt(raw, 10, 64)
	return used >= max
}

// CheckTokenQuotaOrThrow rejects new questions once the user has burned
// through the daily token allowance recorded in user_day_cost.
func (l *QuotaLogic) CheckTokenQuotaOrThrow(userID string) error {
	day := utils.DayInt(time.Now())
	cost, err := l.core.Store().UserDayCostStore().Get(l.ctx, userID, day)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return errors.New("QuotaLogic.CheckTokenQuotaOrThrow", i18n.ERROR_INTERNAL, err)
	}
	if cost.Tokens >= int64(l.core.Cfg().Quota.MaxTokensPerDay) {
		return errors.New("QuotaLogic.CheckTokenQuotaOrThrow", i18n.ERROR_QA_TOKEN_LIMIT, nil).Code(http.StatusTooManyRequests)
	}
	return nil
}

type QuotaUsage struct {
	TodayAsked        int64 `json:"today_asked"`
	TotalAsked        int64 `json:"total_asked"`
	TodayTokens       int64 `json:"today_tokens"`
	MaxRequestsPerDay int64 `json:"max_requests_per_day"`
	MaxTokensPerDay   int   `json:"max_tokens_per_day"`
}

// Usage reports a user's spend against the daily limits.
func (l *QuotaLogic) Usage(userID string) (*QuotaUsage, error) {
	usage := &QuotaUsage{
		MaxRequestsPerDay: l.core.Cfg().Quota.MaxRequestsPerDay,
		MaxTokensPerDay:   l.core.Cfg().Quota.MaxTokensPerDay,
	}

	var err error
	if usage.TodayAsked, err = l.core.Store().QaRecordStore().CountTodayCreated(l.ctx, userID); err != nil {
		return nil, errors.New("QuotaLogic.Usage.CountTodayCreated", i18n.ERROR_INTERNAL, err)
	}
	if usage.TotalAsked, err = l.core.Store().QaRecordStore().CountAllCreated(l.ctx, userID); err != nil {
		return nil, errors.New("QuotaLogic.Usage.CountAllCreated", i18n.ERROR_INTERNAL, err)
	}

	cost, err := l.core.Store().UserDayCostStore().Get(l.ctx, userID, utils.DayInt(time.Now()))
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("QuotaLogic.Usage.DayCost", i18n.ERROR_INTERNAL, err)
	}
	if cost != nil {
		usage.TodayTokens = cost.Tokens
	}
	return usage, nil
}
