package sqlstore

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/askbase-ai/askbase-ai/pkg/register"
	"github.com/askbase-ai/askbase-ai/pkg/types"
	"github.com/askbase-ai/askbase-ai/pkg/utils"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.UserDayCostStore = NewUserDayCostStore(provider)
	})
}

type UserDayCostStore struct {
	CommonFields
}

func NewUserDayCostStore(provider SqlProviderAchieve) *UserDayCostStore {
	repo := &UserDayCostStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_USER_DAY_COST)
	repo.SetAllColumns("id", "user_id", "day", "request_times", "tokens", "created_at", "updated_at")
	return repo
}

// IncrCost accumulates one request's usage onto the user's daily row.
// The (user_id, day) unique constraint makes concurrent upserts safe.
func (s *UserDayCostStore) IncrCost(ctx context.Context, userID string, day int, requests int, tokens int64) error {
	now := time.Now().Unix()
	queryString := fmt.Sprintf(`INSERT INTO %s (id, user_id, day, request_times, tokens, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, day) DO UPDATE SET
			request_times = %s.request_times + EXCLUDED.request_times,
			tokens = %s.tokens + EXCLUDED.tokens,
			updated_at = EXCLUDED.updated_at`, s.GetTable(), s.GetTable(), s.GetTable())

	_, err := s.GetMaster(ctx).Exec(queryString, utils.GenUniqID(), userID, day, requests, tokens, now, now)
	return err
}

func (s *UserDayCostStore) Get(ctx context.Context, userID string, day int) (*types.UserDayCost, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "day": day})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.UserDayCost
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *UserDayCostStore) ListByUser(ctx context.Context, userID string, page, pageSize uint64) ([]types.UserDayCost, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("day DESC")
	if page != types.NO_PAGING && pageSize != types.NO_PAGING {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.UserDayCost
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}
