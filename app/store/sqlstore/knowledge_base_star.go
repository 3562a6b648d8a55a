package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/askbase-ai/askbase-ai/pkg/register"
	"github.com/askbase-ai/askbase-ai/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.KnowledgeBaseStarStore = NewKnowledgeBaseStarStore(provider)
	})
}

type KnowledgeBaseStarStore struct {
	CommonFields
}

func NewKnowledgeBaseStarStore(provider SqlProviderAchieve) *KnowledgeBaseStarStore {
	repo := &KnowledgeBaseStarStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_KNOWLEDGE_BASE_STAR)
	repo.SetAllColumns("id", "kb_id", "kb_uuid", "user_id", "is_deleted", "created_at", "updated_at")
	return repo
}

// Get returns the star row regardless of its is_deleted state, star
// toggling flips the flag on the existing row.
func (s *KnowledgeBaseStarStore) Get(ctx context.Context, userID, kbUUID string) (*types.KnowledgeBaseStar, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "kb_uuid": kbUUID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.KnowledgeBaseStar
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *KnowledgeBaseStarStore) Create(ctx context.Context, data types.KnowledgeBaseStar) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = data.CreatedAt
	}
	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.KbID, data.KbUUID, data.UserID, data.IsDeleted, data.CreatedAt, data.UpdatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *KnowledgeBaseStarStore) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	query := sq.Update(s.GetTable()).
		Set("is_deleted", deleted).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *KnowledgeBaseStarStore) CountActiveByKb(ctx context.Context, kbUUID string) (int, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable()).
		Where(sq.Eq{"kb_uuid": kbUUID, "is_deleted": false})

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total int
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *KnowledgeBaseStarStore) ListActiveKbUUIDs(ctx context.Context, userID string) ([]string, error) {
	query := sq.Select("kb_uuid").From(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "is_deleted": false})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []string
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}
