package sqlstore

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/askbase-ai/askbase-ai/pkg/register"
	"github.com/askbase-ai/askbase-ai/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.KnowledgeBaseItemStore = NewKnowledgeBaseItemStore(provider)
	})
}

type KnowledgeBaseItemStore struct {
	CommonFields
}

func NewKnowledgeBaseItemStore(provider SqlProviderAchieve) *KnowledgeBaseItemStore {
	repo := &KnowledgeBaseItemStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_KNOWLEDGE_BASE_ITEM)
	repo.SetAllColumns("id", "uuid", "kb_id", "kb_uuid", "source_file_id", "title", "brief", "content", "remark",
		"embedding_status", "graph_status", "is_deleted", "created_at", "updated_at")
	return repo
}

func (s *KnowledgeBaseItemStore) Create(ctx context.Context, data types.KnowledgeBaseItem) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = data.CreatedAt
	}
	if data.EmbeddingStatus == 0 {
		data.EmbeddingStatus = types.EMBEDDING_STATUS_NONE
	}
	if data.GraphStatus == 0 {
		data.GraphStatus = types.EMBEDDING_STATUS_NONE
	}
	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.UUID, data.KbID, data.KbUUID, data.SourceFileID, data.Title, data.Brief, data.Content, data.Remark,
			data.EmbeddingStatus, data.GraphStatus, data.IsDeleted, data.CreatedAt, data.UpdatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *KnowledgeBaseItemStore) GetByUUID(ctx context.Context, uuid string) (*types.KnowledgeBaseItem, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"uuid": uuid, "is_deleted": false})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.KnowledgeBaseItem
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *KnowledgeBaseItemStore) ListByKb(ctx context.Context, kbUUID, keywords string, page, pageSize uint64) ([]types.KnowledgeBaseItem, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"kb_uuid": kbUUID, "is_deleted": false}).
		OrderBy("id DESC")
	if keywords != "" {
		query = query.Where(sq.ILike{"title": fmt.Sprintf("%%%s%%", keywords)})
	}
	if page != types.NO_PAGING && pageSize != types.NO_PAGING {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.KnowledgeBaseItem
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *KnowledgeBaseItemStore) Total(ctx context.Context, kbUUID, keywords string) (uint64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable()).
		Where(sq.Eq{"kb_uuid": kbUUID, "is_deleted": false})
	if keywords != "" {
		query = query.Where(sq.ILike{"title": fmt.Sprintf("%%%s%%", keywords)})
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total uint64
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}

// ListAfterID pages by ascending id anchor so a full-base indexing pass
// doesn't skip or repeat rows when items are inserted meanwhile.
func (s *KnowledgeBaseItemStore) ListAfterID(ctx context.Context, kbUUID string, anchorID int64, limit uint64) ([]types.KnowledgeBaseItem, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"kb_uuid": kbUUID, "is_deleted": false}).
		Where(sq.Gt{"id": anchorID}).
		OrderBy("id ASC").
		Limit(limit)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.KnowledgeBaseItem
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *KnowledgeBaseItemStore) UpdateEmbeddingStatus(ctx context.Context, uuid string, status int) error {
	return s.updateStatus(ctx, uuid, "embedding_status", status)
}

func (s *KnowledgeBaseItemStore) UpdateGraphStatus(ctx context.Context, uuid string, status int) error {
	return s.updateStatus(ctx, uuid, "graph_status", status)
}

func (s *KnowledgeBaseItemStore) updateStatus(ctx context.Context, uuid, column string, status int) error {
	query := sq.Update(s.GetTable()).
		Set(column, status).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"uuid": uuid})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *KnowledgeBaseItemStore) SoftDelete(ctx context.Context, uuid string) error {
	query := sq.Update(s.GetTable()).
		Set("is_deleted", true).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"uuid": uuid})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *KnowledgeBaseItemStore) CountByKb(ctx context.Context, kbUUID string) (int, error) {
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

// CountIndexingByKb counts items whose embedding build has not finished.
func (s *KnowledgeBaseItemStore) CountIndexingByKb(ctx context.Context, kbUUID string) (int, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable()).
		Where(sq.Eq{"kb_uuid": kbUUID, "is_deleted": false}).
		Where(sq.Eq{"embedding_status": []int{types.EMBEDDING_STATUS_NONE, types.EMBEDDING_STATUS_DOING}})

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
