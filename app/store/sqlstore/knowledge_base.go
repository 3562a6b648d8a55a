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
		provider.stores.KnowledgeBaseStore = NewKnowledgeBaseStore(provider)
	})
}

type KnowledgeBaseStore struct {
	CommonFields
}

func NewKnowledgeBaseStore(provider SqlProviderAchieve) *KnowledgeBaseStore {
	repo := &KnowledgeBaseStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_KNOWLEDGE_BASE)
	repo.SetAllColumns("id", "uuid", "user_id", "title", "remark", "is_public", "is_strict",
		"ingest_max_overlap", "retrieve_max_results", "retrieve_min_score", "query_llm_temperature",
		"item_count", "embedding_count", "star_count", "qa_count", "is_deleted", "created_at", "updated_at")
	return repo
}

func (s *KnowledgeBaseStore) Create(ctx context.Context, data types.KnowledgeBase) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = data.CreatedAt
	}
	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.UUID, data.UserID, data.Title, data.Remark, data.IsPublic, data.IsStrict,
			data.IngestMaxOverlap, data.RetrieveMaxResults, data.RetrieveMinScore, data.QueryLLMTemperature,
			data.ItemCount, data.EmbeddingCount, data.StarCount, data.QaCount, data.IsDeleted, data.CreatedAt, data.UpdatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *KnowledgeBaseStore) GetByUUID(ctx context.Context, uuid string) (*types.KnowledgeBase, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"uuid": uuid, "is_deleted": false})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.KnowledgeBase
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *KnowledgeBaseStore) GetByTitle(ctx context.Context, userID, title string) (*types.KnowledgeBase, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "title": title, "is_deleted": false})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.KnowledgeBase
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *KnowledgeBaseStore) Update(ctx context.Context, data types.KnowledgeBase) error {
	query := sq.Update(s.GetTable()).
		Set("title", data.Title).
		Set("remark", data.Remark).
		Set("is_public", data.IsPublic).
		Set("is_strict", data.IsStrict).
		Set("ingest_max_overlap", data.IngestMaxOverlap).
		Set("retrieve_max_results", data.RetrieveMaxResults).
		Set("retrieve_min_score", data.RetrieveMinScore).
		Set("query_llm_temperature", data.QueryLLMTemperature).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"uuid": data.UUID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *KnowledgeBaseStore) SoftDelete(ctx context.Context, uuid string) error {
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

func (s *KnowledgeBaseStore) applyListOptions(query sq.SelectBuilder, opts types.ListKnowledgeBaseOptions) sq.SelectBuilder {
	if !opts.IncludeDeleted {
		query = query.Where(sq.Eq{"is_deleted": false})
	}
	if opts.OnlyMine {
		query = query.Where(sq.Eq{"user_id": opts.UserID})
	} else if opts.IncludePublic {
		query = query.Where(sq.Or{sq.Eq{"user_id": opts.UserID}, sq.Eq{"is_public": true}})
	}
	if opts.Keywords != "" {
		query = query.Where(sq.ILike{"title": fmt.Sprintf("%%%s%%", opts.Keywords)})
	}
	return query
}

func (s *KnowledgeBaseStore) List(ctx context.Context, opts types.ListKnowledgeBaseOptions, page, pageSize uint64) ([]types.KnowledgeBase, error) {
	query := s.applyListOptions(sq.Select(s.GetAllColumns()...).From(s.GetTable()), opts).
		OrderBy("star_count DESC", "id DESC")
	if page != types.NO_PAGING && pageSize != types.NO_PAGING {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.KnowledgeBase
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *KnowledgeBaseStore) Total(ctx context.Context, opts types.ListKnowledgeBaseOptions) (uint64, error) {
	query := s.applyListOptions(sq.Select("COUNT(*)").From(s.GetTable()), opts)

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

// UpdateCounts overwrites the cached statistics of one knowledge base.
func (s *KnowledgeBaseStore) UpdateCounts(ctx context.Context, uuid string, itemCount, embeddingCount, starCount, qaCount int) error {
	query := sq.Update(s.GetTable()).
		Set("item_count", itemCount).
		Set("embedding_count", embeddingCount).
		Set("star_count", starCount).
		Set("qa_count", qaCount).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"uuid": uuid})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *KnowledgeBaseStore) UpdateStarCount(ctx context.Context, uuid string, delta int) error {
	query := sq.Update(s.GetTable()).
		Set("star_count", sq.Expr("star_count + ?", delta)).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"uuid": uuid})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
