package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pgvector/pgvector-go"

	"github.com/askbase-ai/askbase-ai/pkg/register"
	"github.com/askbase-ai/askbase-ai/pkg/types"
	"github.com/askbase-ai/askbase-ai/pkg/utils"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.KnowledgeBaseEmbeddingStore = NewKnowledgeBaseEmbeddingStore(provider)
	})
}

type KnowledgeBaseEmbeddingStore struct {
	CommonFields
}

func NewKnowledgeBaseEmbeddingStore(provider SqlProviderAchieve) *KnowledgeBaseEmbeddingStore {
	repo := &KnowledgeBaseEmbeddingStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_KNOWLEDGE_BASE_EMBEDDING)
	repo.SetAllColumns("id", "kb_uuid", "item_uuid", "content", "embedding", "created_at")
	return repo
}

func (s *KnowledgeBaseEmbeddingStore) BatchCreate(ctx context.Context, data []types.KnowledgeBaseEmbedding) error {
	if len(data) == 0 {
		return nil
	}

	query := sq.Insert(s.GetTable()).Columns(s.GetAllColumns()...)
	now := time.Now().Unix()
	for _, item := range data {
		if item.ID == 0 {
			item.ID = utils.GenUniqID()
		}
		if item.CreatedAt == 0 {
			item.CreatedAt = now
		}
		query = query.Values(item.ID, item.KbUUID, item.ItemUUID, item.Content, item.Embedding, item.CreatedAt)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *KnowledgeBaseEmbeddingStore) DeleteByItem(ctx context.Context, itemUUID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"item_uuid": itemUUID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// SearchByVector runs cosine similarity search inside one knowledge base.
// pgvector's <=> operator yields cosine distance, score is 1 - distance.
func (s *KnowledgeBaseEmbeddingStore) SearchByVector(ctx context.Context, kbUUID string, vector pgvector.Vector, limit int, minScore float64) ([]types.EmbeddingMatch, error) {
	query := sq.Select("id", "kb_uuid", "item_uuid", "content", "created_at").
		Column(sq.Expr("1 - (embedding <=> ?) AS score", vector)).
		From(s.GetTable()).
		Where(sq.Eq{"kb_uuid": kbUUID}).
		OrderByClause("embedding <=> ?", vector).
		Limit(uint64(limit))
	if minScore > 0 {
		query = query.Where(sq.Expr("1 - (embedding <=> ?) >= ?", vector, minScore))
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.EmbeddingMatch
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *KnowledgeBaseEmbeddingStore) CountByKb(ctx context.Context, kbUUID string) (int, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable()).Where(sq.Eq{"kb_uuid": kbUUID})

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
