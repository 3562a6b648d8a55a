package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/askbase-ai/askbase-ai/pkg/register"
	"github.com/askbase-ai/askbase-ai/pkg/types"
	"github.com/askbase-ai/askbase-ai/pkg/utils"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.KnowledgeBaseGraphStore = NewKnowledgeBaseGraphStore(provider)
	})
}

type KnowledgeBaseGraphStore struct {
	CommonFields
}

func NewKnowledgeBaseGraphStore(provider SqlProviderAchieve) *KnowledgeBaseGraphStore {
	repo := &KnowledgeBaseGraphStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_KNOWLEDGE_BASE_GRAPH)
	repo.SetAllColumns("id", "kb_uuid", "item_uuid", "source", "relation", "target", "content", "created_at")
	return repo
}

func (s *KnowledgeBaseGraphStore) BatchCreate(ctx context.Context, triples []types.KnowledgeBaseGraphTriple) error {
	if len(triples) == 0 {
		return nil
	}

	query := sq.Insert(s.GetTable()).Columns(s.GetAllColumns()...)
	now := time.Now().Unix()
	for _, t := range triples {
		if t.ID == 0 {
			t.ID = utils.GenUniqID()
		}
		if t.CreatedAt == 0 {
			t.CreatedAt = now
		}
		query = query.Values(t.ID, t.KbUUID, t.ItemUUID, t.Source, t.Relation, t.Target, t.Content, t.CreatedAt)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *KnowledgeBaseGraphStore) DeleteByItem(ctx context.Context, itemUUID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"item_uuid": itemUUID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

// SearchTriples matches keywords against the triple fields with ILIKE.
// A triple matching any keyword is returned, most recent first.
func (s *KnowledgeBaseGraphStore) SearchTriples(ctx context.Context, kbUUID string, keywords []string, limit int) ([]types.KnowledgeBaseGraphTriple, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	matcher := sq.Or{}
	for _, kw := range keywords {
		pattern := "%" + kw + "%"
		matcher = append(matcher,
			sq.ILike{"source": pattern},
			sq.ILike{"relation": pattern},
			sq.ILike{"target": pattern},
			sq.ILike{"content": pattern},
		)
	}

	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"kb_uuid": kbUUID}).
		Where(matcher).
		OrderBy("id DESC").
		Limit(uint64(limit))

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.KnowledgeBaseGraphTriple
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *KnowledgeBaseGraphStore) CountByKb(ctx context.Context, kbUUID string) (int, error) {
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
