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
		provider.stores.QaRefStore = NewQaRefStore(provider)
	})
}

type QaRefStore struct {
	CommonFields
}

func NewQaRefStore(provider SqlProviderAchieve) *QaRefStore {
	repo := &QaRefStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_KNOWLEDGE_BASE_QA_REF)
	repo.SetAllColumns("id", "qa_record_id", "user_id", "ref_type", "embedding_id", "graph_id", "score", "created_at")
	return repo
}

func (s *QaRefStore) BatchCreate(ctx context.Context, refs []types.KnowledgeBaseQaRef) error {
	if len(refs) == 0 {
		return nil
	}

	query := sq.Insert(s.GetTable()).Columns(s.GetAllColumns()...)
	now := time.Now().Unix()
	for _, ref := range refs {
		if ref.ID == 0 {
			ref.ID = utils.GenUniqID()
		}
		if ref.CreatedAt == 0 {
			ref.CreatedAt = now
		}
		query = query.Values(ref.ID, ref.QaRecordID, ref.UserID, ref.RefType, ref.EmbeddingID, ref.GraphID, ref.Score, ref.CreatedAt)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *QaRefStore) ListByQaRecordID(ctx context.Context, qaRecordID int64) ([]types.KnowledgeBaseQaRef, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"qa_record_id": qaRecordID}).
		OrderBy("score DESC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.KnowledgeBaseQaRef
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}
