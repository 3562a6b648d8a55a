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
		provider.stores.QaRecordStore = NewQaRecordStore(provider)
	})
}

type QaRecordStore struct {
	CommonFields
}

func NewQaRecordStore(provider SqlProviderAchieve) *QaRecordStore {
	repo := &QaRecordStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_KNOWLEDGE_BASE_QA_RECORD)
	repo.SetAllColumns("id", "uuid", "kb_id", "kb_uuid", "user_id", "question", "model_name", "prompt", "prompt_tokens",
		"answer", "answer_tokens", "status", "is_deleted", "created_at", "updated_at")
	return repo
}

func (s *QaRecordStore) Create(ctx context.Context, data types.KnowledgeBaseQaRecord) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = data.CreatedAt
	}
	if data.Status == 0 {
		data.Status = types.QA_STATUS_PENDING
	}
	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.UUID, data.KbID, data.KbUUID, data.UserID, data.Question, data.ModelName, data.Prompt, data.PromptTokens,
			data.Answer, data.AnswerTokens, data.Status, data.IsDeleted, data.CreatedAt, data.UpdatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *QaRecordStore) GetByUUID(ctx context.Context, uuid string) (*types.KnowledgeBaseQaRecord, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"uuid": uuid, "is_deleted": false})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.KnowledgeBaseQaRecord
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *QaRecordStore) ListByKbAndUser(ctx context.Context, kbUUID, userID string, page, pageSize uint64) ([]types.KnowledgeBaseQaRecord, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"kb_uuid": kbUUID, "user_id": userID, "is_deleted": false}).
		OrderBy("id DESC")
	if page != types.NO_PAGING && pageSize != types.NO_PAGING {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res []types.KnowledgeBaseQaRecord
	if err = s.GetReplica(ctx).Select(&res, queryString, args...); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *QaRecordStore) Total(ctx context.Context, kbUUID, userID string) (uint64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable()).
		Where(sq.Eq{"kb_uuid": kbUUID, "user_id": userID, "is_deleted": false})

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

// UpdateAnswer persists the finished answer in one write once the model
// stream has ended.
func (s *QaRecordStore) UpdateAnswer(ctx context.Context, uuid, prompt string, promptTokens int, answer string, answerTokens, status int) error {
	query := sq.Update(s.GetTable()).
		Set("prompt", prompt).
		Set("prompt_tokens", promptTokens).
		Set("answer", answer).
		Set("answer_tokens", answerTokens).
		Set("status", status).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"uuid": uuid})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *QaRecordStore) UpdateStatus(ctx context.Context, uuid string, status int) error {
	query := sq.Update(s.GetTable()).
		Set("status", status).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"uuid": uuid})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *QaRecordStore) CountByKb(ctx context.Context, kbUUID string) (int, error) {
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

// CountTodayCreated counts records a user created since local midnight.
func (s *QaRecordStore) CountTodayCreated(ctx context.Context, userID string) (int64, error) {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).Unix()

	query := sq.Select("COUNT(*)").From(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "is_deleted": false}).
		Where(sq.GtOrEq{"created_at": dayStart})

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total int64
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *QaRecordStore) CountAllCreated(ctx context.Context, userID string) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "is_deleted": false})

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total int64
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *QaRecordStore) SoftDelete(ctx context.Context, uuid, userID string) error {
	query := sq.Update(s.GetTable()).
		Set("is_deleted", true).
		Set("updated_at", time.Now().Unix()).
		Where(sq.Eq{"uuid": uuid, "user_id": userID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}
