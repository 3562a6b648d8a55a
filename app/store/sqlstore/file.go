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
		provider.stores.FileStore = NewFileStore(provider)
	})
}

type FileStore struct {
	CommonFields
}

func NewFileStore(provider SqlProviderAchieve) *FileStore {
	repo := &FileStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_FILE)
	repo.SetAllColumns("id", "uuid", "name", "ext", "path", "size", "sha256", "user_id", "created_at")
	return repo
}

func (s *FileStore) Create(ctx context.Context, data types.File) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.ID, data.UUID, data.Name, data.Ext, data.Path, data.Size, data.SHA256, data.UserID, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	_, err = s.GetMaster(ctx).Exec(queryString, args...)
	return err
}

func (s *FileStore) GetByID(ctx context.Context, id int64) (*types.File, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.File
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetBySHA256 deduplicates uploads of identical file content. The
// lookup is scoped to the owner so one user never resolves to another
// user's stored object.
func (s *FileStore) GetBySHA256(ctx context.Context, userID, sha256 string) (*types.File, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "sha256": sha256}).
		OrderBy("id ASC").Limit(1)

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.File
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}
