package sqlstore

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/askbase-ai/askbase-ai/app/store"
	"github.com/askbase-ai/askbase-ai/pkg/register"
	"github.com/askbase-ai/askbase-ai/pkg/sqlstore"
	"github.com/askbase-ai/askbase-ai/pkg/types"
)

func init() {
	sq.StatementBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

var provider = &Provider{
	stores: &Stores{},
}

func GetProvider() *Provider {
	return provider
}

type Provider struct {
	*sqlstore.SqlProvider
	stores *Stores
}

type Stores struct {
	store.KnowledgeBaseStore
	store.KnowledgeBaseItemStore
	store.KnowledgeBaseStarStore
	store.QaRecordStore
	store.QaRefStore
	store.FileStore
	store.KnowledgeBaseEmbeddingStore
	store.KnowledgeBaseGraphStore
	store.UserDayCostStore
}

type RegisterKey struct{}

func MustSetup(m sqlstore.ConnectConfig, s ...sqlstore.ConnectConfig) func() *Provider {
	provider.SqlProvider = sqlstore.MustSetupProvider(m, s...)

	for _, f := range register.ResolveFuncHandlers[*Provider](RegisterKey{}) {
		f(provider)
	}

	return func() *Provider {
		return provider
	}
}

// Install 初始化所有数据表
func (p *Provider) Install() error {
	if err := p.enableExtensions(); err != nil {
		return err
	}

	if err := p.ensureMigrationTable(); err != nil {
		return err
	}

	files, err := CreateTableFiles.ReadDir(".")
	if err != nil {
		return err
	}

	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			if executed, err := p.isFileExecuted(file.Name()); err != nil {
				return err
			} else if executed {
				continue
			}

			sql, err := CreateTableFiles.ReadFile(file.Name())
			if err != nil {
				return err
			}

			if _, err = p.SqlProvider.GetMaster().Exec(string(sql)); err != nil {
				return fmt.Errorf("failed to execute migration %s, %w", file.Name(), err)
			}

			if err = p.markFileExecuted(file.Name()); err != nil {
				return err
			}
		}
	}
	return nil
}

// enableExtensions 启用必要的数据库扩展
func (p *Provider) enableExtensions() error {
	extensions := []string{
		"CREATE EXTENSION IF NOT EXISTS vector;", // pgvector 扩展，用于向量操作
	}

	for _, ext := range extensions {
		if _, err := p.SqlProvider.GetMaster().Exec(ext); err != nil {
			return fmt.Errorf("failed to enable extension: %w\nSQL: %s", err, ext)
		}
	}
	return nil
}

func (p *Provider) ensureMigrationTable() error {
	createTableSQL := `
CREATE TABLE IF NOT EXISTS ` + types.TABLE_PREFIX + `schema_migrations (
    filename VARCHAR(255) PRIMARY KEY,
    executed_at BIGINT NOT NULL
);`
	_, err := p.SqlProvider.GetMaster().Exec(createTableSQL)
	return err
}

func (p *Provider) isFileExecuted(filename string) (bool, error) {
	var count int
	err := p.SqlProvider.GetReplica().Get(&count,
		"SELECT COUNT(*) FROM "+types.TABLE_PREFIX+"schema_migrations WHERE filename = $1", filename)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (p *Provider) markFileExecuted(filename string) error {
	_, err := p.SqlProvider.GetMaster().Exec(
		"INSERT INTO "+types.TABLE_PREFIX+"schema_migrations (filename, executed_at) VALUES ($1, $2) ON CONFLICT (filename) DO NOTHING",
		filename, time.Now().Unix())
	return err
}

func (p *Provider) KnowledgeBaseStore() store.KnowledgeBaseStore {
	return p.stores.KnowledgeBaseStore
}

func (p *Provider) KnowledgeBaseItemStore() store.KnowledgeBaseItemStore {
	return p.stores.KnowledgeBaseItemStore
}

func (p *Provider) KnowledgeBaseStarStore() store.KnowledgeBaseStarStore {
	return p.stores.KnowledgeBaseStarStore
}

func (p *Provider) QaRecordStore() store.QaRecordStore {
	return p.stores.QaRecordStore
}

func (p *Provider) QaRefStore() store.QaRefStore {
	return p.stores.QaRefStore
}

func (p *Provider) FileStore() store.FileStore {
	return p.stores.FileStore
}

func (p *Provider) KnowledgeBaseEmbeddingStore() store.KnowledgeBaseEmbeddingStore {
	return p.stores.KnowledgeBaseEmbeddingStore
}

func (p *Provider) KnowledgeBaseGraphStore() store.KnowledgeBaseGraphStore {
	return p.stores.KnowledgeBaseGraphStore
}

func (p *Provider) UserDayCostStore() store.UserDayCostStore {
	return p.stores.UserDayCostStore
}
