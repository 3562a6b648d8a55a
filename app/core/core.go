package core

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/askbase-ai/askbase-ai/app/store/sqlstore"
	"github.com/askbase-ai/askbase-ai/pkg/ai"
	"github.com/askbase-ai/askbase-ai/pkg/ai/openai"
	s3Client "github.com/askbase-ai/askbase-ai/pkg/object-storage/s3"
	"github.com/askbase-ai/askbase-ai/pkg/rag"
)

type Core struct {
	cfg CoreConfig

	stores     func() *sqlstore.Provider
	httpClient *http.Client
	httpEngine *gin.Engine

	rds     *redis.Client
	cache   *Cache
	aiSrv   *AISrv
	fileSrv *s3Client.S3
	indexer *rag.Indexer

	metrics *Metrics
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	cfg.AI.Install()
	cfg.Quota.Install()

	core := &Core{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Second * 3},
		metrics:    NewMetrics("askbase", "core"),
		httpEngine: gin.New(),
	}

	// setup store
	setupSqlStore(core)

	core.rds = redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
	})
	core.cache = NewCache(core.rds)

	core.aiSrv = SetupAISrv(cfg.AI)

	if cfg.ObjectStorage.S3 != nil {
		s3cfg := cfg.ObjectStorage.S3
		core.fileSrv = s3Client.NewS3Client(s3cfg.Endpoint, s3cfg.Region, s3cfg.Bucket, s3cfg.AccessKey, s3cfg.SecretKey)
	}

	core.SetupIndexer()

	return core
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func setupSqlStore(core *Core) {
	core.stores = sqlstore.MustSetup(core.cfg.Postgres)
	if err := core.stores().Install(); err != nil {
		panic(err)
	}
	fmt.Println("setupSqlStore done")
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores()
}

func (s *Core) Cache() *Cache {
	return s.cache
}

func (s *Core) FileStorage() *s3Client.S3 {
	return s.fileSrv
}

func (s *Core) AI() *AISrv {
	return s.aiSrv
}

// AISrv bundles the model drivers used for answering and indexing.
// Both point at the same provider but are kept as separate interfaces
// so a mixed deployment can swap one out.
type AISrv struct {
	cfg      AIConfig
	chat     ai.Query
	embedder ai.Embedding
}

func SetupAISrv(cfg AIConfig) *AISrv {
	driver := openai.New(cfg.Token, cfg.Endpoint, ai.ModelName{
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: cfg.EmbeddingModel,
	})
	return &AISrv{
		cfg:      cfg,
		chat:     driver,
		embedder: driver,
	}
}

func (s *AISrv) Chat() ai.Query {
	return s.chat
}

func (s *AISrv) Embedder() ai.Embedding {
	return s.embedder
}

func (s *AISrv) ChatModel() string {
	return s.cfg.ChatModel
}

func (s *AISrv) MaxInputTokens() int {
	return s.cfg.MaxInputTokens
}

func (s *AISrv) RetrievePieceTokens() int {
	return s.cfg.RetrievePieceTokens
}
