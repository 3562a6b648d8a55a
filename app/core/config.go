package core

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}
	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}

	return *conf
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	return c
}

type CoreConfig struct {
	Addr          string              `toml:"addr"`
	Log           Log                 `toml:"log"`
	Postgres      PGConfig            `toml:"postgres"`
	Redis         RedisConfig         `toml:"redis"`
	ObjectStorage ObjectStorageDriver `toml:"object_storage"`

	AI AIConfig `toml:"ai"`

	Security Security `toml:"security"`

	Quota QuotaConfig `toml:"quota"`
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("ASKBASE_API_SERVICE_ADDRESS")
	c.Log.FromENV()
	c.Postgres.FromENV()
	c.Redis.FromENV()
	c.AI.FromENV()
	c.Security.FromENV()
	c.Quota.FromENV()
}

type ObjectStorageDriver struct {
	StaticDomain string    `toml:"static_domain"`
	Driver       string    `toml:"driver"`
	S3           *S3Config `toml:"s3"`
}

type S3Config struct {
	Bucket       string `toml:"bucket"`
	Region       string `toml:"region"`
	Endpoint     string `toml:"endpoint"`
	AccessKey    string `toml:"access_key"`
	SecretKey    string `toml:"secret_key"`
	UsePathStyle bool   `toml:"use_path_style"`
}

type AIConfig struct {
	Token          string `toml:"token"`
	Endpoint       string `toml:"endpoint"`
	ChatModel      string `toml:"chat_model"`
	EmbeddingModel string `toml:"embedding_model"`

	// MaxInputTokens bounds the model context available to one question
	// plus its retrieved pieces. RetrievePieceTokens is the budget
	// reserved for a single retrieved piece.
	MaxInputTokens      int `toml:"max_input_tokens"`
	RetrievePieceTokens int `toml:"retrieve_piece_tokens"`
}

const (
	DEFAULT_MAX_INPUT_TOKENS      = 4096
	DEFAULT_RETRIEVE_PIECE_TOKENS = 800
)

func (c *AIConfig) FromENV() {
	c.Token = os.Getenv("ASKBASE_AI_TOKEN")
	c.Endpoint = os.Getenv("ASKBASE_AI_ENDPOINT")
	c.ChatModel = os.Getenv("ASKBASE_AI_CHAT_MODEL")
	c.EmbeddingModel = os.Getenv("ASKBASE_AI_EMBEDDING_MODEL")
}

func (c *AIConfig) Install() {
	if c.MaxInputTokens <= 0 {
		c.MaxInputTokens = DEFAULT_MAX_INPUT_TOKENS
	}
	if c.RetrievePieceTokens <= 0 {
		c.RetrievePieceTokens = DEFAULT_RETRIEVE_PIECE_TOKENS
	}
}

type Security struct {
	JWTSecret string `toml:"jwt_secret"`
}

func (s *Security) FromENV() {
	s.JWTSecret = os.Getenv("ASKBASE_JWT_SECRET")
}

type QuotaConfig struct {
	MaxRequestsPerDay int64 `toml:"max_requests_per_day"`
	MaxTokensPerDay   int   `toml:"max_tokens_per_day"`
}

const (
	DEFAULT_MAX_REQUESTS_PER_DAY = 100
	DEFAULT_MAX_TOKENS_PER_DAY   = 200000
)

func (q *QuotaConfig) FromENV() {
	if v := os.Getenv("ASKBASE_QUOTA_MAX_REQUESTS_PER_DAY"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.MaxRequestsPerDay = n
		}
	}
	if v := os.Getenv("ASKBASE_QUOTA_MAX_TOKENS_PER_DAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.MaxTokensPerDay = n
		}
	}
}

func (q *QuotaConfig) Install() {
	if q.MaxRequestsPerDay <= 0 {
		q.MaxRequestsPerDay = DEFAULT_MAX_REQUESTS_PER_DAY
	}
	if q.MaxTokensPerDay <= 0 {
		q.MaxTokensPerDay = DEFAULT_MAX_TOKENS_PER_DAY
	}
}

type PGConfig struct {
	DSN string `toml:"dsn"`
}

func (m *PGConfig) FromENV() {
	m.DSN = os.Getenv("ASKBASE_API_POSTGRESQL_DSN")
}

func (c PGConfig) FormatDSN() string {
	return c.DSN
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`

	PoolSize     int `toml:"pool_size"`
	MinIdleConns int `toml:"min_idle_conns"`
	MaxRetries   int `toml:"max_retries"`
}

func (r *RedisConfig) FromENV() {
	r.Addr = os.Getenv("ASKBASE_REDIS_ADDR")
	r.Password = os.Getenv("ASKBASE_REDIS_PASSWORD")
	if dbStr := os.Getenv("ASKBASE_REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			r.DB = db
		}
	}
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("ASKBASE_API_LOG_LEVEL")
	l.Path = os.Getenv("ASKBASE_API_LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
