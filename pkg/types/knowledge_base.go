package types

// KnowledgeBase is an owner scoped collection of indexed documents.
type KnowledgeBase struct {
	ID                  int64   `json:"id" db:"id"`
	UUID                string  `json:"uuid" db:"uuid"`
	UserID              string  `json:"user_id" db:"user_id"`
	Title               string  `json:"title" db:"title"`
	Remark              string  `json:"remark" db:"remark"`
	IsPublic            bool    `json:"is_public" db:"is_public"`
	IsStrict            bool    `json:"is_strict" db:"is_strict"`
	IngestMaxOverlap    int     `json:"ingest_max_overlap" db:"ingest_max_overlap"`
	RetrieveMaxResults  int     `json:"retrieve_max_results" db:"retrieve_max_results"`
	RetrieveMinScore    float64 `json:"retrieve_min_score" db:"retrieve_min_score"`
	QueryLLMTemperature float64 `json:"query_llm_temperature" db:"query_llm_temperature"`
	ItemCount           int     `json:"item_count" db:"item_count"`
	EmbeddingCount      int     `json:"embedding_count" db:"embedding_count"`
	StarCount           int     `json:"star_count" db:"star_count"`
	QaCount             int     `json:"qa_count" db:"qa_count"`
	IsDeleted           bool    `json:"-" db:"is_deleted"`
	CreatedAt           int64   `json:"created_at" db:"created_at"`
	UpdatedAt           int64   `json:"updated_at" db:"updated_at"`
}

const (
	// default retrieval settings applied when a knowledge base leaves them zero
	DEFAULT_RETRIEVE_MAX_RESULTS = 3
	DEFAULT_RETRIEVE_MIN_SCORE   = 0.6
	DEFAULT_QUERY_TEMPERATURE    = 0.1
	DEFAULT_INGEST_MAX_OVERLAP   = 0
)

// embedding / graph build status of one item
const (
	EMBEDDING_STATUS_NONE  = 1
	EMBEDDING_STATUS_DOING = 2
	EMBEDDING_STATUS_DONE  = 3
	EMBEDDING_STATUS_FAIL  = 4
)

// KnowledgeBaseItem is one uploaded document inside a knowledge base.
type KnowledgeBaseItem struct {
	ID              int64  `json:"id" db:"id"`
	UUID            string `json:"uuid" db:"uuid"`
	KbID            int64  `json:"kb_id" db:"kb_id"`
	KbUUID          string `json:"kb_uuid" db:"kb_uuid"`
	SourceFileID    int64  `json:"source_file_id" db:"source_file_id"`
	Title           string `json:"title" db:"title"`
	Brief           string `json:"brief" db:"brief"`
	Content         string `json:"content" db:"content"`
	Remark          string `json:"remark" db:"remark"`
	EmbeddingStatus int    `json:"embedding_status" db:"embedding_status"`
	GraphStatus     int    `json:"graph_status" db:"graph_status"`
	IsDeleted       bool   `json:"-" db:"is_deleted"`
	CreatedAt       int64  `json:"created_at" db:"created_at"`
	UpdatedAt       int64  `json:"updated_at" db:"updated_at"`
}

// KnowledgeBaseStar marks a user's star on a knowledge base. Toggling a
// star flips is_deleted instead of removing the row.
type KnowledgeBaseStar struct {
	ID        int64  `json:"id" db:"id"`
	KbID      int64  `json:"kb_id" db:"kb_id"`
	KbUUID    string `json:"kb_uuid" db:"kb_uuid"`
	UserID    string `json:"user_id" db:"user_id"`
	IsDeleted bool   `json:"is_deleted" db:"is_deleted"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
	UpdatedAt int64  `json:"updated_at" db:"updated_at"`
}

type ListKnowledgeBaseOptions struct {
	UserID         string
	Keywords       string
	IncludePublic  bool
	OnlyMine       bool
	IncludeDeleted bool
}
