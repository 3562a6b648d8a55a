package types

// KnowledgeBaseQaRecord is one question/answer pair. Prompt and answer
// token counts are written once the model call finishes.
type KnowledgeBaseQaRecord struct {
	ID           int64  `json:"id" db:"id"`
	UUID         string `json:"uuid" db:"uuid"`
	KbID         int64  `json:"kb_id" db:"kb_id"`
	KbUUID       string `json:"kb_uuid" db:"kb_uuid"`
	UserID       string `json:"user_id" db:"user_id"`
	Question     string `json:"question" db:"question"`
	ModelName    string `json:"model_name" db:"model_name"`
	Prompt       string `json:"prompt" db:"prompt"`
	PromptTokens int    `json:"prompt_tokens" db:"prompt_tokens"`
	Answer       string `json:"answer" db:"answer"`
	AnswerTokens int    `json:"answer_tokens" db:"answer_tokens"`
	Status       int    `json:"status" db:"status"`
	IsDeleted    bool   `json:"-" db:"is_deleted"`
	CreatedAt    int64  `json:"created_at" db:"created_at"`
	UpdatedAt    int64  `json:"updated_at" db:"updated_at"`
}

// qa record lifecycle, settled exactly once after streaming ends
const (
	QA_STATUS_PENDING   = 1
	QA_STATUS_COMPLETED = 2
	QA_STATUS_ABORTED   = 3
	QA_STATUS_FAILED    = 4
)

const (
	QA_REF_TYPE_EMBEDDING = "embedding"
	QA_REF_TYPE_GRAPH     = "graph"
)

// KnowledgeBaseQaRef records which retrieved piece contributed to an
// answer, dispatched by retriever type.
type KnowledgeBaseQaRef struct {
	ID          int64   `json:"id" db:"id"`
	QaRecordID  int64   `json:"qa_record_id" db:"qa_record_id"`
	UserID      string  `json:"user_id" db:"user_id"`
	RefType     string  `json:"ref_type" db:"ref_type"`
	EmbeddingID int64   `json:"embedding_id" db:"embedding_id"`
	GraphID     int64   `json:"graph_id" db:"graph_id"`
	Score       float64 `json:"score" db:"score"`
	CreatedAt   int64   `json:"created_at" db:"created_at"`
}

// UserDayCost aggregates one user's request and token spend per day.
type UserDayCost struct {
	ID           int64  `json:"id" db:"id"`
	UserID       string `json:"user_id" db:"user_id"`
	Day          int    `json:"day" db:"day"`
	RequestTimes int    `json:"request_times" db:"request_times"`
	Tokens       int64  `json:"tokens" db:"tokens"`
	CreatedAt    int64  `json:"created_at" db:"created_at"`
	UpdatedAt    int64  `json:"updated_at" db:"updated_at"`
}
