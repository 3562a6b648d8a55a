package types

import "github.com/pgvector/pgvector-go"

// KnowledgeBaseEmbedding is one indexed chunk with its vector.
type KnowledgeBaseEmbedding struct {
	ID        int64           `json:"id" db:"id"`
	KbUUID    string          `json:"kb_uuid" db:"kb_uuid"`
	ItemUUID  string          `json:"item_uuid" db:"item_uuid"`
	Content   string          `json:"content" db:"content"`
	Embedding pgvector.Vector `json:"-" db:"embedding"`
	CreatedAt int64           `json:"created_at" db:"created_at"`
}

// EmbeddingMatch is a retrieval result carrying the cosine similarity.
type EmbeddingMatch struct {
	KnowledgeBaseEmbedding
	Score float64 `json:"score" db:"score"`
}

// KnowledgeBaseGraphTriple is one subject-relation-object triple
// extracted from an item during graph indexing.
type KnowledgeBaseGraphTriple struct {
	ID        int64  `json:"id" db:"id"`
	KbUUID    string `json:"kb_uuid" db:"kb_uuid"`
	ItemUUID  string `json:"item_uuid" db:"item_uuid"`
	Source    string `json:"source" db:"source"`
	Relation  string `json:"relation" db:"relation"`
	Target    string `json:"target" db:"target"`
	Content   string `json:"content" db:"content"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}
