package store

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/askbase-ai/askbase-ai/pkg/types"
)

type KnowledgeBaseStore interface {
	Create(ctx context.Context, data types.KnowledgeBase) error
	GetByUUID(ctx context.Context, uuid string) (*types.KnowledgeBase, error)
	GetByTitle(ctx context.Context, userID, title string) (*types.KnowledgeBase, error)
	Update(ctx context.Context, data types.KnowledgeBase) error
	SoftDelete(ctx context.Context, uuid string) error
	List(ctx context.Context, opts types.ListKnowledgeBaseOptions, page, pageSize uint64) ([]types.KnowledgeBase, error)
	Total(ctx context.Context, opts types.ListKnowledgeBaseOptions) (uint64, error)
	UpdateCounts(ctx context.Context, uuid string, itemCount, embeddingCount, starCount, qaCount int) error
	UpdateStarCount(ctx context.Context, uuid string, delta int) error
}

type KnowledgeBaseItemStore interface {
	Create(ctx context.Context, data types.KnowledgeBaseItem) error
	GetByUUID(ctx context.Context, uuid string) (*types.KnowledgeBaseItem, error)
	ListByKb(ctx context.Context, kbUUID, keywords string, page, pageSize uint64) ([]types.KnowledgeBaseItem, error)
	Total(ctx context.Context, kbUUID, keywords string) (uint64, error)
	// ListAfterID pages through a knowledge base by ascending id anchor,
	// which stays stable while rows are inserted concurrently.
	ListAfterID(ctx context.Context, kbUUID string, anchorID int64, limit uint64) ([]types.KnowledgeBaseItem, error)
	UpdateEmbeddingStatus(ctx context.Context, uuid string, status int) error
	UpdateGraphStatus(ctx context.Context, uuid string, status int) error
	SoftDelete(ctx context.Context, uuid string) error
	CountByKb(ctx context.Context, kbUUID string) (int, error)
	CountIndexingByKb(ctx context.Context, kbUUID string) (int, error)
}

type KnowledgeBaseStarStore interface {
	Get(ctx context.Context, userID, kbUUID string) (*types.KnowledgeBaseStar, error)
	Create(ctx context.Context, data types.KnowledgeBaseStar) error
	SetDeleted(ctx context.Context, id int64, deleted bool) error
	CountActiveByKb(ctx context.Context, kbUUID string) (int, error)
	ListActiveKbUUIDs(ctx context.Context, userID string) ([]string, error)
}

type QaRecordStore interface {
	Create(ctx context.Context, data types.KnowledgeBaseQaRecord) error
	GetByUUID(ctx context.Context, uuid string) (*types.KnowledgeBaseQaRecord, error)
	ListByKbAndUser(ctx context.Context, kbUUID, userID string, page, pageSize uint64) ([]types.KnowledgeBaseQaRecord, error)
	Total(ctx context.Context, kbUUID, userID string) (uint64, error)
	UpdateAnswer(ctx context.Context, uuid, prompt string, promptTokens int, answer string, answerTokens, status int) error
	UpdateStatus(ctx context.Context, uuid string, status int) error
	SoftDelete(ctx context.Context, uuid, userID string) error
	CountByKb(ctx context.Context, kbUUID string) (int, error)
	CountTodayCreated(ctx context.Context, userID string) (int64, error)
	CountAllCreated(ctx context.Context, userID string) (int64, error)
}

type QaRefStore interface {
	BatchCreate(ctx context.Context, refs []types.KnowledgeBaseQaRef) error
	ListByQaRecordID(ctx context.Context, qaRecordID int64) ([]types.KnowledgeBaseQaRef, error)
}

type FileStore interface {
	Create(ctx context.Context, data types.File) error
	GetByID(ctx context.Context, id int64) (*types.File, error)
	GetBySHA256(ctx context.Context, userID, sha256 string) (*types.File, error)
}

type KnowledgeBaseEmbeddingStore interface {
	BatchCreate(ctx context.Context, data []types.KnowledgeBaseEmbedding) error
	DeleteByItem(ctx context.Context, itemUUID string) error
	SearchByVector(ctx context.Context, kbUUID string, vector pgvector.Vector, limit int, minScore float64) ([]types.EmbeddingMatch, error)
	CountByKb(ctx context.Context, kbUUID string) (int, error)
}

type KnowledgeBaseGraphStore interface {
	BatchCreate(ctx context.Context, data []types.KnowledgeBaseGraphTriple) error
	DeleteByItem(ctx context.Context, itemUUID string) error
	SearchTriples(ctx context.Context, kbUUID string, keywords []string, limit int) ([]types.KnowledgeBaseGraphTriple, error)
	CountByKb(ctx context.Context, kbUUID string) (int, error)
}

type UserDayCostStore interface {
	IncrCost(ctx context.Context, userID string, day int, requests int, tokens int64) error
	Get(ctx context.Context, userID string, day int) (*types.UserDayCost, error)
	ListByUser(ctx context.Context, userID string, page, pageSize uint64) ([]types.UserDayCost, error)
}
