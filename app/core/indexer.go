package core

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/askbase-ai/askbase-ai/pkg/docparser"
	"github.com/askbase-ai/askbase-ai/pkg/rag"
	"github.com/askbase-ai/askbase-ai/pkg/types"
	"github.com/askbase-ai/askbase-ai/pkg/utils"
)

// SetupIndexer starts the shared index worker pool. Call it once after
// stores, cache and the model driver are ready.
func (s *Core) SetupIndexer() {
	s.indexer = rag.NewIndexer(
		s.aiSrv.Embedder(),
		&indexStoreAdapter{core: s},
		&contentSourceAdapter{core: s},
		s.cache,
		func(ctx context.Context, kbUUID string) {
			_ = s.cache.SignalStatRecalc(ctx, kbUUID)
		},
	)
}

func (s *Core) Indexer() *rag.Indexer {
	return s.indexer
}

type indexStoreAdapter struct {
	core *Core
}

func (a *indexStoreAdapter) UpdateEmbeddingStatus(ctx context.Context, itemUUID string, status int) error {
	return a.core.Store().KnowledgeBaseItemStore().UpdateEmbeddingStatus(ctx, itemUUID, status)
}

func (a *indexStoreAdapter) UpdateGraphStatus(ctx context.Context, itemUUID string, status int) error {
	return a.core.Store().KnowledgeBaseItemStore().UpdateGraphStatus(ctx, itemUUID, status)
}

// ReplaceEmbeddings swaps an item's chunk rows in one transaction so
// retrieval never sees a half-indexed item.
func (a *indexStoreAdapter) ReplaceEmbeddings(ctx context.Context, kbUUID, itemUUID string, chunks []string, vectors []pgvector.Vector) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector length mismatch: %d != %d", len(chunks), len(vectors))
	}

	rows := make([]types.KnowledgeBaseEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		rows = append(rows, types.KnowledgeBaseEmbedding{
			ID:        utils.GenUniqID(),
			KbUUID:    kbUUID,
			ItemUUID:  itemUUID,
			Content:   chunk,
			Embedding: vectors[i],
		})
	}

	return a.core.Store().Transaction(ctx, func(ctx context.Context) error {
		if err := a.core.Store().KnowledgeBaseEmbeddingStore().DeleteByItem(ctx, itemUUID); err != nil {
			return err
		}
		return a.core.Store().KnowledgeBaseEmbeddingStore().BatchCreate(ctx, rows)
	})
}

func (a *indexStoreAdapter) ReplaceTriples(ctx context.Context, kbUUID, itemUUID string, triples []types.KnowledgeBaseGraphTriple) error {
	return a.core.Store().Transaction(ctx, func(ctx context.Context) error {
		if err := a.core.Store().KnowledgeBaseGraphStore().DeleteByItem(ctx, itemUUID); err != nil {
			return err
		}
		return a.core.Store().KnowledgeBaseGraphStore().BatchCreate(ctx, triples)
	})
}

type contentSourceAdapter struct {
	core *Core
}

// Content prefers the text captured at ingestion, reloading the item
// row when the job carried a metadata stub, and finally re-parses the
// stored document for rows predating content capture.
func (a *contentSourceAdapter) Content(ctx context.Context, item types.KnowledgeBaseItem) (string, error) {
	if item.Content != "" {
		return item.Content, nil
	}

	if fresh, err := a.core.Store().KnowledgeBaseItemStore().GetByUUID(ctx, item.UUID); err == nil && fresh.Content != "" {
		return fresh.Content, nil
	}

	file, err := a.core.Store().FileStore().GetByID(ctx, item.SourceFileID)
	if err != nil {
		return "", err
	}

	storage := a.core.FileStorage()
	if storage == nil {
		return "", fmt.Errorf("object storage is not configured")
	}
	obj, err := storage.GetObject(ctx, file.Path)
	if err != nil {
		return "", err
	}

	content, err := docparser.Parse(file.Ext, obj.File)
	if err != nil {
		return "", err
	}
	return utils.StripNulChars(content), nil
}
