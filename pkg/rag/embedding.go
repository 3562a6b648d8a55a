package rag

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/askbase-ai/askbase-ai/pkg/ai"
	"github.com/askbase-ai/askbase-ai/pkg/types"
)

// EmbeddingSearcher is the vector store slice the retriever needs.
type EmbeddingSearcher interface {
	SearchByVector(ctx context.Context, kbUUID string, vector pgvector.Vector, limit int, minScore float64) ([]types.EmbeddingMatch, error)
}

// EmbeddingRetriever embeds the question and runs a cosine similarity
// search scoped to one knowledge base.
type EmbeddingRetriever struct {
	embedder ai.Embedding
	store    EmbeddingSearcher
	kbUUID   string
	minScore float64
}

func NewEmbeddingRetriever(embedder ai.Embedding, store EmbeddingSearcher, kbUUID string, minScore float64) *EmbeddingRetriever {
	return &EmbeddingRetriever{
		embedder: embedder,
		store:    store,
		kbUUID:   kbUUID,
		minScore: minScore,
	}
}

func (r *EmbeddingRetriever) Type() string {
	return types.QA_REF_TYPE_EMBEDDING
}

func (r *EmbeddingRetriever) Retrieve(ctx context.Context, question string, maxResults int) ([]Passage, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	res, err := r.embedder.EmbeddingForQuery(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question, %w", err)
	}
	if len(res.Data) == 0 {
		return nil, fmt.Errorf("embedding result is empty")
	}

	matches, err := r.store.SearchByVector(ctx, r.kbUUID, pgvector.NewVector(res.Data[0]), maxResults, r.minScore)
	if err != nil {
		return nil, fmt.Errorf("failed to search embeddings, %w", err)
	}

	passages := make([]Passage, 0, len(matches))
	for _, m := range matches {
		passages = append(passages, Passage{
			RefType: types.QA_REF_TYPE_EMBEDDING,
			RefID:   m.ID,
			Content: m.Content,
			Score:   m.Score,
		})
	}
	return passages, nil
}
