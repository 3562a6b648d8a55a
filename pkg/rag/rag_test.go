package rag_test

import (
	"context"
	"testing"

	"github.com/pgvector/pgvector-go"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askbase-ai/askbase-ai/pkg/ai"
	"github.com/askbase-ai/askbase-ai/pkg/rag"
	"github.com/askbase-ai/askbase-ai/pkg/types"
)

type fakeEmbedder struct{}

func (f *fakeEmbedder) EmbeddingForQuery(ctx context.Context, content []string) (ai.EmbeddingResult, error) {
	return ai.EmbeddingResult{
		Data:  [][]float32{{0.1, 0.2, 0.3}},
		Usage: &openai.Usage{PromptTokens: 3},
	}, nil
}

func (f *fakeEmbedder) EmbeddingForDocument(ctx context.Context, title string, content []string) (ai.EmbeddingResult, error) {
	return f.EmbeddingForQuery(ctx, content)
}

type fakeEmbeddingStore struct {
	gotKbUUID string
	gotLimit  int
	matches   []types.EmbeddingMatch
}

func (f *fakeEmbeddingStore) SearchByVector(ctx context.Context, kbUUID string, vector pgvector.Vector, limit int, minScore float64) ([]types.EmbeddingMatch, error) {
	f.gotKbUUID = kbUUID
	f.gotLimit = limit
	return f.matches, nil
}

func TestEmbeddingRetriever(t *testing.T) {
	store := &fakeEmbeddingStore{
		matches: []types.EmbeddingMatch{
			{KnowledgeBaseEmbedding: types.KnowledgeBaseEmbedding{ID: 7, Content: "refunds take 14 days"}, Score: 0.91},
		},
	}
	r := rag.NewEmbeddingRetriever(&fakeEmbedder{}, store, "kb-1", 0.6)

	passages, err := r.Retrieve(context.Background(), "refund time?", 3)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, types.QA_REF_TYPE_EMBEDDING, passages[0].RefType)
	assert.Equal(t, int64(7), passages[0].RefID)
	assert.Equal(t, "kb-1", store.gotKbUUID)
	assert.Equal(t, 3, store.gotLimit)
}

func TestEmbeddingRetrieverZeroBudget(t *testing.T) {
	r := rag.NewEmbeddingRetriever(&fakeEmbedder{}, &fakeEmbeddingStore{}, "kb-1", 0.6)
	passages, err := r.Retrieve(context.Background(), "question", 0)
	require.NoError(t, err)
	assert.Empty(t, passages)
}

type fakeGraphStore struct {
	gotKeywords []string
	triples     []types.KnowledgeBaseGraphTriple
}

func (f *fakeGraphStore) SearchTriples(ctx context.Context, kbUUID string, keywords []string, limit int) ([]types.KnowledgeBaseGraphTriple, error) {
	f.gotKeywords = keywords
	return f.triples, nil
}

func TestGraphRetriever(t *testing.T) {
	store := &fakeGraphStore{
		triples: []types.KnowledgeBaseGraphTriple{
			{ID: 3, Source: "Acme", Relation: "founded in", Target: "1999"},
		},
	}
	r := rag.NewGraphRetriever(store, "kb-1")

	passages, err := r.Retrieve(context.Background(), "When was Acme founded?", 5)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, types.QA_REF_TYPE_GRAPH, passages[0].RefType)
	assert.Equal(t, "Acme founded in 1999", passages[0].Content)
	assert.Contains(t, store.gotKeywords, "acme")
	assert.Contains(t, store.gotKeywords, "founded")
}

func TestExtractKeywords(t *testing.T) {
	kws := rag.ExtractKeywords("What is the refund policy of Acme?")
	assert.Contains(t, kws, "refund")
	assert.Contains(t, kws, "policy")
	assert.Contains(t, kws, "acme")
	assert.NotContains(t, kws, "the")
	assert.NotContains(t, kws, "what")
}

func TestExtractKeywordsCJK(t *testing.T) {
	kws := rag.ExtractKeywords("公司的退款政策是什么")
	assert.Contains(t, kws, "公司的退款政策是什么")
}

func TestContents(t *testing.T) {
	out := rag.Contents([]rag.Passage{{Content: "a"}, {Content: "b"}})
	assert.Equal(t, []string{"a", "b"}, out)
}
