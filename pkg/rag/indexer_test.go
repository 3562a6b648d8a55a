package rag_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askbase-ai/askbase-ai/pkg/ai"
	"github.com/askbase-ai/askbase-ai/pkg/rag"
	"github.com/askbase-ai/askbase-ai/pkg/types"
)

type docEmbedder struct{}

func (f *docEmbedder) EmbeddingForQuery(ctx context.Context, content []string) (ai.EmbeddingResult, error) {
	return f.EmbeddingForDocument(ctx, "", content)
}

func (f *docEmbedder) EmbeddingForDocument(ctx context.Context, title string, content []string) (ai.EmbeddingResult, error) {
	res := ai.EmbeddingResult{}
	for range content {
		res.Data = append(res.Data, []float32{0.1, 0.2})
	}
	return res, nil
}

type recordingIndexStore struct {
	mu sync.Mutex

	embeddingStatus map[string]int
	graphStatus     map[string]int
	chunks          map[string][]string
	triples         map[string][]types.KnowledgeBaseGraphTriple
}

func newRecordingIndexStore() *recordingIndexStore {
	return &recordingIndexStore{
		embeddingStatus: make(map[string]int),
		graphStatus:     make(map[string]int),
		chunks:          make(map[string][]string),
		triples:         make(map[string][]types.KnowledgeBaseGraphTriple),
	}
}

func (s *recordingIndexStore) UpdateEmbeddingStatus(ctx context.Context, itemUUID string, status int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embeddingStatus[itemUUID] = status
	return nil
}

func (s *recordingIndexStore) UpdateGraphStatus(ctx context.Context, itemUUID string, status int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphStatus[itemUUID] = status
	return nil
}

func (s *recordingIndexStore) ReplaceEmbeddings(ctx context.Context, kbUUID, itemUUID string, chunks []string, vectors []pgvector.Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[itemUUID] = chunks
	return nil
}

func (s *recordingIndexStore) ReplaceTriples(ctx context.Context, kbUUID, itemUUID string, triples []types.KnowledgeBaseGraphTriple) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triples[itemUUID] = triples
	return nil
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[string]bool)}
}

func (l *memLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *memLocker) ReleaseLock(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

type staticSource struct {
	content string
}

func (s *staticSource) Content(ctx context.Context, item types.KnowledgeBaseItem) (string, error) {
	return s.content, nil
}

func TestIndexerRunsJobAndReleasesLock(t *testing.T) {
	store := newRecordingIndexStore()
	locker := newMemLocker()

	var signalled []string
	var signalMu sync.Mutex

	idx := rag.NewIndexer(&docEmbedder{}, store, &staticSource{content: "Acme ships widgets.\nWidgets need batteries."}, locker,
		func(ctx context.Context, kbUUID string) {
			signalMu.Lock()
			signalled = append(signalled, kbUUID)
			signalMu.Unlock()
		})

	kb := &types.KnowledgeBase{UUID: "kb-1", IngestMaxOverlap: 0}
	ok, err := idx.Submit(context.Background(), rag.IndexJob{
		KB:      kb,
		Items:   []types.KnowledgeBaseItem{{UUID: "item-1", Title: "doc"}},
		LockKey: "lock:u1",
	})
	require.NoError(t, err)
	require.True(t, ok)

	idx.Close()

	assert.Equal(t, types.EMBEDDING_STATUS_DONE, store.embeddingStatus["item-1"])
	assert.Equal(t, types.EMBEDDING_STATUS_DONE, store.graphStatus["item-1"])
	assert.NotEmpty(t, store.chunks["item-1"])
	assert.Equal(t, []string{"kb-1"}, signalled)

	locked, _ := locker.TryLock(context.Background(), "lock:u1", time.Minute)
	assert.True(t, locked, "lock should have been released after the job")
}

func TestIndexerSubmitHeldLock(t *testing.T) {
	locker := newMemLocker()
	_, err := locker.TryLock(context.Background(), "lock:u1", time.Minute)
	require.NoError(t, err)

	idx := rag.NewIndexer(&docEmbedder{}, newRecordingIndexStore(), &staticSource{}, locker, nil)
	defer idx.Close()

	ok, err := idx.Submit(context.Background(), rag.IndexJob{
		KB:      &types.KnowledgeBase{UUID: "kb-1"},
		Items:   []types.KnowledgeBaseItem{{UUID: "item-1"}},
		LockKey: "lock:u1",
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExtractTriples(t *testing.T) {
	triples := rag.ExtractTriples("kb-1", "item-1", "Acme acquired Widgets Inc in 2001.")
	require.NotEmpty(t, triples)
	assert.Equal(t, "co_occurs", triples[0].Relation)
	assert.Equal(t, "acme", triples[0].Source)
	assert.Equal(t, "kb-1", triples[0].KbUUID)
	assert.Equal(t, "item-1", triples[0].ItemUUID)
}
