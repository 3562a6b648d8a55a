package rag

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/askbase-ai/askbase-ai/pkg/ai"
	"github.com/askbase-ai/askbase-ai/pkg/docparser"
	"github.com/askbase-ai/askbase-ai/pkg/safe"
	"github.com/askbase-ai/askbase-ai/pkg/types"
)

const (
	// DefaultIndexWorkers bounds concurrent index jobs. Each job embeds
	// whole documents, so a small pool is deliberate.
	DefaultIndexWorkers = 2

	// IndexLockTTL caps how long an owner's index lock can be held when
	// the holder dies without releasing it.
	IndexLockTTL = time.Minute * 30

	maxTriplesPerItem = 200
)

// ContentSource resolves an item back to its document text.
type ContentSource interface {
	Content(ctx context.Context, item types.KnowledgeBaseItem) (string, error)
}

// IndexStore persists the derived chunks and triples of one item.
type IndexStore interface {
	UpdateEmbeddingStatus(ctx context.Context, itemUUID string, status int) error
	UpdateGraphStatus(ctx context.Context, itemUUID string, status int) error
	ReplaceEmbeddings(ctx context.Context, kbUUID, itemUUID string, chunks []string, vectors []pgvector.Vector) error
	ReplaceTriples(ctx context.Context, kbUUID, itemUUID string, triples []types.KnowledgeBaseGraphTriple) error
}

// Locker is the redis-backed mutual exclusion used to serialize index
// jobs per owner.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

type IndexJob struct {
	KB      *types.KnowledgeBase
	Items   []types.KnowledgeBaseItem
	LockKey string
}

type Indexer struct {
	embedder ai.Embedding
	store    IndexStore
	source   ContentSource
	locker   Locker
	signal   func(ctx context.Context, kbUUID string)

	jobs chan IndexJob
	wg   sync.WaitGroup

	closeOnce sync.Once
}

func NewIndexer(embedder ai.Embedding, store IndexStore, source ContentSource, locker Locker, signal func(ctx context.Context, kbUUID string)) *Indexer {
	idx := &Indexer{
		embedder: embedder,
		store:    store,
		source:   source,
		locker:   locker,
		signal:   signal,
		jobs:     make(chan IndexJob, 64),
	}

	for i := 0; i < DefaultIndexWorkers; i++ {
		idx.wg.Add(1)
		go safe.Run(func() {
			defer idx.wg.Done()
			idx.work()
		})
	}
	return idx
}

// Submit queues a job after acquiring the owner's lock. It returns false
// when the lock is already held or the queue is full.
func (idx *Indexer) Submit(ctx context.Context, job IndexJob) (bool, error) {
	ok, err := idx.locker.TryLock(ctx, job.LockKey, IndexLockTTL)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	select {
	case idx.jobs <- job:
		return true, nil
	default:
		// queue full, give the lock back so the caller can retry
		if err := idx.locker.ReleaseLock(ctx, job.LockKey); err != nil {
			slog.Error("failed to release index lock", slog.String("key", job.LockKey), slog.String("error", err.Error()))
		}
		return false, nil
	}
}

func (idx *Indexer) Close() {
	idx.closeOnce.Do(func() {
		close(idx.jobs)
	})
	idx.wg.Wait()
}

func (idx *Indexer) work() {
	for job := range idx.jobs {
		idx.runJob(job)
	}
}

func (idx *Indexer) runJob(job IndexJob) {
	ctx := context.Background()
	defer func() {
		if err := idx.locker.ReleaseLock(ctx, job.LockKey); err != nil {
			slog.Error("failed to release index lock", slog.String("key", job.LockKey), slog.String("error", err.Error()))
		}
		if idx.signal != nil {
			idx.signal(ctx, job.KB.UUID)
		}
	}()

	for _, item := range job.Items {
		if err := idx.indexItem(ctx, job.KB, item); err != nil {
			slog.Error("failed to index item",
				slog.String("kb_uuid", job.KB.UUID),
				slog.String("item_uuid", item.UUID),
				slog.String("error", err.Error()))
			if serr := idx.store.UpdateEmbeddingStatus(ctx, item.UUID, types.EMBEDDING_STATUS_FAIL); serr != nil {
				slog.Error("failed to mark item failed", slog.String("item_uuid", item.UUID), slog.String("error", serr.Error()))
			}
			continue
		}
	}
}

func (idx *Indexer) indexItem(ctx context.Context, kb *types.KnowledgeBase, item types.KnowledgeBaseItem) error {
	if err := idx.store.UpdateEmbeddingStatus(ctx, item.UUID, types.EMBEDDING_STATUS_DOING); err != nil {
		return err
	}

	content, err := idx.source.Content(ctx, item)
	if err != nil {
		return err
	}

	chunks := docparser.Split(content, docparser.DefaultChunkSize, kb.IngestMaxOverlap)
	if len(chunks) > 0 {
		res, err := idx.embedder.EmbeddingForDocument(ctx, item.Title, chunks)
		if err != nil {
			return err
		}
		vectors := make([]pgvector.Vector, 0, len(res.Data))
		for _, v := range res.Data {
			vectors = append(vectors, pgvector.NewVector(v))
		}
		if err = idx.store.ReplaceEmbeddings(ctx, kb.UUID, item.UUID, chunks, vectors); err != nil {
			return err
		}
	}

	if err = idx.store.UpdateGraphStatus(ctx, item.UUID, types.EMBEDDING_STATUS_DOING); err != nil {
		return err
	}
	triples := ExtractTriples(kb.UUID, item.UUID, content)
	if err = idx.store.ReplaceTriples(ctx, kb.UUID, item.UUID, triples); err != nil {
		if serr := idx.store.UpdateGraphStatus(ctx, item.UUID, types.EMBEDDING_STATUS_FAIL); serr != nil {
			slog.Error("failed to mark graph failed", slog.String("item_uuid", item.UUID), slog.String("error", serr.Error()))
		}
		return err
	}
	if err = idx.store.UpdateGraphStatus(ctx, item.UUID, types.EMBEDDING_STATUS_DONE); err != nil {
		return err
	}

	return idx.store.UpdateEmbeddingStatus(ctx, item.UUID, types.EMBEDDING_STATUS_DONE)
}

// ExtractTriples derives lightweight graph triples from document text.
// Keywords appearing on the same line are linked pairwise in reading
// order, keeping the line as evidence.
func ExtractTriples(kbUUID, itemUUID, content string) []types.KnowledgeBaseGraphTriple {
	var triples []types.KnowledgeBaseGraphTriple
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		keywords := ExtractKeywords(line)
		for i := 0; i+1 < len(keywords); i++ {
			triples = append(triples, types.KnowledgeBaseGraphTriple{
				KbUUID:   kbUUID,
				ItemUUID: itemUUID,
				Source:   keywords[i],
				Relation: "co_occurs",
				Target:   keywords[i+1],
				Content:  line,
			})
			if len(triples) >= maxTriplesPerItem {
				return triples
			}
		}
	}
	return triples
}
