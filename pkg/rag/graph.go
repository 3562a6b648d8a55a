package rag

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/samber/lo"

	"github.com/askbase-ai/askbase-ai/pkg/types"
)

// GraphSearcher is the triple store slice the retriever needs.
type GraphSearcher interface {
	SearchTriples(ctx context.Context, kbUUID string, keywords []string, limit int) ([]types.KnowledgeBaseGraphTriple, error)
}

// GraphRetriever matches question keywords against extracted
// subject-relation-object triples.
type GraphRetriever struct {
	store  GraphSearcher
	kbUUID string
}

func NewGraphRetriever(store GraphSearcher, kbUUID string) *GraphRetriever {
	return &GraphRetriever{
		store:  store,
		kbUUID: kbUUID,
	}
}

func (r *GraphRetriever) Type() string {
	return types.QA_REF_TYPE_GRAPH
}

func (r *GraphRetriever) Retrieve(ctx context.Context, question string, maxResults int) ([]Passage, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	keywords := ExtractKeywords(question)
	if len(keywords) == 0 {
		return nil, nil
	}

	triples, err := r.store.SearchTriples(ctx, r.kbUUID, keywords, maxResults)
	if err != nil {
		return nil, fmt.Errorf("failed to search graph triples, %w", err)
	}

	passages := make([]Passage, 0, len(triples))
	for _, t := range triples {
		content := t.Content
		if content == "" {
			content = fmt.Sprintf("%s %s %s", t.Source, t.Relation, t.Target)
		}
		passages = append(passages, Passage{
			RefType: types.QA_REF_TYPE_GRAPH,
			RefID:   t.ID,
			Content: content,
			Score:   1,
		})
	}
	return passages, nil
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"of": true, "to": true, "in": true, "on": true, "and": true, "or": true,
	"what": true, "which": true, "who": true, "how": true, "why": true,
	"do": true, "does": true, "did": true, "can": true, "could": true,
}

// ExtractKeywords splits a question into lookup terms. Latin words pass
// through a stopword filter; CJK runs are emitted whole so ILIKE
// matching can find them inside entity names.
func ExtractKeywords(question string) []string {
	var (
		words []string
		cur   strings.Builder
		cjk   strings.Builder
	)

	flush := func(b *strings.Builder) {
		if b.Len() > 0 {
			words = append(words, b.String())
			b.Reset()
		}
	}

	for _, r := range question {
		switch {
		case unicode.Is(unicode.Han, r):
			flush(&cur)
			cjk.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flush(&cjk)
			cur.WriteRune(unicode.ToLower(r))
		default:
			flush(&cur)
			flush(&cjk)
		}
	}
	flush(&cur)
	flush(&cjk)

	words = lo.Filter(words, func(w string, _ int) bool {
		return !stopwords[w] && len([]rune(w)) > 1
	})
	return lo.Uniq(words)
}
