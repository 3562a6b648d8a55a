package rag

import (
	"context"
)

// Passage is one retrieved piece of reference content, tagged with the
// retriever type so answer references can be recorded per source.
type Passage struct {
	RefType string
	RefID   int64
	Content string
	Score   float64
}

// ContentRetriever turns a question into reference passages. The closed
// set of implementations is EmbeddingRetriever and GraphRetriever.
type ContentRetriever interface {
	Type() string
	Retrieve(ctx context.Context, question string, maxResults int) ([]Passage, error)
}

// Contents flattens passages into prompt-ready strings.
func Contents(passages []Passage) []string {
	out := make([]string, 0, len(passages))
	for _, p := range passages {
		out = append(out, p.Content)
	}
	return out
}
