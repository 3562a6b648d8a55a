package v1

import (
	"fmt"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askbase-ai/askbase-ai/pkg/types"
)

func TestIngestBatchIsolatesFailures(t *testing.T) {
	files := []*multipart.FileHeader{
		{Filename: "good.txt"},
		{Filename: "broken.pdf"},
		{Filename: "archive.zip"},
	}

	result := ingestBatch(files, func(fh *multipart.FileHeader) (*types.File, *types.KnowledgeBaseItem, error) {
		switch fh.Filename {
		case "broken.pdf":
			return nil, nil, fmt.Errorf("corrupt document")
		case "archive.zip":
			// stored but no parser handles it
			return &types.File{Name: fh.Filename}, nil, nil
		default:
			return &types.File{Name: fh.Filename}, &types.KnowledgeBaseItem{Title: fh.Filename}, nil
		}
	})

	require.Len(t, result.Files, 2)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "good.txt", result.Items[0].Title)
	assert.Equal(t, map[string]string{"broken.pdf": "corrupt document"}, result.Failed)
}

func TestIngestBatchEmpty(t *testing.T) {
	result := ingestBatch(nil, func(fh *multipart.FileHeader) (*types.File, *types.KnowledgeBaseItem, error) {
		t.Fatal("ingest should not run for an empty batch")
		return nil, nil, nil
	})
	assert.Empty(t, result.Files)
	assert.Empty(t, result.Items)
	assert.Empty(t, result.Failed)
}

func TestStoredFileScopedToOwner(t *testing.T) {
	hash := "c0ffee"
	a := newStoredFile("user-a", "report.txt", "txt", hash, 10)
	b := newStoredFile("user-b", "report.txt", "txt", hash, 10)

	assert.Equal(t, "user-a", a.UserID)
	assert.Equal(t, "user-b", b.UserID)
	assert.Equal(t, "docs/user-a/c0ffee.txt", a.Path)
	assert.NotEqual(t, a.Path, b.Path, "same bytes from different users must not share an object path")
}
