package v1

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/askbase-ai/askbase-ai/app/core"
	"github.com/askbase-ai/askbase-ai/pkg/docparser"
	"github.com/askbase-ai/askbase-ai/pkg/errors"
	"github.com/askbase-ai/askbase-ai/pkg/i18n"
	"github.com/askbase-ai/askbase-ai/pkg/types"
	"github.com/askbase-ai/askbase-ai/pkg/utils"
)

const (
	// MaxUploadFileSize bounds a single uploaded document.
	MaxUploadFileSize = 30 << 20

	briefLength = 200
)

type UploadLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewUploadLogic(ctx context.Context, core *core.Core) *UploadLogic {
	return &UploadLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

type UploadDocsResult struct {
	Files  []types.File              `json:"files"`
	Items  []types.KnowledgeBaseItem `json:"items"`
	Failed map[string]string         `json:"failed,omitempty"`
}

// UploadDocs ingests a batch of documents into a knowledge base. Each
// file is stored, parsed and recorded as an item awaiting indexing.
// Files with an extension no parser handles are stored without an item.
// Failures are collected per file so one bad document does not sink the
// batch; an empty batch returns an empty result.
func (l *UploadLogic) UploadDocs(kbUUID string, autoIndex bool, files []*multipart.FileHeader) (*UploadDocsResult, error) {
	kb, err := l.core.Store().KnowledgeBaseStore().GetByUUID(l.ctx, kbUUID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("UploadLogic.UploadDocs", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("UploadLogic.UploadDocs", i18n.ERROR_INTERNAL, err)
	}
	if err = l.checkKnowledgeBasePrivilege(kb); err != nil {
		return nil, err
	}

	result := ingestBatch(files, func(fh *multipart.FileHeader) (*types.File, *types.KnowledgeBaseItem, error) {
		file, item, err := l.uploadOne(kb, fh)
		if err != nil {
			slog.Warn("failed to ingest document",
				slog.String("kb_uuid", kbUUID),
				slog.String("file", fh.Filename),
				slog.String("error", err.Error()))
		}
		return file, item, err
	})

	if len(result.Items) == 0 {
		return result, nil
	}

	if err = l.core.Cache().SignalStatRecalc(l.ctx, kbUUID); err != nil {
		slog.Error("failed to signal statistic recalc", slog.String("kb_uuid", kbUUID), slog.String("error", err.Error()))
	}

	if autoIndex {
		uuids := make([]string, 0, len(result.Items))
		for _, item := range result.Items {
			uuids = append(uuids, item.UUID)
		}
		if _, err := NewIndexLogic(l.ctx, l.core).IndexItems(uuids); err != nil {
			// uploads already succeeded, indexing can be retried explicitly
			slog.Error("auto index after upload failed",
				slog.String("kb_uuid", kbUUID),
				slog.String("error", err.Error()))
		}
	}
	return result, nil
}

// ingestBatch runs ingest once per file, collecting failures per file
// so one bad document never sinks the rest of the batch. A stored file
// without an item means no parser handles its format.
func ingestBatch(files []*multipart.FileHeader, ingest func(*multipart.FileHeader) (*types.File, *types.KnowledgeBaseItem, error)) *UploadDocsResult {
	result := &UploadDocsResult{
		Failed: make(map[string]string),
	}
	for _, fh := range files {
		file, item, err := ingest(fh)
		if err != nil {
			result.Failed[fh.Filename] = err.Error()
			continue
		}
		result.Files = append(result.Files, *file)
		if item != nil {
			result.Items = append(result.Items, *item)
		}
	}
	return result
}

// uploadOne stores a single document and, when its text can be parsed,
// creates the item carrying the sanitized content. A nil item with nil
// error means the file was stored but has no supported parser.
func (l *UploadLogic) uploadOne(kb *types.KnowledgeBase, fh *multipart.FileHeader) (*types.File, *types.KnowledgeBaseItem, error) {
	if fh.Size > MaxUploadFileSize {
		return nil, nil, errors.New("UploadLogic.uploadOne", i18n.ERROR_FILE_READ_FAIL, fmt.Errorf("file too large: %d", fh.Size)).Code(http.StatusBadRequest)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, errors.New("UploadLogic.uploadOne.Open", i18n.ERROR_FILE_READ_FAIL, err).Code(http.StatusBadRequest)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, errors.New("UploadLogic.uploadOne.ReadAll", i18n.ERROR_FILE_READ_FAIL, err).Code(http.StatusBadRequest)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), ".")
	if !docparser.Supported(ext) {
		// stored for the caller, no item to index
		file, err := l.saveFile(fh.Filename, ext, raw)
		if err != nil {
			return nil, nil, err
		}
		return file, nil, nil
	}

	// reject unparseable files up front rather than at index time
	content, err := docparser.Parse(ext, raw)
	if err != nil {
		return nil, nil, errors.New("UploadLogic.uploadOne.Parse", i18n.ERROR_FILE_READ_FAIL, err).Code(http.StatusBadRequest)
	}
	content = utils.StripNulChars(content)

	file, err := l.saveFile(fh.Filename, ext, raw)
	if err != nil {
		return nil, nil, err
	}

	item := types.KnowledgeBaseItem{
		ID:              utils.GenUniqID(),
		UUID:            utils.GenRandomID(),
		KbID:            kb.ID,
		KbUUID:          kb.UUID,
		SourceFileID:    file.ID,
		Title:           fh.Filename,
		Brief:           utils.Brief(content, briefLength),
		Content:         content,
		EmbeddingStatus: types.EMBEDDING_STATUS_NONE,
		GraphStatus:     types.EMBEDDING_STATUS_NONE,
	}
	if err = l.core.Store().KnowledgeBaseItemStore().Create(l.ctx, item); err != nil {
		return nil, nil, errors.New("UploadLogic.uploadOne.Create", i18n.ERROR_INTERNAL, err)
	}
	return file, &item, nil
}

// saveFile stores the raw document, reusing the stored object when the
// same user uploaded the same bytes before. Dedup stays within the
// owner so file rows never cross users.
func (l *UploadLogic) saveFile(name, ext string, raw []byte) (*types.File, error) {
	sum := sha256.Sum256(raw)
	hash := hex.EncodeToString(sum[:])
	user := l.GetUserInfo().User

	exist, err := l.core.Store().FileStore().GetBySHA256(l.ctx, user, hash)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("UploadLogic.saveFile.GetBySHA256", i18n.ERROR_INTERNAL, err)
	}
	if exist != nil {
		return exist, nil
	}

	file := newStoredFile(user, name, ext, hash, int64(len(raw)))

	if storage := l.core.FileStorage(); storage != nil {
		if err = storage.Upload(file.Path, bytes.NewReader(raw)); err != nil {
			return nil, errors.New("UploadLogic.saveFile.Upload", i18n.ERROR_UPLOAD_FAIL, err)
		}
	}

	if err = l.core.Store().FileStore().Create(l.ctx, file); err != nil {
		return nil, errors.New("UploadLogic.saveFile.Create", i18n.ERROR_INTERNAL, err)
	}
	return &file, nil
}

// newStoredFile builds the file row for an upload. The object path is
// keyed by owner and content hash, so dedup within one user reuses the
// object while different users always get their own.
func newStoredFile(user, name, ext, hash string, size int64) types.File {
	return types.File{
		ID:     utils.GenUniqID(),
		UUID:   utils.GenRandomID(),
		Name:   name,
		Ext:    ext,
		Path:   fmt.Sprintf("docs/%s/%s.%s", user, hash, ext),
		Size:   size,
		SHA256: hash,
		UserID: user,
	}
}
