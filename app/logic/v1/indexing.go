package v1

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/askbase-ai/askbase-ai/app/core"
	"github.com/askbase-ai/askbase-ai/pkg/errors"
	"github.com/askbase-ai/askbase-ai/pkg/i18n"
	"github.com/askbase-ai/askbase-ai/pkg/rag"
	"github.com/askbase-ai/askbase-ai/pkg/types"
)

const indexWalkBatch = 100

type IndexLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewIndexLogic(ctx context.Context, core *core.Core) *IndexLogic {
	return &IndexLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

// IndexKnowledgeBase queues every item of the knowledge base for
// (re)indexing. One index job per owner runs at a time; a held lock
// reports busy instead of queueing behind it.
func (l *IndexLogic) IndexKnowledgeBase(kbUUID string) (bool, error) {
	kb, err := l.getKb(kbUUID)
	if err != nil {
		return false, err
	}
	if err = l.checkKnowledgeBasePrivilege(kb); err != nil {
		return false, err
	}

	var (
		items    []types.KnowledgeBaseItem
		anchorID int64
	)
	for {
		batch, err := l.core.Store().KnowledgeBaseItemStore().ListAfterID(l.ctx, kbUUID, anchorID, indexWalkBatch)
		if err != nil && err != sql.ErrNoRows {
			return false, errors.New("IndexLogic.IndexKnowledgeBase.ListAfterID", i18n.ERROR_INTERNAL, err)
		}
		if len(batch) == 0 {
			break
		}
		anchorID = batch[len(batch)-1].ID
		items = append(items, indexStubs(batch)...)
	}
	if len(items) == 0 {
		return true, nil
	}

	return l.submit(kb, items)
}

// indexStubs drops the document text from walked items so queueing a
// whole knowledge base holds metadata only. Index workers reload each
// item's content when its turn comes.
func indexStubs(batch []types.KnowledgeBaseItem) []types.KnowledgeBaseItem {
	for i := range batch {
		batch[i].Content = ""
	}
	return batch
}

// IndexItems indexes a specific set of items. All items must belong to
// the same knowledge base.
func (l *IndexLogic) IndexItems(itemUUIDs []string) (bool, error) {
	if len(itemUUIDs) == 0 {
		return false, errors.New("IndexLogic.IndexItems", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	items := make([]types.KnowledgeBaseItem, 0, len(itemUUIDs))
	for _, uuid := range itemUUIDs {
		item, err := l.core.Store().KnowledgeBaseItemStore().GetByUUID(l.ctx, uuid)
		if err != nil {
			if err == sql.ErrNoRows {
				return false, errors.New("IndexLogic.IndexItems.GetByUUID", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
			}
			return false, errors.New("IndexLogic.IndexItems.GetByUUID", i18n.ERROR_INTERNAL, err)
		}
		items = append(items, *item)
	}

	kbUUID := items[0].KbUUID
	for _, item := range items {
		if item.KbUUID != kbUUID {
			return false, errors.New("IndexLogic.IndexItems", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
		}
	}

	kb, err := l.getKb(kbUUID)
	if err != nil {
		return false, err
	}
	if err = l.checkKnowledgeBasePrivilege(kb); err != nil {
		return false, err
	}

	return l.submit(kb, items)
}

func (l *IndexLogic) submit(kb *types.KnowledgeBase, items []types.KnowledgeBaseItem) (bool, error) {
	lockKey := types.IndexUserLockKey(kb.UserID)

	locked, err := l.core.Cache().IsLocked(l.ctx, lockKey)
	if err != nil {
		return false, errors.New("IndexLogic.submit.IsLocked", i18n.ERROR_INTERNAL, err)
	}
	if locked {
		return false, errors.New("IndexLogic.submit", i18n.ERROR_INDEX_BUSY, nil).Code(http.StatusConflict)
	}

	ok, err := l.core.Indexer().Submit(l.ctx, rag.IndexJob{
		KB:      kb,
		Items:   items,
		LockKey: lockKey,
	})
	if err != nil {
		return false, errors.New("IndexLogic.submit", i18n.ERROR_INTERNAL, err)
	}
	if !ok {
		return false, errors.New("IndexLogic.submit", i18n.ERROR_INDEX_BUSY, nil).Code(http.StatusConflict)
	}
	return true, nil
}

// CheckIndexIsFinish reports whether the caller's index lock is free.
func (l *IndexLogic) CheckIndexIsFinish() (bool, error) {
	locked, err := l.core.Cache().IsLocked(l.ctx, types.IndexUserLockKey(l.GetUserInfo().User))
	if err != nil {
		return false, errors.New("IndexLogic.CheckIndexIsFinish", i18n.ERROR_INTERNAL, err)
	}
	return !locked, nil
}

func (l *IndexLogic) getKb(kbUUID string) (*types.KnowledgeBase, error) {
	kb, err := l.core.Store().KnowledgeBaseStore().GetByUUID(l.ctx, kbUUID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("IndexLogic.getKb", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("IndexLogic.getKb", i18n.ERROR_INTERNAL, err)
	}
	return kb, nil
}
