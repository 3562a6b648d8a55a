package v1

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/askbase-ai/askbase-ai/app/core"
	"github.com/askbase-ai/askbase-ai/pkg/errors"
	"github.com/askbase-ai/askbase-ai/pkg/i18n"
	"github.com/askbase-ai/askbase-ai/pkg/types"
	"github.com/askbase-ai/askbase-ai/pkg/utils"
)

type KnowledgeBaseLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewKnowledgeBaseLogic(ctx context.Context, core *core.Core) *KnowledgeBaseLogic {
	return &KnowledgeBaseLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

type CreateKnowledgeBaseArgs struct {
	Title               string   `json:"title" binding:"required,max=64"`
	Remark              string   `json:"remark" binding:"max=255"`
	IsPublic            bool     `json:"is_public"`
	IsStrict            bool     `json:"is_strict"`
	IngestMaxOverlap    int      `json:"ingest_max_overlap"`
	RetrieveMaxResults  int      `json:"retrieve_max_results"`
	RetrieveMinScore    *float64 `json:"retrieve_min_score"`
	QueryLLMTemperature *float64 `json:"query_llm_temperature"`
}

func (l *KnowledgeBaseLogic) CreateKnowledgeBase(args CreateKnowledgeBaseArgs) (*types.KnowledgeBase, error) {
	user := l.GetUserInfo().User

	title := strings.TrimSpace(args.Title)
	if title == "" {
		return nil, errors.New("KnowledgeBaseLogic.CreateKnowledgeBase", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}

	exist, err := l.core.Store().KnowledgeBaseStore().GetByTitle(l.ctx, user, title)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("KnowledgeBaseLogic.CreateKnowledgeBase.GetByTitle", i18n.ERROR_INTERNAL, err)
	}
	if exist != nil {
		return nil, errors.New("KnowledgeBaseLogic.CreateKnowledgeBase", i18n.ERROR_TITLE_EXIST, nil).Code(http.StatusBadRequest)
	}

	kb := types.KnowledgeBase{
		ID:                  utils.GenUniqID(),
		UUID:                utils.GenRandomID(),
		UserID:              user,
		Title:               title,
		Remark:              args.Remark,
		IsPublic:            args.IsPublic,
		IsStrict:            args.IsStrict,
		IngestMaxOverlap:    args.IngestMaxOverlap,
		RetrieveMaxResults:  args.RetrieveMaxResults,
		RetrieveMinScore:    types.DEFAULT_RETRIEVE_MIN_SCORE,
		QueryLLMTemperature: types.DEFAULT_QUERY_TEMPERATURE,
	}
	if kb.IngestMaxOverlap < 0 {
		kb.IngestMaxOverlap = types.DEFAULT_INGEST_MAX_OVERLAP
	}
	// zero means derive from the model's input token budget at ask time
	if kb.RetrieveMaxResults < 0 {
		kb.RetrieveMaxResults = 0
	}
	if args.RetrieveMinScore != nil {
		kb.RetrieveMinScore = *args.RetrieveMinScore
	}
	if args.QueryLLMTemperature != nil {
		kb.QueryLLMTemperature = *args.QueryLLMTemperature
	}

	if err = l.core.Store().KnowledgeBaseStore().Create(l.ctx, kb); err != nil {
		return nil, errors.New("KnowledgeBaseLogic.CreateKnowledgeBase.Create", i18n.ERROR_INTERNAL, err)
	}
	return &kb, nil
}

type UpdateKnowledgeBaseArgs struct {
	Title               string   `json:"title" binding:"required,max=64"`
	Remark              string   `json:"remark" binding:"max=255"`
	IsPublic            bool     `json:"is_public"`
	IsStrict            bool     `json:"is_strict"`
	IngestMaxOverlap    int      `json:"ingest_max_overlap"`
	RetrieveMaxResults  int      `json:"retrieve_max_results"`
	RetrieveMinScore    *float64 `json:"retrieve_min_score"`
	QueryLLMTemperature *float64 `json:"query_llm_temperature"`
}

func (l *KnowledgeBaseLogic) UpdateKnowledgeBase(kbUUID string, args UpdateKnowledgeBaseArgs) (*types.KnowledgeBase, error) {
	kb, err := l.mustGetKnowledgeBase(kbUUID)
	if err != nil {
		return nil, err
	}
	if err = l.checkKnowledgeBasePrivilege(kb); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(args.Title)
	if title != kb.Title {
		exist, err := l.core.Store().KnowledgeBaseStore().GetByTitle(l.ctx, kb.UserID, title)
		if err != nil && err != sql.ErrNoRows {
			return nil, errors.New("KnowledgeBaseLogic.UpdateKnowledgeBase.GetByTitle", i18n.ERROR_INTERNAL, err)
		}
		if exist != nil {
			return nil, errors.New("KnowledgeBaseLogic.UpdateKnowledgeBase", i18n.ERROR_TITLE_EXIST, nil).Code(http.StatusBadRequest)
		}
	}

	kb.Title = title
	kb.Remark = args.Remark
	kb.IsPublic = args.IsPublic
	kb.IsStrict = args.IsStrict
	if args.IngestMaxOverlap >= 0 {
		kb.IngestMaxOverlap = args.IngestMaxOverlap
	}
	if args.RetrieveMaxResults > 0 {
		kb.RetrieveMaxResults = args.RetrieveMaxResults
	}
	if args.RetrieveMinScore != nil {
		kb.RetrieveMinScore = *args.RetrieveMinScore
	}
	if args.QueryLLMTemperature != nil {
		kb.QueryLLMTemperature = *args.QueryLLMTemperature
	}

	if err = l.core.Store().KnowledgeBaseStore().Update(l.ctx, *kb); err != nil {
		return nil, errors.New("KnowledgeBaseLogic.UpdateKnowledgeBase.Update", i18n.ERROR_INTERNAL, err)
	}
	return kb, nil
}

func (l *KnowledgeBaseLogic) mustGetKnowledgeBase(kbUUID string) (*types.KnowledgeBase, error) {
	kb, err := l.core.Store().KnowledgeBaseStore().GetByUUID(l.ctx, kbUUID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("KnowledgeBaseLogic.mustGetKnowledgeBase", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("KnowledgeBaseLogic.mustGetKnowledgeBase", i18n.ERROR_INTERNAL, err)
	}
	return kb, nil
}

func (l *KnowledgeBaseLogic) GetKnowledgeBase(kbUUID string) (*types.KnowledgeBase, error) {
	kb, err := l.mustGetKnowledgeBase(kbUUID)
	if err != nil {
		return nil, err
	}
	if err = l.checkKnowledgeBaseVisible(kb); err != nil {
		return nil, err
	}
	return kb, nil
}

type KnowledgeBaseListResult struct {
	List  []types.KnowledgeBase `json:"list"`
	Total uint64                `json:"total"`
}

// Search lists visible knowledge bases: the caller's own plus public
// ones, optionally filtered by title keywords.
func (l *KnowledgeBaseLogic) Search(keywords string, page, pageSize uint64) (*KnowledgeBaseListResult, error) {
	opts := types.ListKnowledgeBaseOptions{
		UserID:        l.GetUserInfo().User,
		Keywords:      keywords,
		IncludePublic: true,
	}
	return l.list(opts, page, pageSize)
}

func (l *KnowledgeBaseLogic) SearchMine(keywords string, page, pageSize uint64) (*KnowledgeBaseListResult, error) {
	opts := types.ListKnowledgeBaseOptions{
		UserID:   l.GetUserInfo().User,
		Keywords: keywords,
		OnlyMine: true,
	}
	return l.list(opts, page, pageSize)
}

func (l *KnowledgeBaseLogic) list(opts types.ListKnowledgeBaseOptions, page, pageSize uint64) (*KnowledgeBaseListResult, error) {
	list, err := l.core.Store().KnowledgeBaseStore().List(l.ctx, opts, page, pageSize)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("KnowledgeBaseLogic.list", i18n.ERROR_INTERNAL, err)
	}
	total, err := l.core.Store().KnowledgeBaseStore().Total(l.ctx, opts)
	if err != nil {
		return nil, errors.New("KnowledgeBaseLogic.list.Total", i18n.ERROR_INTERNAL, err)
	}
	return &KnowledgeBaseListResult{List: list, Total: total}, nil
}

func (l *KnowledgeBaseLogic) DeleteKnowledgeBase(kbUUID string) error {
	kb, err := l.mustGetKnowledgeBase(kbUUID)
	if err != nil {
		return err
	}
	if err = l.checkKnowledgeBasePrivilege(kb); err != nil {
		return err
	}

	if err = l.core.Store().KnowledgeBaseStore().SoftDelete(l.ctx, kbUUID); err != nil {
		return errors.New("KnowledgeBaseLogic.DeleteKnowledgeBase", i18n.ERROR_INTERNAL, err)
	}

	if err = l.core.Cache().SignalStatRecalc(l.ctx, kbUUID); err != nil {
		slog.Error("failed to signal statistic recalc", slog.String("kb_uuid", kbUUID), slog.String("error", err.Error()))
	}
	return nil
}

type ToggleStarResult struct {
	Starred bool `json:"starred"`
}

// ToggleStar flips the caller's star on a knowledge base. The star row
// is created once and soft-toggled afterwards so repeated calls simply
// alternate the state.
func (l *KnowledgeBaseLogic) ToggleStar(kbUUID string) (*ToggleStarResult, error) {
	kb, err := l.mustGetKnowledgeBase(kbUUID)
	if err != nil {
		return nil, err
	}
	if err = l.checkKnowledgeBaseVisible(kb); err != nil {
		return nil, err
	}

	user := l.GetUserInfo().User
	star, err := l.core.Store().KnowledgeBaseStarStore().Get(l.ctx, user, kbUUID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("KnowledgeBaseLogic.ToggleStar.Get", i18n.ERROR_INTERNAL, err)
	}

	starred, delta := starTransition(star)
	if star == nil {
		err = l.core.Store().KnowledgeBaseStarStore().Create(l.ctx, types.KnowledgeBaseStar{
			ID:     utils.GenUniqID(),
			KbID:   kb.ID,
			KbUUID: kb.UUID,
			UserID: user,
		})
	} else {
		err = l.core.Store().KnowledgeBaseStarStore().SetDeleted(l.ctx, star.ID, !starred)
	}
	if err != nil {
		return nil, errors.New("KnowledgeBaseLogic.ToggleStar", i18n.ERROR_INTERNAL, err)
	}

	if err = l.core.Store().KnowledgeBaseStore().UpdateStarCount(l.ctx, kbUUID, delta); err != nil {
		return nil, errors.New("KnowledgeBaseLogic.ToggleStar.UpdateStarCount", i18n.ERROR_INTERNAL, err)
	}

	if err = l.core.Cache().SignalStatRecalc(l.ctx, kbUUID); err != nil {
		slog.Error("failed to signal statistic recalc", slog.String("kb_uuid", kbUUID), slog.String("error", err.Error()))
	}

	return &ToggleStarResult{Starred: starred}, nil
}

// starTransition decides the next star state: a missing row creates an
// active star, an existing row flips its deleted flag. The delta keeps
// the cached star_count in step until the cron recount settles it.
func starTransition(star *types.KnowledgeBaseStar) (starred bool, delta int) {
	if star == nil || star.IsDeleted {
		return true, 1
	}
	return false, -1
}

type KnowledgeBaseItemListResult struct {
	List  []types.KnowledgeBaseItem `json:"list"`
	Total uint64                    `json:"total"`
}

func (l *KnowledgeBaseLogic) ListItems(kbUUID, keywords string, page, pageSize uint64) (*KnowledgeBaseItemListResult, error) {
	kb, err := l.mustGetKnowledgeBase(kbUUID)
	if err != nil {
		return nil, err
	}
	if err = l.checkKnowledgeBaseVisible(kb); err != nil {
		return nil, err
	}

	list, err := l.core.Store().KnowledgeBaseItemStore().ListByKb(l.ctx, kbUUID, keywords, page, pageSize)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("KnowledgeBaseLogic.ListItems", i18n.ERROR_INTERNAL, err)
	}
	total, err := l.core.Store().KnowledgeBaseItemStore().Total(l.ctx, kbUUID, keywords)
	if err != nil {
		return nil, errors.New("KnowledgeBaseLogic.ListItems.Total", i18n.ERROR_INTERNAL, err)
	}
	return &KnowledgeBaseItemListResult{List: list, Total: total}, nil
}

func (l *KnowledgeBaseLogic) DeleteItem(kbUUID, itemUUID string) error {
	kb, err := l.mustGetKnowledgeBase(kbUUID)
	if err != nil {
		return err
	}
	if err = l.checkKnowledgeBasePrivilege(kb); err != nil {
		return err
	}

	item, err := l.core.Store().KnowledgeBaseItemStore().GetByUUID(l.ctx, itemUUID)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.New("KnowledgeBaseLogic.DeleteItem", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return errors.New("KnowledgeBaseLogic.DeleteItem", i18n.ERROR_INTERNAL, err)
	}
	if item.KbUUID != kbUUID {
		return errors.New("KnowledgeBaseLogic.DeleteItem", i18n.ERROR_NOT_FOUND, nil).Code(http.StatusNotFound)
	}

	err = l.core.Store().Transaction(l.ctx, func(ctx context.Context) error {
		if err := l.core.Store().KnowledgeBaseItemStore().SoftDelete(ctx, itemUUID); err != nil {
			return err
		}
		if err := l.core.Store().KnowledgeBaseEmbeddingStore().DeleteByItem(ctx, itemUUID); err != nil {
			return err
		}
		return l.core.Store().KnowledgeBaseGraphStore().DeleteByItem(ctx, itemUUID)
	})
	if err != nil {
		return errors.New("KnowledgeBaseLogic.DeleteItem.Transaction", i18n.ERROR_INTERNAL, err)
	}

	if err = l.core.Cache().SignalStatRecalc(l.ctx, kbUUID); err != nil {
		slog.Error("failed to signal statistic recalc", slog.String("kb_uuid", kbUUID), slog.String("error", err.Error()))
	}
	return nil
}
