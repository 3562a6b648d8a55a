package v1

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	openai "github.com/sashabaranov/go-openai"

	"github.com/askbase-ai/askbase-ai/app/core"
	"github.com/askbase-ai/askbase-ai/pkg/ai"
	"github.com/askbase-ai/askbase-ai/pkg/errors"
	"github.com/askbase-ai/askbase-ai/pkg/i18n"
	"github.com/askbase-ai/askbase-ai/pkg/rag"
	"github.com/askbase-ai/askbase-ai/pkg/safe"
	"github.com/askbase-ai/askbase-ai/pkg/types"
	"github.com/askbase-ai/askbase-ai/pkg/utils"
)

// streams registers the cancel handle of every in-flight answer stream,
// keyed by qa record uuid.
var streams = cmap.New[context.CancelFunc]()

type QaLogic struct {
	ctx  context.Context
	core *core.Core
	UserInfo
}

func NewQaLogic(ctx context.Context, core *core.Core) *QaLogic {
	return &QaLogic{
		ctx:      ctx,
		core:     core,
		UserInfo: SetupUserInfo(ctx, core),
	}
}

type CreateQaRecordArgs struct {
	Question  string `json:"question" binding:"required,max=4096"`
	ModelName string `json:"model_name" binding:"max=64"`
}

func (l *QaLogic) CreateQaRecord(kbUUID string, args CreateQaRecordArgs) (*types.KnowledgeBaseQaRecord, error) {
	kb, err := l.getKb(kbUUID)
	if err != nil {
		return nil, err
	}
	if err = l.checkKnowledgeBaseVisible(kb); err != nil {
		return nil, err
	}

	modelName := args.ModelName
	if modelName == "" {
		modelName = l.core.AI().ChatModel()
	}

	record := types.KnowledgeBaseQaRecord{
		ID:        utils.GenUniqID(),
		UUID:      utils.GenRandomID(),
		KbID:      kb.ID,
		KbUUID:    kb.UUID,
		UserID:    l.GetUserInfo().User,
		Question:  args.Question,
		ModelName: modelName,
		Status:    types.QA_STATUS_PENDING,
	}
	if err = l.core.Store().QaRecordStore().Create(l.ctx, record); err != nil {
		return nil, errors.New("QaLogic.CreateQaRecord", i18n.ERROR_INTERNAL, err)
	}
	return &record, nil
}

// AskQuestion answers a pending qa record, streaming fragments to the
// receiver. The heavy lifting runs detached so the caller only waits on
// the receiver, not on this method.
func (l *QaLogic) AskQuestion(qaUUID string, receiver types.Receiver) error {
	user := l.GetUserInfo().User

	quota := NewQuotaLogic(l.ctx, l.core)
	if err := quota.CheckRequestTimesOrThrow(user); err != nil {
		return err
	}
	if err := quota.CheckTokenQuotaOrThrow(user); err != nil {
		return err
	}

	record, err := l.core.Store().QaRecordStore().GetByUUID(l.ctx, qaUUID)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.New("QaLogic.AskQuestion", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return errors.New("QaLogic.AskQuestion", i18n.ERROR_INTERNAL, err)
	}
	if !canOperateQaRecord(record, user, l.GetUserInfo().IsAdmin()) {
		return errors.New("QaLogic.AskQuestion", i18n.ERROR_PERMISSION_DENIED, nil).Code(http.StatusForbidden)
	}

	kb, err := l.getKb(record.KbUUID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	streams.Set(record.UUID, cancel)

	go safe.Run(func() {
		defer func() {
			streams.Remove(record.UUID)
			cancel()
		}()
		l.answer(ctx, kb, record, receiver)
	})
	return nil
}

// StopStream cancels an in-flight answer stream. Only the record owner
// or an admin may abort it. The record lookup runs on a detached
// context because the caller's request context is already gone when a
// client disconnect triggers the stop.
func (l *QaLogic) StopStream(qaUUID string) error {
	cancel, ok := streams.Get(qaUUID)
	if !ok {
		return nil
	}

	record, err := l.core.Store().QaRecordStore().GetByUUID(context.Background(), qaUUID)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.New("QaLogic.StopStream", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return errors.New("QaLogic.StopStream", i18n.ERROR_INTERNAL, err)
	}
	if !canOperateQaRecord(record, l.GetUserInfo().User, l.GetUserInfo().IsAdmin()) {
		return errors.New("QaLogic.StopStream", i18n.ERROR_PERMISSION_DENIED, nil).Code(http.StatusForbidden)
	}

	cancel()
	streams.Remove(qaUUID)
	return nil
}

// canOperateQaRecord gates stream control and record mutation to the
// record's owner, with an admin override.
func canOperateQaRecord(record *types.KnowledgeBaseQaRecord, user string, admin bool) bool {
	return record.UserID == user || admin
}

func (l *QaLogic) answer(ctx context.Context, kb *types.KnowledgeBase, record *types.KnowledgeBaseQaRecord, receiver types.Receiver) {
	chatModel := record.ModelName
	if chatModel == "" {
		chatModel = l.core.AI().ChatModel()
	}

	var derived int
	if kb.RetrieveMaxResults <= 0 {
		d, err := ai.MaxRetrieveResults(record.Question, chatModel, l.core.AI().MaxInputTokens(), l.core.AI().RetrievePieceTokens())
		if err != nil {
			l.markFailed(record.UUID)
			receiver.OnError(errors.New("QaLogic.answer.MaxRetrieveResults", i18n.ERROR_INTERNAL, err))
			return
		}
		derived = d
	}

	maxResults, questionTooLong := retrievalPlan(kb.RetrieveMaxResults, derived, kb.IsStrict)
	if questionTooLong {
		// the question alone exhausts the model's input budget
		l.markFailed(record.UUID)
		receiver.OnError(errors.New("QaLogic.answer", i18n.ERROR_QUESTION_TOO_LONG, nil).
			Code(http.StatusBadRequest).
			WithData(map[string]interface{}{"MaxInputTokens": l.core.AI().MaxInputTokens()}))
		return
	}

	var passages []rag.Passage
	if maxResults > 0 {
		retrievers := []rag.ContentRetriever{
			rag.NewEmbeddingRetriever(l.core.AI().Embedder(), l.core.Store().KnowledgeBaseEmbeddingStore(), kb.UUID, kb.RetrieveMinScore),
			rag.NewGraphRetriever(l.core.Store().KnowledgeBaseGraphStore(), kb.UUID),
		}
		for _, r := range retrievers {
			timer := l.core.Metrics().RetrieveTimer(r.Type())
			res, err := r.Retrieve(ctx, record.Question, maxResults)
			timer.ObserveDuration()
			if err != nil {
				slog.Error("retriever failed",
					slog.String("type", r.Type()),
					slog.String("qa_uuid", record.UUID),
					slog.String("error", err.Error()))
				continue
			}
			passages = append(passages, res...)
		}
	}

	if kb.IsStrict && maxResults > 0 && len(passages) == 0 {
		l.markFailed(record.UUID)
		receiver.OnError(errors.New("QaLogic.answer", i18n.ERROR_NO_RETRIEVED_PIECES, nil).Code(http.StatusBadRequest))
		return
	}

	opts := ai.NewQueryOptions(ctx, l.core.AI().Chat(), []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: record.Question},
	}).WithTemperature(float32(kb.QueryLLMTemperature))

	if len(passages) > 0 {
		prompt := ai.ANSWER_PROMPT_EN
		lang := utils.DetectLanguage(record.Question)
		if lang == utils.LANGUAGE_CN {
			prompt = ai.ANSWER_PROMPT_CN
		}
		opts = opts.WithPrompt(prompt).
			WithDocs(rag.Contents(passages)).
			WithVar(ai.PROMPT_VAR_LANG, lang)
	}

	messages := opts.BuildMessages()
	promptText := record.Question
	if len(messages) > 0 && messages[0].Role == openai.ChatMessageRoleSystem {
		promptText = messages[0].Content
	}

	timer := l.core.Metrics().ModelRequestTimer("qa_stream")
	stream, err := opts.QueryStream()
	if err != nil {
		timer.ObserveDuration()
		l.core.Metrics().ModelErrorInc("stream_open")
		l.markFailed(record.UUID)
		receiver.OnError(errors.New("QaLogic.answer.QueryStream", i18n.ERROR_INTERNAL, err))
		return
	}
	defer stream.Close()

	var (
		answer  string
		usage   *openai.Usage
		aborted bool
	)
	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			timer.ObserveDuration()
			if ctx.Err() != nil {
				// client cancelled, keep what we streamed so far
				aborted = true
				break
			}
			l.core.Metrics().ModelErrorInc("stream_recv")
			l.finish(kb, record, passages, promptText, answer, usage, types.QA_STATUS_FAILED)
			receiver.OnError(errors.New("QaLogic.answer.Recv", i18n.ERROR_INTERNAL, err))
			return
		}
		if resp.Usage != nil {
			usage = resp.Usage
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		answer += delta
		if err = receiver.OnDelta(delta); err != nil {
			slog.Warn("receiver rejected delta", slog.String("qa_uuid", record.UUID), slog.String("error", err.Error()))
			aborted = true
			break
		}
	}
	timer.ObserveDuration()

	status := types.QA_STATUS_COMPLETED
	if aborted {
		status = types.QA_STATUS_ABORTED
	}
	promptTokens, answerTokens := l.finish(kb, record, passages, promptText, answer, usage, status)
	receiver.OnDone(answer, promptTokens, answerTokens)
}

// retrievalPlan resolves how many passages to fetch. The base owner's
// override wins; otherwise the budget derived from the model's input
// window applies. A zero budget on a strict base is terminal because
// strict answers must be grounded in retrieved content, so the model
// is never called.
func retrievalPlan(override, derived int, strict bool) (maxResults int, questionTooLong bool) {
	maxResults = override
	if maxResults <= 0 {
		maxResults = derived
	}
	if maxResults <= 0 {
		return 0, strict
	}
	return maxResults, false
}

func (l *QaLogic) markFailed(qaUUID string) {
	if err := l.core.Store().QaRecordStore().UpdateStatus(context.Background(), qaUUID, types.QA_STATUS_FAILED); err != nil {
		slog.Error("failed to mark qa record failed", slog.String("qa_uuid", qaUUID), slog.String("error", err.Error()))
	}
}

// finish settles a qa record after the stream ends: persists the answer
// once, writes retrieval refs, sums the token ledger into the user's
// daily cost and signals statistic recalculation.
func (l *QaLogic) finish(kb *types.KnowledgeBase, record *types.KnowledgeBaseQaRecord, passages []rag.Passage, promptText, answer string, usage *openai.Usage, status int) (int, int) {
	ctx := context.Background()
	chatModel := record.ModelName
	if chatModel == "" {
		chatModel = l.core.AI().ChatModel()
	}

	if len(passages) > 0 {
		refs := make([]types.KnowledgeBaseQaRef, 0, len(passages))
		for _, p := range passages {
			ref := types.KnowledgeBaseQaRef{
				QaRecordID: record.ID,
				UserID:     record.UserID,
				RefType:    p.RefType,
				Score:      p.Score,
			}
			switch p.RefType {
			case types.QA_REF_TYPE_GRAPH:
				ref.GraphID = p.RefID
			default:
				ref.EmbeddingID = p.RefID
			}
			refs = append(refs, ref)
		}
		if err := l.core.Store().QaRefStore().BatchCreate(ctx, refs); err != nil {
			slog.Error("failed to save qa refs", slog.String("qa_uuid", record.UUID), slog.String("error", err.Error()))
		}
	}

	var promptTokens, answerTokens int
	if usage != nil {
		promptTokens = usage.PromptTokens
		answerTokens = usage.CompletionTokens
	} else {
		promptTokens, _ = ai.TokenCount(promptTokenText(promptText, record.Question), chatModel)
		answerTokens, _ = ai.TokenCount(answer, chatModel)
	}

	if err := l.core.Cache().AppendTokenUsage(ctx, record.UUID, promptTokens, answerTokens); err != nil {
		slog.Error("failed to append token usage", slog.String("qa_uuid", record.UUID), slog.String("error", err.Error()))
	}

	totalPrompt, totalAnswer := l.sumTokenLedger(ctx, record.UUID, promptTokens, answerTokens)

	if err := l.core.Store().QaRecordStore().UpdateAnswer(ctx, record.UUID, promptText, totalPrompt, answer, totalAnswer, status); err != nil {
		slog.Error("failed to update qa answer", slog.String("qa_uuid", record.UUID), slog.String("error", err.Error()))
	}

	day := utils.DayInt(time.Now())
	if err := l.core.Store().UserDayCostStore().IncrCost(ctx, record.UserID, day, 1, int64(totalPrompt+totalAnswer)); err != nil {
		slog.Error("failed to record day cost", slog.String("user_id", record.UserID), slog.String("error", err.Error()))
	}

	if err := l.core.Cache().DeleteTokenUsage(ctx, record.UUID); err != nil {
		slog.Error("failed to clear token ledger", slog.String("qa_uuid", record.UUID), slog.String("error", err.Error()))
	}

	l.core.Metrics().ObserveQaTokens("input", totalPrompt)
	l.core.Metrics().ObserveQaTokens("output", totalAnswer)

	if err := l.core.Cache().SignalStatRecalc(ctx, kb.UUID); err != nil {
		slog.Error("failed to signal statistic recalc", slog.String("kb_uuid", kb.UUID), slog.String("error", err.Error()))
	}

	return totalPrompt, totalAnswer
}

// promptTokenText is the text the model billed as input: the system
// prompt plus the question when retrieval augmented the call, or just
// the question when it went through unaugmented.
func promptTokenText(promptText, question string) string {
	if promptText == question {
		return question
	}
	return promptText + question
}

// sumTokenLedger folds the alternating (input, output) pairs recorded on
// the redis ledger. Falls back to the current call's counts when the
// ledger is unreadable.
func (l *QaLogic) sumTokenLedger(ctx context.Context, qaUUID string, promptTokens, answerTokens int) (int, int) {
	entries, err := l.core.Cache().TokenUsage(ctx, qaUUID)
	if err != nil || len(entries) == 0 {
		return promptTokens, answerTokens
	}
	return sumLedgerPairs(entries)
}

func sumLedgerPairs(entries []string) (int, int) {
	var totalPrompt, totalAnswer int
	for i, raw := range entries {
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		if i%2 == 0 {
			totalPrompt += n
		} else {
			totalAnswer += n
		}
	}
	return totalPrompt, totalAnswer
}

type QaRecordListResult struct {
	List  []types.KnowledgeBaseQaRecord `json:"list"`
	Total uint64                        `json:"total"`
}

func (l *QaLogic) ListQaRecords(kbUUID string, page, pageSize uint64) (*QaRecordListResult, error) {
	kb, err := l.getKb(kbUUID)
	if err != nil {
		return nil, err
	}
	if err = l.checkKnowledgeBaseVisible(kb); err != nil {
		return nil, err
	}

	user := l.GetUserInfo().User
	list, err := l.core.Store().QaRecordStore().ListByKbAndUser(l.ctx, kbUUID, user, page, pageSize)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("QaLogic.ListQaRecords", i18n.ERROR_INTERNAL, err)
	}
	total, err := l.core.Store().QaRecordStore().Total(l.ctx, kbUUID, user)
	if err != nil {
		return nil, errors.New("QaLogic.ListQaRecords.Total", i18n.ERROR_INTERNAL, err)
	}
	return &QaRecordListResult{List: list, Total: total}, nil
}

func (l *QaLogic) DeleteQaRecord(qaUUID string) error {
	user := l.GetUserInfo().User
	record, err := l.core.Store().QaRecordStore().GetByUUID(l.ctx, qaUUID)
	if err != nil {
		if err == sql.ErrNoRows {
			return errors.New("QaLogic.DeleteQaRecord", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return errors.New("QaLogic.DeleteQaRecord", i18n.ERROR_INTERNAL, err)
	}
	if !canOperateQaRecord(record, user, l.GetUserInfo().IsAdmin()) {
		return errors.New("QaLogic.DeleteQaRecord", i18n.ERROR_PERMISSION_DENIED, nil).Code(http.StatusForbidden)
	}

	if err = l.core.Store().QaRecordStore().SoftDelete(l.ctx, qaUUID, record.UserID); err != nil {
		return errors.New("QaLogic.DeleteQaRecord.SoftDelete", i18n.ERROR_INTERNAL, err)
	}
	return nil
}

func (l *QaLogic) GetQaRecordRefs(qaUUID string) ([]types.KnowledgeBaseQaRef, error) {
	record, err := l.core.Store().QaRecordStore().GetByUUID(l.ctx, qaUUID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("QaLogic.GetQaRecordRefs", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("QaLogic.GetQaRecordRefs", i18n.ERROR_INTERNAL, err)
	}
	if !canOperateQaRecord(record, l.GetUserInfo().User, l.GetUserInfo().IsAdmin()) {
		return nil, errors.New("QaLogic.GetQaRecordRefs", i18n.ERROR_PERMISSION_DENIED, nil).Code(http.StatusForbidden)
	}

	refs, err := l.core.Store().QaRefStore().ListByQaRecordID(l.ctx, record.ID)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.New("QaLogic.GetQaRecordRefs.List", i18n.ERROR_INTERNAL, err)
	}
	return refs, nil
}

func (l *QaLogic) getKb(kbUUID string) (*types.KnowledgeBase, error) {
	kb, err := l.core.Store().KnowledgeBaseStore().GetByUUID(l.ctx, kbUUID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("QaLogic.getKb", i18n.ERROR_NOT_FOUND, err).Code(http.StatusNotFound)
		}
		return nil, errors.New("QaLogic.getKb", i18n.ERROR_INTERNAL, err)
	}
	return kb, nil
}
