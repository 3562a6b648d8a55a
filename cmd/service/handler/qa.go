package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	v1 "github.com/askbase-ai/askbase-ai/app/logic/v1"
	"github.com/askbase-ai/askbase-ai/app/response"
	"github.com/askbase-ai/askbase-ai/pkg/errors"
	"github.com/askbase-ai/askbase-ai/pkg/i18n"
	"github.com/askbase-ai/askbase-ai/pkg/utils"
)

type CreateQaRecordRequest struct {
	Question  string `json:"question" form:"question" binding:"required,max=4096"`
	ModelName string `json:"model_name" form:"model_name" binding:"max=64"`
}

func (s *HttpSrv) CreateQaRecord(c *gin.Context) {
	var (
		err error
		req CreateQaRecordRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	kbUUID, _ := c.Params.Get("kbid")
	record, err := v1.NewQaLogic(c, s.Core).CreateQaRecord(kbUUID, v1.CreateQaRecordArgs{
		Question:  req.Question,
		ModelName: req.ModelName,
	})
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, record)
}

// sseEvent is one server-sent message on the answer stream.
type sseEvent struct {
	Event        string `json:"event"`
	Content      string `json:"content,omitempty"`
	Answer       string `json:"answer,omitempty"`
	PromptTokens int    `json:"prompt_tokens,omitempty"`
	AnswerTokens int    `json:"answer_tokens,omitempty"`
	Message      string `json:"message,omitempty"`
}

// sseReceiver bridges the answer stream onto the http response as
// server-sent events. The logic goroutine is the only writer until done
// is closed.
type sseReceiver struct {
	c       *gin.Context
	flusher http.Flusher
	done    chan struct{}
	once    sync.Once

	localize func(err error) string
}

func newSSEReceiver(c *gin.Context, localize func(err error) string) *sseReceiver {
	return &sseReceiver{
		c:        c,
		flusher:  c.Writer.(http.Flusher),
		done:     make(chan struct{}),
		localize: localize,
	}
}

func (r *sseReceiver) send(ev sseEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err = fmt.Fprintf(r.c.Writer, "data: %s\n\n", raw); err != nil {
		return err
	}
	r.flusher.Flush()
	return nil
}

func (r *sseReceiver) OnDelta(delta string) error {
	return r.send(sseEvent{Event: "delta", Content: delta})
}

func (r *sseReceiver) OnDone(answer string, promptTokens, answerTokens int) {
	r.once.Do(func() {
		_ = r.send(sseEvent{
			Event:        "done",
			Answer:       answer,
			PromptTokens: promptTokens,
			AnswerTokens: answerTokens,
		})
		close(r.done)
	})
}

func (r *sseReceiver) OnError(err error) {
	r.once.Do(func() {
		_ = r.send(sseEvent{Event: "error", Message: r.localize(err)})
		close(r.done)
	})
}

func (s *HttpSrv) AskQuestion(c *gin.Context) {
	qaUUID, _ := c.Params.Get("qaid")
	if qaUUID == "" {
		response.APIError(c, errors.New("api.AskQuestion", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest))
		return
	}

	l := response.InjectResponseLocalizer(c)
	lang := response.GetLangFromRequestOrDefault(c)
	localize := func(err error) string {
		if cerr, ok := err.(*errors.CustomizedError); ok {
			if data := cerr.GetData(); len(data) > 0 {
				return l.GetWithData(lang, cerr.Message(), data)
			}
			return l.Get(lang, cerr.Message())
		}
		return err.Error()
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	receiver := newSSEReceiver(c, localize)
	if err := v1.NewQaLogic(c, s.Core).AskQuestion(qaUUID, receiver); err != nil {
		receiver.OnError(err)
	}

	select {
	case <-receiver.done:
	case <-c.Request.Context().Done():
		// cancel the model stream, then wait for the settle path to
		// finish before gin recycles the writer
		_ = v1.NewQaLogic(c, s.Core).StopStream(qaUUID)
		<-receiver.done
	}
}

func (s *HttpSrv) StopQaStream(c *gin.Context) {
	qaUUID, _ := c.Params.Get("qaid")
	if err := v1.NewQaLogic(c, s.Core).StopStream(qaUUID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

type ListQaRecordsRequest struct {
	Page     uint64 `json:"page" form:"page"`
	PageSize uint64 `json:"pagesize" form:"pagesize" binding:"max=50"`
}

func (s *HttpSrv) ListQaRecords(c *gin.Context) {
	var (
		err error
		req ListQaRecordsRequest
	)
	if err = utils.BindArgsWithGin(c, &req); err != nil {
		response.APIError(c, err)
		return
	}

	kbUUID, _ := c.Params.Get("kbid")
	res, err := v1.NewQaLogic(c, s.Core).ListQaRecords(kbUUID, req.Page, req.PageSize)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, res)
}

func (s *HttpSrv) DeleteQaRecord(c *gin.Context) {
	qaUUID, _ := c.Params.Get("qaid")
	if err := v1.NewQaLogic(c, s.Core).DeleteQaRecord(qaUUID); err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, nil)
}

func (s *HttpSrv) GetQaRecordRefs(c *gin.Context) {
	qaUUID, _ := c.Params.Get("qaid")
	refs, err := v1.NewQaLogic(c, s.Core).GetQaRecordRefs(qaUUID)
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, refs)
}

func (s *HttpSrv) GetQaUsage(c *gin.Context) {
	usage, err := v1.NewQuotaLogic(c, s.Core).Usage(c.GetString("user_id"))
	if err != nil {
		response.APIError(c, err)
		return
	}
	response.APISuccess(c, usage)
}
