package ai

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	MODEL_BASE_LANGUAGE_CN = "Chinese"
	MODEL_BASE_LANGUAGE_EN = "English"
)

type ModelName struct {
	ChatModel      string `toml:"chat_model"`
	EmbeddingModel string `toml:"embedding_model"`
}

type EmbeddingResult struct {
	Model string
	Data  [][]float32
	Usage *openai.Usage
}

type GenerateResponse struct {
	Received []string
	Usage    *openai.Usage
	Model    string
}

func (r GenerateResponse) Message() string {
	return strings.Join(r.Received, "")
}

type Embedding interface {
	EmbeddingForQuery(ctx context.Context, content []string) (EmbeddingResult, error)
	EmbeddingForDocument(ctx context.Context, title string, content []string) (EmbeddingResult, error)
}

type Query interface {
	Query(ctx context.Context, query []openai.ChatCompletionMessage, temperature float32) (GenerateResponse, error)
	QueryStream(ctx context.Context, query []openai.ChatCompletionMessage, temperature float32) (*openai.ChatCompletionStream, error)
	Lang
}

type Lang interface {
	Lang() string
}

// Driver is the full model surface one provider implements.
type Driver interface {
	Embedding
	Query
}

// ANSWER_PROMPT_EN wraps retrieved passages around the user question.
const ANSWER_PROMPT_EN = `
Below is the "reference content" retrieved from the user's knowledge base:
--------------------------------------
{solt}
--------------------------------------
Answer the user's question based on the "reference content" above.
If the reference content does not contain the answer, say you don't know instead of guessing.
Please reply in {lang} using Markdown format.
`

const ANSWER_PROMPT_CN = `
以下是从用户知识库中检索到的“参考内容”：
--------------------------------------
{solt}
--------------------------------------
请结合“参考内容”回答用户的提问。
如果“参考内容”中没有答案，请直接说明不知道，不要编造。
请使用 {lang} 语言，以Markdown格式回复用户。
`

const (
	PROMPT_VAR_LANG  = "{lang}"
	DEFAULT_DOC_SOLT = "{solt}"
)

func NewQueryOptions(ctx context.Context, driver Query, query []openai.ChatCompletionMessage) *QueryOptions {
	return &QueryOptions{
		ctx:          ctx,
		_driver:      driver,
		query:        query,
		docsSoltName: DEFAULT_DOC_SOLT,
		temperature:  0.1,
	}
}

type OptionFunc func(opts *QueryOptions)

type QueryOptions struct {
	ctx          context.Context
	_driver      Query
	query        []openai.ChatCompletionMessage
	docs         []string
	prompt       string
	docsSoltName string
	vars         map[string]string
	temperature  float32
}

func (s *QueryOptions) WithPrompt(prompt string) *QueryOptions {
	s.prompt = strings.TrimSpace(prompt)
	return s
}

func (s *QueryOptions) WithDocs(docs []string) *QueryOptions {
	s.docs = docs
	return s
}

func (s *QueryOptions) WithDocsSoltName(name string) *QueryOptions {
	s.docsSoltName = name
	return s
}

func (s *QueryOptions) WithTemperature(t float32) *QueryOptions {
	if t > 0 {
		s.temperature = t
	}
	return s
}

func (s *QueryOptions) WithVar(key, value string) *QueryOptions {
	if s.vars == nil {
		s.vars = make(map[string]string)
	}
	s.vars[key] = value
	return s
}

// BuildMessages assembles the final message list: system prompt with the
// docs slot filled, then the original query. Without docs or prompt the
// query passes through untouched.
func (s *QueryOptions) BuildMessages() []openai.ChatCompletionMessage {
	if s.prompt == "" {
		return s.query
	}

	prompt := s.prompt
	if len(s.docs) > 0 {
		prompt = strings.Replace(prompt, s.docsSoltName, strings.Join(s.docs, "\n\n"), 1)
	} else {
		prompt = strings.Replace(prompt, s.docsSoltName, "null", 1)
	}
	for k, v := range s.vars {
		prompt = strings.ReplaceAll(prompt, k, v)
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(s.query)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: prompt,
	})
	messages = append(messages, s.query...)
	return messages
}

func (s *QueryOptions) Query() (GenerateResponse, error) {
	return s._driver.Query(s.ctx, s.BuildMessages(), s.temperature)
}

func (s *QueryOptions) QueryStream() (*openai.ChatCompletionStream, error) {
	return s._driver.QueryStream(s.ctx, s.BuildMessages(), s.temperature)
}
