package ai

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCount counts tokens of a single text with the model's encoding.
func TokenCount(text, model string) (int, error) {
	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tkm, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, fmt.Errorf("encoding for model: %w", err)
		}
	}
	return len(tkm.Encode(text, nil, nil)), nil
}

// MaxRetrieveResults derives how many retrieved pieces fit in the model's
// input window beside the question. A zero result means the question
// alone fills (or overflows) the window.
func MaxRetrieveResults(question, model string, maxInputTokens, pieceTokens int) (int, error) {
	if pieceTokens <= 0 {
		return 0, fmt.Errorf("piece token size must be positive")
	}

	questionTokens, err := TokenCount(question, model)
	if err != nil {
		return 0, err
	}

	remain := maxInputTokens - questionTokens
	if remain <= 0 {
		return 0, nil
	}
	return remain / pieceTokens, nil
}

func NumTokens(messages []openai.ChatCompletionMessage, model string) (numTokens int, err error) {
	var tokensPerMessage, tokensPerName int
	switch model {
	case "gpt-3.5-turbo-0613",
		"gpt-3.5-turbo-16k-0613",
		"gpt-4-0314",
		"gpt-4-32k-0314",
		"gpt-4-0613",
		"gpt-4-32k-0613":
		tokensPerMessage = 3
		tokensPerName = 1
	case "gpt-3.5-turbo-0301":
		tokensPerMessage = 4 // every message follows <|start|>{role/name}\n{content}<|end|>\n
		tokensPerName = -1   // if there's a name, the role is omitted
	default:
		if strings.Contains(model, "gpt-4") {
			return NumTokens(messages, "gpt-4-0613")
		} else {
			return NumTokens(messages, "gpt-3.5-turbo-0613")
		}
	}

	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		err = fmt.Errorf("encoding for model: %v", err)
		return
	}

	for _, message := range messages {
		numTokens += tokensPerMessage
		numTokens += len(tkm.Encode(message.Content, nil, nil))
		numTokens += len(tkm.Encode(message.Role, nil, nil))
		numTokens += len(tkm.Encode(message.Name, nil, nil))
		if message.Name != "" {
			numTokens += tokensPerName
		}
	}
	numTokens += 3 // every reply is primed with <|start|>assistant<|message|>
	return numTokens, nil
}
