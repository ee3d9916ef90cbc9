// Package llm wraps the completion API behind a small interface so handlers
// and tests can swap the backing model.
package llm

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"retail-chatbot/internal/common/errors"
	"retail-chatbot/internal/common/logger"
	"retail-chatbot/internal/common/metrics"
	"retail-chatbot/internal/model"
)

const defaultModel = "gpt-4o-mini"

// CompletionRequest describes one completion call.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Completion is the model output plus token accounting.
type Completion struct {
	Text  string
	Usage model.TokenUsage
}

// Client is the completion interface used across the service.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// OpenAIClient implements Client over the OpenAI chat completions API.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     logger.Logger
}

type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

func NewOpenAIClient(opts Options, log logger.Logger) *OpenAIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	m := opts.Model
	if m == "" {
		m = defaultModel
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		model:   m,
		timeout: timeout,
		log:     log,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewLLMTimeoutError()
		}
		return nil, errors.NewLLMFailureError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.NewLLMFailureError(errAllChoicesEmpty)
	}

	choice := resp.Choices[0]
	usage := model.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		Model:            resp.Model,
		FinishReason:     string(choice.FinishReason),
	}

	metrics.TokensConsumed.WithLabelValues(resp.Model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.TokensConsumed.WithLabelValues(resp.Model, "completion").Add(float64(resp.Usage.CompletionTokens))

	c.log.Debug("Completion finished", map[string]interface{}{
		"model":        resp.Model,
		"totalTokens":  resp.Usage.TotalTokens,
		"finishReason": choice.FinishReason,
	})

	return &Completion{
		Text:  strings.TrimSpace(choice.Message.Content),
		Usage: usage,
	}, nil
}

var errAllChoicesEmpty = &emptyChoicesError{}

type emptyChoicesError struct{}

func (e *emptyChoicesError) Error() string { return "completion returned no choices" }

// StripJSONFence removes markdown code fences around a JSON payload. Some
// models wrap structured output in ```json blocks despite instructions.
func StripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	// Tolerate leading prose before the first brace.
	if idx := strings.Index(s, "{"); idx > 0 {
		if end := strings.LastIndex(s, "}"); end > idx {
			s = s[idx : end+1]
		}
	}
	return s
}
