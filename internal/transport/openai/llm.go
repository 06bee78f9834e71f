package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/tonehall/catalogqa/internal/domain"
	"github.com/tonehall/catalogqa/internal/metrics"
)

// classifySystemPrompt constrains the classifier to a closed label set.
const classifySystemPrompt = "You classify product catalog queries. " +
	"Respond with exactly one label and nothing else: " +
	"DIRECT_LOOKUP (asks for a specific model's specifications), " +
	"SEMANTIC_SEARCH (describes desired products by criteria), or " +
	"CALCULATION (asks for electrical math such as power, impedance or headroom)."

// LLM is a chat-completion client over the OpenAI-compatible API. It serves
// both intent classification and grounded answer generation.
type LLM struct {
	client          *openai.Client
	model           string
	classifyTimeout time.Duration
	generateTimeout time.Duration
	logger          *zap.Logger
}

// LLMConfig holds the chat provider settings.
type LLMConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	ClassifyTimeout time.Duration
	GenerateTimeout time.Duration
	Logger          *zap.Logger
}

// NewLLM creates an OpenAI-compatible chat client.
func NewLLM(cfg *LLMConfig) *LLM {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &LLM{
		client:          openai.NewClientWithConfig(clientCfg),
		model:           cfg.Model,
		classifyTimeout: cfg.ClassifyTimeout,
		generateTimeout: cfg.GenerateTimeout,
		logger:          cfg.Logger,
	}
}

// Classify implements usecase/router.Classifier. Temperature is zero so the
// same query always maps to the same label.
func (l *LLM) Classify(ctx context.Context, query string) (string, error) {
	return l.complete(ctx, "classify", l.classifyTimeout, openai.ChatCompletionRequest{
		Model:       l.model,
		Temperature: 0,
		MaxTokens:   8,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
	})
}

// Generate implements usecase/composer.Generator. The prompt already carries
// the evidence blocks and the policy guard clause.
func (l *LLM) Generate(ctx context.Context, prompt string) (string, error) {
	return l.complete(ctx, "generate", l.generateTimeout, openai.ChatCompletionRequest{
		Model:       l.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
}

// complete runs one chat completion with a per-call deadline and a single
// retry on timeout. The second timeout surfaces as domain.ErrUpstreamTimeout.
func (l *LLM) complete(
	ctx context.Context, kind string, timeout time.Duration, req openai.ChatCompletionRequest,
) (string, error) {
	content, err := l.completeOnce(ctx, kind, timeout, req)
	if err != nil && errors.Is(err, domain.ErrUpstreamTimeout) && ctx.Err() == nil {
		l.logger.Warn("Chat request timed out, retrying once", zap.String("kind", kind))
		content, err = l.completeOnce(ctx, kind, timeout, req)
	}
	return content, err
}

func (l *LLM) completeOnce(
	ctx context.Context, kind string, timeout time.Duration, req openai.ChatCompletionRequest,
) (string, error) {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := l.client.CreateChatCompletion(callCtx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(kind, "error").Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%s request: %w", kind, domain.ErrUpstreamTimeout)
		}
		return "", parseAPIError(kind, err)
	}

	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(kind, "error").Inc()
		return "", fmt.Errorf("empty %s response: %w", kind, domain.ErrProviderError)
	}

	metrics.LLMRequestsTotal.WithLabelValues(kind, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(kind).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}
