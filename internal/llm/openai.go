package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Provider names accepted in Config
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
)

var (
	// ErrMissingCredential means no API key was configured
	ErrMissingCredential = errors.New("provider credential is not configured")
	// ErrUnauthorized means the provider rejected the configured credential
	ErrUnauthorized = errors.New("provider rejected the credential")
	// ErrUnavailable means the circuit breaker is open and no call was made
	ErrUnavailable = errors.New("provider temporarily unavailable")
	// ErrEmptyContent means the provider answered without any content
	ErrEmptyContent = errors.New("empty content in response")
)

// ChatRequest is a single structured-output chat completion
type ChatRequest struct {
	Persona     string
	Instruction string
	Temperature float64
	SchemaName  string
	// Schema is the JSON schema document sent as response_format
	Schema interface{}
}

// Completion is the raw text answer and its token usage
type Completion struct {
	Content          string
	PromptTokens     int64
	CompletionTokens int64
}

// Provider is the advisory model boundary
type Provider interface {
	Complete(ctx context.Context, req ChatRequest) (*Completion, error)
}

// Config selects the provider flavour and its credentials
type Config struct {
	Provider   string
	APIKey     string
	BaseURL    string // plain OpenAI-compatible endpoints
	Endpoint   string // Azure resource endpoint
	APIVersion string
	Model      string // model name, or deployment name on Azure
	Timeout    time.Duration

	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// OpenAIClient wraps the openai-go SDK (plain or Azure) with a circuit breaker and logging.
// Exactly one HTTP attempt is made per call.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewOpenAIClient creates a new client. It returns ErrMissingCredential when no key is set.
func NewOpenAIClient(cfg Config, logger *zap.Logger) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredential
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	switch cfg.Provider {
	case ProviderAzure:
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("endpoint is required for azure provider")
		}
		apiVersion := cfg.APIVersion
		if apiVersion == "" {
			apiVersion = "2024-08-01-preview"
		}
		opts = append(opts,
			azure.WithEndpoint(cfg.Endpoint, apiVersion),
			azure.WithAPIKey(cfg.APIKey),
		)
	case ProviderOpenAI, "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}

	client := openai.NewClient(opts...)

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	cooldown := cfg.BreakerCooldown
	if cooldown == 0 {
		cooldown = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "advisory-provider",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: countsAsHealthy,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("circuit_breaker", name),
				zap.String("from_state", from.String()),
				zap.String("to_state", to.String()),
			)
		},
	})

	return &OpenAIClient{
		client:  &client,
		model:   cfg.Model,
		breaker: breaker,
		logger:  logger,
	}, nil
}

// countsAsHealthy keeps caller-side outcomes from tripping the breaker:
// only transport failures and 5xx/429 answers count against the provider.
func countsAsHealthy(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrEmptyContent) || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// Complete sends one chat completion request with a JSON schema response format
func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (*Completion, error) {
	startTime := time.Now()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("advisory provider call rejected by circuit breaker", zap.String("schema", req.SchemaName))
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		c.logger.Error("chat completion failed",
			zap.Error(err),
			zap.String("schema", req.SchemaName),
			zap.Duration("duration", time.Since(startTime)),
		)
		return nil, err
	}

	return result.(*Completion), nil
}

// complete performs a single chat completion request
func (c *OpenAIClient) complete(ctx context.Context, req ChatRequest) (*Completion, error) {
	requestStart := time.Now()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.Persona),
			openai.UserMessage(req.Instruction),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
					Strict: openai.Bool(false),
				},
			},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) &&
			(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, apiErr.StatusCode)
		}
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrEmptyContent)
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	c.logger.Info("advisory provider token usage",
		zap.String("schema", req.SchemaName),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("request_time", time.Since(requestStart)),
	)

	return &Completion{
		Content:          content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some deployments add
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
