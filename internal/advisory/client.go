// Package advisory sends formatted analysis requests to the advisory provider
// and turns its answer into a typed, schema-checked result.
package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/vcscsvcscs/aidoctor-pro/internal/apperr"
	"github.com/vcscsvcscs/aidoctor-pro/internal/llm"
	"github.com/vcscsvcscs/aidoctor-pro/internal/prompt"
	"github.com/vcscsvcscs/aidoctor-pro/pkg/model"
	"go.uber.org/zap"
)

// Result is one of *model.DiagnosisResult, *model.SecondOpinionResult,
// *model.DietPlanResult, *model.DrugComparisonResult or *model.RecommendationsResult.
type Result interface {
	Kind() model.AnalysisKind
}

// Client invokes the advisory provider. A nil provider means no credential was configured.
type Client struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewClient creates a new advisory client
func NewClient(provider llm.Provider, logger *zap.Logger) *Client {
	return &Client{
		provider: provider,
		logger:   logger,
	}
}

// Available reports whether a provider is configured
func (c *Client) Available() bool {
	return c.provider != nil
}

// Invoke makes exactly one provider call for req and returns the decoded result.
// The structure is returned as received; numeric fields are not range checked.
func (c *Client) Invoke(ctx context.Context, req *prompt.Request) (Result, error) {
	if req == nil {
		return nil, apperr.Validation("missing analysis request")
	}
	if c.provider == nil {
		c.logger.Warn("advisory provider not configured", zap.String("kind", string(req.Kind)))
		return nil, apperr.New(apperr.CategoryProvider, apperr.CodeProviderUnavailable, "")
	}

	schemaDoc, err := schemaDocument(req.Schema)
	if err != nil {
		return nil, apperr.Wrap(apperr.CategoryProvider, apperr.CodeProviderRequestFailed, "", err)
	}

	startTime := time.Now()
	completion, err := c.provider.Complete(ctx, llm.ChatRequest{
		Persona:     req.Persona,
		Instruction: req.Instruction,
		Temperature: req.Temperature,
		SchemaName:  req.SchemaName,
		Schema:      schemaDoc,
	})
	if err != nil {
		c.logger.Error("advisory request failed",
			zap.Error(err),
			zap.String("kind", string(req.Kind)),
			zap.Duration("duration", time.Since(startTime)),
		)
		return nil, classify(err)
	}

	result, err := decode(req.Kind, req.Schema, completion.Content)
	if err != nil {
		c.logger.Error("advisory response rejected",
			zap.Error(err),
			zap.String("kind", string(req.Kind)),
			zap.Int("content_length", len(completion.Content)),
		)
		return nil, apperr.Wrap(apperr.CategoryProvider, apperr.CodeSchemaViolation, "", err)
	}

	c.logger.Info("advisory request completed",
		zap.String("kind", string(req.Kind)),
		zap.Duration("duration", time.Since(startTime)),
		zap.Int64("prompt_tokens", completion.PromptTokens),
		zap.Int64("completion_tokens", completion.CompletionTokens),
	)

	return result, nil
}

// classify maps provider adapter errors onto the provider error codes
func classify(err error) error {
	switch {
	case errors.Is(err, llm.ErrUnauthorized), errors.Is(err, llm.ErrUnavailable), errors.Is(err, llm.ErrMissingCredential):
		return apperr.Wrap(apperr.CategoryProvider, apperr.CodeProviderUnavailable, "", err)
	case errors.Is(err, llm.ErrEmptyContent):
		return apperr.Wrap(apperr.CategoryProvider, apperr.CodeEmptyResponse, "", err)
	default:
		return apperr.Wrap(apperr.CategoryProvider, apperr.CodeProviderRequestFailed, "", err)
	}
}

// schemaDocument converts the OpenAPI schema into the plain JSON document the provider expects
func schemaDocument(schema *openapi3.Schema) (map[string]interface{}, error) {
	if schema == nil {
		return nil, nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	return doc, nil
}

// decode checks content against schema and unmarshals it into the record for kind
func decode(kind model.AnalysisKind, schema *openapi3.Schema, content string) (Result, error) {
	var value interface{}
	if err := json.Unmarshal([]byte(content), &value); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	if schema != nil {
		if err := schema.VisitJSON(stripNulls(value), openapi3.MultiErrors()); err != nil {
			return nil, fmt.Errorf("response does not match schema: %w", err)
		}
	}

	result, err := newResult(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(content), result); err != nil {
		return nil, fmt.Errorf("failed to decode %s result: %w", kind, err)
	}
	return result, nil
}

func newResult(kind model.AnalysisKind) (Result, error) {
	switch kind {
	case model.KindSymptomTriage:
		return &model.DiagnosisResult{}, nil
	case model.KindSecondOpinion:
		return &model.SecondOpinionResult{}, nil
	case model.KindDietPlan:
		return &model.DietPlanResult{}, nil
	case model.KindDrugComparison:
		return &model.DrugComparisonResult{}, nil
	case model.KindRecommendations:
		return &model.RecommendationsResult{}, nil
	}
	return nil, fmt.Errorf("unknown analysis kind: %s", kind)
}

// stripNulls drops null object members so an explicit null reads as an absent optional field.
// A null required field then fails validation as missing.
func stripNulls(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, member := range v {
			if member == nil {
				continue
			}
			out[key] = stripNulls(member)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = stripNulls(item)
		}
		return out
	}
	return value
}
