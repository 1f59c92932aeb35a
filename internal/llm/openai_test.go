package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chatResponse(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]interface{}{"role": "assistant", "content": content},
			},
		},
		"usage": map[string]interface{}{"prompt_tokens": 120, "completion_tokens": 80, "total_tokens": 200},
	})
	return string(body)
}

func newTestServer(t *testing.T, status int, body string, calls *int32, captured *map[string]interface{}) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if captured != nil {
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func newTestClient(t *testing.T, baseURL string, failures uint32) *OpenAIClient {
	client, err := NewOpenAIClient(Config{
		Provider:        ProviderOpenAI,
		APIKey:          "sk-test",
		BaseURL:         baseURL + "/",
		Model:           "gpt-4o-mini",
		Timeout:         5 * time.Second,
		BreakerFailures: failures,
		BreakerCooldown: time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestNewOpenAIClient_Validation(t *testing.T) {
	_, err := NewOpenAIClient(Config{Model: "gpt-4o-mini"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = NewOpenAIClient(Config{APIKey: "k"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewOpenAIClient(Config{Provider: ProviderAzure, APIKey: "k", Model: "gpt"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewOpenAIClient(Config{Provider: "gemini", APIKey: "k", Model: "gpt"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewOpenAIClient(Config{Provider: ProviderAzure, APIKey: "k", Model: "gpt", Endpoint: "https://example.openai.azure.com"}, zap.NewNop())
	assert.NoError(t, err)
}

func TestComplete_SendsSchemaAndPersona(t *testing.T) {
	var calls int32
	var captured map[string]interface{}
	server := newTestServer(t, http.StatusOK, chatResponse(`{"ok":true}`), &calls, &captured)
	defer server.Close()

	client := newTestClient(t, server.URL, 5)
	completion, err := client.Complete(context.Background(), ChatRequest{
		Persona:     "You are AIDoctor Pro",
		Instruction: "Analyze: Headache",
		Temperature: 0.3,
		SchemaName:  "diagnosis_result",
		Schema:      map[string]interface{}{"type": "object"},
	})
	require.NoError(t, err)

	assert.Equal(t, `{"ok":true}`, completion.Content)
	assert.Equal(t, int64(120), completion.PromptTokens)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	assert.InDelta(t, 0.3, captured["temperature"], 0.0001)

	messages := captured["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "user", messages[1].(map[string]interface{})["role"])

	format := captured["response_format"].(map[string]interface{})
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "diagnosis_result", format["json_schema"].(map[string]interface{})["name"])
}

func TestComplete_StripsCodeFence(t *testing.T) {
	var calls int32
	server := newTestServer(t, http.StatusOK, chatResponse("```json\n{\"ok\":true}\n```"), &calls, nil)
	defer server.Close()

	completion, err := newTestClient(t, server.URL, 5).Complete(context.Background(), ChatRequest{SchemaName: "x"})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, completion.Content)
}

func TestComplete_EmptyContent(t *testing.T) {
	var calls int32
	server := newTestServer(t, http.StatusOK, chatResponse(""), &calls, nil)
	defer server.Close()

	_, err := newTestClient(t, server.URL, 5).Complete(context.Background(), ChatRequest{SchemaName: "x"})
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestComplete_UnauthorizedSingleAttempt(t *testing.T) {
	var calls int32
	server := newTestServer(t, http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`, &calls, nil)
	defer server.Close()

	_, err := newTestClient(t, server.URL, 5).Complete(context.Background(), ChatRequest{SchemaName: "x"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retries")
}

func TestComplete_BreakerOpensAfterServerErrors(t *testing.T) {
	var calls int32
	server := newTestServer(t, http.StatusInternalServerError, `{"error":{"message":"boom"}}`, &calls, nil)
	defer server.Close()

	client := newTestClient(t, server.URL, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.Complete(ctx, ChatRequest{SchemaName: "x"})
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrUnavailable))
	}

	_, err := client.Complete(ctx, ChatRequest{SchemaName: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "open breaker must not reach the provider")
}

func TestComplete_UnauthorizedDoesNotTripBreaker(t *testing.T) {
	var calls int32
	server := newTestServer(t, http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, &calls, nil)
	defer server.Close()

	client := newTestClient(t, server.URL, 1)
	for i := 0; i < 3; i++ {
		_, err := client.Complete(context.Background(), ChatRequest{SchemaName: "x"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("  {\"a\":1}  "))
	assert.Equal(t, "", stripCodeFence("   "))
}
