package providers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgelabs/promptforge/llm"
)

func TestAnthropicBuildRequestBody(t *testing.T) {
	p := &AnthropicProvider{}

	temp := 0.3
	body, err := p.BuildRequestBody("claude-test", []llm.Message{
		{Role: "system", Content: "You are a Salesforce analyst."},
		{Role: "user", Content: "Analyze this org."},
	}, &temp, 2048)
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(body, &req))

	// System message is lifted into the top-level system field.
	assert.Equal(t, "You are a Salesforce analyst.", req["system"])
	assert.Equal(t, float64(2048), req["max_tokens"])
	assert.Equal(t, 0.3, req["temperature"])

	msgs, ok := req["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
}

func TestAnthropicDefaultMaxTokens(t *testing.T) {
	p := &AnthropicProvider{}

	body, err := p.BuildRequestBody("claude-test", []llm.Message{
		{Role: "user", Content: "hi"},
	}, nil, 0)
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(body, &req))
	assert.Equal(t, float64(4096), req["max_tokens"])
	assert.NotContains(t, req, "temperature")
}

func TestAnthropicParseResponseTextBlocksOnly(t *testing.T) {
	p := &AnthropicProvider{}

	body := []byte(`{
		"model": "claude-test",
		"stop_reason": "end_turn",
		"content": [
			{"type": "text", "text": "  first part  "},
			{"type": "tool_use", "text": "ignored"},
			{"type": "text", "text": ""},
			{"type": "text", "text": "second part"}
		],
		"usage": {"input_tokens": 7, "output_tokens": 3}
	}`)

	resp, err := p.ParseResponse(body, "claude-test")
	require.NoError(t, err)

	assert.Equal(t, "first part\n\nsecond part", resp.Content)
	assert.Equal(t, "end_turn", resp.FinishReason)
	assert.Equal(t, 7, resp.Usage.InputTokens)
	assert.Equal(t, 3, resp.Usage.OutputTokens)
}

func TestAnthropicHeaders(t *testing.T) {
	p := &AnthropicProvider{}

	req, err := http.NewRequest(http.MethodPost, "http://example.com", nil)
	require.NoError(t, err)

	p.SetHeaders(req, "sk-test")
	assert.Equal(t, "sk-test", req.Header.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, req.Header.Get("anthropic-version"))
}

func TestAnthropicBuildURL(t *testing.T) {
	p := &AnthropicProvider{}

	assert.Equal(t, "https://api.anthropic.com/v1/messages", p.BuildURL(""))
	assert.Equal(t, "http://localhost:8080/v1/messages", p.BuildURL("http://localhost:8080/"))
}

func TestOpenAIParseResponse(t *testing.T) {
	p := &OpenAIProvider{}

	body := []byte(`{
		"model": "gpt-test",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "answer"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 4}
	}`)

	resp, err := p.ParseResponse(body, "fallback-model")
	require.NoError(t, err)

	assert.Equal(t, "answer", resp.Content)
	assert.Equal(t, "gpt-test", resp.Model)
	assert.Equal(t, 12, resp.Usage.InputTokens)
	assert.Equal(t, 4, resp.Usage.OutputTokens)
}

func TestOpenAIParseResponseNoChoices(t *testing.T) {
	p := &OpenAIProvider{}

	_, err := p.ParseResponse([]byte(`{"model": "gpt-test", "choices": []}`), "gpt-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestOpenAIBuildURL(t *testing.T) {
	p := &OpenAIProvider{}

	assert.Equal(t, "https://api.openai.com/v1/chat/completions", p.BuildURL(""))
	// Already-complete endpoints are not doubled.
	assert.Equal(t, "http://localhost:1234/v1/chat/completions", p.BuildURL("http://localhost:1234/v1/chat/completions"))
}

func TestOpenAIHeaders(t *testing.T) {
	p := &OpenAIProvider{}

	req, err := http.NewRequest(http.MethodPost, "http://example.com", nil)
	require.NoError(t, err)

	p.SetHeaders(req, "sk-test")
	assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
}

func TestProvidersRegistered(t *testing.T) {
	assert.NotNil(t, llm.GetProvider("anthropic"))
	assert.NotNil(t, llm.GetProvider("openai"))
}
