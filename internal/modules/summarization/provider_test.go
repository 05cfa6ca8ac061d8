package summarization

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/liqd/a4-roots/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalAIJSON(t *testing.T) {
	var out DocumentSummaryResponse

	raw := "```json\n{\"documents\":[{\"handle\":\"doc_1\",\"summary\":\"ok\"}]}\n```"
	require.NoError(t, unmarshalAIJSON(raw, &out))
	require.Len(t, out.Documents, 1)
	assert.Equal(t, "doc_1", out.Documents[0].Handle)

	out = DocumentSummaryResponse{}
	raw = "Here is the result: {\"documents\":[{\"handle\":\"doc_2\",\"summary\":\"ok\"}]} hope it helps"
	require.NoError(t, unmarshalAIJSON(raw, &out))
	require.Len(t, out.Documents, 1)
	assert.Equal(t, "doc_2", out.Documents[0].Handle)

	require.Error(t, unmarshalAIJSON("not json at all", &out))
}

func TestNormalizeCompatEndpoint(t *testing.T) {
	cases := map[string]string{
		"https://api.mistral.ai/v1":  "https://api.mistral.ai",
		"https://api.mistral.ai/v1/": "https://api.mistral.ai",
		"https://api.mistral.ai":     "https://api.mistral.ai",
		"https://proxy.local/llm/v1": "https://proxy.local/llm",
		"":                           "https://api.openai.com",
	}
	for raw, want := range cases {
		assert.Equal(t, want, normalizeCompatEndpoint(raw), raw)
	}
}

func TestNormalizeProviderType(t *testing.T) {
	assert.Equal(t, "openai-compatible", normalizeProviderType(" OpenAI_Compatible "))
	assert.Equal(t, "anthropic", normalizeProviderType("Anthropic"))
	assert.Equal(t, "", normalizeProviderType(""))
}

func TestResolveProviderConfigUnknownHandle(t *testing.T) {
	ai := config.AIConfig{Providers: map[string]config.AIProvider{
		"beta":  {APIKey: "k", ModelName: "m", BaseURL: "https://x"},
		"alpha": {APIKey: "k", ModelName: "m", BaseURL: "https://x"},
	}}
	_, err := resolveProviderConfig("gamma", ai)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alpha, beta")
}

func TestResolveProviderConfigDefaults(t *testing.T) {
	ai := config.AIConfig{Providers: map[string]config.AIProvider{
		"main": {Type: "mistral", APIKey: "k", ModelName: "m", BaseURL: "https://x"},
	}}
	cfg, err := resolveProviderConfig("main", ai)
	require.NoError(t, err)
	assert.True(t, cfg.SupportsImages)

	no := false
	ai.Providers["main"] = config.AIProvider{
		Type: "mistral", APIKey: "k", ModelName: "m", BaseURL: "https://x", SupportsImages: &no,
	}
	cfg, err = resolveProviderConfig("main", ai)
	require.NoError(t, err)
	assert.False(t, cfg.SupportsImages)
}

func TestNewProviderUnknownType(t *testing.T) {
	ai := config.AIConfig{Providers: map[string]config.AIProvider{
		"main": {Type: "carrier-pigeon", APIKey: "k", ModelName: "m", BaseURL: "https://x"},
	}}
	_, err := NewProvider("main", ai)
	require.Error(t, err)
}

func TestCompatProviderRequest(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &gotBody)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{
					"content": "```json\n{\"title\":\"A Project\"}\n```",
				}},
			},
		})
	}))
	defer srv.Close()

	ai := config.AIConfig{Providers: map[string]config.AIProvider{
		"mistral-main": {Type: "mistral", APIKey: "secret", ModelName: "mistral-small", BaseURL: srv.URL + "/v1"},
	}}
	provider, err := NewProvider("mistral-main", ai)
	require.NoError(t, err)

	var out ProjectSummaryResponse
	require.NoError(t, provider.Request(context.Background(), projectSummaryRequest{text: "export"}, &out))

	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "mistral-small", gotBody["model"])
	assert.Equal(t, "A Project", out.Title)
	assert.Equal(t, "mistral-main", out.Provider)
}

func TestCompatProviderBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer srv.Close()

	ai := config.AIConfig{Providers: map[string]config.AIProvider{
		"main": {Type: "openai-compatible", APIKey: "k", ModelName: "m", BaseURL: srv.URL},
	}}
	provider, err := NewProvider("main", ai)
	require.NoError(t, err)

	var out ProjectSummaryResponse
	err = provider.Request(context.Background(), projectSummaryRequest{text: "export"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestVisionParts(t *testing.T) {
	req := imageBatchRequest{
		handles: []string{"doc_1", "doc_2", "doc_3", "doc_4"},
		urls: []string{
			"https://example.org/a.png",
			"https://example.org/b.txt",
			"https://example.org/c.pdf",
			"https://example.org/d.JPG",
		},
	}
	parts := visionParts(req)
	require.Len(t, parts, 3)
	assert.Equal(t, "image/png", parts[0].MediaType)
	assert.Equal(t, "application/pdf", parts[1].MediaType)
	assert.Equal(t, "image/jpeg", parts[2].MediaType)
}
