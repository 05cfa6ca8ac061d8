package summarization

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"
)

const compatRequestTimeout = 60 * time.Second

// compatBackend talks to OpenAI-compatible and Mistral-compatible chat
// completions endpoints over raw HTTP. Some of these backends reject fields
// the official SDK always sends, so the request body is built by hand.
type compatBackend struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

func newCompatBackend(cfg ProviderConfig) *compatBackend {
	return &compatBackend{
		endpoint: normalizeCompatEndpoint(cfg.BaseURL),
		apiKey:   cfg.APIKey,
		model:    cfg.ModelName,
		client:   &http.Client{Timeout: compatRequestTimeout},
	}
}

type compatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

func (b *compatBackend) complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	return b.send(ctx, buildCompatMessages(systemPrompt, prompt))
}

func (b *compatBackend) completeMultimodal(ctx context.Context, systemPrompt, prompt string, parts []ContentPart) (string, error) {
	content := make([]map[string]interface{}, 0, len(parts)+1)
	content = append(content, map[string]interface{}{
		"type": "text",
		"text": prompt,
	})
	for _, part := range parts {
		if part.MediaType == "application/pdf" {
			content = append(content, map[string]interface{}{
				"type":         "document_url",
				"document_url": part.URL,
			})
			continue
		}
		content = append(content, map[string]interface{}{
			"type":      "image_url",
			"image_url": map[string]string{"url": part.URL},
		})
	}

	messages := make([]compatMessage, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, compatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, compatMessage{Role: "user", Content: content})

	return b.send(ctx, messages)
}

func buildCompatMessages(systemPrompt, prompt string) []compatMessage {
	messages := make([]compatMessage, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, compatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, compatMessage{Role: "user", Content: prompt})
	return messages
}

func (b *compatBackend) send(ctx context.Context, messages []compatMessage) (string, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"model":    b.model,
		"messages": messages,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("chat completions error: %s", strings.TrimSpace(string(respBody)))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	if result.Error != nil && strings.TrimSpace(result.Error.Message) != "" {
		return "", fmt.Errorf("chat completions error: %s", result.Error.Message)
	}
	if strings.TrimSpace(result.Message) != "" && len(result.Choices) == 0 {
		return "", fmt.Errorf("chat completions error: %s", result.Message)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("empty response from AI")
	}
	return result.Choices[0].Message.Content, nil
}

// normalizeCompatEndpoint strips a trailing /v1 so the path segment is added
// exactly once.
func normalizeCompatEndpoint(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return "https://api.openai.com"
	}

	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		cleaned := strings.TrimRight(base, "/")
		return strings.TrimSuffix(cleaned, "/v1")
	}

	path := strings.TrimRight(parsed.Path, "/")
	path = strings.TrimSuffix(path, "/v1")
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
