package summarization

import (
	"context"
	"errors"
	"strings"

	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
)

// openaiBackend speaks the chat completions API through the official SDK.
type openaiBackend struct {
	client openaiclient.Client
	model  string
}

func newOpenAIBackend(cfg ProviderConfig) *openaiBackend {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(cfg.APIKey),
		openaioption.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openaioption.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}
	return &openaiBackend{
		client: openaiclient.NewClient(opts...),
		model:  cfg.ModelName,
	}
}

func (b *openaiBackend) complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	messages := make([]openaiclient.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, openaiclient.SystemMessage(systemPrompt))
	}
	messages = append(messages, openaiclient.UserMessage(prompt))

	return b.send(ctx, messages)
}

func (b *openaiBackend) completeMultimodal(ctx context.Context, systemPrompt, prompt string, parts []ContentPart) (string, error) {
	content := make([]openaiclient.ChatCompletionContentPartUnionParam, 0, len(parts)+1)
	content = append(content, openaiclient.TextContentPart(prompt))
	for _, part := range parts {
		content = append(content, openaiclient.ImageContentPart(
			openaiclient.ChatCompletionContentPartImageImageURLParam{URL: part.URL},
		))
	}

	messages := make([]openaiclient.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, openaiclient.SystemMessage(systemPrompt))
	}
	messages = append(messages, openaiclient.UserMessage(content))

	return b.send(ctx, messages)
}

func (b *openaiBackend) send(ctx context.Context, messages []openaiclient.ChatCompletionMessageParamUnion) (string, error) {
	completion, err := b.client.Chat.Completions.New(ctx, openaiclient.ChatCompletionNewParams{
		Model:    openaiclient.ChatModel(b.model),
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("empty response from AI")
	}
	return completion.Choices[0].Message.Content, nil
}
