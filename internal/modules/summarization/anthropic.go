package summarization

import (
	"context"
	"errors"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 4096

// anthropicBackend speaks the Anthropic messages API.
type anthropicBackend struct {
	client anthropicclient.Client
	model  string
}

func newAnthropicBackend(cfg ProviderConfig) *anthropicBackend {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(cfg.APIKey),
		anthropicoption.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}
	return &anthropicBackend{
		client: anthropicclient.NewClient(opts...),
		model:  cfg.ModelName,
	}
}

func (b *anthropicBackend) complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	return b.send(ctx, systemPrompt, []anthropicclient.ContentBlockParamUnion{
		anthropicclient.NewTextBlock(prompt),
	})
}

func (b *anthropicBackend) completeMultimodal(ctx context.Context, systemPrompt, prompt string, parts []ContentPart) (string, error) {
	blocks := make([]anthropicclient.ContentBlockParamUnion, 0, len(parts)+1)
	blocks = append(blocks, anthropicclient.NewTextBlock(prompt))
	for _, part := range parts {
		if part.MediaType == "application/pdf" {
			blocks = append(blocks, anthropicclient.NewDocumentBlock(
				anthropicclient.URLPDFSourceParam{URL: part.URL},
			))
			continue
		}
		blocks = append(blocks, anthropicclient.NewImageBlock(
			anthropicclient.URLImageSourceParam{URL: part.URL},
		))
	}
	return b.send(ctx, systemPrompt, blocks)
}

func (b *anthropicBackend) send(ctx context.Context, systemPrompt string, blocks []anthropicclient.ContentBlockParamUnion) (string, error) {
	params := anthropicclient.MessageNewParams{
		Model:     anthropicclient.Model(b.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropicclient.MessageParam{
			anthropicclient.NewUserMessage(blocks...),
		},
	}
	if strings.TrimSpace(systemPrompt) != "" {
		params.System = []anthropicclient.TextBlockParam{{Text: systemPrompt}}
	}

	message, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var full strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			full.WriteString(block.Text)
		}
	}
	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty response from AI")
	}
	return text, nil
}
