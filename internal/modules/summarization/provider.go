package summarization

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/liqd/a4-roots/internal/config"
)

// ProviderConfig is the resolved configuration of one backend handle,
// immutable per request.
type ProviderConfig struct {
	Handle            string
	Type              string
	APIKey            string
	ModelName         string
	BaseURL           string
	SupportsImages    bool
	SupportsDocuments bool
}

// backend is the adapter contract. Adapters differ only in how the
// underlying client is constructed and spoken to.
type backend interface {
	complete(ctx context.Context, systemPrompt, prompt string) (string, error)
	completeMultimodal(ctx context.Context, systemPrompt, prompt string, parts []ContentPart) (string, error)
}

// Provider exposes a uniform request contract over one configured backend.
// Backend errors propagate to the caller; there are no retries here.
type Provider struct {
	cfg          ProviderConfig
	systemPrompt string
	backend      backend
}

// NewProvider resolves a handle against the provider map and builds the
// matching adapter.
func NewProvider(handle string, ai config.AIConfig) (*Provider, error) {
	cfg, err := resolveProviderConfig(handle, ai)
	if err != nil {
		return nil, err
	}

	var adapter backend
	switch normalizeProviderType(cfg.Type) {
	case "openai", "":
		adapter = newOpenAIBackend(cfg)
	case "openai-compatible", "openaicompatible", "mistral":
		adapter = newCompatBackend(cfg)
	case "anthropic":
		adapter = newAnthropicBackend(cfg)
	default:
		return nil, fmt.Errorf("unknown provider type %q for handle %q", cfg.Type, handle)
	}

	return &Provider{
		cfg:          cfg,
		systemPrompt: ai.SystemPrompt,
		backend:      adapter,
	}, nil
}

// Config returns the resolved provider configuration.
func (p *Provider) Config() ProviderConfig { return p.cfg }

// Request executes req against the backend and decodes the structured
// response into out. Vision-capable requests are routed to the multimodal
// path automatically.
func (p *Provider) Request(ctx context.Context, req AIRequest, out Response) error {
	if req.VisionSupport() {
		return p.MultimodalRequest(ctx, req, visionParts(req), out)
	}

	raw, err := p.backend.complete(ctx, p.systemPrompt, req.Prompt())
	if err != nil {
		return fmt.Errorf("provider %s: %w", p.cfg.Handle, err)
	}
	return p.decode(raw, out)
}

// MultimodalRequest executes req with non-text content parts attached.
func (p *Provider) MultimodalRequest(ctx context.Context, req AIRequest, parts []ContentPart, out Response) error {
	raw, err := p.backend.completeMultimodal(ctx, p.systemPrompt, req.Prompt(), parts)
	if err != nil {
		return fmt.Errorf("provider %s: %w", p.cfg.Handle, err)
	}
	return p.decode(raw, out)
}

func (p *Provider) decode(raw string, out Response) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("empty response from AI")
	}
	if err := unmarshalAIJSON(raw, out); err != nil {
		return err
	}
	out.SetProvider(p.cfg.Handle)
	return nil
}

func resolveProviderConfig(handle string, ai config.AIConfig) (ProviderConfig, error) {
	entry, ok := ai.Providers[handle]
	if !ok {
		available := make([]string, 0, len(ai.Providers))
		for h := range ai.Providers {
			available = append(available, h)
		}
		sort.Strings(available)
		return ProviderConfig{}, fmt.Errorf(
			"unknown provider handle %q, available: %s", handle, strings.Join(available, ", "))
	}

	cfg := ProviderConfig{
		Handle:            handle,
		Type:              entry.Type,
		APIKey:            strings.TrimSpace(entry.APIKey),
		ModelName:         strings.TrimSpace(entry.ModelName),
		BaseURL:           strings.TrimSpace(entry.BaseURL),
		SupportsImages:    true,
		SupportsDocuments: entry.SupportsDocuments,
	}
	if entry.SupportsImages != nil {
		cfg.SupportsImages = *entry.SupportsImages
	}

	if cfg.APIKey == "" || cfg.ModelName == "" || cfg.BaseURL == "" {
		return ProviderConfig{}, fmt.Errorf(
			"provider %q is missing required fields (api_key, model_name, base_url)", handle)
	}
	return cfg, nil
}

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	return t
}

// visionSupportedExtensions filters what goes to the vision endpoint. PDFs
// are allowed through when a provider accepts them as content parts.
var visionSupportedExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp",
	".mpo", ".heif", ".avif", ".bmp", ".tiff", ".tif",
	".pdf",
}

func visionParts(req AIRequest) []ContentPart {
	vr, ok := req.(interface{ VisionURLs() []string })
	if !ok {
		return nil
	}
	urls := vr.VisionURLs()
	parts := make([]ContentPart, 0, len(urls))
	for _, url := range urls {
		lower := strings.ToLower(url)
		for _, ext := range visionSupportedExtensions {
			if strings.HasSuffix(lower, ext) {
				parts = append(parts, ContentPart{URL: url, MediaType: mediaTypeForExtension(ext)})
				break
			}
		}
	}
	return parts
}

func mediaTypeForExtension(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg", "mpo":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "bmp":
		return "image/bmp"
	case "tiff", "tif":
		return "image/tiff"
	case "avif":
		return "image/avif"
	case "heif":
		return "image/heif"
	case "pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
