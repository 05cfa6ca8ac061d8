package summarization

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/liqd/a4-roots/internal/config"
	"github.com/liqd/a4-roots/internal/models"
	"github.com/liqd/a4-roots/internal/modules/export"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SummaryProvider is what the orchestrator needs from a backend.
type SummaryProvider interface {
	Request(ctx context.Context, req AIRequest, out Response) error
}

// SummarizeOptions tunes one ProjectSummarize call.
type SummarizeOptions struct {
	// RateLimit enables the cooldown and global-ceiling checks. Cache and
	// fallback behavior is unaffected.
	RateLimit bool
	// Prompt overrides the stored prompt label; empty uses the default.
	Prompt string
}

// SummarizeResult pairs the structured response with the summary row it came
// from. Row is nil only when a brand-new response could not be persisted.
type SummarizeResult struct {
	Response *ProjectSummaryResponse
	Row      *models.ProjectSummaryModel
	// Cached is true when no provider call produced this response.
	Cached bool
}

// Service orchestrates export aggregation, document resolution, provider
// calls, caching and rate limiting.
type Service struct {
	db         *gorm.DB
	store      *Store
	provider   SummaryProvider
	resolver   *Resolver
	policy     config.SummarizationConfig
	exportOpts export.Options
	logger     *zap.Logger

	mu           sync.Mutex
	projectLocks map[string]*sync.Mutex

	now func() time.Time
}

// NewService builds the summarization service from configuration. Provider
// misconfiguration surfaces here, not at request time.
func NewService(db *gorm.DB, cfg *config.AppConfig, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	summaryProvider, err := NewProvider(cfg.AI.SummaryProvider, cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("summary provider: %w", err)
	}
	documentProvider, err := NewProvider(cfg.AI.DocumentProvider, cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("document provider: %w", err)
	}

	return &Service{
		db:       db,
		store:    NewStore(db),
		provider: summaryProvider,
		resolver: NewResolver(documentProvider, cfg.Summarization.DownloadTimeout, logger),
		policy:   cfg.Summarization,
		exportOpts: export.Options{
			MaxCommentDepth: cfg.Export.MaxCommentDepth,
			MaxCommentNodes: cfg.Export.MaxCommentNodes,
		},
		logger:       logger,
		projectLocks: map[string]*sync.Mutex{},
		now:          time.Now,
	}, nil
}

// Store exposes the persistence layer for feedback handling.
func (s *Service) Store() *Store { return s.store }

// SummarizeProject runs the full pipeline for one project: export, document
// attachment processing, then the cached/rate-limited provider call.
func (s *Service) SummarizeProject(ctx context.Context, projectID string) (*SummarizeResult, error) {
	doc, err := export.Generate(s.db, projectID, s.exportOpts)
	if err != nil {
		return nil, err
	}

	items, sources := collectDocumentAttachments(doc)
	if len(items) > 0 {
		response := s.resolver.ProcessDocuments(ctx, items)
		integrateDocumentSummaries(doc, response.Documents, sources)
	}

	text, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize export: %w", err)
	}

	return s.ProjectSummarize(ctx, projectID, string(text), SummarizeOptions{RateLimit: true})
}

// ProjectSummarize applies the cache and rate-limit policy, calling the
// provider only when every check passes. A new summary row is created iff a
// genuinely new provider call succeeded.
func (s *Service) ProjectSummarize(ctx context.Context, projectID, text string, opts SummarizeOptions) (*SummarizeResult, error) {
	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	prompt := opts.Prompt
	if prompt == "" {
		prompt = projectSummarySystemPrompt
	}

	latest, err := s.store.LatestSummary(projectID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	hash := models.ComputeInputHash(text)

	if latest != nil && latest.InputTextHash == hash {
		return s.cachedResult(latest)
	}

	if opts.RateLimit && latest != nil {
		age := now.Sub(latest.CreatedAt)
		if age < s.policy.Cooldown {
			s.logger.Debug("summary cooldown active",
				zap.String("project_id", projectID), zap.Duration("age", age))
			return s.cachedResult(latest)
		}
		if age < s.policy.GlobalWindow {
			count, err := s.store.CountSummariesSince(now.Add(-s.policy.GlobalWindow))
			if err != nil {
				return nil, err
			}
			if count >= int64(s.policy.GlobalCeiling) {
				s.logger.Warn("global summary ceiling reached",
					zap.Int64("count", count), zap.Int("ceiling", s.policy.GlobalCeiling))
				return s.cachedResult(latest)
			}
		}
	}

	var response ProjectSummaryResponse
	if err := s.provider.Request(ctx, projectSummaryRequest{text: text}, &response); err != nil {
		if s.policy.FallbackMaxAge > 0 && latest != nil && now.Sub(latest.CreatedAt) <= s.policy.FallbackMaxAge {
			s.logger.Warn("provider failed, serving stale summary",
				zap.String("project_id", projectID), zap.Error(err))
			return s.cachedResult(latest)
		}
		return nil, err
	}

	data, err := json.Marshal(&response)
	if err != nil {
		return nil, fmt.Errorf("serialize response: %w", err)
	}
	row, err := s.store.CreateSummary(projectID, prompt, text, data)
	if err != nil {
		return nil, err
	}
	return &SummarizeResult{Response: &response, Row: row}, nil
}

// ProcessDocuments summarizes a standalone attachment batch.
func (s *Service) ProcessDocuments(ctx context.Context, items []DocumentInputItem) DocumentSummaryResponse {
	return s.resolver.ProcessDocuments(ctx, items)
}

func (s *Service) cachedResult(row *models.ProjectSummaryModel) (*SummarizeResult, error) {
	var response ProjectSummaryResponse
	if err := json.Unmarshal(row.ResponseData, &response); err != nil {
		return nil, fmt.Errorf("decode cached summary %s: %w", row.ID, err)
	}
	return &SummarizeResult{Response: &response, Row: row, Cached: true}, nil
}

func (s *Service) projectLock(projectID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.projectLocks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		s.projectLocks[projectID] = lock
	}
	return lock
}
