package summarization

import (
	"errors"
	"fmt"
	"time"

	"github.com/liqd/a4-roots/internal/models"
	"gorm.io/gorm"
)

// Store wraps summary and feedback persistence. Summaries are create-only;
// feedback upserts by delete-then-create.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// LatestSummary returns the most recent summary for a project, or nil.
func (s *Store) LatestSummary(projectID string) (*models.ProjectSummaryModel, error) {
	var summary models.ProjectSummaryModel
	err := s.db.Where("project_id = ?", projectID).
		Order("created_at DESC").First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest summary: %w", err)
	}
	return &summary, nil
}

// CachedSummary returns the summary matching (project, prompt, input hash),
// or nil.
func (s *Store) CachedSummary(projectID, prompt, inputText string) (*models.ProjectSummaryModel, error) {
	hash := models.ComputeInputHash(inputText)
	var summary models.ProjectSummaryModel
	err := s.db.Where("project_id = ? AND prompt = ? AND input_text_hash = ?", projectID, prompt, hash).
		Order("created_at DESC").First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cached summary: %w", err)
	}
	return &summary, nil
}

// CreateSummary persists a new summary row. Rows are never mutated after
// creation.
func (s *Store) CreateSummary(projectID, prompt, inputText string, responseData []byte) (*models.ProjectSummaryModel, error) {
	summary := models.ProjectSummaryModel{
		ProjectID:     projectID,
		Prompt:        prompt,
		InputTextHash: models.ComputeInputHash(inputText),
		ResponseData:  models.JSONRaw(responseData),
	}
	if err := s.db.Create(&summary).Error; err != nil {
		return nil, fmt.Errorf("create summary: %w", err)
	}
	return &summary, nil
}

// CountSummariesSince counts summaries created globally after cutoff.
func (s *Store) CountSummariesSince(cutoff time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&models.ProjectSummaryModel{}).
		Where("created_at >= ?", cutoff).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count summaries: %w", err)
	}
	return count, nil
}

// SummariesForProject lists a project's summaries, newest first.
func (s *Store) SummariesForProject(projectID string, limit int) ([]models.ProjectSummaryModel, error) {
	if limit <= 0 {
		limit = 20
	}
	var summaries []models.ProjectSummaryModel
	err := s.db.Where("project_id = ?", projectID).
		Order("created_at DESC").Limit(limit).Find(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	return summaries, nil
}

// SummaryByID loads one summary scoped to a project.
func (s *Store) SummaryByID(projectID, summaryID string) (*models.ProjectSummaryModel, error) {
	var summary models.ProjectSummaryModel
	err := s.db.Where("id = ? AND project_id = ?", summaryID, projectID).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}
	return &summary, nil
}

// UpsertFeedback replaces any previous feedback for the same identity on the
// same summary. Exactly one of userID and sessionKey must be set.
func (s *Store) UpsertFeedback(summaryID, userID, sessionKey, feedback string) (*models.SummaryFeedbackModel, error) {
	if feedback != models.FeedbackPositive && feedback != models.FeedbackNegative {
		return nil, fmt.Errorf("invalid feedback value %q", feedback)
	}
	if (userID == "") == (sessionKey == "") {
		return nil, errors.New("feedback requires exactly one of user or session key")
	}

	row := models.SummaryFeedbackModel{
		SummaryID: summaryID,
		Feedback:  feedback,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if userID != "" {
			row.UserID = &userID
			if err := tx.Unscoped().
				Where("summary_id = ? AND user_id = ?", summaryID, userID).
				Delete(&models.SummaryFeedbackModel{}).Error; err != nil {
				return err
			}
		} else {
			row.SessionKey = &sessionKey
			if err := tx.Unscoped().
				Where("summary_id = ? AND session_key = ?", summaryID, sessionKey).
				Delete(&models.SummaryFeedbackModel{}).Error; err != nil {
				return err
			}
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, fmt.Errorf("upsert feedback: %w", err)
	}
	return &row, nil
}

// FeedbackFor returns the identity's feedback value for a summary, or "".
func (s *Store) FeedbackFor(summaryID, userID, sessionKey string) (string, error) {
	tx := s.db.Model(&models.SummaryFeedbackModel{}).Where("summary_id = ?", summaryID)
	switch {
	case userID != "":
		tx = tx.Where("user_id = ?", userID)
	case sessionKey != "":
		tx = tx.Where("session_key = ?", sessionKey)
	default:
		return "", nil
	}

	var row models.SummaryFeedbackModel
	err := tx.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load feedback: %w", err)
	}
	return row.Feedback, nil
}
