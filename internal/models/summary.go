package models

import (
	"crypto/sha256"
	"database/sql/driver"
	"fmt"
)

// JSONRaw stores a pre-serialized JSON document in a json column.
type JSONRaw []byte

func (j JSONRaw) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "null", nil
	}
	return string(j), nil
}

func (j *JSONRaw) Scan(value interface{}) error {
	if j == nil {
		return fmt.Errorf("models.JSONRaw: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSONRaw(v)
	default:
		return fmt.Errorf("models.JSONRaw: unsupported Scan type %T", value)
	}
	return nil
}

// ProjectSummaryModel is one AI-generated summary of a project's participation
// data. Rows are create-only: cache and rate-limit decisions consult the most
// recent row per project, older rows remain for audit.
type ProjectSummaryModel struct {
	Base
	ProjectID     string  `json:"project_id"      gorm:"index:idx_summary_project_hash;not null"`
	Prompt        string  `json:"prompt"          gorm:"type:text"`
	InputTextHash string  `json:"input_text_hash" gorm:"type:char(64);index:idx_summary_project_hash;not null"`
	ResponseData  JSONRaw `json:"response_data"   gorm:"type:json"`
}

func (ProjectSummaryModel) TableName() string { return "project_summaries" }

// ComputeInputHash is the cache key over the aggregated export text.
func ComputeInputHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", h)
}

// SummaryFeedback values.
const (
	FeedbackPositive = "positive"
	FeedbackNegative = "negative"
)

// SummaryFeedbackModel links a summary to a thumbs-up/down by either an
// authenticated user or an anonymous session key, never both.
type SummaryFeedbackModel struct {
	Base
	SummaryID  string  `json:"summary_id"  gorm:"uniqueIndex:idx_feedback_user;uniqueIndex:idx_feedback_session;not null"`
	UserID     *string `json:"user_id"     gorm:"uniqueIndex:idx_feedback_user"`
	SessionKey *string `json:"session_key" gorm:"type:varchar(40);uniqueIndex:idx_feedback_session"`
	Feedback   string  `json:"feedback"    gorm:"type:varchar(10);not null"`
}

func (SummaryFeedbackModel) TableName() string { return "summary_feedback" }
