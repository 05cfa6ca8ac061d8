package models

import "time"

// IdeaModel is a participant-submitted idea within a brainstorming module.
type IdeaModel struct {
	ContentBase
	ModuleID        string      `json:"module_id"        gorm:"index;not null"`
	ReferenceNumber string      `json:"reference_number"`
	Category        string      `json:"category"`
	Labels          StringArray `json:"labels"           gorm:"type:longtext"`
	URL             string      `json:"url"`
}

func (IdeaModel) TableName() string { return "ideas" }

// TopicModel is a moderator-curated topic for prioritization modules.
type TopicModel struct {
	ContentBase
	ModuleID        string      `json:"module_id"        gorm:"index;not null"`
	ReferenceNumber string      `json:"reference_number"`
	Category        string      `json:"category"`
	Labels          StringArray `json:"labels"           gorm:"type:longtext"`
	URL             string      `json:"url"`
}

func (TopicModel) TableName() string { return "topics" }

// DebateSubjectModel is a debate question participants comment on.
type DebateSubjectModel struct {
	ContentBase
	ModuleID        string `json:"module_id"        gorm:"index;not null"`
	ReferenceNumber string `json:"reference_number"`
	Slug            string `json:"slug"`
	URL             string `json:"url"`
}

func (DebateSubjectModel) TableName() string { return "debate_subjects" }

// OfflineEventModel is an in-person event attached to a project timeline.
type OfflineEventModel struct {
	Base
	ProjectID   string      `json:"project_id"  gorm:"index;not null"`
	Name        string      `json:"name"        gorm:"not null"`
	EventType   string      `json:"event_type"`
	Date        time.Time   `json:"date"`
	Description string      `json:"description" gorm:"type:longtext"`
	Attachments StringArray `json:"attachments" gorm:"type:longtext"`
	Slug        string      `json:"slug"`
	URL         string      `json:"url"`
}

func (OfflineEventModel) TableName() string { return "offline_events" }
