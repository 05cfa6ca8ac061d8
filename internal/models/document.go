package models

// ChapterModel is a chapter of a collaborative text document module.
type ChapterModel struct {
	Base
	ModuleID string `json:"module_id" gorm:"index;not null"`
	Name     string `json:"name"      gorm:"not null"`
	Weight   int    `json:"weight"    gorm:"default:0"`
	URL      string `json:"url"`
}

func (ChapterModel) TableName() string { return "chapters" }

// ParagraphModel is a commentable paragraph within a chapter.
type ParagraphModel struct {
	Base
	ChapterID   string      `json:"chapter_id"  gorm:"index;not null"`
	Name        string      `json:"name"`
	Text        string      `json:"text"        gorm:"type:longtext"`
	Attachments StringArray `json:"attachments" gorm:"type:longtext"`
	Weight      int         `json:"weight"      gorm:"default:0"`
}

func (ParagraphModel) TableName() string { return "paragraphs" }
