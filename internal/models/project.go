package models

// ProjectModel is a participation project. Modules group the participation
// content (ideas, polls, documents, debates) that belongs to one phase setup.
type ProjectModel struct {
	Base
	Name         string      `json:"name"         gorm:"not null"`
	Slug         string      `json:"slug"         gorm:"uniqueIndex;not null"`
	Description  string      `json:"description"  gorm:"type:longtext"`
	Result       string      `json:"result"       gorm:"type:longtext"`
	Organisation string      `json:"organisation"`
	URL          string      `json:"url"`
	Attachments  StringArray `json:"attachments"  gorm:"type:longtext"`
}

func (ProjectModel) TableName() string { return "projects" }

// ModuleModel is a participation module within a project.
type ModuleModel struct {
	Base
	ProjectID string `json:"project_id" gorm:"index;not null"`
	Name      string `json:"name"       gorm:"not null"`
	Weight    int    `json:"weight"     gorm:"default:0"`
}

func (ModuleModel) TableName() string { return "modules" }
