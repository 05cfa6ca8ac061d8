package models

// PollModel is a poll module's poll. Questions, choices, votes and open
// answers hang off it in separate tables.
type PollModel struct {
	Base
	ModuleID string `json:"module_id" gorm:"index;not null"`
	URL      string `json:"url"`
}

func (PollModel) TableName() string { return "polls" }

type PollQuestionModel struct {
	Base
	PollID         string `json:"poll_id"         gorm:"index;not null"`
	Label          string `json:"label"           gorm:"not null"`
	Weight         int    `json:"weight"          gorm:"default:0"`
	MultipleChoice bool   `json:"multiple_choice" gorm:"default:false"`
	IsOpen         bool   `json:"is_open"         gorm:"default:false"`
}

func (PollQuestionModel) TableName() string { return "poll_questions" }

type PollChoiceModel struct {
	Base
	QuestionID    string `json:"question_id"     gorm:"index;not null"`
	Label         string `json:"label"           gorm:"not null"`
	Weight        int    `json:"weight"          gorm:"default:0"`
	IsOtherChoice bool   `json:"is_other_choice" gorm:"default:false"`
}

func (PollChoiceModel) TableName() string { return "poll_choices" }

type PollVoteModel struct {
	Base
	ChoiceID    string `json:"choice_id"    gorm:"index;not null"`
	CreatorID   string `json:"creator_id"   gorm:"index"`
	OtherAnswer string `json:"other_answer"`
}

func (PollVoteModel) TableName() string { return "poll_votes" }

// PollAnswerModel is a free-text answer to an open question.
type PollAnswerModel struct {
	Base
	QuestionID string `json:"question_id" gorm:"index;not null"`
	CreatorID  string `json:"creator_id"  gorm:"index"`
	Answer     string `json:"answer"      gorm:"type:text"`
}

func (PollAnswerModel) TableName() string { return "poll_answers" }
