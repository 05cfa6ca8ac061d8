package models

// RefType indicates which content type a comment or rating is attached to.
type RefType string

const (
	RefTypeIdea      RefType = "idea"
	RefTypeTopic     RefType = "topic"
	RefTypePoll      RefType = "poll"
	RefTypeDebate    RefType = "debate"
	RefTypeChapter   RefType = "chapter"
	RefTypeParagraph RefType = "paragraph"
	RefTypeComment   RefType = "comment"
)

// CommentModel is a participant comment on any content type. A reply has
// RefType "comment" and RefID pointing at its parent; the chain forms a
// tree, never a cycle.
type CommentModel struct {
	Base
	RefType           RefType `json:"ref_type"   gorm:"not null;index"`
	RefID             string  `json:"ref_id"     gorm:"not null;index"`
	CreatorID         string  `json:"creator_id" gorm:"index"`
	Text              string  `json:"text"       gorm:"type:text;not null"`
	IsRemoved         bool    `json:"is_removed"          gorm:"default:false"`
	IsCensored        bool    `json:"is_censored"         gorm:"default:false"`
	IsBlocked         bool    `json:"is_blocked"          gorm:"default:false"`
	IsModeratorMarked bool    `json:"is_moderator_marked" gorm:"default:false"`
}

func (CommentModel) TableName() string { return "comments" }

// RatingModel is a participant rating (+1/-1) on content or comments.
type RatingModel struct {
	Base
	RefType   RefType `json:"ref_type"   gorm:"not null;index"`
	RefID     string  `json:"ref_id"     gorm:"not null;index"`
	CreatorID string  `json:"creator_id" gorm:"index"`
	Value     int     `json:"value"`
}

func (RatingModel) TableName() string { return "ratings" }
