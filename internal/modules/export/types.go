package export

import "time"

// Document is the transient, JSON-serializable snapshot of everything
// participants contributed to a project. It is rebuilt on every request and
// never persisted.
type Document struct {
	Project       ProjectInfo    `json:"project"`
	Ideas         []Idea         `json:"ideas"`
	Polls         []Poll         `json:"polls"`
	Topics        []Topic        `json:"topics"`
	Debates       []Debate       `json:"debates"`
	Documents     []Chapter      `json:"documents"`
	OfflineEvents []OfflineEvent `json:"offline_events"`
	Stats         Stats          `json:"stats"`

	// DocumentSummaries is filled in by the summarization layer after
	// attachment processing; empty in a fresh export.
	DocumentSummaries []DocumentSummary `json:"document_summaries,omitempty"`
}

// DocumentSummary is an AI or locally generated summary of one attachment,
// keyed back to its source content item.
type DocumentSummary struct {
	Handle  string `json:"handle"`
	Source  string `json:"source"`
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

type ProjectInfo struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Attachments  []string `json:"attachments"`
	Slug         string   `json:"slug"`
	Organisation string   `json:"organisation"`
	Result       string   `json:"result"`
	URL          string   `json:"url"`
}

type Comment struct {
	ID                string    `json:"id"`
	Text              string    `json:"text"`
	Created           time.Time `json:"created"`
	IsRemoved         bool      `json:"is_removed"`
	IsCensored        bool      `json:"is_censored"`
	IsBlocked         bool      `json:"is_blocked"`
	IsModeratorMarked bool      `json:"is_moderator_marked"`
	Ratings           []Rating  `json:"ratings"`
	Replies           []Comment `json:"replies,omitempty"`
	ReplyCount        int       `json:"reply_count,omitempty"`
}

type Rating struct {
	ID      string    `json:"id"`
	Value   int       `json:"value"`
	Created time.Time `json:"created"`
}

type Idea struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Attachments     []string  `json:"attachments"`
	Created         time.Time `json:"created"`
	ReferenceNumber string    `json:"reference_number"`
	Category        string    `json:"category,omitempty"`
	Labels          []string  `json:"labels"`
	CommentCount    int       `json:"comment_count"`
	Comments        []Comment `json:"comments"`
	RatingCount     int       `json:"rating_count"`
	Ratings         []Rating  `json:"ratings"`
	ModuleID        string    `json:"module_id"`
	ModuleName      string    `json:"module_name"`
}

type Topic struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Attachments     []string  `json:"attachments"`
	Created         time.Time `json:"created"`
	ReferenceNumber string    `json:"reference_number"`
	Category        string    `json:"category,omitempty"`
	Labels          []string  `json:"labels"`
	CommentCount    int       `json:"comment_count"`
	Comments        []Comment `json:"comments"`
	RatingCount     int       `json:"rating_count"`
	Ratings         []Rating  `json:"ratings"`
	ModuleID        string    `json:"module_id"`
	ModuleName      string    `json:"module_name"`
}

type Poll struct {
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	ModuleName   string     `json:"module_name"`
	Questions    []Question `json:"questions"`
	Comments     []Comment  `json:"comments"`
	CommentCount int        `json:"comment_count"`
	TotalVotes   int        `json:"total_votes"`
}

type Question struct {
	Label          string   `json:"label"`
	MultipleChoice bool     `json:"multiple_choice"`
	IsOpen         bool     `json:"is_open"`
	Choices        []Choice `json:"choices"`
	Answers        []Answer `json:"answers"`
	VoteCount      int      `json:"vote_count"`
}

type Choice struct {
	Label         string `json:"label"`
	IsOtherChoice bool   `json:"is_other_choice"`
	VoteCount     int    `json:"vote_count"`
	Votes         []Vote `json:"votes"`
}

type Vote struct {
	Created     time.Time `json:"created"`
	OtherAnswer string    `json:"other_answer,omitempty"`
}

type Answer struct {
	Answer  string    `json:"answer"`
	Created time.Time `json:"created"`
}

type Debate struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Created         time.Time `json:"created"`
	ReferenceNumber string    `json:"reference_number"`
	Slug            string    `json:"slug"`
	ModuleID        string    `json:"module_id"`
	ModuleName      string    `json:"module_name"`
	CommentCount    int       `json:"comment_count"`
	Comments        []Comment `json:"comments"`
}

type Chapter struct {
	ID                     string      `json:"id"`
	Name                   string      `json:"name"`
	URL                    string      `json:"url"`
	Weight                 int         `json:"weight"`
	Created                time.Time   `json:"created"`
	ModuleID               string      `json:"module_id"`
	ModuleName             string      `json:"module_name"`
	ParagraphCount         int         `json:"paragraph_count"`
	Paragraphs             []Paragraph `json:"paragraphs"`
	ChapterCommentCount    int         `json:"chapter_comment_count"`
	ChapterComments        []Comment   `json:"chapter_comments"`
	TotalParagraphComments int         `json:"total_paragraph_comments"`
}

type Paragraph struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Text         string    `json:"text"`
	Attachments  []string  `json:"attachments"`
	Weight       int       `json:"weight"`
	Created      time.Time `json:"created"`
	CommentCount int       `json:"comment_count"`
	Comments     []Comment `json:"comments"`
}

type OfflineEvent struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	EventType   string    `json:"event_type"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Attachments []string  `json:"attachments"`
	Slug        string    `json:"slug"`
	URL         string    `json:"url"`
	Created     time.Time `json:"created"`
}

type Stats struct {
	TotalIdeas        int64 `json:"total_ideas"`
	TotalPolls        int64 `json:"total_polls"`
	TotalTopics       int64 `json:"total_topics"`
	TotalDebates      int64 `json:"total_debates"`
	TotalChapters     int64 `json:"total_chapters"`
	TotalParagraphs   int64 `json:"total_paragraphs"`
	TotalComments     int64 `json:"total_comments"`
	TotalParticipants int64 `json:"total_participants"`
	Contributions     int64 `json:"contributions"`
}
