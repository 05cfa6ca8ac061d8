package export

import (
	"fmt"
	"strings"
	"testing"

	"github.com/liqd/a4-roots/internal/database"
	"github.com/liqd/a4-roots/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createProject(t *testing.T, db *gorm.DB) (models.ProjectModel, models.ModuleModel) {
	t.Helper()
	project := models.ProjectModel{
		Name:         "Test Project",
		Slug:         "test-project",
		Description:  "A project",
		Organisation: "Test Org",
	}
	require.NoError(t, db.Create(&project).Error)
	module := models.ModuleModel{ProjectID: project.ID, Name: "Brainstorming", Weight: 1}
	require.NoError(t, db.Create(&module).Error)
	return project, module
}

func createIdea(t *testing.T, db *gorm.DB, moduleID, creator, name string) models.IdeaModel {
	t.Helper()
	idea := models.IdeaModel{
		ContentBase: models.ContentBase{CreatorID: creator, Name: name},
		ModuleID:    moduleID,
	}
	require.NoError(t, db.Create(&idea).Error)
	return idea
}

func createComment(t *testing.T, db *gorm.DB, refType models.RefType, refID, creator, text string) models.CommentModel {
	t.Helper()
	comment := models.CommentModel{
		RefType:   refType,
		RefID:     refID,
		CreatorID: creator,
		Text:      text,
	}
	require.NoError(t, db.Create(&comment).Error)
	return comment
}

func TestGenerateStatsContributionsAndParticipants(t *testing.T) {
	db := newTestDB(t)
	project, module := createProject(t, db)

	idea1 := createIdea(t, db, module.ID, "u1", "Idea One")
	createIdea(t, db, module.ID, "u2", "Idea Two")
	createIdea(t, db, module.ID, "u1", "Idea Three")

	comment := createComment(t, db, models.RefTypeIdea, idea1.ID, "u3", "a comment")
	createComment(t, db, models.RefTypeComment, comment.ID, "u2", "a reply")

	doc, err := Generate(db, project.ID, Options{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), doc.Stats.TotalIdeas)
	assert.Equal(t, int64(2), doc.Stats.TotalComments)
	assert.Equal(t, int64(5), doc.Stats.Contributions)
	assert.Equal(t, int64(3), doc.Stats.TotalParticipants)

	require.Len(t, doc.Ideas, 3)
	first := doc.Ideas[0]
	assert.Equal(t, "Idea One", first.Name)
	assert.Equal(t, 1, first.CommentCount)
	require.Len(t, first.Comments, 1)
	assert.Equal(t, 1, first.Comments[0].ReplyCount)
	require.Len(t, first.Comments[0].Replies, 1)
	assert.Equal(t, "a reply", first.Comments[0].Replies[0].Text)
}

func TestGenerateCommentDepthBound(t *testing.T) {
	db := newTestDB(t)
	project, module := createProject(t, db)
	idea := createIdea(t, db, module.ID, "u1", "Deep Thread")

	c1 := createComment(t, db, models.RefTypeIdea, idea.ID, "u1", "level 1")
	c2 := createComment(t, db, models.RefTypeComment, c1.ID, "u2", "level 2")
	createComment(t, db, models.RefTypeComment, c2.ID, "u3", "level 3")

	doc, err := Generate(db, project.ID, Options{MaxCommentDepth: 2})
	require.NoError(t, err)

	require.Len(t, doc.Ideas, 1)
	comments := doc.Ideas[0].Comments
	require.Len(t, comments, 1)
	require.Len(t, comments[0].Replies, 1)

	// depth limit drops the subtree but keeps the true reply count
	level2 := comments[0].Replies[0]
	assert.Empty(t, level2.Replies)
	assert.Equal(t, 1, level2.ReplyCount)

	// stats walk the full reply chain regardless of the export bound
	assert.Equal(t, int64(3), doc.Stats.TotalComments)
	assert.Equal(t, int64(3), doc.Stats.TotalParticipants)
}

func TestGenerateStatsRatingQueryError(t *testing.T) {
	db := newTestDB(t)
	project, _ := createProject(t, db)

	require.NoError(t, db.Migrator().DropTable(&models.RatingModel{}))

	_, err := Generate(db, project.ID, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rating")
}

func TestGenerateCommentNodeBudget(t *testing.T) {
	db := newTestDB(t)
	project, module := createProject(t, db)
	idea := createIdea(t, db, module.ID, "u1", "Busy Idea")

	for i := 0; i < 3; i++ {
		createComment(t, db, models.RefTypeIdea, idea.ID, fmt.Sprintf("u%d", i), fmt.Sprintf("comment %d", i))
	}

	doc, err := Generate(db, project.ID, Options{MaxCommentNodes: 2})
	require.NoError(t, err)

	require.Len(t, doc.Ideas, 1)
	assert.Len(t, doc.Ideas[0].Comments, 2)
	assert.Equal(t, int64(3), doc.Stats.TotalComments)
}

func TestGeneratePolls(t *testing.T) {
	db := newTestDB(t)
	project, module := createProject(t, db)

	poll := models.PollModel{ModuleID: module.ID, URL: "https://example.org/poll"}
	require.NoError(t, db.Create(&poll).Error)
	question := models.PollQuestionModel{PollID: poll.ID, Label: "Favorite color?", IsOpen: true}
	require.NoError(t, db.Create(&question).Error)
	choice := models.PollChoiceModel{QuestionID: question.ID, Label: "Blue"}
	require.NoError(t, db.Create(&choice).Error)
	require.NoError(t, db.Create(&models.PollVoteModel{ChoiceID: choice.ID, CreatorID: "u1"}).Error)
	require.NoError(t, db.Create(&models.PollVoteModel{ChoiceID: choice.ID, CreatorID: "u2"}).Error)
	require.NoError(t, db.Create(&models.PollAnswerModel{QuestionID: question.ID, CreatorID: "u3", Answer: "Teal"}).Error)

	doc, err := Generate(db, project.ID, Options{})
	require.NoError(t, err)

	require.Len(t, doc.Polls, 1)
	exported := doc.Polls[0]
	assert.Equal(t, 2, exported.TotalVotes)
	require.Len(t, exported.Questions, 1)
	assert.Equal(t, "Favorite color?", exported.Questions[0].Label)
	require.Len(t, exported.Questions[0].Choices, 1)
	assert.Equal(t, 2, exported.Questions[0].Choices[0].VoteCount)
	require.Len(t, exported.Questions[0].Answers, 1)
	assert.Equal(t, "Teal", exported.Questions[0].Answers[0].Answer)

	// voters and open-answer authors count as participants
	assert.Equal(t, int64(3), doc.Stats.TotalParticipants)
	assert.Equal(t, int64(1), doc.Stats.TotalPolls)
}

func TestGenerateProjectAttachments(t *testing.T) {
	db := newTestDB(t)
	project := models.ProjectModel{
		Name:        "With Files",
		Slug:        "with-files",
		Attachments: models.StringArray{"https://example.org/plan.pdf"},
	}
	require.NoError(t, db.Create(&project).Error)

	doc, err := Generate(db, project.ID, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.org/plan.pdf"}, doc.Project.Attachments)
	assert.Equal(t, "with-files", doc.Project.Slug)
	assert.Equal(t, int64(0), doc.Stats.Contributions)
	assert.NotNil(t, doc.Ideas)
	assert.NotNil(t, doc.Polls)
}

func TestGenerateUnknownProject(t *testing.T) {
	db := newTestDB(t)
	_, err := Generate(db, "missing-id", Options{})
	require.Error(t, err)
}
