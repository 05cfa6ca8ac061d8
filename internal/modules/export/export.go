package export

import (
	"fmt"

	"github.com/liqd/a4-roots/internal/models"
	"gorm.io/gorm"
)

const (
	DefaultMaxCommentDepth = 10
	DefaultMaxCommentNodes = 2000
)

// Options bounds the comment tree traversal. Truncated subtrees are dropped
// from the export but every node keeps its true reply_count.
type Options struct {
	MaxCommentDepth int
	MaxCommentNodes int
}

func (o Options) withDefaults() Options {
	if o.MaxCommentDepth <= 0 {
		o.MaxCommentDepth = DefaultMaxCommentDepth
	}
	if o.MaxCommentNodes <= 0 {
		o.MaxCommentNodes = DefaultMaxCommentNodes
	}
	return o
}

// Generate builds the full export document for a project. Read-only; the
// queries run outside a transaction, a point-in-time snapshot is not needed
// for summarization input.
func Generate(db *gorm.DB, projectID string, opts Options) (*Document, error) {
	opts = opts.withDefaults()

	var project models.ProjectModel
	if err := db.First(&project, "id = ?", projectID).Error; err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	var modules []models.ModuleModel
	if err := db.Where("project_id = ?", project.ID).Order("weight ASC").Find(&modules).Error; err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	moduleIDs := make([]string, 0, len(modules))
	moduleNames := make(map[string]string, len(modules))
	for _, m := range modules {
		moduleIDs = append(moduleIDs, m.ID)
		moduleNames[m.ID] = m.Name
	}

	cc := &commentCollector{db: db, maxDepth: opts.MaxCommentDepth, budget: opts.MaxCommentNodes}

	doc := &Document{
		Project: ProjectInfo{
			Name:         project.Name,
			Description:  project.Description,
			Attachments:  attachmentList(project.Attachments),
			Slug:         project.Slug,
			Organisation: project.Organisation,
			Result:       project.Result,
			URL:          project.URL,
		},
	}

	var err error
	if doc.Ideas, err = exportIdeas(db, cc, moduleIDs, moduleNames); err != nil {
		return nil, err
	}
	if doc.Polls, err = exportPolls(db, cc, moduleIDs, moduleNames); err != nil {
		return nil, err
	}
	if doc.Topics, err = exportTopics(db, cc, moduleIDs, moduleNames); err != nil {
		return nil, err
	}
	if doc.Debates, err = exportDebates(db, cc, moduleIDs, moduleNames); err != nil {
		return nil, err
	}
	if doc.Documents, err = exportChapters(db, cc, moduleIDs, moduleNames); err != nil {
		return nil, err
	}
	if doc.OfflineEvents, err = exportOfflineEvents(db, project.ID); err != nil {
		return nil, err
	}
	if doc.Stats, err = calculateStats(db, project.ID, moduleIDs); err != nil {
		return nil, err
	}
	return doc, nil
}

func exportIdeas(db *gorm.DB, cc *commentCollector, moduleIDs []string, moduleNames map[string]string) ([]Idea, error) {
	out := []Idea{}
	if len(moduleIDs) == 0 {
		return out, nil
	}
	var ideas []models.IdeaModel
	if err := db.Where("module_id IN ?", moduleIDs).Order("created_at ASC").Find(&ideas).Error; err != nil {
		return nil, fmt.Errorf("load ideas: %w", err)
	}
	for _, idea := range ideas {
		comments, err := cc.collect(models.RefTypeIdea, idea.ID)
		if err != nil {
			return nil, err
		}
		ratings, err := loadRatings(db, models.RefTypeIdea, idea.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, Idea{
			ID:              idea.ID,
			URL:             idea.URL,
			Name:            idea.Name,
			Description:     idea.Description,
			Attachments:     attachmentList(idea.Attachments),
			Created:         idea.CreatedAt,
			ReferenceNumber: idea.ReferenceNumber,
			Category:        idea.Category,
			Labels:          attachmentList(idea.Labels),
			CommentCount:    len(comments),
			Comments:        comments,
			RatingCount:     len(ratings),
			Ratings:         ratings,
			ModuleID:        idea.ModuleID,
			ModuleName:      moduleNames[idea.ModuleID],
		})
	}
	return out, nil
}

func exportTopics(db *gorm.DB, cc *commentCollector, moduleIDs []string, moduleNames map[string]string) ([]Topic, error) {
	out := []Topic{}
	if len(moduleIDs) == 0 {
		return out, nil
	}
	var topics []models.TopicModel
	if err := db.Where("module_id IN ?", moduleIDs).Order("created_at ASC").Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	for _, topic := range topics {
		comments, err := cc.collect(models.RefTypeTopic, topic.ID)
		if err != nil {
			return nil, err
		}
		ratings, err := loadRatings(db, models.RefTypeTopic, topic.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, Topic{
			ID:              topic.ID,
			URL:             topic.URL,
			Name:            topic.Name,
			Description:     topic.Description,
			Attachments:     attachmentList(topic.Attachments),
			Created:         topic.CreatedAt,
			ReferenceNumber: topic.ReferenceNumber,
			Category:        topic.Category,
			Labels:          attachmentList(topic.Labels),
			CommentCount:    len(comments),
			Comments:        comments,
			RatingCount:     len(ratings),
			Ratings:         ratings,
			ModuleID:        topic.ModuleID,
			ModuleName:      moduleNames[topic.ModuleID],
		})
	}
	return out, nil
}

func exportPolls(db *gorm.DB, cc *commentCollector, moduleIDs []string, moduleNames map[string]string) ([]Poll, error) {
	out := []Poll{}
	if len(moduleIDs) == 0 {
		return out, nil
	}
	var polls []models.PollModel
	if err := db.Where("module_id IN ?", moduleIDs).Order("created_at ASC").Find(&polls).Error; err != nil {
		return nil, fmt.Errorf("load polls: %w", err)
	}
	for _, poll := range polls {
		var questions []models.PollQuestionModel
		if err := db.Where("poll_id = ?", poll.ID).Order("weight ASC").Find(&questions).Error; err != nil {
			return nil, fmt.Errorf("load poll questions: %w", err)
		}

		questionList := make([]Question, 0, len(questions))
		totalVotes := 0
		for _, question := range questions {
			var choices []models.PollChoiceModel
			if err := db.Where("question_id = ?", question.ID).Order("weight ASC").Find(&choices).Error; err != nil {
				return nil, fmt.Errorf("load poll choices: %w", err)
			}

			choiceList := make([]Choice, 0, len(choices))
			questionVotes := 0
			for _, choice := range choices {
				var votes []models.PollVoteModel
				if err := db.Where("choice_id = ?", choice.ID).Order("created_at ASC").Find(&votes).Error; err != nil {
					return nil, fmt.Errorf("load poll votes: %w", err)
				}
				voteList := make([]Vote, 0, len(votes))
				for _, vote := range votes {
					voteList = append(voteList, Vote{Created: vote.CreatedAt, OtherAnswer: vote.OtherAnswer})
				}
				choiceList = append(choiceList, Choice{
					Label:         choice.Label,
					IsOtherChoice: choice.IsOtherChoice,
					VoteCount:     len(votes),
					Votes:         voteList,
				})
				questionVotes += len(votes)
			}

			var answers []models.PollAnswerModel
			if err := db.Where("question_id = ?", question.ID).Order("created_at ASC").Find(&answers).Error; err != nil {
				return nil, fmt.Errorf("load poll answers: %w", err)
			}
			answerList := make([]Answer, 0, len(answers))
			for _, answer := range answers {
				answerList = append(answerList, Answer{Answer: answer.Answer, Created: answer.CreatedAt})
			}

			questionList = append(questionList, Question{
				Label:          question.Label,
				MultipleChoice: question.MultipleChoice,
				IsOpen:         question.IsOpen,
				Choices:        choiceList,
				Answers:        answerList,
				VoteCount:      questionVotes,
			})
			totalVotes += questionVotes
		}

		comments, err := cc.collect(models.RefTypePoll, poll.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, Poll{
			ID:           poll.ID,
			URL:          poll.URL,
			ModuleName:   moduleNames[poll.ModuleID],
			Questions:    questionList,
			Comments:     comments,
			CommentCount: len(comments),
			TotalVotes:   totalVotes,
		})
	}
	return out, nil
}

func exportDebates(db *gorm.DB, cc *commentCollector, moduleIDs []string, moduleNames map[string]string) ([]Debate, error) {
	out := []Debate{}
	if len(moduleIDs) == 0 {
		return out, nil
	}
	var subjects []models.DebateSubjectModel
	if err := db.Where("module_id IN ?", moduleIDs).Order("created_at ASC").Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("load debate subjects: %w", err)
	}
	for _, subject := range subjects {
		comments, err := cc.collect(models.RefTypeDebate, subject.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, Debate{
			ID:              subject.ID,
			Name:            subject.Name,
			Description:     subject.Description,
			Created:         subject.CreatedAt,
			ReferenceNumber: subject.ReferenceNumber,
			Slug:            subject.Slug,
			ModuleID:        subject.ModuleID,
			ModuleName:      moduleNames[subject.ModuleID],
			CommentCount:    len(comments),
			Comments:        comments,
		})
	}
	return out, nil
}

func exportChapters(db *gorm.DB, cc *commentCollector, moduleIDs []string, moduleNames map[string]string) ([]Chapter, error) {
	out := []Chapter{}
	if len(moduleIDs) == 0 {
		return out, nil
	}
	var chapters []models.ChapterModel
	if err := db.Where("module_id IN ?", moduleIDs).Order("weight ASC").Find(&chapters).Error; err != nil {
		return nil, fmt.Errorf("load chapters: %w", err)
	}
	for _, chapter := range chapters {
		chapterComments, err := cc.collect(models.RefTypeChapter, chapter.ID)
		if err != nil {
			return nil, err
		}

		var paragraphs []models.ParagraphModel
		if err := db.Where("chapter_id = ?", chapter.ID).Order("weight ASC").Find(&paragraphs).Error; err != nil {
			return nil, fmt.Errorf("load paragraphs: %w", err)
		}
		paragraphList := make([]Paragraph, 0, len(paragraphs))
		totalParagraphComments := 0
		for _, paragraph := range paragraphs {
			paragraphComments, err := cc.collect(models.RefTypeParagraph, paragraph.ID)
			if err != nil {
				return nil, err
			}
			paragraphList = append(paragraphList, Paragraph{
				ID:           paragraph.ID,
				Name:         paragraph.Name,
				Text:         paragraph.Text,
				Attachments:  attachmentList(paragraph.Attachments),
				Weight:       paragraph.Weight,
				Created:      paragraph.CreatedAt,
				CommentCount: len(paragraphComments),
				Comments:     paragraphComments,
			})
			totalParagraphComments += len(paragraphComments)
		}

		out = append(out, Chapter{
			ID:                     chapter.ID,
			Name:                   chapter.Name,
			URL:                    chapter.URL,
			Weight:                 chapter.Weight,
			Created:                chapter.CreatedAt,
			ModuleID:               chapter.ModuleID,
			ModuleName:             moduleNames[chapter.ModuleID],
			ParagraphCount:         len(paragraphList),
			Paragraphs:             paragraphList,
			ChapterCommentCount:    len(chapterComments),
			ChapterComments:        chapterComments,
			TotalParagraphComments: totalParagraphComments,
		})
	}
	return out, nil
}

func exportOfflineEvents(db *gorm.DB, projectID string) ([]OfflineEvent, error) {
	out := []OfflineEvent{}
	var events []models.OfflineEventModel
	if err := db.Where("project_id = ?", projectID).Order("date ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("load offline events: %w", err)
	}
	for _, event := range events {
		out = append(out, OfflineEvent{
			ID:          event.ID,
			Name:        event.Name,
			EventType:   event.EventType,
			Date:        event.Date,
			Description: event.Description,
			Attachments: attachmentList(event.Attachments),
			Slug:        event.Slug,
			URL:         event.URL,
			Created:     event.CreatedAt,
		})
	}
	return out, nil
}

func loadRatings(db *gorm.DB, refType models.RefType, refID string) ([]Rating, error) {
	var rows []models.RatingModel
	if err := db.Where("ref_type = ? AND ref_id = ?", refType, refID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	out := make([]Rating, 0, len(rows))
	for _, r := range rows {
		out = append(out, Rating{ID: r.ID, Value: r.Value, Created: r.CreatedAt})
	}
	return out, nil
}

// commentCollector walks comment trees iteratively with a shared node budget.
// A subtree past the depth limit or the budget is dropped, but the parent
// still reports its true reply_count.
type commentCollector struct {
	db       *gorm.DB
	maxDepth int
	budget   int
}

func (cc *commentCollector) collect(refType models.RefType, refID string) ([]Comment, error) {
	return cc.children(refType, refID, 1)
}

func (cc *commentCollector) children(refType models.RefType, refID string, depth int) ([]Comment, error) {
	var rows []models.CommentModel
	if err := cc.db.Where("ref_type = ? AND ref_id = ?", refType, refID).
		Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}

	out := []Comment{}
	for _, row := range rows {
		if cc.budget <= 0 {
			break
		}
		cc.budget--

		node := Comment{
			ID:                row.ID,
			Text:              row.Text,
			Created:           row.CreatedAt,
			IsRemoved:         row.IsRemoved,
			IsCensored:        row.IsCensored,
			IsBlocked:         row.IsBlocked,
			IsModeratorMarked: row.IsModeratorMarked,
		}

		ratings, err := loadRatings(cc.db, models.RefTypeComment, row.ID)
		if err != nil {
			return nil, err
		}
		node.Ratings = ratings

		var replyCount int64
		if err := cc.db.Model(&models.CommentModel{}).
			Where("ref_type = ? AND ref_id = ?", models.RefTypeComment, row.ID).
			Count(&replyCount).Error; err != nil {
			return nil, fmt.Errorf("count replies: %w", err)
		}
		node.ReplyCount = int(replyCount)

		if replyCount > 0 && depth < cc.maxDepth && cc.budget > 0 {
			replies, err := cc.children(models.RefTypeComment, row.ID, depth+1)
			if err != nil {
				return nil, err
			}
			node.Replies = replies
		}

		out = append(out, node)
	}
	return out, nil
}

func calculateStats(db *gorm.DB, projectID string, moduleIDs []string) (Stats, error) {
	var stats Stats
	if len(moduleIDs) == 0 {
		moduleIDs = []string{""}
	}

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.IdeaModel{}, &stats.TotalIdeas},
		{&models.PollModel{}, &stats.TotalPolls},
		{&models.TopicModel{}, &stats.TotalTopics},
		{&models.DebateSubjectModel{}, &stats.TotalDebates},
		{&models.ChapterModel{}, &stats.TotalChapters},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Where("module_id IN ?", moduleIDs).Count(c.dest).Error; err != nil {
			return stats, fmt.Errorf("count content: %w", err)
		}
	}

	var chapterIDs []string
	if err := db.Model(&models.ChapterModel{}).Where("module_id IN ?", moduleIDs).
		Pluck("id", &chapterIDs).Error; err != nil {
		return stats, fmt.Errorf("list chapters: %w", err)
	}
	if len(chapterIDs) > 0 {
		if err := db.Model(&models.ParagraphModel{}).Where("chapter_id IN ?", chapterIDs).
			Count(&stats.TotalParagraphs).Error; err != nil {
			return stats, fmt.Errorf("count paragraphs: %w", err)
		}
	}

	var offlineEvents int64
	if err := db.Model(&models.OfflineEventModel{}).Where("project_id = ?", projectID).
		Count(&offlineEvents).Error; err != nil {
		return stats, fmt.Errorf("count offline events: %w", err)
	}

	commentIDs, commentCreators, err := collectProjectComments(db, moduleIDs, chapterIDs)
	if err != nil {
		return stats, err
	}
	stats.TotalComments = int64(len(commentIDs))

	stats.Contributions = stats.TotalIdeas + stats.TotalPolls + stats.TotalTopics +
		stats.TotalDebates + offlineEvents + stats.TotalComments

	participants := map[string]struct{}{}
	for creator := range commentCreators {
		participants[creator] = struct{}{}
	}
	creatorTables := []interface{}{
		&models.IdeaModel{}, &models.TopicModel{}, &models.DebateSubjectModel{},
	}
	for _, model := range creatorTables {
		var creators []string
		if err := db.Model(model).Where("module_id IN ?", moduleIDs).
			Distinct("creator_id").Pluck("creator_id", &creators).Error; err != nil {
			return stats, fmt.Errorf("list creators: %w", err)
		}
		for _, creator := range creators {
			if creator != "" {
				participants[creator] = struct{}{}
			}
		}
	}
	voteCreators, err := pollParticipants(db, moduleIDs)
	if err != nil {
		return stats, err
	}
	for creator := range voteCreators {
		participants[creator] = struct{}{}
	}
	ratingRefIDs, err := refIDsForRatings(db, moduleIDs, commentIDs)
	if err != nil {
		return stats, err
	}
	var ratingCreators []string
	if err := db.Model(&models.RatingModel{}).Where("ref_id IN ?", ratingRefIDs).
		Distinct("creator_id").Pluck("creator_id", &ratingCreators).Error; err != nil {
		return stats, fmt.Errorf("list rating creators: %w", err)
	}
	for _, creator := range ratingCreators {
		if creator != "" {
			participants[creator] = struct{}{}
		}
	}
	stats.TotalParticipants = int64(len(participants))
	return stats, nil
}

// collectProjectComments walks the reply chain breadth-first so nested reply
// authors count as participants too.
func collectProjectComments(db *gorm.DB, moduleIDs, chapterIDs []string) (map[string]struct{}, map[string]struct{}, error) {
	ids := map[string]struct{}{}
	creators := map[string]struct{}{}

	frontier := []string{}

	var contentIDs []string
	for _, model := range []interface{}{
		&models.IdeaModel{}, &models.TopicModel{}, &models.PollModel{}, &models.DebateSubjectModel{},
	} {
		var rows []string
		if err := db.Model(model).Where("module_id IN ?", moduleIDs).Pluck("id", &rows).Error; err != nil {
			return nil, nil, fmt.Errorf("list content: %w", err)
		}
		contentIDs = append(contentIDs, rows...)
	}
	contentIDs = append(contentIDs, chapterIDs...)
	if len(chapterIDs) > 0 {
		var paragraphIDs []string
		if err := db.Model(&models.ParagraphModel{}).Where("chapter_id IN ?", chapterIDs).
			Pluck("id", &paragraphIDs).Error; err != nil {
			return nil, nil, fmt.Errorf("list paragraphs: %w", err)
		}
		contentIDs = append(contentIDs, paragraphIDs...)
	}

	if len(contentIDs) == 0 {
		return ids, creators, nil
	}

	var roots []models.CommentModel
	if err := db.Where("ref_type <> ? AND ref_id IN ?", models.RefTypeComment, contentIDs).
		Find(&roots).Error; err != nil {
		return nil, nil, fmt.Errorf("list comments: %w", err)
	}
	for _, c := range roots {
		ids[c.ID] = struct{}{}
		if c.CreatorID != "" {
			creators[c.CreatorID] = struct{}{}
		}
		frontier = append(frontier, c.ID)
	}

	for len(frontier) > 0 {
		var replies []models.CommentModel
		if err := db.Where("ref_type = ? AND ref_id IN ?", models.RefTypeComment, frontier).
			Find(&replies).Error; err != nil {
			return nil, nil, fmt.Errorf("list replies: %w", err)
		}
		frontier = frontier[:0]
		for _, c := range replies {
			if _, seen := ids[c.ID]; seen {
				continue
			}
			ids[c.ID] = struct{}{}
			if c.CreatorID != "" {
				creators[c.CreatorID] = struct{}{}
			}
			frontier = append(frontier, c.ID)
		}
	}
	return ids, creators, nil
}

func pollParticipants(db *gorm.DB, moduleIDs []string) (map[string]struct{}, error) {
	out := map[string]struct{}{}

	var pollIDs []string
	if err := db.Model(&models.PollModel{}).Where("module_id IN ?", moduleIDs).
		Pluck("id", &pollIDs).Error; err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}
	if len(pollIDs) == 0 {
		return out, nil
	}
	var questionIDs []string
	if err := db.Model(&models.PollQuestionModel{}).Where("poll_id IN ?", pollIDs).
		Pluck("id", &questionIDs).Error; err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questionIDs) == 0 {
		return out, nil
	}

	var choiceIDs []string
	if err := db.Model(&models.PollChoiceModel{}).Where("question_id IN ?", questionIDs).
		Pluck("id", &choiceIDs).Error; err != nil {
		return nil, fmt.Errorf("list choices: %w", err)
	}
	if len(choiceIDs) > 0 {
		var voters []string
		if err := db.Model(&models.PollVoteModel{}).Where("choice_id IN ?", choiceIDs).
			Distinct("creator_id").Pluck("creator_id", &voters).Error; err != nil {
			return nil, fmt.Errorf("list voters: %w", err)
		}
		for _, v := range voters {
			if v != "" {
				out[v] = struct{}{}
			}
		}
	}

	var answerers []string
	if err := db.Model(&models.PollAnswerModel{}).Where("question_id IN ?", questionIDs).
		Distinct("creator_id").Pluck("creator_id", &answerers).Error; err != nil {
		return nil, fmt.Errorf("list answerers: %w", err)
	}
	for _, a := range answerers {
		if a != "" {
			out[a] = struct{}{}
		}
	}
	return out, nil
}

func refIDsForRatings(db *gorm.DB, moduleIDs []string, commentIDs map[string]struct{}) ([]string, error) {
	ids := make([]string, 0, len(commentIDs)+16)
	for id := range commentIDs {
		ids = append(ids, id)
	}
	for _, model := range []interface{}{
		&models.IdeaModel{}, &models.TopicModel{},
	} {
		var rows []string
		if err := db.Model(model).Where("module_id IN ?", moduleIDs).Pluck("id", &rows).Error; err != nil {
			return nil, fmt.Errorf("list rateable content: %w", err)
		}
		ids = append(ids, rows...)
	}
	if len(ids) == 0 {
		ids = []string{""}
	}
	return ids, nil
}

func attachmentList(values models.StringArray) []string {
	if values == nil {
		return []string{}
	}
	return []string(values)
}
