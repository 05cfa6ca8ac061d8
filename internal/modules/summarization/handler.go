package summarization

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/liqd/a4-roots/internal/middleware"
	"github.com/liqd/a4-roots/internal/models"
	"github.com/liqd/a4-roots/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type summaryView struct {
	SummaryID    string                  `json:"summary_id"`
	Response     *ProjectSummaryResponse `json:"response"`
	Cached       bool                    `json:"cached"`
	UserFeedback string                  `json:"user_feedback,omitempty"`
	Created      time.Time               `json:"created"`
}

type summaryHistoryItem struct {
	ID            string          `json:"id"`
	InputTextHash string          `json:"input_text_hash"`
	ResponseData  json.RawMessage `json:"response_data"`
	Created       time.Time       `json:"created"`
}

type feedbackBody struct {
	SummaryID string `json:"summary_id" binding:"required"`
	Feedback  string `json:"feedback"   binding:"required"`
}

// RegisterRoutes wires the summarization endpoints under /projects/:slug.
func RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB, svc *Service, logger *zap.Logger) {
	rg.GET("/projects/:slug/summary/generate", func(c *gin.Context) {
		project, ok := projectBySlug(c, db)
		if !ok {
			return
		}

		result, err := svc.SummarizeProject(c.Request.Context(), project.ID)
		if err != nil {
			logger.Error("summarization failed",
				zap.String("project", project.Slug), zap.Error(err))
			response.InternalError(c, errors.New("summary generation failed"))
			return
		}

		view := summaryView{
			Response: result.Response,
			Cached:   result.Cached,
		}
		if result.Row != nil {
			view.SummaryID = result.Row.ID
			view.Created = result.Row.CreatedAt
			feedback, err := svc.Store().FeedbackFor(
				result.Row.ID,
				middleware.CurrentUserID(c),
				middleware.CurrentSessionKey(c),
			)
			if err == nil {
				view.UserFeedback = feedback
			}
		}
		response.OK(c, view)
	})

	rg.POST("/projects/:slug/summary/feedback", func(c *gin.Context) {
		project, ok := projectBySlug(c, db)
		if !ok {
			return
		}

		var body feedbackBody
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "summary_id and feedback are required")
			return
		}
		if body.Feedback != models.FeedbackPositive && body.Feedback != models.FeedbackNegative {
			response.BadRequest(c, "feedback must be positive or negative")
			return
		}

		summary, err := svc.Store().SummaryByID(project.ID, body.SummaryID)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if summary == nil {
			response.NotFoundMsg(c, "summary not found")
			return
		}

		userID := middleware.CurrentUserID(c)
		sessionKey := ""
		if userID == "" {
			sessionKey = middleware.CurrentSessionKey(c)
		}
		if userID == "" && sessionKey == "" {
			response.BadRequest(c, "no identity for feedback")
			return
		}

		row, err := svc.Store().UpsertFeedback(summary.ID, userID, sessionKey, body.Feedback)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, gin.H{
			"summary_id":    row.SummaryID,
			"user_feedback": row.Feedback,
		})
	})

	rg.GET("/projects/:slug/summaries", func(c *gin.Context) {
		project, ok := projectBySlug(c, db)
		if !ok {
			return
		}
		rows, err := svc.Store().SummariesForProject(project.ID, 20)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		out := make([]summaryHistoryItem, 0, len(rows))
		for _, row := range rows {
			out = append(out, summaryHistoryItem{
				ID:            row.ID,
				InputTextHash: row.InputTextHash,
				ResponseData:  json.RawMessage(row.ResponseData),
				Created:       row.CreatedAt,
			})
		}
		response.OK(c, out)
	})
}

func projectBySlug(c *gin.Context, db *gorm.DB) (*models.ProjectModel, bool) {
	var project models.ProjectModel
	err := db.Where("slug = ?", c.Param("slug")).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFoundMsg(c, "project not found")
		return nil, false
	}
	if err != nil {
		response.InternalError(c, err)
		return nil, false
	}
	return &project, true
}
