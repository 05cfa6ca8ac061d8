package summarization

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/liqd/a4-roots/internal/middleware"
	"github.com/liqd/a4-roots/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T, db *gorm.DB, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuth())
	api.Use(middleware.SessionKey())
	RegisterRoutes(api, db, svc, svc.logger)
	return r
}

func seedProject(t *testing.T, db *gorm.DB) models.ProjectModel {
	t.Helper()
	project := models.ProjectModel{Name: "Park Redesign", Slug: "park-redesign"}
	require.NoError(t, db.Create(&project).Error)
	return project
}

func TestGenerateEndpoint(t *testing.T) {
	db := newTestDB(t)
	seedProject(t, db)
	provider := &fakeSummaryProvider{resp: ProjectSummaryResponse{Title: "Park Summary"}}
	svc := newTestService(db, provider, defaultPolicy())
	router := newTestRouter(t, db, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/park-redesign/summary/generate", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body summaryView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.SummaryID)
	assert.False(t, body.Cached)
	require.NotNil(t, body.Response)
	assert.Equal(t, "Park Summary", body.Response.Title)

	// session cookie gets set for anonymous callers
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "a4_session", cookies[0].Name)
}

func TestGenerateEndpointUnknownProject(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db, &fakeSummaryProvider{}, defaultPolicy())
	router := newTestRouter(t, db, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/nope/summary/generate", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedbackEndpoint(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db)
	svc := newTestService(db, &fakeSummaryProvider{}, defaultPolicy())
	summary, err := svc.store.CreateSummary(project.ID, "prompt", "text", []byte("{}"))
	require.NoError(t, err)
	router := newTestRouter(t, db, svc)

	payload, _ := json.Marshal(feedbackBody{SummaryID: summary.ID, Feedback: models.FeedbackPositive})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/park-redesign/summary/feedback", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "a4_session", Value: "testsession"})
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	value, err := svc.store.FeedbackFor(summary.ID, "", "testsession")
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackPositive, value)
}

func TestFeedbackEndpointRejectsInvalidValue(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db)
	svc := newTestService(db, &fakeSummaryProvider{}, defaultPolicy())
	summary, err := svc.store.CreateSummary(project.ID, "prompt", "text", []byte("{}"))
	require.NoError(t, err)
	router := newTestRouter(t, db, svc)

	payload, _ := json.Marshal(feedbackBody{SummaryID: summary.ID, Feedback: "meh"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/park-redesign/summary/feedback", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedbackEndpointSummaryScopedToProject(t *testing.T) {
	db := newTestDB(t)
	seedProject(t, db)
	svc := newTestService(db, &fakeSummaryProvider{}, defaultPolicy())
	foreign, err := svc.store.CreateSummary("other-project", "prompt", "text", []byte("{}"))
	require.NoError(t, err)
	router := newTestRouter(t, db, svc)

	payload, _ := json.Marshal(feedbackBody{SummaryID: foreign.ID, Feedback: models.FeedbackPositive})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/park-redesign/summary/feedback", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSummaryHistoryEndpoint(t *testing.T) {
	db := newTestDB(t)
	project := seedProject(t, db)
	svc := newTestService(db, &fakeSummaryProvider{}, defaultPolicy())
	_, err := svc.store.CreateSummary(project.ID, "prompt", "text", []byte(`{"title":"t"}`))
	require.NoError(t, err)
	router := newTestRouter(t, db, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/park-redesign/summaries", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []summaryHistoryItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.NotEmpty(t, body.Data[0].InputTextHash)
}
