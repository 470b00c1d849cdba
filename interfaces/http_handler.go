package interfaces

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"career-coach/application/career"
	"career-coach/application/interview"
	"career-coach/application/llmjson"
	"career-coach/domain"
	"career-coach/infrastructure"
)

type HTTPHandler struct {
	interview      *interview.Service
	career         *career.Service
	archive        domain.InterviewArchive
	metrics        *infrastructure.Metrics
	maxUploadBytes int64
	log            logrus.FieldLogger
}

// Dependencies are the services the handlers call. Archive may be nil.
type Dependencies struct {
	Interview      *interview.Service
	Career         *career.Service
	Archive        domain.InterviewArchive
	Metrics        *infrastructure.Metrics
	MaxUploadBytes int64
	Logger         logrus.FieldLogger
}

func NewHTTPHandler(router *gin.Engine, deps Dependencies) *HTTPHandler {
	h := &HTTPHandler{
		interview:      deps.Interview,
		career:         deps.Career,
		archive:        deps.Archive,
		metrics:        deps.Metrics,
		maxUploadBytes: deps.MaxUploadBytes,
		log:            deps.Logger,
	}
	if h.metrics == nil {
		h.metrics = infrastructure.NewMetrics()
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = 10 << 20
	}
	if h.log == nil {
		h.log = logrus.StandardLogger()
	}

	router.GET("/healthz", h.Healthz)

	api := router.Group("/api")
	api.POST("/start-interview", h.StartInterview)
	api.POST("/evaluate-answer", h.EvaluateAnswer)
	api.POST("/interview-summary", h.InterviewSummary)
	api.DELETE("/interview/:sessionId", h.DeleteInterview)
	api.GET("/interviews/:sessionId", h.GetArchivedInterview)

	api.POST("/generate", h.Generate)
	api.POST("/parse-resume", h.ParseResume)
	api.POST("/parse-resume/upload", h.ParseResumeUpload)
	api.POST("/trends", h.Trends)
	api.POST("/project-planner", h.ProjectPlanner)
	api.POST("/feedback", h.Feedback)
	api.GET("/stats", h.Stats)
	return h
}

func (h *HTTPHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// StartInterview starts a new interview or asks the next question.
func (h *HTTPHandler) StartInterview(c *gin.Context) {
	var req interview.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	turn, err := h.interview.Start(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, turn)
}

func (h *HTTPHandler) EvaluateAnswer(c *gin.Context) {
	var req interview.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	eval, err := h.interview.Evaluate(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, eval)
}

func (h *HTTPHandler) InterviewSummary(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	summary, err := h.interview.Summarize(c.Request.Context(), req.SessionID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *HTTPHandler) DeleteInterview(c *gin.Context) {
	removed, err := h.interview.Evict(strings.TrimSpace(c.Param("sessionId")))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !removed {
		h.respondError(c, domain.ErrSessionNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetArchivedInterview returns the archived summary of a finished interview.
func (h *HTTPHandler) GetArchivedInterview(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "interview archive is not configured"})
		return
	}
	rec, err := h.archive.Find(c.Request.Context(), strings.TrimSpace(c.Param("sessionId")))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := gin.H{
		"sessionId":         rec.SessionID,
		"role":              rec.Role,
		"type":              rec.Type,
		"difficulty":        rec.Difficulty,
		"overallRating":     rec.OverallRating,
		"averageScore":      rec.AverageScore,
		"questionsAnswered": rec.QuestionsAnswered,
		"duration":          rec.DurationMinutes,
		"summary":           rec.Summary,
		"recommendation":    rec.Recommendation,
		"fallback":          rec.Fallback,
		"createdAt":         rec.CreatedAt,
	}
	if rec.ResultJSON != nil {
		resp["result"] = json.RawMessage(*rec.ResultJSON)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HTTPHandler) Generate(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	text, err := h.career.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (h *HTTPHandler) ParseResume(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.career.ParseResume(c.Request.Context(), req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ParseResumeUpload accepts a multipart "file" (pdf, docx or txt).
func (h *HTTPHandler) ParseResumeUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if header.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d bytes", h.maxUploadBytes)})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}

	res, err := h.career.ParseResumeFile(c.Request.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *HTTPHandler) Trends(c *gin.Context) {
	var req struct {
		Topic string `json:"topic"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid topic/technology"})
		return
	}
	report, err := h.career.Trends(c.Request.Context(), req.Topic)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ProjectPlanner accepts numbers or strings for every field, since the
// browser form sends team size either way.
func (h *HTTPHandler) ProjectPlanner(c *gin.Context) {
	var req struct {
		Idea       any `json:"idea"`
		Domain     any `json:"domain"`
		Duration   any `json:"duration"`
		TeamSize   any `json:"teamSize"`
		Complexity any `json:"complexity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.career.PlanProject(c.Request.Context(), domain.ProjectRequest{
		Idea:       llmjson.String(req.Idea),
		Domain:     llmjson.String(req.Domain),
		Duration:   llmjson.String(req.Duration),
		TeamSize:   llmjson.String(req.TeamSize),
		Complexity: llmjson.String(req.Complexity),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *HTTPHandler) Feedback(c *gin.Context) {
	var req career.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	entry, err := h.career.SaveFeedback(c.Request.Context(), req)
	if err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save feedback"})
			h.log.WithError(err).Error("failed to save feedback")
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entry": entry})
}

func (h *HTTPHandler) Stats(c *gin.Context) {
	snap := h.metrics.GetSnapshot()
	snap.ActiveSessions = h.interview.ActiveSessions()
	c.JSON(http.StatusOK, snap)
}
