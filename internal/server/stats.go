package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/calcmaster/internal/questiongen"
	"github.com/abhisek/calcmaster/internal/store"
)

const (
	defaultRecent = 10
	maxRecent     = 100
	defaultDays   = 30
)

type saveResultRequest struct {
	Topic          string         `json:"topic" binding:"required,max=50"`
	Score          *int           `json:"score" binding:"required,gte=0"`
	TotalQuestions int            `json:"total_questions" binding:"required,gt=0"`
	TimeSpent      int            `json:"time_spent" binding:"gte=0"`
	Difficulty     string         `json:"difficulty" binding:"omitempty,oneof=easy medium hard mixed basic"`
	Details        map[string]any `json:"details"`
}

func (h *handlers) saveResult(c *gin.Context) {
	var req saveResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "missing required fields")
		return
	}
	if *req.Score > req.TotalQuestions {
		respondError(c, http.StatusBadRequest, "score exceeds total_questions")
		return
	}
	topic, err := questiongen.ParseTopic(req.Topic)
	if err != nil {
		respondError(c, http.StatusBadRequest, "unknown topic")
		return
	}

	user := currentUser(c)
	id, err := h.Results.Save(c.Request.Context(), user.ID, store.ResultInput{
		Topic:      string(topic),
		Score:      *req.Score,
		Total:      req.TotalQuestions,
		Difficulty: req.Difficulty,
		TimeSpent:  req.TimeSpent,
		Details:    req.Details,
	})
	if err != nil {
		h.log.Error("save result failed", "user_id", user.ID, "error", err)
		respondError(c, http.StatusInternalServerError, "could not save result")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"result_id": id,
		"message":   "result saved",
	})
}

// intQuery parses a positive integer query parameter, returning def when
// it is absent or malformed.
func intQuery(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func (h *handlers) recentResults(c *gin.Context) {
	limit := min(intQuery(c, "limit", defaultRecent), maxRecent)
	results, err := h.Results.Recent(c.Request.Context(), currentUser(c).ID, limit)
	if err != nil {
		h.statsFailed(c, err)
		return
	}
	if results == nil {
		results = []store.Result{}
	}
	c.JSON(http.StatusOK, results)
}

func (h *handlers) statsByTopic(c *gin.Context) {
	stats, err := h.Results.ByTopic(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.statsFailed(c, err)
		return
	}
	if stats == nil {
		stats = []store.TopicStats{}
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handlers) generalStats(c *gin.Context) {
	stats, err := h.Results.General(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.statsFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handlers) progress(c *gin.Context) {
	days := intQuery(c, "days", defaultDays)
	since := time.Now().AddDate(0, 0, -days)
	points, err := h.Results.Progress(c.Request.Context(), currentUser(c).ID, since)
	if err != nil {
		h.statsFailed(c, err)
		return
	}
	if points == nil {
		points = []store.DayProgress{}
	}
	c.JSON(http.StatusOK, points)
}

func (h *handlers) statsFailed(c *gin.Context, err error) {
	h.log.Error("stats query failed", "path", c.FullPath(), "error", err)
	respondError(c, http.StatusInternalServerError, "could not load statistics")
}
