package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/calcmaster/internal/questiongen"
)

// errorBody is the shape of every failed response.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Error: msg})
}

// respondQuestions writes qs as a JSON array that has passed the wire
// schema check.
func (h *handlers) respondQuestions(c *gin.Context, qs []questiongen.Question) {
	raw, err := questiongen.MarshalBatch(qs)
	if err != nil {
		h.log.Error("question batch failed the wire check", "path", c.FullPath(), "error", err)
		respondError(c, http.StatusInternalServerError, "could not generate questions")
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// quizInfo describes how a personalized quiz was assembled.
type quizInfo struct {
	Explanation    string            `json:"explanation"`
	FocusTopic     questiongen.Topic `json:"focus_topic"`
	QuizType       string            `json:"quiz_type"`
	TotalQuestions int               `json:"total_questions"`
}

type personalizedResponse struct {
	Questions json.RawMessage `json:"questions"`
	QuizInfo  quizInfo        `json:"quiz_info"`
}
