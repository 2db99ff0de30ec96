package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/calcmaster/internal/questiongen"
)

// topicQuiz serves /api/questions/:topic/:difficulty and
// /api/questions/:topic. "basic", the default when no difficulty is
// given, asks for the topic's mixed generator with a backfill pass;
// unknown difficulties fall back to mixed.
func (h *handlers) topicQuiz(c *gin.Context) {
	user := currentUser(c)

	topic, err := questiongen.ParseTopic(c.Param("topic"))
	if err != nil || topic == questiongen.TopicGeneral {
		respondError(c, http.StatusNotFound, "unknown topic")
		return
	}
	raw := c.Param("difficulty")
	if raw == "" {
		raw = "basic"
	}
	d, err := questiongen.ParseDifficulty(raw)
	if err != nil {
		d = questiongen.Mixed
	}

	qs, err := h.Quizzes.Topic(c.Request.Context(), user.ID, topic, d, raw == "basic")
	if err != nil {
		h.generationFailed(c, err)
		return
	}
	h.served(string(topic))
	h.respondQuestions(c, qs)
}

func (h *handlers) generalQuiz(c *gin.Context) {
	user := currentUser(c)
	qs, err := h.Quizzes.General(c.Request.Context(), user.ID)
	if err != nil {
		h.generationFailed(c, err)
		return
	}
	h.served(string(questiongen.TopicGeneral))
	h.respondQuestions(c, qs)
}

func (h *handlers) personalizedQuiz(c *gin.Context) {
	user := currentUser(c)
	quiz, err := h.Personalizer.PersonalizedQuiz(c.Request.Context(), user.ID)
	if err != nil {
		h.generationFailed(c, err)
		return
	}
	raw, err := questiongen.MarshalBatch(quiz.Questions)
	if err != nil {
		h.generationFailed(c, err)
		return
	}

	h.served("personalized")
	c.JSON(http.StatusOK, personalizedResponse{
		Questions: raw,
		QuizInfo: quizInfo{
			Explanation:    quiz.Explanation,
			FocusTopic:     quiz.FocusTopic,
			QuizType:       quiz.QuizType,
			TotalQuestions: len(quiz.Questions),
		},
	})
}

func (h *handlers) analysis(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, h.Personalizer.Analysis(c.Request.Context(), user.ID))
}

func (h *handlers) generationFailed(c *gin.Context, err error) {
	if c.Request.Context().Err() != nil {
		h.log.Debug("client went away during generation", "path", c.FullPath())
		c.Abort()
		return
	}
	h.log.Error("question generation failed", "path", c.FullPath(), "error", err)
	respondError(c, http.StatusInternalServerError, "could not generate questions")
}

func (h *handlers) served(kind string) {
	if h.Metrics != nil {
		h.Metrics.QuizServed(kind)
	}
}
