// Package server is the HTTP layer over quiz assembly, personalization,
// authentication and the results store.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abhisek/calcmaster/internal/auth"
	"github.com/abhisek/calcmaster/internal/logging"
	"github.com/abhisek/calcmaster/internal/metrics"
	"github.com/abhisek/calcmaster/internal/personalize"
	"github.com/abhisek/calcmaster/internal/quiz"
	"github.com/abhisek/calcmaster/internal/store"
)

// Deps are the services the router serves. Metrics may be nil.
type Deps struct {
	Quizzes      *quiz.Builder
	Personalizer *personalize.Service
	Auth         *auth.Service
	Results      store.ResultRepo
	Ping         func(ctx context.Context) error
	Metrics      *metrics.Metrics
	Log          *logging.Logger

	CORSOrigins []string
	SessionTTL  time.Duration
}

type handlers struct {
	Deps
	log *logging.Logger
}

// NewRouter wires every route onto a gin engine.
func NewRouter(d Deps) *gin.Engine {
	h := &handlers{Deps: d, log: logging.OrNop(d.Log).With("component", "server")}

	router := gin.New()
	router.Use(gin.Recovery(), h.observe())
	router.Use(cors.New(corsConfig(d.CORSOrigins)))

	router.GET("/healthcheck", h.healthcheck)
	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.POST("/auth/logout", h.logout)
	}

	protected := api.Group("/")
	protected.Use(h.requireAuth())
	{
		protected.GET("/auth/me", h.me)

		protected.GET("/questions/general", h.generalQuiz)
		protected.GET("/questions/personalized", h.personalizedQuiz)
		protected.GET("/questions/:topic", h.topicQuiz)
		protected.GET("/questions/:topic/:difficulty", h.topicQuiz)
		protected.GET("/personalized/analysis", h.analysis)

		protected.POST("/save-result", h.saveResult)
		protected.GET("/stats/recent", h.recentResults)
		protected.GET("/stats/by-topic", h.statsByTopic)
		protected.GET("/stats/general", h.generalStats)
		protected.GET("/stats/progress", h.progress)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		// Credentials cannot be combined with a literal "*".
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func (h *handlers) healthcheck(c *gin.Context) {
	if h.Ping != nil {
		if err := h.Ping(c.Request.Context()); err != nil {
			h.log.Warn("healthcheck failed", "error", err)
			c.String(http.StatusServiceUnavailable, "unavailable")
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
