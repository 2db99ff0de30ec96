package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/calcmaster/internal/auth"
	"github.com/abhisek/calcmaster/internal/store"
)

const (
	sessionCookie = "session_token"
	userKey       = "user"
)

// sessionToken reads a bearer token, falling back to the session cookie.
func sessionToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie
	}
	return ""
}

func (h *handlers) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := h.Auth.Authenticate(c.Request.Context(), sessionToken(c))
		if errors.Is(err, auth.ErrUnauthenticated) {
			respondError(c, http.StatusUnauthorized, "not logged in")
			return
		}
		if err != nil {
			h.log.Error("resolve session failed", "error", err)
			respondError(c, http.StatusInternalServerError, "server error")
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

// currentUser is only valid behind requireAuth.
func currentUser(c *gin.Context) *store.User {
	return c.MustGet(userKey).(*store.User)
}

// observe logs each request and records it in metrics.
func (h *handlers) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()
		if h.Metrics != nil {
			h.Metrics.ObserveRequest(route, status, elapsed)
		}
		h.log.Debug("request",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"elapsed", elapsed,
		)
	}
}
