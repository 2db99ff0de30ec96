package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/calcmaster/internal/auth"
)

func (h *handlers) register(c *gin.Context) {
	var req auth.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.Auth.Register(c.Request.Context(), req)
	var inputErr *auth.InputError
	switch {
	case errors.As(err, &inputErr):
		respondError(c, http.StatusBadRequest, inputErr.Message)
		return
	case errors.Is(err, auth.ErrUserExists):
		respondError(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error("register failed", "error", err)
		respondError(c, http.StatusInternalServerError, "server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user_id": u.ID,
		"message": "account created",
	})
}

func (h *handlers) login(c *gin.Context) {
	var req auth.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := h.Auth.Login(c.Request.Context(), req)
	var inputErr *auth.InputError
	switch {
	case errors.As(err, &inputErr):
		respondError(c, http.StatusBadRequest, "username and password are required")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		h.log.Error("login failed", "error", err)
		respondError(c, http.StatusInternalServerError, "server error")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, sess.Token, int(h.SessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "logged in",
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
		"user": gin.H{
			"username":     sess.User.Username,
			"display_name": sess.User.DisplayName,
		},
	})
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), sessionToken(c)); err != nil {
		h.log.Warn("logout failed", "error", err)
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "user": currentUser(c)})
}
