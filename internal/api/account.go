package api

import (
	"net/http"
	"strings"
	"time"

	"causaltrace/internal/auth"
	"causaltrace/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type apiKeyRequest struct {
	APIKey string `json:"api_key"`
}

type meResponse struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	APIKeySet        bool   `json:"api_key_set"`
	CredentialSource string `json:"credential_source"`
}

// login handles POST /api/login. On success it sets the session cookie.
func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	u, err := s.opts.Users.ByUsername(c.Request.Context(), req.Username)
	if err != nil || !u.CheckPassword(req.Password) {
		log.Info().Str("username", req.Username).Msg("login rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	signed := session.Issue(s.opts.CookieSecret, u.ID, time.Now())
	c.Header("Set-Cookie", session.SetCookieHeader(signed, session.CookieOptions{
		Secure: s.opts.SecureCookies,
		MaxAge: s.opts.SessionTTL,
	}))
	c.JSON(http.StatusOK, meResponse{
		ID:               u.ID,
		Username:         u.Username,
		APIKeySet:        u.HasAPIKey(),
		CredentialSource: s.credentialSource(u),
	})
}

// logout clears the session cookie.
func (s *Server) logout(c *gin.Context) {
	c.SetCookie(session.CookieName, "", -1, "/", "", s.opts.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (s *Server) me(c *gin.Context) {
	u, _ := auth.CurrentUser(c)
	c.JSON(http.StatusOK, meResponse{
		ID:               u.ID,
		Username:         u.Username,
		APIKeySet:        u.HasAPIKey(),
		CredentialSource: s.credentialSource(u),
	})
}

// setAPIKey handles PUT /api/api-key. An empty key clears the user's own
// credential so the server-wide key applies again.
func (s *Server) setAPIKey(c *gin.Context) {
	var req apiKeyRequest
	if !bindJSON(c, &req) {
		return
	}
	u, _ := auth.CurrentUser(c)
	if err := s.opts.Users.SetAPIKey(c.Request.Context(), u.ID, req.APIKey); err != nil {
		log.Error().Err(err).Str("user", u.ID).Msg("set api key")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save API key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"api_key_set": strings.TrimSpace(req.APIKey) != ""})
}
