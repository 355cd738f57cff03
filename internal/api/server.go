// Package api is the JSON service around the evaluation pipeline: sessions,
// template CRUD, evaluation runs and listings.
package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"causaltrace/internal/auth"
	"causaltrace/internal/config"
	"causaltrace/internal/evaluate"
	"causaltrace/internal/httputil"
	"causaltrace/internal/llm"
	"causaltrace/internal/store"
	"causaltrace/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// CompleterFactory builds a provider client for one credential.
type CompleterFactory func(ctx context.Context, apiKey string) (llm.Completer, error)

// Options configures a Server.
type Options struct {
	Store         *store.Store
	Users         users.Store
	NewCompleter  CompleterFactory
	UploadsDir    string
	CookieSecret  string
	SecureCookies bool
	SessionTTL    time.Duration
	ServerAPIKey  string
	DefaultModel  string
	Models        []config.ModelChoice
	MaxFrames     int
	// EvalOptions are appended to every evaluator the server creates.
	EvalOptions []evaluate.Option
}

// Server holds the handler dependencies.
type Server struct {
	opts Options
}

// New returns a Server. Zero-valued options fall back to the config defaults.
func New(opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.DefaultModel == "" {
		opts.DefaultModel = config.DefaultModel
	}
	if len(opts.Models) == 0 {
		opts.Models = []config.ModelChoice{{ID: opts.DefaultModel, Label: opts.DefaultModel}}
	}
	if opts.MaxFrames <= 0 {
		opts.MaxFrames = config.DefaultMaxFrames
	}
	return &Server{opts: opts}
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", s.ready)

	r.POST("/api/login", s.login)
	r.POST("/api/logout", s.logout)

	gated := r.Group("/api")
	gated.Use(auth.CookieAuth(s.opts.Users, s.opts.CookieSecret, s.opts.SessionTTL))
	{
		gated.GET("/me", s.me)
		gated.PUT("/api-key", s.setAPIKey)
		gated.GET("/dashboard", s.dashboard)
		gated.GET("/models", s.models)

		gated.GET("/templates", s.listTemplates)
		gated.POST("/templates", s.createTemplate)
		gated.GET("/templates/:id", s.getTemplate)
		gated.PUT("/templates/:id", s.updateTemplate)
		gated.DELETE("/templates/:id", s.deleteTemplate)

		gated.GET("/evaluations", s.listEvaluations)
		gated.POST("/evaluations", s.createEvaluation)
		gated.GET("/evaluations/:id", s.getEvaluation)
	}
}

func (s *Server) ready(c *gin.Context) {
	if err := os.MkdirAll(s.opts.UploadsDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "uploads dir not writable"})
		return
	}
	if _, _, err := s.opts.Store.Counts(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) dashboard(c *gin.Context) {
	u, _ := auth.CurrentUser(c)
	templates, evaluations, err := s.opts.Store.Counts(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("dashboard counts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read store"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"template_count":    templates,
		"evaluation_count":  evaluations,
		"api_key_set":       u.HasAPIKey(),
		"credential_source": s.credentialSource(u),
	})
}

func (s *Server) models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"default": s.opts.DefaultModel, "models": s.opts.Models})
}

func (s *Server) modelLabel(id string) (string, bool) {
	for _, m := range s.opts.Models {
		if m.ID == id {
			return m.Label, true
		}
	}
	return "", false
}

// credential returns the user's own key, else the server-wide one.
func (s *Server) credential(u users.User) string {
	if u.HasAPIKey() {
		return u.APIKey
	}
	return s.opts.ServerAPIKey
}

func (s *Server) credentialSource(u users.User) string {
	switch {
	case u.HasAPIKey():
		return "user"
	case s.opts.ServerAPIKey != "":
		return "server"
	}
	return "none"
}

// bindJSON decodes a bounded JSON body, replying 400/413 on failure.
func bindJSON(c *gin.Context, v any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxJSONBodyBytes)
	if err := c.ShouldBindJSON(v); err != nil {
		if httputil.IsBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return false
	}
	return true
}

// storeError maps a store failure onto a response.
func storeError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidID):
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
	case errors.Is(err, store.ErrInvalidTemplate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("what", what).Msg("store failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to access " + what})
	}
}
