package api

import (
	"net/http"

	"causaltrace/internal/models"
	"causaltrace/internal/prompt"

	"github.com/gin-gonic/gin"
)

type templateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Template    string `json:"template"`
}

type templateResponse struct {
	models.Template
	Warning string `json:"warning,omitempty"`
}

func withWarning(t models.Template) templateResponse {
	resp := templateResponse{Template: t}
	if !prompt.HasPlaceholder(t.Template) {
		resp.Warning = "template has no " + prompt.Placeholder + " placeholder; the question will not be inserted"
	}
	return resp
}

func (s *Server) listTemplates(c *gin.Context) {
	list, err := s.opts.Store.ListTemplates(c.Request.Context())
	if err != nil {
		storeError(c, err, "templates")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getTemplate(c *gin.Context) {
	t, err := s.opts.Store.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "template")
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) createTemplate(c *gin.Context) {
	var req templateRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := s.opts.Store.CreateTemplate(c.Request.Context(), req.Name, req.Description, req.Template)
	if err != nil {
		storeError(c, err, "template")
		return
	}
	c.JSON(http.StatusCreated, withWarning(t))
}

func (s *Server) updateTemplate(c *gin.Context) {
	var req templateRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := s.opts.Store.UpdateTemplate(c.Request.Context(), c.Param("id"), req.Name, req.Description, req.Template)
	if err != nil {
		storeError(c, err, "template")
		return
	}
	c.JSON(http.StatusOK, withWarning(t))
}

// deleteTemplate removes the template. Records that reference it are kept.
func (s *Server) deleteTemplate(c *gin.Context) {
	if err := s.opts.Store.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		storeError(c, err, "template")
		return
	}
	c.Status(http.StatusNoContent)
}
