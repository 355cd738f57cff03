package api

import (
	"context"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"causaltrace/internal/auth"
	"causaltrace/internal/config"
	"causaltrace/internal/evaluate"
	"causaltrace/internal/httputil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func (s *Server) listEvaluations(c *gin.Context) {
	list, err := s.opts.Store.ListEvaluations(c.Request.Context())
	if err != nil {
		storeError(c, err, "evaluations")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getEvaluation(c *gin.Context) {
	rec, err := s.opts.Store.GetEvaluation(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeError(c, err, "evaluation")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// createEvaluation handles POST /api/evaluations.
// Multipart fields: template_id (required), model (optional), frames (image
// files) and/or frames_zip (one ZIP archive). The run is synchronous and the
// persisted record is returned.
func (s *Server) createEvaluation(c *gin.Context) {
	const multipartOverhead = 1 << 20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxUploadBytes+multipartOverhead)
	form, err := c.MultipartForm()
	if err != nil {
		if httputil.IsBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload exceeds " + httputil.FormatSize(config.MaxUploadBytes)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	defer form.RemoveAll()

	templateID := formValue(form, "template_id")
	if templateID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing field: template_id"})
		return
	}
	tpl, err := s.opts.Store.GetTemplate(c.Request.Context(), templateID)
	if err != nil {
		storeError(c, err, "template")
		return
	}

	model := formValue(form, "model")
	if model == "" {
		model = s.opts.DefaultModel
	}
	label, ok := s.modelLabel(model)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown model: " + model})
		return
	}

	u, _ := auth.CurrentUser(c)
	apiKey := s.credential(u)
	if apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no API key configured; set one first"})
		return
	}

	zips, files := form.File["frames_zip"], form.File["frames"]
	if len(zips) == 0 && len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing field: frames or frames_zip"})
		return
	}

	evalID := uuid.NewString()
	framesDir := filepath.Join(s.opts.UploadsDir, evalID)
	w, err := newFrameWriter(framesDir)
	if err != nil {
		log.Error().Err(err).Str("dir", framesDir).Msg("create frames directory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create frames directory"})
		return
	}
	keep := false
	defer func() {
		if !keep {
			_ = os.RemoveAll(framesDir)
		}
	}()

	if err := saveFrames(w, zips, files); err != nil {
		if isUploadError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Str("dir", framesDir).Msg("save frames")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save frames"})
		return
	}
	log.Info().Str("evaluation_id", evalID).Int("uploaded", w.count()).Msg("frames stored")

	completer, err := s.opts.NewCompleter(c.Request.Context(), apiKey)
	if err != nil {
		log.Error().Err(err).Msg("create model client")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create model client"})
		return
	}

	opts := []evaluate.Option{
		evaluate.WithMaxFrames(s.opts.MaxFrames),
		evaluate.WithIDGen(func() string { return evalID }),
	}
	opts = append(opts, s.opts.EvalOptions...)

	// The run outlives a disconnected client so the record is still persisted.
	ctx := context.WithoutCancel(c.Request.Context())
	rec := evaluate.New(completer, opts...).RunFull(ctx, evaluate.RunInput{
		FramesDir:       framesDir,
		TemplateID:      tpl.ID,
		TemplateContent: tpl.Template,
		Model:           model,
	})
	rec.TemplateName = tpl.Name
	rec.ModelLabel = label

	if err := s.opts.Store.SaveEvaluation(ctx, rec); err != nil {
		storeError(c, err, "evaluation")
		return
	}
	keep = true
	c.JSON(http.StatusCreated, rec)
}

func saveFrames(w *frameWriter, zips, files []*multipart.FileHeader) error {
	if len(zips) > 1 {
		return badUpload("only one frames_zip archive is allowed")
	}
	for _, z := range zips {
		if err := w.saveZip(z); err != nil {
			return err
		}
	}
	return w.saveFiles(files)
}

func formValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}
