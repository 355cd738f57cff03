package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"causaltrace/internal/config"
	"causaltrace/internal/models"
	"causaltrace/internal/prompt"

	"github.com/google/uuid"
)

// ErrInvalidTemplate wraps template validation failures.
var ErrInvalidTemplate = errors.New("invalid template")

// Store is the typed repository for templates and evaluation records.
type Store struct {
	docs  Documents
	now   func() time.Time
	newID func() string
}

// New wraps a document backend.
func New(docs Documents) *Store {
	return &Store{docs: docs, now: time.Now, newID: uuid.NewString}
}

// Open builds a Store for the configured backend.
func Open(backend, dataDir, sqlitePath string) (*Store, error) {
	var (
		docs Documents
		err  error
	)
	switch backend {
	case config.StoreSQLite:
		docs, err = NewSQLiteDocuments(sqlitePath)
	case config.StoreFile, "":
		docs, err = NewFileDocuments(dataDir)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	return New(docs), nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.docs.Close()
}

func (s *Store) put(ctx context.Context, kind Kind, id string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", kind, id, err)
	}
	return s.docs.Put(ctx, kind, id, b)
}

func (s *Store) get(ctx context.Context, kind Kind, id string, v any) error {
	b, err := s.docs.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s/%s: %w", kind, id, err)
	}
	return nil
}

// ValidateTemplate checks the required fields. A body without the
// placeholder is valid; callers report it as a warning.
func ValidateTemplate(name, body string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTemplate)
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("%w: template is required", ErrInvalidTemplate)
	}
	if len(body) > config.MaxTemplateBytes {
		return fmt.Errorf("%w: template exceeds %d bytes", ErrInvalidTemplate, config.MaxTemplateBytes)
	}
	return nil
}

// CreateTemplate stores a new template with a fresh id.
func (s *Store) CreateTemplate(ctx context.Context, name, description, body string) (models.Template, error) {
	if err := ValidateTemplate(name, body); err != nil {
		return models.Template{}, err
	}
	t := models.Template{
		ID:          s.newID(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Template:    body,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.SaveTemplate(ctx, t); err != nil {
		return models.Template{}, err
	}
	return t, nil
}

// UpdateTemplate replaces the editable fields and stamps updated_at.
func (s *Store) UpdateTemplate(ctx context.Context, id, name, description, body string) (models.Template, error) {
	if err := ValidateTemplate(name, body); err != nil {
		return models.Template{}, err
	}
	t, err := s.GetTemplate(ctx, id)
	if err != nil {
		return models.Template{}, err
	}
	now := s.now().UTC()
	t.Name = strings.TrimSpace(name)
	t.Description = strings.TrimSpace(description)
	t.Template = body
	t.UpdatedAt = &now
	if err := s.SaveTemplate(ctx, t); err != nil {
		return models.Template{}, err
	}
	return t, nil
}

// SaveTemplate writes t as-is.
func (s *Store) SaveTemplate(ctx context.Context, t models.Template) error {
	return s.put(ctx, KindTemplates, t.ID, t)
}

func (s *Store) GetTemplate(ctx context.Context, id string) (models.Template, error) {
	var t models.Template
	err := s.get(ctx, KindTemplates, id, &t)
	return t, err
}

// ListTemplates returns all templates, oldest first.
func (s *Store) ListTemplates(ctx context.Context) ([]models.Template, error) {
	docs, err := s.docs.List(ctx, KindTemplates)
	if err != nil {
		return nil, err
	}
	out := make([]models.Template, 0, len(docs))
	for _, d := range docs {
		var t models.Template
		if err := json.Unmarshal(d.Data, &t); err != nil {
			return nil, fmt.Errorf("parse %s/%s: %w", KindTemplates, d.ID, err)
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, KindTemplates, id)
}

// EnsureDefaultTemplate seeds the CausalTrace template into an empty store.
// It reports whether a template was created.
func (s *Store) EnsureDefaultTemplate(ctx context.Context) (models.Template, bool, error) {
	existing, err := s.ListTemplates(ctx)
	if err != nil {
		return models.Template{}, false, err
	}
	if len(existing) > 0 {
		return existing[0], false, nil
	}
	t, err := s.CreateTemplate(ctx, prompt.DefaultTemplateName, prompt.DefaultTemplateDescription, prompt.DefaultTemplate)
	if err != nil {
		return models.Template{}, false, err
	}
	return t, true, nil
}

// SaveEvaluation persists a record keyed by its id.
func (s *Store) SaveEvaluation(ctx context.Context, r models.Record) error {
	if r.Results == nil {
		r.Results = []models.QuestionResult{}
	}
	return s.put(ctx, KindEvaluations, r.ID, r)
}

func (s *Store) GetEvaluation(ctx context.Context, id string) (models.Record, error) {
	var r models.Record
	err := s.get(ctx, KindEvaluations, id, &r)
	return r, err
}

// ListEvaluations returns all records, newest first. A record that does not
// parse fails the whole listing.
func (s *Store) ListEvaluations(ctx context.Context) ([]models.Record, error) {
	docs, err := s.docs.List(ctx, KindEvaluations)
	if err != nil {
		return nil, err
	}
	out := make([]models.Record, 0, len(docs))
	for _, d := range docs {
		var r models.Record
		if err := json.Unmarshal(d.Data, &r); err != nil {
			return nil, fmt.Errorf("parse %s/%s: %w", KindEvaluations, d.ID, err)
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// Counts returns the number of stored templates and evaluations.
func (s *Store) Counts(ctx context.Context) (templates, evaluations int, err error) {
	t, err := s.docs.List(ctx, KindTemplates)
	if err != nil {
		return 0, 0, err
	}
	e, err := s.docs.List(ctx, KindEvaluations)
	if err != nil {
		return 0, 0, err
	}
	return len(t), len(e), nil
}
