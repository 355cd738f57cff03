// Package store persists prompt templates and evaluation records as JSON
// documents addressed by kind and id.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Kind names a collection of documents.
type Kind string

const (
	KindTemplates   Kind = "prompts"
	KindEvaluations Kind = "results"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid document id")
)

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Document is one stored JSON body.
type Document struct {
	ID   string
	Data []byte
}

// Documents is an id -> JSON document store partitioned by kind.
type Documents interface {
	Put(ctx context.Context, kind Kind, id string, data []byte) error
	Get(ctx context.Context, kind Kind, id string) ([]byte, error)
	// List returns every document of kind ordered by id.
	List(ctx context.Context, kind Kind) ([]Document, error)
	Delete(ctx context.Context, kind Kind, id string) error
	Close() error
}

func checkID(id string) error {
	if len(id) > 128 || !validID.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func checkKind(kind Kind) error {
	switch kind {
	case KindTemplates, KindEvaluations:
		return nil
	}
	return fmt.Errorf("unknown document kind %q", kind)
}
