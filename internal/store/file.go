package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const docExt = ".json"

// FileDocuments keeps one <id>.json file per document under <root>/<kind>.
type FileDocuments struct {
	root string
}

// NewFileDocuments creates the kind directories under root.
func NewFileDocuments(root string) (*FileDocuments, error) {
	for _, kind := range []Kind{KindTemplates, KindEvaluations} {
		if err := os.MkdirAll(filepath.Join(root, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("create %s directory: %w", kind, err)
		}
	}
	return &FileDocuments{root: root}, nil
}

// Dir returns the directory holding documents of kind.
func (f *FileDocuments) Dir(kind Kind) string {
	return filepath.Join(f.root, string(kind))
}

func (f *FileDocuments) path(kind Kind, id string) (string, error) {
	if err := checkKind(kind); err != nil {
		return "", err
	}
	if err := checkID(id); err != nil {
		return "", err
	}
	return filepath.Join(f.Dir(kind), id+docExt), nil
}

// Put writes the document through a temp file and rename so readers never see
// a partial body.
func (f *FileDocuments) Put(ctx context.Context, kind Kind, id string, data []byte) error {
	path, err := f.path(kind, id)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s/%s: %w", kind, id, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit %s/%s: %w", kind, id, err)
	}
	return nil
}

func (f *FileDocuments) Get(ctx context.Context, kind Kind, id string) ([]byte, error) {
	path, err := f.path(kind, id)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", kind, id, err)
	}
	return b, nil
}

func (f *FileDocuments) List(ctx context.Context, kind Kind) ([]Document, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(f.Dir(kind))
	if errors.Is(err, fs.ErrNotExist) {
		return []Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	docs := make([]Document, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, docExt) {
			continue
		}
		b, err := os.ReadFile(filepath.Join(f.Dir(kind), name))
		if err != nil {
			return nil, fmt.Errorf("read %s/%s: %w", kind, name, err)
		}
		docs = append(docs, Document{ID: strings.TrimSuffix(name, docExt), Data: b})
	}
	return docs, nil
}

func (f *FileDocuments) Delete(ctx context.Context, kind Kind, id string) error {
	path, err := f.path(kind, id)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", kind, id, err)
	}
	return nil
}

func (f *FileDocuments) Close() error { return nil }
