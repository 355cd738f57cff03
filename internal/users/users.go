// Package users holds dashboard accounts and their per-user provider credential.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrNotFound = errors.New("user not found")

// User is one dashboard account.
type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	APIKey       string
}

// CheckPassword reports whether password matches the stored hash.
func (u User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) == nil
}

// HasAPIKey reports whether the user configured their own credential.
func (u User) HasAPIKey() bool {
	return u.APIKey != ""
}

// NewUser hashes password and returns a user with a fresh id.
func NewUser(username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, fmt.Errorf("username is required")
	}
	if password == "" {
		return User{}, fmt.Errorf("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	return User{ID: uuid.NewString(), Username: username, PasswordHash: hash}, nil
}

// Store looks users up and records their provider credential.
type Store interface {
	ByID(ctx context.Context, id string) (User, error)
	ByUsername(ctx context.Context, username string) (User, error)
	SetAPIKey(ctx context.Context, id, apiKey string) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]User
	byName map[string]string
}

// NewMemoryStore returns a store holding the given users.
func NewMemoryStore(seed ...User) *MemoryStore {
	s := &MemoryStore{byID: map[string]User{}, byName: map[string]string{}}
	for _, u := range seed {
		s.Add(u)
	}
	return s
}

// Add inserts or replaces u.
func (s *MemoryStore) Add(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[u.ID] = u
	s.byName[strings.ToLower(u.Username)] = u.ID
}

func (s *MemoryStore) ByID(ctx context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// ByUsername matches case-insensitively.
func (s *MemoryStore) ByUsername(ctx context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byName[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return User{}, ErrNotFound
	}
	return s.byID[id], nil
}

func (s *MemoryStore) SetAPIKey(ctx context.Context, id, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.APIKey = strings.TrimSpace(apiKey)
	s.byID[id] = u
	return nil
}
