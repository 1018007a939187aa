// Package session keeps the validated, not yet exported application of a
// user session between the form step and the download step.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/gdg-garage/mosaic-visa/internal/application"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

var ErrNotFound = errors.New("session: no pending application")

// Store holds at most one pending submission per session key. Concurrent
// requests on the same key are not serialized: the last Put or Clear wins.
type Store interface {
	Put(ctx context.Context, key string, sub application.Submission) error
	Get(ctx context.Context, key string) (application.Submission, error)
	Clear(ctx context.Context, key string) error
}

// MemoryStore is an in-process Store holding at most maxEntries pending
// applications, least recently used first out. Entries expire after ttl
// when ttl > 0.
type MemoryStore struct {
	cache *expirable.LRU[string, application.Submission]
}

func NewMemoryStore(maxEntries int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: expirable.NewLRU[string, application.Submission](maxEntries, nil, ttl)}
}

func (s *MemoryStore) Put(_ context.Context, key string, sub application.Submission) error {
	s.cache.Add(key, sub.Clone())
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (application.Submission, error) {
	sub, ok := s.cache.Get(key)
	if !ok {
		return application.Submission{}, ErrNotFound
	}
	return sub.Clone(), nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.cache.Remove(key)
	return nil
}
