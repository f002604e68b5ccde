package kv

import (
	"context"
	"errors"
	"sync"
)

// QuotaStore rejects writes that would push the total size of all entries
// (keys plus values) above a fixed budget, the way browser storage does.
type QuotaStore struct {
	Store
	maxBytes int64
	mu       sync.Mutex
}

// WithQuota wraps store with a byte budget. A non-positive budget disables
// the check and returns store unchanged.
func WithQuota(store Store, maxBytes int64) Store {
	if maxBytes <= 0 {
		return store
	}
	return &QuotaStore{Store: store, maxBytes: maxBytes}
}

func (s *QuotaStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	usage, err := Measure(ctx, s.Store, "")
	if err != nil {
		return err
	}

	projected := usage.Bytes + int64(len(key)+len(value))
	existing, err := s.Store.Get(ctx, key)
	switch {
	case err == nil:
		projected -= int64(len(key) + len(existing))
	case !errors.Is(err, ErrNotFound):
		return err
	}

	if projected > s.maxBytes {
		return ErrQuotaExceeded
	}
	return s.Store.Set(ctx, key, value)
}
