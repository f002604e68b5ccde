package kv

import (
	"context"
	"errors"
	"time"
)

// Observer receives the outcome of every store operation.
type Observer interface {
	ObserveStoreOperation(op string, duration time.Duration, err error)
}

type instrumentedStore struct {
	Store
	observer Observer
}

// Instrument reports operation timings to observer. A nil observer returns
// store unchanged.
func Instrument(store Store, observer Observer) Store {
	if observer == nil {
		return store
	}
	return &instrumentedStore{Store: store, observer: observer}
}

func (s *instrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	value, err := s.Store.Get(ctx, key)
	observed := err
	if errors.Is(err, ErrNotFound) {
		observed = nil
	}
	s.observer.ObserveStoreOperation("get", time.Since(start), observed)
	return value, err
}

func (s *instrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.Store.Set(ctx, key, value)
	s.observer.ObserveStoreOperation("set", time.Since(start), err)
	return err
}

func (s *instrumentedStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.Store.Delete(ctx, key)
	s.observer.ObserveStoreOperation("delete", time.Since(start), err)
	return err
}

func (s *instrumentedStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	keys, err := s.Store.Keys(ctx, prefix)
	s.observer.ObserveStoreOperation("keys", time.Since(start), err)
	return keys, err
}
