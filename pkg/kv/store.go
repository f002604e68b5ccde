// Package kv provides the byte-oriented key/value stores the collection
// repository persists into.
package kv

import (
	"context"
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("kv: key not found")
	// ErrQuotaExceeded is returned by Set when the write would exceed the configured quota.
	ErrQuotaExceeded = errors.New("kv: quota exceeded")
)

// Store is a flat key/value namespace. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists every key starting with prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Usage summarises how much space a key prefix occupies.
type Usage struct {
	Bytes int64 `json:"bytes"`
	Items int   `json:"items"`
}

// Measure sums key and value lengths under prefix.
func Measure(ctx context.Context, store Store, prefix string) (Usage, error) {
	keys, err := store.Keys(ctx, prefix)
	if err != nil {
		return Usage{}, err
	}

	var usage Usage
	for _, key := range keys {
		value, err := store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return Usage{}, err
		}
		usage.Bytes += int64(len(key) + len(value))
		usage.Items++
	}
	return usage, nil
}

func filterPrefix(keys []string, prefix string) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
