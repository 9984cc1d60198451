package citycache

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// fakeStore is an in-memory implementation of the consumer interface.
type fakeStore struct {
	mu      sync.Mutex
	hashes  map[string]map[string]string
	zsets   map[string]map[string]struct{}
	hsetErr error
	zaddErr error
	zremErr error
	rangeFn func(key, prefix string, limit int) ([]string, error)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hashes: make(map[string]map[string]string),
		zsets:  make(map[string]map[string]struct{}),
	}
}

func (f *fakeStore) HSet(_ context.Context, key string, fields map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hsetErr != nil {
		return f.hsetErr
	}
	h := f.hashes[key]
	if h == nil {
		h = make(map[string]string)
		f.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (f *fakeStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.hashes[key]))
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = f.hashes[k]
	}
	return out, nil
}

func (f *fakeStore) ZAddLex(_ context.Context, key string, members ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.zaddErr != nil {
		return f.zaddErr
	}
	z := f.zsets[key]
	if z == nil {
		z = make(map[string]struct{})
		f.zsets[key] = z
	}
	for _, m := range members {
		z[m] = struct{}{}
	}
	return nil
}

func (f *fakeStore) ZRem(_ context.Context, key string, members ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.zremErr != nil {
		return f.zremErr
	}
	for _, m := range members {
		delete(f.zsets[key], m)
	}
	return nil
}

func (f *fakeStore) ZRangeByPrefix(_ context.Context, key, prefix string, limit int) ([]string, error) {
	if f.rangeFn != nil {
		return f.rangeFn(key, prefix, limit)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for m := range f.zsets[key] {
		if strings.HasPrefix(m, prefix) {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestRepo(s store) *Repo {
	return New(s, "test:", nil, zap.NewNop())
}
