// Package citycache stores geocoded cities in Valkey: one hash per city keyed
// by its external id plus a lexicographic name index for prefix lookups.
package citycache

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/domain"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
)

const (
	cityKeySuffix  = "city:"
	indexKeySuffix = "city_idx"
	// memberSep separates the normalized name from the external id in index members.
	memberSep = "\x00"
)

// store is the consumer interface for the city cache (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	ZAddLex(ctx context.Context, key string, members ...string) error
	ZRem(ctx context.Context, key string, members ...string) error
	ZRangeByPrefix(ctx context.Context, key, prefix string, limit int) ([]string, error)
}

// Repo is the local cached-city store.
type Repo struct {
	store      store
	prefix     string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a city cache repository.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(s store, keyPrefix string, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Repo {
	if keyPrefix == "" {
		keyPrefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: keyPrefix, cacheTotal: cacheTotal, logger: logger}
}

// Search returns up to limit cached cities whose name starts with q.
func (r *Repo) Search(ctx context.Context, q string, limit int) ([]listing.CachedCity, error) {
	norm := normalize(q)
	if norm == "" || limit <= 0 {
		return nil, nil
	}

	members, err := r.store.ZRangeByPrefix(ctx, r.indexKey(), norm, limit)
	if err != nil {
		return nil, fmt.Errorf("search city index: %w", err)
	}
	if len(members) == 0 {
		r.incCache("miss")
		return nil, nil
	}

	keys := make([]string, 0, len(members))
	for _, m := range members {
		_, id, ok := strings.Cut(m, memberSep)
		if !ok || id == "" {
			r.logger.Warn("Malformed city index member", zap.String("member", m))
			continue
		}
		keys = append(keys, r.cityKey(id))
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load cached cities: %w", err)
	}

	out := make([]listing.CachedCity, 0, len(hashes))
	for i, h := range hashes {
		if len(h) == 0 {
			continue
		}
		c, err := fromHash(h)
		if err != nil {
			r.logger.Warn("Failed to parse cached city", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		out = append(out, c)
	}

	if len(out) > 0 {
		r.incCache("hit")
	} else {
		r.incCache("miss")
	}
	return out, nil
}

// Upsert stores a city and indexes its name. Writing the same external id
// again overwrites the hash; a renamed city loses its old index entry.
func (r *Repo) Upsert(ctx context.Context, c listing.CachedCity) error {
	if c.ExternalID == "" {
		return fmt.Errorf("external id is required")
	}
	key := r.cityKey(c.ExternalID)
	prev, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return fmt.Errorf("load city %s: %w", c.ExternalID, err)
	}
	if err := r.store.HSet(ctx, key, toHash(c)); err != nil {
		return fmt.Errorf("store city %s: %w", c.ExternalID, err)
	}
	member := indexMember(c.Name, c.ExternalID)
	if err := r.store.ZAddLex(ctx, r.indexKey(), member); err != nil {
		return fmt.Errorf("index city %s: %w", c.ExternalID, err)
	}

	// The new member is in place before the old one goes.
	if oldName, ok := prev[fieldName]; ok {
		if old := indexMember(oldName, c.ExternalID); old != member {
			if err := r.store.ZRem(ctx, r.indexKey(), old); err != nil {
				return fmt.Errorf("unindex city %s: %w", c.ExternalID, err)
			}
		}
	}
	return nil
}

func indexMember(name, externalID string) string {
	return normalize(name) + memberSep + externalID
}

func (r *Repo) incCache(result string) {
	if r.cacheTotal != nil {
		r.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (r *Repo) cityKey(externalID string) string { return r.prefix + cityKeySuffix + externalID }

func (r *Repo) indexKey() string { return r.prefix + indexKeySuffix }

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Compile-time check: the Valkey store satisfies the consumer interface.
var _ store = (db.KVStore)(nil)
