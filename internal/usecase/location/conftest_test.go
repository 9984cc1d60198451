package location

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/bazaarhq/listing-search/internal/domain/listing"
)

var errDown = errors.New("down")

type fakeCache struct {
	mu        sync.Mutex
	cities    []listing.CachedCity
	searchErr error
	upsertErr map[string]error
	upserted  []listing.CachedCity
	// upsertCtxErr records ctx.Err() seen by each upsert.
	upsertCtxErr []error
}

func (f *fakeCache) Search(_ context.Context, q string, limit int) ([]listing.CachedCity, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []listing.CachedCity
	for _, c := range f.cities {
		if strings.HasPrefix(strings.ToLower(c.Name), strings.ToLower(q)) && len(out) < limit {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCache) Upsert(ctx context.Context, c listing.CachedCity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCtxErr = append(f.upsertCtxErr, ctx.Err())
	if err := f.upsertErr[c.ExternalID]; err != nil {
		return err
	}
	f.upserted = append(f.upserted, c)
	f.cities = append(f.cities, c)
	return nil
}

func (f *fakeCache) upsertedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, len(f.upserted))
	for i, c := range f.upserted {
		ids[i] = c.ExternalID
	}
	return ids
}

type fakeGeocoder struct {
	cities []listing.CachedCity
	err    error
	calls  int
}

func (f *fakeGeocoder) SearchCities(_ context.Context, _ string, limit int) ([]listing.CachedCity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.cities) > limit {
		return f.cities[:limit], nil
	}
	return f.cities, nil
}

func city(id, name string) listing.CachedCity {
	return listing.CachedCity{ExternalID: id, Name: name, DisplayName: name, CountryCode: "GB"}
}
