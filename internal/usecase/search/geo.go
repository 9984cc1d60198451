package search

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bazaarhq/listing-search/internal/db"
	"github.com/bazaarhq/listing-search/internal/domain"
	"github.com/bazaarhq/listing-search/internal/domain/geo"
	"github.com/bazaarhq/listing-search/internal/domain/listing"
	"github.com/bazaarhq/listing-search/internal/domain/search/filter"
	"github.com/bazaarhq/listing-search/internal/domain/search/request"
)

// CityDistance is a city with its distance from a search center.
type CityDistance struct {
	City       listing.City
	DistanceKm float64
}

// CitiesWithinRadius returns cities within radiusKm of center, nearest first.
// Candidates come from a bounding box query; exact distance decides.
func (s *Service) CitiesWithinRadius(ctx context.Context, center geo.Point, radiusKm float64) ([]CityDistance, error) {
	candidates, err := s.catalog.CitiesInBox(ctx, geo.BoundingBox(center, radiusKm))
	if err != nil {
		return nil, fmt.Errorf("cities in box: %w", err)
	}

	var out []CityDistance
	for _, c := range candidates {
		d := geo.Distance(center, geo.Point{Lat: c.Latitude, Lng: c.Longitude})
		if d <= radiusKm {
			out = append(out, CityDistance{City: c, DistanceKm: d})
		}
	}
	slices.SortFunc(out, func(a, b CityDistance) int {
		return cmp.Or(cmp.Compare(a.DistanceKm, b.DistanceKm), strings.Compare(a.City.ID, b.City.ID))
	})
	return out, nil
}

// geoFilter is a resolved radius filter.
type geoFilter struct {
	clause filter.Clause
	// center is nil when the anchor city is unknown.
	center *geo.Point
}

// resolveGeo turns a radius query into a city clause.
// A city anchor becomes {city} ∪ cities within the radius of it.
// Coordinates become a city set or, with the native strategy, a distance clause.
func (s *Service) resolveGeo(ctx context.Context, g *request.GeoQuery) (geoFilter, error) {
	if g.Center != nil {
		center := *g.Center
		if s.cfg.GeoStrategy == GeoNative {
			c, err := filter.NewDistance(center, g.RadiusKm)
			if err != nil {
				return geoFilter{}, domain.NewValidationError("radius", err.Error())
			}
			return geoFilter{clause: c, center: &center}, nil
		}
		within, err := s.CitiesWithinRadius(ctx, center, g.RadiusKm)
		if err != nil {
			return geoFilter{}, err
		}
		if len(within) == 0 {
			// No city qualifies; the distance clause matches nothing the same way.
			c, err := filter.NewDistance(center, g.RadiusKm)
			if err != nil {
				return geoFilter{}, domain.NewValidationError("radius", err.Error())
			}
			return geoFilter{clause: c, center: &center}, nil
		}
		c, err := filter.NewIn(filter.DimCity, cityIDs(within))
		if err != nil {
			return geoFilter{}, err
		}
		return geoFilter{clause: c, center: &center}, nil
	}

	ids := []string{g.CityID}
	var center *geo.Point
	city, err := s.catalog.CityByID(ctx, g.CityID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		// Unknown anchor: filter on the id alone.
	case err != nil:
		return geoFilter{}, fmt.Errorf("get city: %w", err)
	default:
		p := geo.Point{Lat: city.Latitude, Lng: city.Longitude}
		center = &p
		within, err := s.CitiesWithinRadius(ctx, p, g.RadiusKm)
		if err != nil {
			return geoFilter{}, err
		}
		for _, id := range cityIDs(within) {
			if id != g.CityID {
				ids = append(ids, id)
			}
		}
	}

	c, err := filter.NewIn(filter.DimCity, ids)
	if err != nil {
		return geoFilter{}, err
	}
	return geoFilter{clause: c, center: center}, nil
}

func cityIDs(cs []CityDistance) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.City.ID
	}
	return ids
}
