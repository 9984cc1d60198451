package citycache

import (
	"fmt"
	"strconv"

	"github.com/bazaarhq/listing-search/internal/domain/listing"
)

const (
	fieldExternalID  = "external_id"
	fieldName        = "name"
	fieldDisplayName = "display_name"
	fieldCountryCode = "country_code"
	fieldLatitude    = "lat"
	fieldLongitude   = "lng"
	fieldPopulation  = "population"
)

func toHash(c listing.CachedCity) map[string]string {
	return map[string]string{
		fieldExternalID:  c.ExternalID,
		fieldName:        c.Name,
		fieldDisplayName: c.DisplayName,
		fieldCountryCode: c.CountryCode,
		fieldLatitude:    strconv.FormatFloat(c.Latitude, 'f', -1, 64),
		fieldLongitude:   strconv.FormatFloat(c.Longitude, 'f', -1, 64),
		fieldPopulation:  strconv.FormatInt(c.Population, 10),
	}
}

func fromHash(h map[string]string) (listing.CachedCity, error) {
	c := listing.CachedCity{
		ExternalID:  h[fieldExternalID],
		Name:        h[fieldName],
		DisplayName: h[fieldDisplayName],
		CountryCode: h[fieldCountryCode],
	}
	if c.ExternalID == "" {
		return listing.CachedCity{}, fmt.Errorf("missing %s", fieldExternalID)
	}

	var err error
	if c.Latitude, err = strconv.ParseFloat(h[fieldLatitude], 64); err != nil {
		return listing.CachedCity{}, fmt.Errorf("parse %s: %w", fieldLatitude, err)
	}
	if c.Longitude, err = strconv.ParseFloat(h[fieldLongitude], 64); err != nil {
		return listing.CachedCity{}, fmt.Errorf("parse %s: %w", fieldLongitude, err)
	}
	if p := h[fieldPopulation]; p != "" {
		if c.Population, err = strconv.ParseInt(p, 10, 64); err != nil {
			return listing.CachedCity{}, fmt.Errorf("parse %s: %w", fieldPopulation, err)
		}
	}
	return c, nil
}
