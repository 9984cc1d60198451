package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean radius of Earth used for Haversine distance.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewPoint validates coordinates and returns a Point.
func NewPoint(lat, lng float64) (Point, error) {
	if !ValidateCoordinates(lat, lng) {
		return Point{}, fmt.Errorf("coordinates out of range: lat=%g lng=%g", lat, lng)
	}
	return Point{Lat: lat, Lng: lng}, nil
}

// DistanceKm returns the great-circle distance in kilometers between two
// points given in degrees.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a a hair past 1 for antipodal points.
	if a > 1 {
		a = 1
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Distance returns the great-circle distance between a and b in kilometers.
func Distance(a, b Point) float64 {
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// Box is a latitude/longitude rectangle used as a cheap prefilter.
// When MinLng > MaxLng the box crosses the antimeridian and covers
// [MinLng, 180] and [-180, MaxLng].
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Wraps reports whether the box crosses the antimeridian.
func (b Box) Wraps() bool { return b.MinLng > b.MaxLng }

// Contains reports whether p lies inside the box (edges inclusive).
func (b Box) Contains(p Point) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	if b.Wraps() {
		return p.Lng >= b.MinLng || p.Lng <= b.MaxLng
	}
	return p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// BoundingBox returns a rectangle containing every point within radiusKm of
// center. The longitude half-width is asin(sin(d)/cos(lat)) for angular
// distance d. A circle reaching a pole covers every longitude; a box running
// past ±180 wraps.
func BoundingBox(center Point, radiusKm float64) Box {
	ang := radiusKm / EarthRadiusKm
	latDelta := ang * 180 / math.Pi

	box := Box{
		MinLat: math.Max(center.Lat-latDelta, -90),
		MaxLat: math.Min(center.Lat+latDelta, 90),
		MinLng: -180,
		MaxLng: 180,
	}
	if center.Lat+latDelta >= 90 || center.Lat-latDelta <= -90 {
		return box
	}

	ratio := math.Sin(ang) / math.Cos(center.Lat*math.Pi/180)
	if ratio >= 1 {
		return box
	}
	lngDelta := math.Asin(ratio) * 180 / math.Pi

	box.MinLng = center.Lng - lngDelta
	box.MaxLng = center.Lng + lngDelta
	if box.MinLng < -180 {
		box.MinLng += 360
	}
	if box.MaxLng > 180 {
		box.MaxLng -= 360
	}
	return box
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
