package geo

import (
	"math"
	"testing"
)

func TestDistanceKm_KnownPairs(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		want       float64
		tolerance  float64
	}{
		{"London-Paris", 51.5074, -0.1278, 48.8566, 2.3522, 343.5, 2},
		{"NYC-LA", 40.7128, -74.0060, 34.0522, -118.2437, 3935.7, 10},
		{"one degree of latitude", 0, 0, 1, 0, 111.19, 0.1},
		{"antipodal", 0, 0, 0, 180, math.Pi * EarthRadiusKm, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("DistanceKm() = %.2f, want %.2f ± %.2f", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestDistanceKm_Identity(t *testing.T) {
	points := []Point{{0, 0}, {55.7558, 37.6173}, {-33.8688, 151.2093}, {89.9, 179.9}}
	for _, p := range points {
		if d := Distance(p, p); d != 0 {
			t.Errorf("Distance(%v, %v) = %g, want 0", p, p, d)
		}
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := Point{Lat: 52.52, Lng: 13.405}
	b := Point{Lat: 41.9028, Lng: 12.4964}
	if Distance(a, b) != Distance(b, a) {
		t.Errorf("Distance not symmetric: %g vs %g", Distance(a, b), Distance(b, a))
	}
}

func TestDistanceKm_MonotonicInSeparation(t *testing.T) {
	prev := 0.0
	for lat := 1.0; lat <= 90; lat++ {
		d := DistanceKm(0, 0, lat, 0)
		if d <= prev {
			t.Fatalf("distance at %g° = %g not greater than %g", lat, d, prev)
		}
		prev = d
	}
}

func TestBoundingBox_ContainsPointsWithinRadius(t *testing.T) {
	center := Point{Lat: 48.8566, Lng: 2.3522}
	radius := 50.0
	box := BoundingBox(center, radius)

	// Sample points on a ring just inside the radius.
	for bearing := 0.0; bearing < 360; bearing += 15 {
		p := destination(center, radius*0.99, bearing)
		if !box.Contains(p) {
			t.Errorf("box %+v does not contain %+v (bearing %g)", box, p, bearing)
		}
	}
}

func TestBoundingBox_LongitudeCorrection(t *testing.T) {
	equator := BoundingBox(Point{Lat: 0, Lng: 0}, 100)
	north := BoundingBox(Point{Lat: 60, Lng: 0}, 100)

	eqSpan := equator.MaxLng - equator.MinLng
	northSpan := north.MaxLng - north.MinLng
	if northSpan <= eqSpan {
		t.Errorf("longitude span at 60° (%g) should exceed span at equator (%g)", northSpan, eqSpan)
	}
	// cos(60°) = 0.5, so the span roughly doubles at small radii.
	if math.Abs(northSpan-2*eqSpan) > 1e-3 {
		t.Errorf("span at 60° = %g, want %g", northSpan, 2*eqSpan)
	}
}

func TestBoundingBox_NearPoleCoversAllLongitudes(t *testing.T) {
	box := BoundingBox(Point{Lat: 89.999, Lng: 10}, 10)
	if box.MinLng != -180 || box.MaxLng != 180 {
		t.Errorf("near-pole box longitudes = [%g, %g], want [-180, 180]", box.MinLng, box.MaxLng)
	}
	if box.MaxLat != 90 {
		t.Errorf("MaxLat = %g, want clamped to 90", box.MaxLat)
	}
}

func TestBoundingBox_WrapsAntimeridian(t *testing.T) {
	east := Point{Lat: -17, Lng: 179.8}
	west := Point{Lat: -17, Lng: -179.8}

	box := BoundingBox(east, 100)
	if !box.Wraps() {
		t.Fatalf("box %+v should wrap", box)
	}
	if !box.Contains(west) || !box.Contains(east) {
		t.Errorf("box %+v misses a point across the antimeridian", box)
	}
	if box.Contains(Point{Lat: -17, Lng: 0}) {
		t.Errorf("wrapped box %+v contains the prime meridian", box)
	}

	if BoundingBox(Point{Lat: -17, Lng: 0}, 100).Wraps() {
		t.Error("box at the prime meridian should not wrap")
	}
}

func TestBoundingBox_LargeRadius(t *testing.T) {
	center := Point{Lat: 60, Lng: 0}
	p := Point{Lat: 64, Lng: 37.5}
	if d := Distance(center, p); d > 2000 {
		t.Fatalf("fixture point is %g km away, want within 2000", d)
	}
	if box := BoundingBox(center, 2000); !box.Contains(p) {
		t.Errorf("box %+v does not contain %+v", box, p)
	}
}

func TestBoundingBox_ContainsCircle(t *testing.T) {
	centers := []Point{
		{0, 0}, {51.5, -0.13}, {60, 0}, {-17, 179.8}, {-17, -179.8},
		{70, 179}, {-45, -170}, {85, 90}, {-89, 0},
	}
	radii := []float64{1, 50, 500, 2000, 5000, 12000}

	for _, c := range centers {
		for _, r := range radii {
			box := BoundingBox(c, r)
			for bearing := 0.0; bearing < 360; bearing += 5 {
				for _, frac := range []float64{0.25, 0.5, 0.999} {
					p := destination(c, r*frac, bearing)
					if !box.Contains(p) {
						t.Errorf("center %+v radius %g: box %+v misses %+v (bearing %g)", c, r, box, p, bearing)
					}
				}
			}
		}
	}
}

func TestNewPoint(t *testing.T) {
	if _, err := NewPoint(45, 90); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewPoint(91, 0); err == nil {
		t.Error("expected error for lat 91")
	}
	if _, err := NewPoint(0, -181); err == nil {
		t.Error("expected error for lng -181")
	}
}

// destination returns the point reached by travelling distKm on the given bearing.
func destination(p Point, distKm, bearingDeg float64) Point {
	lat1 := p.Lat * math.Pi / 180
	lon1 := p.Lng * math.Pi / 180
	brng := bearingDeg * math.Pi / 180
	ang := distKm / EarthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(ang) + math.Cos(lat1)*math.Sin(ang)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(math.Sin(brng)*math.Sin(ang)*math.Cos(lat1), math.Cos(ang)-math.Sin(lat1)*math.Sin(lat2))
	lng := math.Mod(lon2*180/math.Pi+540, 360) - 180
	return Point{Lat: lat2 * 180 / math.Pi, Lng: lng}
}
