package matching

import "math"

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = 111.32
)

// HaversineKm returns the great-circle distance between two points.
func HaversineKm(a, b GeoPoint) float64 {
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Latitude*math.Pi/180)*math.Cos(b.Latitude*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// BoundingBox is a lat/lng rectangle. When MinLng > MaxLng the box crosses
// the antimeridian and covers [MinLng, 180] plus [-180, MaxLng].
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// BoundingBoxAround returns a box that contains every point within radiusKm of
// center. It over-approximates the circle, so callers still check distance.
func BoundingBoxAround(center GeoPoint, radiusKm float64) BoundingBox {
	latDelta := radiusKm / kmPerDegree
	lngDelta := 180.0
	if cos := math.Cos(center.Latitude * math.Pi / 180); cos > 1e-6 {
		lngDelta = math.Min(180, radiusKm/(kmPerDegree*cos))
	}

	box := BoundingBox{
		MinLat: math.Max(-90, center.Latitude-latDelta),
		MaxLat: math.Min(90, center.Latitude+latDelta),
		MinLng: -180,
		MaxLng: 180,
	}
	if lngDelta >= 180 {
		return box
	}

	box.MinLng = center.Longitude - lngDelta
	box.MaxLng = center.Longitude + lngDelta
	if box.MinLng < -180 {
		box.MinLng += 360
	}
	if box.MaxLng > 180 {
		box.MaxLng -= 360
	}
	return box
}

// WrapsAntimeridian reports whether the longitude range crosses ±180.
func (b BoundingBox) WrapsAntimeridian() bool {
	return b.MinLng > b.MaxLng
}

func (b BoundingBox) Contains(p GeoPoint) bool {
	if p.Latitude < b.MinLat || p.Latitude > b.MaxLat {
		return false
	}
	if b.WrapsAntimeridian() {
		return p.Longitude >= b.MinLng || p.Longitude <= b.MaxLng
	}
	return p.Longitude >= b.MinLng && p.Longitude <= b.MaxLng
}

// Clamp01 bounds v to [0,1]; NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
