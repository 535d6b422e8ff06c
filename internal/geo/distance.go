package geo

import (
	"math"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
)

const earthRadiusKM = 6371.0

func Haversine(a, b domain.LatLng) float64 {
	dLat := deg2rad(b.Lat - a.Lat)
	dLon := deg2rad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(a.Lat))*math.Cos(deg2rad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKM * c
}

// Interpolate produces a straight-line path of n evenly spaced points
// from a to b, endpoints included. n below 2 is clamped to 2.
func Interpolate(a, b domain.LatLng, n int) []domain.LatLng {
	if n < 2 {
		n = 2
	}
	points := make([]domain.LatLng, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		points = append(points, domain.LatLng{
			Lat: a.Lat + (b.Lat-a.Lat)*t,
			Lng: a.Lng + (b.Lng-a.Lng)*t,
		})
	}
	return points
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}
