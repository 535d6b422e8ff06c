package geo

import (
	"encoding/json"
	"log/slog"
	"math"
	"regexp"
	"strconv"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
)

// Upstream geodata arrives in several historical shapes. Extraction tries
// each strategy in a fixed priority order and takes the first that yields
// two finite numbers:
//
//  1. direct lat/lng fields on the row
//  2. location as GeoJSON {coordinates: [lng, lat, ...]}
//  3. location with direct lat/lng
//  4. location as a planar point {x: lng, y: lat}
//  5. location as WKT "POINT(lng lat)"
//  6. location as a JSON-encoded string holding a GeoJSON object
type strategy func(row domain.Row) (domain.LatLng, bool)

var strategies = []strategy{
	fromDirectFields,
	fromLocationGeoJSON,
	fromLocationLatLng,
	fromLocationXY,
	fromLocationWKT,
	fromLocationJSONString,
}

type Normalizer struct {
	logger *slog.Logger
}

func NewNormalizer(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Extract returns the first coordinate pair any strategy recognizes.
// It never panics; if every strategy fails it logs the offending row once
// and reports false. Range validation belongs to the caller.
func (n *Normalizer) Extract(row domain.Row) (domain.LatLng, bool) {
	if row == nil {
		n.logger.Warn("coordinate extraction failed", slog.Any("row", row))
		return domain.LatLng{}, false
	}
	for _, s := range strategies {
		if p, ok := s(row); ok {
			return p, true
		}
	}
	n.logger.Warn("coordinate extraction failed", slog.Any("row", row))
	return domain.LatLng{}, false
}

func fromDirectFields(row domain.Row) (domain.LatLng, bool) {
	return pairFrom(row["lat"], row["lng"])
}

func fromLocationGeoJSON(row domain.Row) (domain.LatLng, bool) {
	loc, ok := row["location"].(map[string]any)
	if !ok {
		return domain.LatLng{}, false
	}
	return geoJSONPair(loc)
}

func fromLocationLatLng(row domain.Row) (domain.LatLng, bool) {
	loc, ok := row["location"].(map[string]any)
	if !ok {
		return domain.LatLng{}, false
	}
	return pairFrom(loc["lat"], loc["lng"])
}

func fromLocationXY(row domain.Row) (domain.LatLng, bool) {
	loc, ok := row["location"].(map[string]any)
	if !ok {
		return domain.LatLng{}, false
	}
	// planar convention: x is longitude, y is latitude
	return pairFrom(loc["y"], loc["x"])
}

// wktPoint accepts exponent notation and arbitrary whitespace inside the
// parentheses, case-insensitive.
var wktPoint = regexp.MustCompile(`(?i)^\s*POINT\s*\(\s*([+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)\s+([+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)\s*\)\s*$`)

func fromLocationWKT(row domain.Row) (domain.LatLng, bool) {
	s, ok := row["location"].(string)
	if !ok {
		return domain.LatLng{}, false
	}
	m := wktPoint.FindStringSubmatch(s)
	if m == nil {
		return domain.LatLng{}, false
	}
	lng, err1 := strconv.ParseFloat(m[1], 64)
	lat, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil || !finite(lat) || !finite(lng) {
		return domain.LatLng{}, false
	}
	return domain.LatLng{Lat: lat, Lng: lng}, true
}

func fromLocationJSONString(row domain.Row) (domain.LatLng, bool) {
	s, ok := row["location"].(string)
	if !ok {
		return domain.LatLng{}, false
	}
	var loc map[string]any
	if err := json.Unmarshal([]byte(s), &loc); err != nil {
		return domain.LatLng{}, false
	}
	if p, ok := geoJSONPair(loc); ok {
		return p, true
	}
	return pairFrom(loc["lat"], loc["lng"])
}

// geoJSONPair reads {coordinates: [lng, lat]}; GeoJSON order is swapped
// relative to the internal representation.
func geoJSONPair(loc map[string]any) (domain.LatLng, bool) {
	coords, ok := loc["coordinates"].([]any)
	if !ok || len(coords) < 2 {
		return domain.LatLng{}, false
	}
	return pairFrom(coords[1], coords[0])
}

func pairFrom(latVal, lngVal any) (domain.LatLng, bool) {
	lat, ok1 := toFloat(latVal)
	lng, ok2 := toFloat(lngVal)
	if !ok1 || !ok2 {
		return domain.LatLng{}, false
	}
	return domain.LatLng{Lat: lat, Lng: lng}, true
}

// toFloat accepts the numeric types json decoding and pgx scanning produce.
// NaN, infinities, nils and non-numeric values are rejected.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if !finite(f) {
		return 0, false
	}
	return f, true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
