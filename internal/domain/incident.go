package domain

import (
	"time"
)

type IncidentCategory string

const (
	CategoryFire     IncidentCategory = "fire"
	CategoryMedical  IncidentCategory = "medical"
	CategoryAccident IncidentCategory = "accident"
	CategoryCrime    IncidentCategory = "crime"
	CategoryOther    IncidentCategory = "other"

	// CategoryAll is the filter value that matches every incident.
	CategoryAll IncidentCategory = "all"
)

// NormalizeCategory collapses the legacy "police" tag into crime and maps
// anything unrecognized to other.
func NormalizeCategory(s string) IncidentCategory {
	switch IncidentCategory(s) {
	case CategoryFire, CategoryMedical, CategoryAccident, CategoryCrime:
		return IncidentCategory(s)
	case "police":
		return CategoryCrime
	default:
		return CategoryOther
	}
}

// Matches treats crime and the legacy police tag as synonyms.
func (c IncidentCategory) Matches(raw string) bool {
	if c == CategoryAll {
		return true
	}
	if c == CategoryCrime {
		return raw == "crime" || raw == "police"
	}
	return string(c) == raw
}

type IncidentStatus string

const (
	IncidentPending    IncidentStatus = "pending"
	IncidentResponding IncidentStatus = "responding"
	IncidentResolved   IncidentStatus = "resolved"
	IncidentDuplicate  IncidentStatus = "duplicate"
	IncidentUnverified IncidentStatus = "unverified"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// InRange reports whether the pair is inside the WGS84 envelope.
func (p LatLng) InRange() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Incident is a citizen-reported emergency. The ID is assigned by the
// backend at creation (INC-YYYYMMDD-NNNN), never client-generated.
type Incident struct {
	ID              string           `json:"id"`
	Category        IncidentCategory `json:"category"`
	Status          IncidentStatus   `json:"status"`
	Severity        Severity         `json:"severity"`
	Description     string           `json:"description"`
	Location        LatLng           `json:"location"`
	Address         string           `json:"address,omitempty"`
	ReporterName    string           `json:"reporter_name"`
	ReporterUserID  string           `json:"reporter_user_id,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	Verified        bool             `json:"verified"`
	VerifyCount     int              `json:"verify_count"`
	AssignedUnitIDs []string         `json:"assigned_unit_ids,omitempty"`
	ImageKey        string           `json:"image_key,omitempty"`
}

// IncidentPatch is a partial update; nil fields stay untouched.
type IncidentPatch struct {
	Status          *IncidentStatus
	Severity        *Severity
	Verified        *bool
	VerifyCount     *int
	AssignedUnitIDs *[]string
}
