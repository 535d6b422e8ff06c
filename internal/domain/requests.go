package domain

import "time"

type ReportIncidentRequest struct {
	Category       string  `json:"category" validate:"required,category"`
	Severity       string  `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Description    string  `json:"description" validate:"required,max=2000"`
	Lat            float64 `json:"lat" validate:"lat"`
	Lng            float64 `json:"lng" validate:"lng"`
	Address        string  `json:"address" validate:"omitempty,max=300"`
	ReporterName   string  `json:"reporter_name" validate:"required,max=120"`
	ReporterUserID string  `json:"reporter_user_id" validate:"omitempty,uuid"`
}

type ReportIncidentResponse struct {
	ID string `json:"id"`
}

type PreviewDispatchRequest struct {
	IncidentID string   `json:"incident_id" validate:"required"`
	UnitIDs    []string `json:"unit_ids" validate:"required,min=1,dive,required"`
}

type CommitDispatchRequest struct {
	IncidentID string   `json:"incident_id" validate:"required"`
	UnitIDs    []string `json:"unit_ids" validate:"required,min=1,dive,required"`
	Dispatcher string   `json:"dispatcher" validate:"omitempty,max=120"`
}

type NearbyUnitsRequest struct {
	Lat      float64 `json:"lat" validate:"lat"`
	Lng      float64 `json:"lng" validate:"lng"`
	UnitType string  `json:"unit_type" validate:"omitempty,unit_type"`
	RadiusKM float64 `json:"radius_km" validate:"omitempty,min=0.1,max=500"`
}

type StatsRequest struct {
	Minutes int `json:"minutes" validate:"min=1,max=1440"`
}

type DispatchStats struct {
	IncidentsByStatus   map[string]int64 `json:"incidents_by_status"`
	IncidentsByCategory map[string]int64 `json:"incidents_by_category"`
	UnitsByStatus       map[string]int64 `json:"units_by_status"`
	WindowMinutes       int              `json:"window_minutes"`
}

// NotificationPayload is what the sender worker delivers to the webhook.
type NotificationPayload struct {
	ID         string    `json:"id"`
	Event      string    `json:"event"`
	IncidentID string    `json:"incident_id"`
	UnitIDs    []string  `json:"unit_ids,omitempty"`
	Dispatcher string    `json:"dispatcher,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
