package domain

// Row is a raw backend record. Shapes vary between tables and schema
// generations, which is why coordinate extraction is multi-strategy.
type Row map[string]any

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Watched table names, one change-feed channel each.
const (
	TableIncidents  = "incidents"
	TableUnits      = "units"
	TableDispatches = "dispatches"
)

// ChangeEvent is one realtime notification from the change feed.
// New is set for INSERT/UPDATE, Old for UPDATE/DELETE.
type ChangeEvent struct {
	Type  EventType `json:"type"`
	Table string    `json:"table"`
	New   Row       `json:"new,omitempty"`
	Old   Row       `json:"old,omitempty"`
}
