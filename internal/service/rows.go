package service

import (
	"time"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
)

// incidentRow/unitRow encode domain values back into the generic row
// shape the change feed carries, with direct lat/lng fields so the
// merge layer's coordinate re-validation sees them first.

func incidentRow(inc domain.Incident) domain.Row {
	row := domain.Row{
		"id":            inc.ID,
		"category":      string(inc.Category),
		"status":        string(inc.Status),
		"severity":      string(inc.Severity),
		"description":   inc.Description,
		"lat":           inc.Location.Lat,
		"lng":           inc.Location.Lng,
		"reporter_name": inc.ReporterName,
		"created_at":    inc.CreatedAt.UTC().Format(time.RFC3339),
		"verified":      inc.Verified,
		"verify_count":  inc.VerifyCount,
	}
	if inc.Address != "" {
		row["address"] = inc.Address
	}
	if inc.ReporterUserID != "" {
		row["reporter_user_id"] = inc.ReporterUserID
	}
	if len(inc.AssignedUnitIDs) > 0 {
		row["assigned_unit_ids"] = inc.AssignedUnitIDs
	}
	if inc.ImageKey != "" {
		row["image_key"] = inc.ImageKey
	}
	return row
}

func unitRow(u domain.EmergencyUnit) domain.Row {
	return domain.Row{
		"id":     u.ID,
		"name":   u.Name,
		"type":   string(u.Type),
		"status": string(u.Status),
		"lat":    u.Location.Lat,
		"lng":    u.Location.Lng,
	}
}
