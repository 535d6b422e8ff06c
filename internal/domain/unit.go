package domain

type UnitType string

const (
	UnitAmbulance UnitType = "ambulance"
	UnitFireTruck UnitType = "fire_truck"
	UnitPoliceCar UnitType = "police_car"
)

type UnitStatus string

const (
	UnitAvailable  UnitStatus = "available"
	UnitDispatched UnitStatus = "dispatched"
	UnitBusy       UnitStatus = "busy"
	UnitOffline    UnitStatus = "offline"
)

// EmergencyUnit is a dispatchable resource. Units are provisioned
// externally; this core only toggles status and tracks location.
type EmergencyUnit struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Type     UnitType   `json:"type"`
	Status   UnitStatus `json:"status"`
	Location LatLng     `json:"location"`
}

type UnitPatch struct {
	Status   *UnitStatus
	Location *LatLng
}

// NearbyUnit is a ranked search result from the nearby-unit RPC.
type NearbyUnit struct {
	Unit       EmergencyUnit `json:"unit"`
	DistanceKM float64       `json:"distance_km"`
}
