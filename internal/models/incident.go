package models

import "time"

// Incident is a reported safety concern. Immutable once created.
type Incident struct {
	ID              int64     `json:"id"`
	Category        string    `json:"category"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	ReporterName    *string   `json:"reporterName,omitempty"`
	ReporterContact *string   `json:"reporterContact,omitempty"`
	ReporterID      *int64    `json:"-"`
	SourceIP        string    `json:"-"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Alert wraps exactly one incident for the community alert map. Alerts with
// no family code are public; family-scoped alerts are visible only to that
// family's members.
type Alert struct {
	ID         int64     `json:"id"`
	IncidentID int64     `json:"incidentId"`
	Resolved   bool      `json:"resolved"`
	FamilyCode *string   `json:"familyCode,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AlertWithIncident joins an alert with its underlying incident
type AlertWithIncident struct {
	Alert    Alert    `json:"alert"`
	Incident Incident `json:"incident"`
}
