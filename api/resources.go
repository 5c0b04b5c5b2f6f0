package api

import "time"

// StateType distinguishes full states from union territories.
type StateType string

const (
	StateTypeState StateType = "state"
	StateTypeUT    StateType = "ut"
)

// State is a state or union territory registered on the platform.
type State struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Code    string    `json:"code"`    // Two-letter state code, e.g. "RJ"
	LGDCode string    `json:"lgdCode"` // Local Government Directory code
	Type    StateType `json:"type"`
	Active  bool      `json:"active"`
}

// Credential is an API credential issued to a state for pushing telemetry.
// The secret is only returned in full from a rotate call.
type Credential struct {
	ID            string    `json:"id"`
	StateID       string    `json:"stateId"`
	APIKey        string    `json:"apiKey"`
	Secret        string    `json:"secret,omitempty"`
	LastRotatedAt time.Time `json:"lastRotatedAt"`
}

// WaterNorm is a per-capita supply norm for a consumer category.
type WaterNorm struct {
	ID            string    `json:"id"`
	Category      string    `json:"category"` // e.g. "urban", "rural", "institutional"
	LPCD          float64   `json:"lpcd"`     // Litres per capita per day
	EffectiveFrom time.Time `json:"effectiveFrom"`
}

// EscalationRule routes an unresolved alert to a role after a waiting period.
type EscalationRule struct {
	ID         string `json:"id"`
	StateID    string `json:"stateId,omitempty"` // Empty for system-wide rules
	Level      int    `json:"level"`
	AfterHours int    `json:"afterHours"`
	NotifyRole string `json:"notifyRole"`
	Active     bool   `json:"active"`
}

// Threshold defines the warning/critical bounds for a monitored metric.
type Threshold struct {
	ID       string  `json:"id"`
	Metric   string  `json:"metric"` // e.g. "supply_lpcd", "chlorination_ppm"
	Warning  float64 `json:"warning"`
	Critical float64 `json:"critical"`
}

// NotificationTemplate is a message template used by escalation notifications.
type NotificationTemplate struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Channel string `json:"channel"` // "sms", "email" or "push"
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// DashboardSummary is the headline figures block of the public dashboard.
type DashboardSummary struct {
	TotalStates     int     `json:"totalStates"`
	ReportingStates int     `json:"reportingStates"`
	AvgSupplyLPCD   float64 `json:"avgSupplyLpcd"`
	ActiveAlerts    int     `json:"activeAlerts"`
	AsOf            string  `json:"asOf"`
}

// StateMetric is one state's entry in the dashboard map view.
type StateMetric struct {
	StateCode  string  `json:"stateCode"`
	StateName  string  `json:"stateName"`
	SupplyLPCD float64 `json:"supplyLpcd"`
	Coverage   float64 `json:"coverage"` // Fraction of households covered, 0..1
	AlertCount int     `json:"alertCount"`
}
