package datadog

import (
	"encoding/json"
)

// Monitor is the subset of the monitor payload the summaries need.
type Monitor struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Type         string         `json:"type"`
	Query        string         `json:"query"`
	Message      string         `json:"message"`
	Tags         []string       `json:"tags"`
	OverallState string         `json:"overall_state"`
	Options      MonitorOptions `json:"options"`
	State        MonitorState   `json:"state"`
}

type MonitorOptions struct {
	// Silenced maps a scope to an optional end timestamp; a non-empty map
	// means the monitor is muted.
	Silenced   map[string]json.RawMessage `json:"silenced"`
	Thresholds Thresholds                 `json:"thresholds"`
}

type Thresholds struct {
	Critical *float64 `json:"critical"`
	Warning  *float64 `json:"warning"`
}

type MonitorState struct {
	Groups map[string]GroupState `json:"groups"`
}

type GroupState struct {
	Name            string   `json:"name"`
	Status          string   `json:"status"`
	LastValue       *float64 `json:"last_value"`
	LastNoDataTS    *int64   `json:"last_nodata_ts"`
	LastTriggeredTS *int64   `json:"last_triggered_ts"`
}

// UnmarshalJSON tolerates non-numeric last_value payloads, which then carry no value.
func (g *GroupState) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name            string          `json:"name"`
		Status          string          `json:"status"`
		LastValue       json.RawMessage `json:"last_value"`
		LastNoDataTS    *int64          `json:"last_nodata_ts"`
		LastTriggeredTS *int64          `json:"last_triggered_ts"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	g.Name = raw.Name
	g.Status = raw.Status
	g.LastNoDataTS = raw.LastNoDataTS
	g.LastTriggeredTS = raw.LastTriggeredTS
	g.LastValue = nil

	var value float64
	if len(raw.LastValue) > 0 && string(raw.LastValue) != "null" && json.Unmarshal(raw.LastValue, &value) == nil {
		g.LastValue = &value
	}
	return nil
}

// SearchResponse represents the response from the monitor search API
type SearchResponse struct {
	Monitors []SearchMonitor `json:"monitors"`
	Metadata Metadata        `json:"metadata"`
}

// SearchMonitor is a search hit. Search results carry no group state.
type SearchMonitor struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Status         string   `json:"status"`
	Type           string   `json:"type"`
	Query          string   `json:"query"`
	Tags           []string `json:"tags"`
	Metrics        []string `json:"metrics"`
	Classification string   `json:"classification"`
}

// Metadata represents pagination metadata
type Metadata struct {
	Page      int `json:"page"`
	PageCount int `json:"page_count"`
	PerPage   int `json:"per_page"`
	Total     int `json:"total_count"`
}
