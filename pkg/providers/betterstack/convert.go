package betterstack

import (
	"fmt"

	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
)

// ParseStatus maps an uptime monitor status onto the normalized status.
// paused reports an administratively silenced monitor.
func ParseStatus(status string) (normalized mstypes.MonitorStatus, paused bool) {
	switch status {
	case "up":
		return mstypes.StatusHealthy, false
	case "down":
		return mstypes.StatusAlerting, false
	case "paused", "maintenance":
		return mstypes.StatusUnknown, true
	default:
		// validating, pending
		return mstypes.StatusUnknown, false
	}
}

func (m Monitor) toRecord(teamURL string) mstypes.MonitorRecord {
	status, paused := ParseStatus(m.Attributes.Status)

	return mstypes.MonitorRecord{
		ID:     m.ID,
		Name:   m.Attributes.PronounceableName,
		Query:  m.Attributes.URL,
		URL:    m.Attributes.URL,
		Status: status,
		Paused: paused || m.Attributes.Paused,
		Link:   fmt.Sprintf("%s/monitors/%s", teamURL, m.ID),
		Call:   m.Attributes.Call,
	}
}
