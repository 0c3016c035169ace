package datadog

import (
	"fmt"
	"strconv"

	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
)

// ParseState maps a provider state string onto the normalized status.
func ParseState(state string) mstypes.MonitorStatus {
	switch state {
	case "OK":
		return mstypes.StatusHealthy
	case "Alert":
		return mstypes.StatusAlerting
	case "Warn":
		return mstypes.StatusWarning
	case "No Data":
		return mstypes.StatusNoData
	default:
		return mstypes.StatusUnknown
	}
}

func monitorLink(appURL string, id int64) string {
	return fmt.Sprintf("%s/monitors/%d", appURL, id)
}

// toRecord converts a full monitor. Missing group data yields a record
// without sub-groups.
func (m Monitor) toRecord(appURL string) mstypes.MonitorRecord {
	record := mstypes.MonitorRecord{
		ID:     strconv.FormatInt(m.ID, 10),
		Name:   m.Name,
		Tags:   m.Tags,
		Query:  m.Query,
		Status: ParseState(m.OverallState),
		Paused: len(m.Options.Silenced) > 0,
		Link:   monitorLink(appURL, m.ID),
	}

	if len(m.State.Groups) == 0 {
		return record
	}

	record.Groups = make(map[string]mstypes.SubGroup, len(m.State.Groups))
	for name, g := range m.State.Groups {
		group := mstypes.SubGroup{
			Name:   name,
			Status: ParseState(g.Status),
		}

		if group.Status != mstypes.StatusNoData && g.LastNoDataTS == nil {
			group.CurrentValue = g.LastValue
		}

		switch group.Status {
		case mstypes.StatusAlerting:
			group.Threshold = m.Options.Thresholds.Critical
		case mstypes.StatusWarning:
			group.Threshold = m.Options.Thresholds.Warning
		}

		record.Groups[name] = group
	}

	return record
}

func (m SearchMonitor) toRecord(appURL string) mstypes.MonitorRecord {
	return mstypes.MonitorRecord{
		ID:      strconv.FormatInt(m.ID, 10),
		Name:    m.Name,
		Tags:    m.Tags,
		Query:   m.Query,
		Metrics: m.Metrics,
		Status:  ParseState(m.Status),
		Link:    monitorLink(appURL, m.ID),
	}
}
