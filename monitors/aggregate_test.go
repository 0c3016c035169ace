package monitors

import (
	"fmt"
	"testing"

	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id, name string, status mstypes.MonitorStatus, tags ...string) mstypes.MonitorRecord {
	return mstypes.MonitorRecord{ID: id, Name: name, Status: status, Tags: tags}
}

func TestAggregateEmpty(t *testing.T) {
	report := Aggregate(mstypes.EnvProduction, nil, AggregateOptions{})

	assert.Equal(t, mstypes.EnvProduction, report.Environment)
	assert.Zero(t, report.Total)
	assert.Equal(t, 100.0, report.HealthyPercent)
	assert.Empty(t, report.Categories)
}

func TestAggregateCounts(t *testing.T) {
	var records []mstypes.MonitorRecord
	for i := 0; i < 7; i++ {
		records = append(records, record(fmt.Sprint(i), "CPU load", mstypes.StatusHealthy))
	}
	records = append(records,
		record("7", "Redis memory", mstypes.StatusAlerting),
		record("8", "Disk usage", mstypes.StatusAlerting),
	)
	paused := record("9", "Redis latency", mstypes.StatusAlerting)
	paused.Paused = true
	records = append(records, paused)

	report := Aggregate(mstypes.EnvProduction, records, AggregateOptions{})

	assert.Equal(t, 10, report.Total)
	assert.Equal(t, 7, report.Healthy)
	assert.Equal(t, 2, report.Unhealthy)
	assert.Equal(t, 1, report.Paused)
	assert.InDelta(t, 70.0, report.HealthyPercent, 1e-9)
	assert.Equal(t, report.Total, report.Healthy+report.Unhealthy+report.Paused)
}

func TestAggregatePartitionAndOrder(t *testing.T) {
	records := []mstypes.MonitorRecord{
		record("1", "Disk usage", mstypes.StatusWarning),
		record("2", "Homepage latency", mstypes.StatusAlerting),
		record("3", "Redis memory", mstypes.StatusAlerting),
		record("4", "Ingest lag", mstypes.StatusNoData, "service:clickhouse"),
		record("5", "Pod restarts", mstypes.StatusUnknown),
		record("6", "Redis pubsub backlog", mstypes.StatusAlerting),
		record("7", "CPU load", mstypes.StatusHealthy),
	}

	report := Aggregate(mstypes.EnvPreProduction, records, AggregateOptions{})

	var order []mstypes.ServiceCategory
	seen := map[string]int{}
	for _, c := range report.Categories {
		order = append(order, c.Category)
		for _, m := range c.Monitors {
			seen[m.Record.ID]++
		}
	}

	assert.Equal(t, []mstypes.ServiceCategory{
		mstypes.CategoryRedisPubSub,
		mstypes.CategoryRedis,
		mstypes.CategoryKubernetes,
		mstypes.CategorySystem,
		"CLICKHOUSE",
		mstypes.CategoryOther,
	}, order)

	// every unhealthy monitor exactly once, healthy ones never
	assert.Equal(t, map[string]int{"1": 1, "2": 1, "3": 1, "4": 1, "5": 1, "6": 1}, seen)
	assert.Equal(t, 6, report.Unhealthy)
	assert.Len(t, report.UnhealthyMonitors(), report.Unhealthy)
}

func TestAggregateSortsMonitorsBySeverity(t *testing.T) {
	records := []mstypes.MonitorRecord{
		record("1", "Disk b", mstypes.StatusWarning),
		record("2", "Disk a", mstypes.StatusNoData),
		record("3", "Disk c", mstypes.StatusAlerting),
	}

	report := Aggregate(mstypes.EnvProduction, records, AggregateOptions{})
	require.Len(t, report.Categories, 1)

	var ids []string
	for _, m := range report.Categories[0].Monitors {
		ids = append(ids, m.Record.ID)
	}
	assert.Equal(t, []string{"3", "1", "2"}, ids)
}

func TestAggregateGroupLines(t *testing.T) {
	r := mstypes.MonitorRecord{
		ID:     "42",
		Name:   "{{#is_alert}}{{value}}{{/is_alert}}",
		Status: mstypes.StatusAlerting,
		Groups: map[string]mstypes.SubGroup{
			"host:web-1": {Status: mstypes.StatusAlerting, CurrentValue: ptr(95.5), Threshold: ptr(90)},
			"host:web-2": {Status: mstypes.StatusNoData},
			"host:web-3": {Status: mstypes.StatusWarning, CurrentValue: ptr(81)},
			"host:web-4": {Status: mstypes.StatusHealthy, CurrentValue: ptr(10)},
		},
	}

	report := Aggregate(mstypes.EnvProduction, []mstypes.MonitorRecord{r}, AggregateOptions{MaxGroupsPerMonitor: 2})
	require.Len(t, report.Categories, 1)
	require.Len(t, report.Categories[0].Monitors, 1)

	m := report.Categories[0].Monitors[0]
	assert.Equal(t, "Monitor 42", m.DisplayName)
	assert.Equal(t, []string{"Host: web-1: 95.5 (threshold: 90)", "Host: web-2: No Data"}, m.Groups)
	assert.Equal(t, 1, m.HiddenGroups)
}

func TestFormatGroupLine(t *testing.T) {
	tests := []struct {
		group mstypes.SubGroup
		want  string
	}{
		{mstypes.SubGroup{Name: "pod_name:api-server", Status: mstypes.StatusNoData}, "Pod Name: api-server: No Data"},
		{mstypes.SubGroup{Name: "host:db-1,device:sda", Status: mstypes.StatusWarning, CurrentValue: ptr(81.456)}, "Host: db-1, Device: sda: 81.46"},
		{mstypes.SubGroup{Name: "pod:api-server", Status: mstypes.StatusAlerting, Threshold: ptr(5)}, "Pod: api-server (threshold: 5)"},
		{mstypes.SubGroup{Name: "*", Status: mstypes.StatusAlerting}, "*"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatGroupLine(tt.group))
		})
	}
}

func TestCategoryRank(t *testing.T) {
	assert.Less(t, CategoryRank(mstypes.CategoryRedisPubSub), CategoryRank(mstypes.CategoryRedis))
	assert.Less(t, CategoryRank(mstypes.CategorySystem), CategoryRank("CLICKHOUSE"))
	assert.Less(t, CategoryRank("CLICKHOUSE"), CategoryRank(mstypes.CategoryOther))
}
