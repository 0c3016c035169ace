package monitors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ZEGIFTED/MS.MonitorOps/pkg/utils"
	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
)

// AggregateOptions tunes the report. A non-positive MaxGroupsPerMonitor lists
// every active sub-group.
type AggregateOptions struct {
	MaxGroupsPerMonitor int
}

var categoryPriority = map[mstypes.ServiceCategory]int{
	mstypes.CategoryRedisPubSub: 0,
	mstypes.CategoryRedis:       1,
	mstypes.CategoryPostgres:    2,
	mstypes.CategoryRabbitMQ:    3,
	mstypes.CategoryKubernetes:  4,
	mstypes.CategorySystem:      5,
	mstypes.CategoryOther:       99,
}

const unknownCategoryRank = 50

// CategoryRank is the display sort key of a category. Categories missing from
// the table sort between SYSTEM and OTHER.
func CategoryRank(category mstypes.ServiceCategory) int {
	if rank, ok := categoryPriority[category]; ok {
		return rank
	}
	return unknownCategoryRank
}

var statusRank = map[mstypes.MonitorStatus]int{
	mstypes.StatusAlerting: 0,
	mstypes.StatusWarning:  1,
	mstypes.StatusNoData:   2,
	mstypes.StatusUnknown:  3,
}

// Aggregate rolls up the records of one environment. Paused monitors are
// counted but never listed; every other non-healthy monitor lands in exactly
// one category group.
func Aggregate(env mstypes.EnvironmentLabel, records []mstypes.MonitorRecord, opts AggregateOptions) mstypes.SummaryReport {
	report := mstypes.SummaryReport{
		Environment: env,
		Total:       len(records),
	}

	byCategory := make(map[mstypes.ServiceCategory][]mstypes.ReportedMonitor)

	for _, record := range records {
		switch {
		case record.Paused:
			report.Paused++
			continue
		case record.Status == mstypes.StatusHealthy:
			report.Healthy++
			continue
		}

		category := ClassifyService(record)
		byCategory[category] = append(byCategory[category], buildReportedMonitor(record, opts))
	}

	report.Unhealthy = report.Total - report.Paused - report.Healthy
	report.HealthyPercent = 100
	if report.Total > 0 {
		report.HealthyPercent = float64(report.Healthy) / float64(report.Total) * 100
	}

	for category, members := range byCategory {
		sort.SliceStable(members, func(i, j int) bool {
			ri, rj := statusRank[members[i].Record.Status], statusRank[members[j].Record.Status]
			if ri != rj {
				return ri < rj
			}
			return members[i].DisplayName < members[j].DisplayName
		})
		report.Categories = append(report.Categories, mstypes.CategoryGroup{
			Category: category,
			Monitors: members,
		})
	}

	sort.Slice(report.Categories, func(i, j int) bool {
		ci, cj := report.Categories[i].Category, report.Categories[j].Category
		if CategoryRank(ci) != CategoryRank(cj) {
			return CategoryRank(ci) < CategoryRank(cj)
		}
		return ci < cj
	})

	return report
}

func buildReportedMonitor(record mstypes.MonitorRecord, opts AggregateOptions) mstypes.ReportedMonitor {
	display := NormalizeName(record.Name, record.Status, record)
	if display == "" {
		display = "Monitor " + record.ID
	}

	reported := mstypes.ReportedMonitor{
		Record:      record,
		DisplayName: display,
	}

	active := record.ActiveGroups()
	for i, group := range active {
		if opts.MaxGroupsPerMonitor > 0 && i >= opts.MaxGroupsPerMonitor {
			reported.HiddenGroups = len(active) - i
			break
		}
		reported.Groups = append(reported.Groups, FormatGroupLine(group))
	}

	return reported
}

// FormatGroupLine renders one active sub-group, e.g.
// "Host: web-1: 95.5 (threshold: 90)" or "Pod: api: No Data".
func FormatGroupLine(group mstypes.SubGroup) string {
	line := FormatGroupName(group.Name)

	if group.Status == mstypes.StatusNoData {
		return line + ": No Data"
	}
	if group.CurrentValue != nil {
		line += ": " + utils.FormatValue(*group.CurrentValue)
	}
	if group.Threshold != nil {
		line += fmt.Sprintf(" (threshold: %s)", utils.FormatValue(*group.Threshold))
	}
	return line
}

// FormatGroupName prettifies a "key:value[,key:value]" group name:
// "pod_name:api-server" becomes "Pod Name: api-server".
func FormatGroupName(name string) string {
	parts := strings.Split(name, ",")
	for i, part := range parts {
		key, value, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found {
			parts[i] = strings.TrimSpace(part)
			continue
		}
		parts[i] = titleWords(strings.ReplaceAll(key, "_", " ")) + ": " + value
	}
	return strings.Join(parts, ", ")
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
