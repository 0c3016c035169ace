package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ZEGIFTED/MS.MonitorOps/monitors"
	"github.com/ZEGIFTED/MS.MonitorOps/pkg/constants"
	"github.com/ZEGIFTED/MS.MonitorOps/pkg/messaging"
	"github.com/ZEGIFTED/MS.MonitorOps/pkg/utils"
	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
	"github.com/spf13/cobra"
)

func newListAlertsCmd(a *app) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list-alerts",
		Short: "List active alerts found by the monitor search API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ValidateDatadog(); err != nil {
				return err
			}

			utils.Logger.Printf("[FETCH] searching monitors: %s", query)
			records, err := a.datadogClient().SearchMonitors(cmd.Context(), query)
			if err != nil {
				return err
			}
			utils.Logger.Printf("[FETCH] %d monitors matched", len(records))

			writeAlertList(a.stdout, records)
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", constants.DefaultAlertSearchQuery, "monitor search query")
	return cmd
}

func writeAlertList(w io.Writer, records []mstypes.MonitorRecord) {
	type line struct {
		env      mstypes.EnvironmentLabel
		category mstypes.ServiceCategory
		text     string
	}

	lines := make([]line, 0, len(records))
	for _, r := range records {
		lines = append(lines, line{
			env:      monitors.ClassifyEnvironment(r),
			category: monitors.ClassifyService(r),
			text: fmt.Sprintf("%s %s (%s) %s", messaging.StatusEmoji(r.Status),
				monitors.NormalizeName(r.Name, r.Status, r), r.ID, r.Link),
		})
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].env != lines[j].env {
			return lines[i].env < lines[j].env
		}
		return monitors.CategoryRank(lines[i].category) < monitors.CategoryRank(lines[j].category)
	})

	for _, l := range lines {
		fmt.Fprintf(w, "[%s] %-12s %s\n", strings.ToUpper(string(l.env)), l.category, l.text)
	}
	fmt.Fprintf(w, "%d alerts\n", len(lines))
}

func newInspectMonitorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect-monitor <id>",
		Short: "Show how one monitor is classified and rendered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateDatadog(); err != nil {
				return err
			}

			record, err := a.datadogClient().GetMonitor(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			writeMonitorDetails(a.stdout, record)
			return nil
		},
	}
}

func writeMonitorDetails(w io.Writer, record mstypes.MonitorRecord) {
	fmt.Fprintf(w, "ID:          %s\n", record.ID)
	fmt.Fprintf(w, "Raw name:    %s\n", record.Name)
	fmt.Fprintf(w, "Name:        %s\n", monitors.NormalizeName(record.Name, record.Status, record))
	fmt.Fprintf(w, "Status:      %s\n", record.Status)
	fmt.Fprintf(w, "Paused:      %t\n", record.Paused)
	fmt.Fprintf(w, "Environment: %s\n", monitors.ClassifyEnvironment(record))
	fmt.Fprintf(w, "Category:    %s\n", monitors.ClassifyService(record))
	fmt.Fprintf(w, "Tags:        %s\n", strings.Join(record.Tags, ", "))
	fmt.Fprintf(w, "Link:        %s\n", record.Link)

	active := record.ActiveGroups()
	fmt.Fprintf(w, "Groups:      %d total, %d active\n", len(record.Groups), len(active))
	for _, g := range active {
		fmt.Fprintf(w, "  %s %s\n", messaging.StatusEmoji(g.Status), monitors.FormatGroupLine(g))
	}
}
