package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZEGIFTED/MS.MonitorOps/internal/config"
	"github.com/ZEGIFTED/MS.MonitorOps/monitors"
	"github.com/ZEGIFTED/MS.MonitorOps/pkg/messaging"
	"github.com/ZEGIFTED/MS.MonitorOps/pkg/utils"
	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
	"github.com/spf13/cobra"
)

type summaryFlags struct {
	schedule string
	env      string
	dryRun   bool
}

func addSummaryFlags(cmd *cobra.Command, f *summaryFlags) {
	cmd.Flags().StringVar(&f.schedule, "schedule", "", `run repeatedly on a cron schedule, e.g. "0 * * * *" or "@every 30m"`)
	cmd.Flags().StringVar(&f.env, "env", "all", "environment to report: prod, preprod or all")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "render and log the messages without posting them")
}

func newAlertSummaryCmd(a *app) *cobra.Command {
	var f summaryFlags

	cmd := &cobra.Command{
		Use:   "alert-summary",
		Short: "Post the per-environment alert summary of the monitor API to Slack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ValidateDatadog(); err != nil {
				return err
			}

			pipeline, err := a.summaryPipeline("alert-summary", a.datadogClient(), monitors.DefaultEnvironmentRules, "", f)
			if err != nil {
				return err
			}
			return runSummary(cmd.Context(), pipeline, f.schedule)
		},
	}

	addSummaryFlags(cmd, &f)
	return cmd
}

func newUptimeSummaryCmd(a *app) *cobra.Command {
	var f summaryFlags

	cmd := &cobra.Command{
		Use:   "uptime-summary",
		Short: "Post the per-environment uptime summary to Slack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ValidateBetterStack(); err != nil {
				return err
			}

			rules := append([]monitors.EnvironmentRule{
				monitors.EnvironmentFromHosts(a.cfg.BetterStack.ProdHosts, a.cfg.BetterStack.PreprodHosts),
			}, monitors.DefaultEnvironmentRules...)

			pipeline, err := a.summaryPipeline("uptime-summary", a.betterStackClient(), rules, "Uptime Status", f)
			if err != nil {
				return err
			}
			return runSummary(cmd.Context(), pipeline, f.schedule)
		},
	}

	addSummaryFlags(cmd, &f)
	return cmd
}

func (a *app) summaryPipeline(name string, source monitors.MonitorSource, rules []monitors.EnvironmentRule, title string, f summaryFlags) (*monitors.SummaryPipeline, error) {
	if err := config.ValidateSchedule(f.schedule); err != nil {
		return nil, err
	}
	envs, err := parseEnvironments(f.env)
	if err != nil {
		return nil, err
	}

	manager := a.notificationManager()
	if !f.dryRun {
		if err := manager.Validate(); err != nil {
			return nil, err
		}
	}

	notifier := &messaging.SlackNotifier{
		Manager:    manager,
		HTTPClient: a.httpClient(),
		Title:      title,
		DryRun:     f.dryRun,
		Logger:     utils.Logger,
	}

	pipeline := &monitors.SummaryPipeline{
		Name:          name,
		Source:        source,
		Rules:         rules,
		Environments:  envs,
		Options:       monitors.AggregateOptions{MaxGroupsPerMonitor: a.cfg.Report.MaxGroupsPerMonitor},
		Deliverer:     notifier,
		ErrorNotifier: notifier,
		Logger:        utils.Logger,
	}

	if a.cfg.Report.PDF || a.cfg.Report.CSV {
		pipeline.Exporter = &utils.ReportExporter{
			Dir:    a.cfg.Report.OutputDir,
			PDF:    a.cfg.Report.PDF,
			CSV:    a.cfg.Report.CSV,
			Logger: utils.Logger,
		}
		if a.cfg.Email.Enabled && !f.dryRun {
			pipeline.Mailer = messaging.NewReportMailer(manager.GetEmailConfig(), utils.Logger)
		}
	}

	return pipeline, nil
}

// runSummary runs once, or on the cron schedule until interrupted.
func runSummary(ctx context.Context, pipeline *monitors.SummaryPipeline, schedule string) error {
	if schedule == "" {
		_, err := pipeline.Run(ctx)
		return err
	}

	ctx, stop := signalContext(ctx)
	defer stop()

	return monitors.NewScheduler().Run(ctx, schedule, pipeline.Name, func(ctx context.Context) error {
		_, err := pipeline.Run(ctx)
		return err
	})
}

func parseEnvironments(value string) ([]mstypes.EnvironmentLabel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all":
		return []mstypes.EnvironmentLabel{mstypes.EnvProduction, mstypes.EnvPreProduction}, nil
	case "prod", "production":
		return []mstypes.EnvironmentLabel{mstypes.EnvProduction}, nil
	case "preprod", "pre-prod", "staging":
		return []mstypes.EnvironmentLabel{mstypes.EnvPreProduction}, nil
	default:
		return nil, fmt.Errorf("unknown environment %q (want prod, preprod or all)", value)
	}
}
