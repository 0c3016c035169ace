package monitors

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ZEGIFTED/MS.MonitorOps/pkg/utils"
	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
)

var (
	ErrAllDeliveriesFailed = errors.New("every summary delivery failed")
	ErrAllUpdatesFailed    = errors.New("every monitor update failed")
)

// MonitorSource fetches the full monitor set of one provider.
type MonitorSource interface {
	FetchMonitors(ctx context.Context) ([]mstypes.MonitorRecord, error)
}

// ReportDeliverer posts a rendered report to the channel of its environment.
type ReportDeliverer interface {
	DeliverReport(ctx context.Context, report mstypes.SummaryReport, runID string) error
}

// ErrorNotifier reports a failed run to operators.
type ErrorNotifier interface {
	NotifyError(ctx context.Context, source string, cause error) error
}

// ReportExporter writes report files and returns their paths.
type ReportExporter interface {
	Export(report mstypes.SummaryReport, runID string) ([]string, error)
}

// ReportMailer sends exported report files.
type ReportMailer interface {
	SendReport(report mstypes.SummaryReport, runID string, attachments []string) error
}

// SummaryPipeline is one fetch → classify → aggregate → deliver run.
type SummaryPipeline struct {
	Name   string
	Source MonitorSource
	// Rules defaults to DefaultEnvironmentRules.
	Rules []EnvironmentRule
	// Environments defaults to production then pre-production.
	Environments []mstypes.EnvironmentLabel
	Options      AggregateOptions

	Deliverer ReportDeliverer
	// Optional collaborators.
	ErrorNotifier ErrorNotifier
	Exporter      ReportExporter
	Mailer        ReportMailer

	Logger *log.Logger
}

// RunResult describes the outcome of a pipeline run.
type RunResult struct {
	RunID     string
	Reports   []mstypes.SummaryReport
	Delivered int
	Failed    int

	// Skipped counts environments without monitors; they count as handled.
	Skipped int
}

// Run executes the pipeline once. It fails when the fetch fails or when every
// attempted delivery fails. An environment without monitors is skipped and
// counts as handled, so it alone keeps the run successful.
func (p *SummaryPipeline) Run(ctx context.Context) (RunResult, error) {
	logger := p.logger()
	result := RunResult{RunID: utils.NewRunID()}

	logger.Printf("[FETCH] %s run %s: fetching monitors", p.Name, result.RunID)
	records, err := p.Source.FetchMonitors(ctx)
	if err != nil {
		p.notifyError(ctx, err)
		return result, fmt.Errorf("fetch monitors: %w", err)
	}
	logger.Printf("[FETCH] %s run %s: %d monitors fetched", p.Name, result.RunID, len(records))

	buckets := SplitByEnvironment(p.rules(), records)

	for _, env := range p.environments() {
		bucket := buckets[env]
		if len(bucket) == 0 {
			logger.Printf("[SUMMARY] %s: no monitors, skipping", env)
			result.Skipped++
			continue
		}

		report := Aggregate(env, bucket, p.Options)
		result.Reports = append(result.Reports, report)
		logger.Printf("[SUMMARY] %s: total=%d healthy=%d unhealthy=%d paused=%d (%.1f%%)",
			env, report.Total, report.Healthy, report.Unhealthy, report.Paused, report.HealthyPercent)

		p.export(report, result.RunID)

		if err := p.Deliverer.DeliverReport(ctx, report, result.RunID); err != nil {
			result.Failed++
			logger.Printf("[DELIVERY] %s: failed: %v", env, err)
			continue
		}
		result.Delivered++
		logger.Printf("[DELIVERY] %s: delivered", env)
	}

	if result.Failed > 0 && result.Delivered == 0 && result.Skipped == 0 {
		return result, ErrAllDeliveriesFailed
	}
	return result, nil
}

// SplitByEnvironment buckets records by their classified environment.
func SplitByEnvironment(rules []EnvironmentRule, records []mstypes.MonitorRecord) map[mstypes.EnvironmentLabel][]mstypes.MonitorRecord {
	buckets := make(map[mstypes.EnvironmentLabel][]mstypes.MonitorRecord)
	for _, record := range records {
		env := ClassifyEnvironmentWith(rules, record)
		buckets[env] = append(buckets[env], record)
	}
	return buckets
}

func (p *SummaryPipeline) export(report mstypes.SummaryReport, runID string) {
	if p.Exporter == nil {
		return
	}

	files, err := p.Exporter.Export(report, runID)
	if err != nil {
		p.logger().Printf("[SUMMARY] %s: export failed: %v", report.Environment, err)
		return
	}
	if p.Mailer == nil || len(files) == 0 {
		return
	}

	if err := p.Mailer.SendReport(report, runID, files); err != nil {
		p.logger().Printf("[DELIVERY] %s: report email failed: %v", report.Environment, err)
	}
}

func (p *SummaryPipeline) notifyError(ctx context.Context, cause error) {
	if p.ErrorNotifier == nil {
		return
	}
	if err := p.ErrorNotifier.NotifyError(ctx, p.Name, cause); err != nil {
		p.logger().Printf("[DELIVERY] error notification failed: %v", err)
	}
}

func (p *SummaryPipeline) rules() []EnvironmentRule {
	if len(p.Rules) == 0 {
		return DefaultEnvironmentRules
	}
	return p.Rules
}

func (p *SummaryPipeline) environments() []mstypes.EnvironmentLabel {
	if len(p.Environments) == 0 {
		return []mstypes.EnvironmentLabel{mstypes.EnvProduction, mstypes.EnvPreProduction}
	}
	return p.Environments
}

func (p *SummaryPipeline) logger() *log.Logger {
	if p.Logger == nil {
		return utils.Logger
	}
	return p.Logger
}
