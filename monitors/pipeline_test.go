package monitors

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = log.New(io.Discard, "", 0)

type fakeSource struct {
	records []mstypes.MonitorRecord
	err     error
}

func (f *fakeSource) FetchMonitors(context.Context) ([]mstypes.MonitorRecord, error) {
	return f.records, f.err
}

type fakeDeliverer struct {
	failFor   map[mstypes.EnvironmentLabel]bool
	delivered []mstypes.SummaryReport
	runIDs    []string
}

func (f *fakeDeliverer) DeliverReport(_ context.Context, report mstypes.SummaryReport, runID string) error {
	if f.failFor[report.Environment] {
		return errors.New("webhook returned 500")
	}
	f.delivered = append(f.delivered, report)
	f.runIDs = append(f.runIDs, runID)
	return nil
}

type fakeErrorNotifier struct {
	sources []string
	causes  []error
}

func (f *fakeErrorNotifier) NotifyError(_ context.Context, source string, cause error) error {
	f.sources = append(f.sources, source)
	f.causes = append(f.causes, cause)
	return nil
}

type fakeExporter struct{ exported []mstypes.EnvironmentLabel }

func (f *fakeExporter) Export(report mstypes.SummaryReport, runID string) ([]string, error) {
	f.exported = append(f.exported, report.Environment)
	return []string{string(report.Environment) + "_" + runID + ".pdf"}, nil
}

type fakeMailer struct{ attachments [][]string }

func (f *fakeMailer) SendReport(_ mstypes.SummaryReport, _ string, attachments []string) error {
	f.attachments = append(f.attachments, attachments)
	return nil
}

func mixedRecords() []mstypes.MonitorRecord {
	return []mstypes.MonitorRecord{
		record("1", "Redis memory", mstypes.StatusAlerting, "env:prod"),
		record("2", "CPU load", mstypes.StatusHealthy, "env:prod"),
		record("3", "Disk usage", mstypes.StatusWarning, "env:preprod"),
		record("4", "Sandbox check", mstypes.StatusAlerting, "env:dev"),
	}
}

func TestSummaryPipelineDeliversEachEnvironment(t *testing.T) {
	deliverer := &fakeDeliverer{}
	p := &SummaryPipeline{
		Name:      "alert-summary",
		Source:    &fakeSource{records: mixedRecords()},
		Deliverer: deliverer,
		Logger:    discardLogger,
	}

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Delivered)
	assert.Zero(t, result.Failed)
	require.Len(t, deliverer.delivered, 2)
	assert.Equal(t, mstypes.EnvProduction, deliverer.delivered[0].Environment)
	assert.Equal(t, 2, deliverer.delivered[0].Total)
	assert.Equal(t, mstypes.EnvPreProduction, deliverer.delivered[1].Environment)
	assert.Equal(t, 1, deliverer.delivered[1].Total)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []string{result.RunID, result.RunID}, deliverer.runIDs)
}

func TestSummaryPipelineSkipsEmptyEnvironment(t *testing.T) {
	deliverer := &fakeDeliverer{}
	p := &SummaryPipeline{
		Source:    &fakeSource{records: mixedRecords()[:2]},
		Deliverer: deliverer,
		Logger:    discardLogger,
	}

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Delivered)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, result.Reports, 1)
}

func TestSummaryPipelineEmptyEnvironmentCountsAsHandled(t *testing.T) {
	deliverer := &fakeDeliverer{failFor: map[mstypes.EnvironmentLabel]bool{mstypes.EnvPreProduction: true}}
	p := &SummaryPipeline{
		Source:    &fakeSource{records: mixedRecords()[2:3]},
		Deliverer: deliverer,
		Logger:    discardLogger,
	}

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	assert.Zero(t, result.Delivered)
}

func TestSummaryPipelineNothingToDeliver(t *testing.T) {
	p := &SummaryPipeline{
		Source:    &fakeSource{},
		Deliverer: &fakeDeliverer{},
		Logger:    discardLogger,
	}

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Delivered)
}

func TestSummaryPipelinePartialDeliveryFailure(t *testing.T) {
	deliverer := &fakeDeliverer{failFor: map[mstypes.EnvironmentLabel]bool{mstypes.EnvPreProduction: true}}
	p := &SummaryPipeline{
		Source:    &fakeSource{records: mixedRecords()},
		Deliverer: deliverer,
		Logger:    discardLogger,
	}

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Delivered)
	assert.Equal(t, 1, result.Failed)
}

func TestSummaryPipelineAllDeliveriesFail(t *testing.T) {
	deliverer := &fakeDeliverer{failFor: map[mstypes.EnvironmentLabel]bool{
		mstypes.EnvProduction:    true,
		mstypes.EnvPreProduction: true,
	}}
	p := &SummaryPipeline{
		Source:    &fakeSource{records: mixedRecords()},
		Deliverer: deliverer,
		Logger:    discardLogger,
	}

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrAllDeliveriesFailed)
}

func TestSummaryPipelineFetchFailure(t *testing.T) {
	fetchErr := errors.New("connection refused")
	notifier := &fakeErrorNotifier{}
	deliverer := &fakeDeliverer{}
	p := &SummaryPipeline{
		Name:          "alert-summary",
		Source:        &fakeSource{err: fetchErr},
		Deliverer:     deliverer,
		ErrorNotifier: notifier,
		Logger:        discardLogger,
	}

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fetchErr)
	assert.Empty(t, deliverer.delivered)
	assert.Equal(t, []string{"alert-summary"}, notifier.sources)
}

func TestSummaryPipelineEnvironmentFilterAndExport(t *testing.T) {
	deliverer := &fakeDeliverer{}
	exporter := &fakeExporter{}
	mailer := &fakeMailer{}
	p := &SummaryPipeline{
		Source:       &fakeSource{records: mixedRecords()},
		Environments: []mstypes.EnvironmentLabel{mstypes.EnvPreProduction},
		Deliverer:    deliverer,
		Exporter:     exporter,
		Mailer:       mailer,
		Logger:       discardLogger,
	}

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Delivered)
	assert.Equal(t, []mstypes.EnvironmentLabel{mstypes.EnvPreProduction}, exporter.exported)
	require.Len(t, mailer.attachments, 1)
	assert.Equal(t, []string{"preprod_" + result.RunID + ".pdf"}, mailer.attachments[0])
}

func TestSplitByEnvironment(t *testing.T) {
	buckets := SplitByEnvironment(DefaultEnvironmentRules, mixedRecords())

	assert.Len(t, buckets[mstypes.EnvProduction], 2)
	assert.Len(t, buckets[mstypes.EnvPreProduction], 1)
	assert.Len(t, buckets[mstypes.EnvUnknown], 1)
}
