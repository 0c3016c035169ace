package monitors

import (
	"context"
	"errors"
	"testing"

	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPath(t *testing.T) {
	tests := map[string]string{
		"https://api.mobula.io/api/1/market/data?asset=btc": "/api/1/market/data?asset=btc",
		"http://explorer-api.zobula.xyz/health":             "/health",
		"api.mobula.io/api/1/wallet":                        "/api/1/wallet",
		"https://api.mobula.io":                             "/",
		"https://api.mobula.io/":                            "/",
		"api.mobula.io":                                     "/",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ExtractPath(in))
		})
	}
}

func uptime(id, url string, call bool) mstypes.MonitorRecord {
	return mstypes.MonitorRecord{ID: id, Name: id, URL: url, Call: call}
}

func syncRecords() []mstypes.MonitorRecord {
	return []mstypes.MonitorRecord{
		uptime("src-health", "https://api.mobula.io/health", true),
		uptime("src-market", "https://api.mobula.io/api/1/market", true),
		uptime("src-quiet", "https://api.mobula.io/api/1/quiet", false),
		uptime("src-orphan", "https://api.mobula.io/api/1/orphan", true),
		uptime("dst-health", "https://api.zobula.xyz/health", false),
		uptime("dst-market", "https://api.zobula.xyz/api/1/market", true),
		uptime("dst-health-dup", "https://explorer-api.zobula.xyz/health", false),
		uptime("other", "https://example.com/health", false),
	}
}

func TestPlanCallSync(t *testing.T) {
	plan := PlanCallSync(syncRecords(), "mobula.io", "zobula.xyz")

	assert.Equal(t, 4, plan.SourceTotal)
	assert.Equal(t, 3, plan.TargetTotal)
	require.Len(t, plan.Pairs, 3)

	outcomes := map[string]SyncOutcome{}
	for _, p := range plan.Pairs {
		outcomes[p.Source.ID] = p.Outcome
	}
	assert.Equal(t, map[string]SyncOutcome{
		"src-health": OutcomeNeedsSync,
		"src-market": OutcomeAlreadySynced,
		"src-orphan": OutcomeUnmatched,
	}, outcomes)

	pending := plan.PendingUpdates()
	require.Len(t, pending, 1)
	assert.Equal(t, "dst-health", pending[0].Target.ID, "first target with the path wins")

	assert.Equal(t, 1, plan.Count(OutcomeNeedsSync))
	assert.Equal(t, 1, plan.Count(OutcomeAlreadySynced))
	assert.Equal(t, 1, plan.Count(OutcomeUnmatched))
}

type fakeUpdater struct {
	fail    map[string]bool
	updates map[string]bool
}

func (f *fakeUpdater) UpdateMonitorCall(_ context.Context, id string, call bool) error {
	if f.fail[id] {
		return errors.New("422 unprocessable")
	}
	if f.updates == nil {
		f.updates = map[string]bool{}
	}
	f.updates[id] = call
	return nil
}

func twoPendingRecords() []mstypes.MonitorRecord {
	return []mstypes.MonitorRecord{
		uptime("src-a", "https://api.mobula.io/a", true),
		uptime("src-b", "https://api.mobula.io/b", true),
		uptime("dst-a", "https://api.zobula.xyz/a", false),
		uptime("dst-b", "https://api.zobula.xyz/b", false),
	}
}

func newCallSync(updater *fakeUpdater, records []mstypes.MonitorRecord) *CallSync {
	return &CallSync{
		Source:       &fakeSource{records: records},
		Updater:      updater,
		SourceDomain: "mobula.io",
		TargetDomain: "zobula.xyz",
		Logger:       discardLogger,
	}
}

func TestCallSyncRun(t *testing.T) {
	t.Run("applies pending updates", func(t *testing.T) {
		updater := &fakeUpdater{}
		result, err := newCallSync(updater, twoPendingRecords()).Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, result.Updated)
		assert.Zero(t, result.Failed)
		assert.Equal(t, map[string]bool{"dst-a": true, "dst-b": true}, updater.updates)
	})

	t.Run("declined confirmation cancels without error", func(t *testing.T) {
		updater := &fakeUpdater{}
		s := newCallSync(updater, twoPendingRecords())
		s.Confirm = func(plan SyncPlan) (bool, error) {
			assert.Equal(t, 2, plan.Count(OutcomeNeedsSync))
			return false, nil
		}

		result, err := s.Run(context.Background())
		require.NoError(t, err)
		assert.True(t, result.Cancelled)
		assert.Zero(t, result.Updated)
		assert.Zero(t, result.Failed)
		assert.Empty(t, updater.updates)
	})

	t.Run("confirmation error aborts", func(t *testing.T) {
		updater := &fakeUpdater{}
		s := newCallSync(updater, twoPendingRecords())
		s.Confirm = func(SyncPlan) (bool, error) { return false, errors.New("read stdin: closed") }

		_, err := s.Run(context.Background())
		assert.Error(t, err)
		assert.Empty(t, updater.updates)
	})

	t.Run("dry run never updates", func(t *testing.T) {
		updater := &fakeUpdater{}
		s := newCallSync(updater, twoPendingRecords())
		s.DryRun = true
		s.Confirm = func(SyncPlan) (bool, error) {
			t.Fatal("confirmation must not be asked in a dry run")
			return false, nil
		}

		result, err := s.Run(context.Background())
		require.NoError(t, err)
		assert.Zero(t, result.Updated)
		assert.Empty(t, updater.updates)
	})

	t.Run("partial failure is counted", func(t *testing.T) {
		updater := &fakeUpdater{fail: map[string]bool{"dst-a": true}}
		result, err := newCallSync(updater, twoPendingRecords()).Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Updated)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("every update failing is an error", func(t *testing.T) {
		updater := &fakeUpdater{fail: map[string]bool{"dst-a": true, "dst-b": true}}
		result, err := newCallSync(updater, twoPendingRecords()).Run(context.Background())

		assert.ErrorIs(t, err, ErrAllUpdatesFailed)
		assert.Equal(t, 2, result.Failed)
	})

	t.Run("fetch failure aborts", func(t *testing.T) {
		s := newCallSync(&fakeUpdater{}, nil)
		s.Source = &fakeSource{err: errors.New("401 unauthorized")}

		_, err := s.Run(context.Background())
		assert.Error(t, err)
	})

	t.Run("nothing pending", func(t *testing.T) {
		updater := &fakeUpdater{}
		records := []mstypes.MonitorRecord{
			uptime("src-a", "https://api.mobula.io/a", true),
			uptime("dst-a", "https://api.zobula.xyz/a", true),
		}

		result, err := newCallSync(updater, records).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Plan.Count(OutcomeAlreadySynced))
		assert.Empty(t, updater.updates)
	})
}
