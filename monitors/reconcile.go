package monitors

import (
	"context"
	"log"
	"strings"

	"github.com/ZEGIFTED/MS.MonitorOps/pkg/utils"
	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
)

// ExtractPath returns the part of a URL after its host, "/" when there is none.
// Query strings are kept so "/a?x=1" and "/a" are different paths.
func ExtractPath(rawURL string) string {
	if _, rest, found := strings.Cut(rawURL, "://"); found {
		rawURL = rest
	}
	if _, path, found := strings.Cut(rawURL, "/"); found {
		return "/" + path
	}
	return "/"
}

type SyncOutcome string

const (
	OutcomeNeedsSync     SyncOutcome = "needs-sync"
	OutcomeAlreadySynced SyncOutcome = "already-synced"
	OutcomeUnmatched     SyncOutcome = "unmatched"
)

// SyncPair is one source monitor with call escalation and its duplicate, if any.
type SyncPair struct {
	Source  mstypes.MonitorRecord
	Target  *mstypes.MonitorRecord
	Outcome SyncOutcome
}

// SyncPlan lists every source monitor considered for call reconciliation.
type SyncPlan struct {
	SourceTotal int
	TargetTotal int
	Pairs       []SyncPair
}

// Count returns the number of pairs with the given outcome.
func (p SyncPlan) Count(outcome SyncOutcome) int {
	n := 0
	for _, pair := range p.Pairs {
		if pair.Outcome == outcome {
			n++
		}
	}
	return n
}

// PendingUpdates returns the pairs whose target must be patched.
func (p SyncPlan) PendingUpdates() []SyncPair {
	var pending []SyncPair
	for _, pair := range p.Pairs {
		if pair.Outcome == OutcomeNeedsSync {
			pending = append(pending, pair)
		}
	}
	return pending
}

// PlanCallSync matches source-domain monitors that have call escalation to
// target-domain monitors by URL path. The first target with the same path wins.
func PlanCallSync(records []mstypes.MonitorRecord, sourceDomain, targetDomain string) SyncPlan {
	var plan SyncPlan
	var sources []mstypes.MonitorRecord
	targets := make(map[string]mstypes.MonitorRecord)

	for _, record := range records {
		switch {
		case strings.Contains(record.URL, sourceDomain):
			plan.SourceTotal++
			if record.Call {
				sources = append(sources, record)
			}
		case strings.Contains(record.URL, targetDomain):
			plan.TargetTotal++
			path := ExtractPath(record.URL)
			if _, seen := targets[path]; !seen {
				targets[path] = record
			}
		}
	}

	for _, source := range sources {
		pair := SyncPair{Source: source, Outcome: OutcomeUnmatched}

		if target, ok := targets[ExtractPath(source.URL)]; ok {
			pair.Target = &target
			pair.Outcome = OutcomeNeedsSync
			if target.Call == source.Call {
				pair.Outcome = OutcomeAlreadySynced
			}
		}

		plan.Pairs = append(plan.Pairs, pair)
	}

	return plan
}

// CallUpdater patches the call escalation flag of one monitor.
type CallUpdater interface {
	UpdateMonitorCall(ctx context.Context, id string, call bool) error
}

// SyncResult counts the outcome of applied updates.
type SyncResult struct {
	Plan    SyncPlan
	Updated int
	Failed  int

	// Cancelled is set when the confirmation was declined.
	Cancelled bool
}

// CallSync reconciles the call flag between duplicate uptime monitors.
type CallSync struct {
	Source       MonitorSource
	Updater      CallUpdater
	SourceDomain string
	TargetDomain string

	// Confirm is asked before any update. Nil means proceed.
	Confirm func(plan SyncPlan) (bool, error)
	DryRun  bool

	Logger *log.Logger
}

// Run fetches, plans and applies. Individual update failures are counted
// and do not stop the run; it only fails when every attempted update fails.
// A declined confirmation ends the run without updates and without error.
func (s *CallSync) Run(ctx context.Context) (SyncResult, error) {
	logger := s.Logger
	if logger == nil {
		logger = utils.Logger
	}

	logger.Println("[SYNC] fetching uptime monitors")
	records, err := s.Source.FetchMonitors(ctx)
	if err != nil {
		return SyncResult{}, err
	}

	plan := PlanCallSync(records, s.SourceDomain, s.TargetDomain)
	result := SyncResult{Plan: plan}
	logPlan(logger, plan, s.SourceDomain, s.TargetDomain)

	pending := plan.PendingUpdates()
	if len(pending) == 0 {
		logger.Println("[SYNC] all duplicates are in sync")
		return result, nil
	}
	if s.DryRun {
		logger.Printf("[SYNC] dry run: %d monitors would be updated", len(pending))
		return result, nil
	}

	if s.Confirm != nil {
		ok, err := s.Confirm(plan)
		if err != nil {
			return result, err
		}
		if !ok {
			logger.Println("[SYNC] synchronization cancelled")
			result.Cancelled = true
			return result, nil
		}
	}

	for _, pair := range pending {
		if err := s.Updater.UpdateMonitorCall(ctx, pair.Target.ID, pair.Source.Call); err != nil {
			result.Failed++
			logger.Printf("[SYNC] update %s (%s) failed: %v", pair.Target.ID, pair.Target.URL, err)
			continue
		}
		result.Updated++
		logger.Printf("[SYNC] updated %s (%s) call=%t", pair.Target.ID, pair.Target.URL, pair.Source.Call)
	}

	logger.Printf("[SYNC] done: %d updated, %d failed", result.Updated, result.Failed)

	if result.Updated == 0 && result.Failed > 0 {
		return result, ErrAllUpdatesFailed
	}
	return result, nil
}

func logPlan(logger *log.Logger, plan SyncPlan, sourceDomain, targetDomain string) {
	logger.Printf("[SYNC] %s monitors: %d, %s monitors: %d, with call escalation: %d",
		sourceDomain, plan.SourceTotal, targetDomain, plan.TargetTotal, len(plan.Pairs))
	logger.Printf("[SYNC] needs sync: %d, already synced: %d, unmatched: %d",
		plan.Count(OutcomeNeedsSync), plan.Count(OutcomeAlreadySynced), plan.Count(OutcomeUnmatched))

	for _, pair := range plan.Pairs {
		switch pair.Outcome {
		case OutcomeUnmatched:
			logger.Printf("[SYNC] no duplicate for %s (%s)", pair.Source.Name, pair.Source.URL)
		case OutcomeNeedsSync:
			logger.Printf("[SYNC] %s: %s call=%t -> %s call=%t", pair.Source.Name,
				pair.Source.URL, pair.Source.Call, pair.Target.URL, pair.Target.Call)
		}
	}
}
