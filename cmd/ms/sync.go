package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ZEGIFTED/MS.MonitorOps/monitors"
	"github.com/ZEGIFTED/MS.MonitorOps/pkg/utils"
	"github.com/spf13/cobra"
)

func newSyncCallCmd(a *app) *cobra.Command {
	var yes, dryRun bool

	cmd := &cobra.Command{
		Use:   "sync-call",
		Short: "Copy call escalation from source-domain monitors to their duplicates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ValidateSync(); err != nil {
				return err
			}

			client := a.betterStackClient()
			sync := &monitors.CallSync{
				Source:       client,
				Updater:      client,
				SourceDomain: a.cfg.BetterStack.SourceDomain,
				TargetDomain: a.cfg.BetterStack.TargetDomain,
				DryRun:       dryRun,
				Logger:       utils.Logger,
			}
			if !yes {
				sync.Confirm = a.confirmSync
			}

			_, err := sync.Run(cmd.Context())
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "apply updates without asking")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the plan without updating anything")
	return cmd
}

// confirmSync asks the operator on stdin. A non-interactive stdin declines.
func (a *app) confirmSync(plan monitors.SyncPlan) (bool, error) {
	if !a.isTerminal(a.stdin) {
		utils.Logger.Println("[SYNC] stdin is not a terminal; pass --yes to apply updates")
		return false, nil
	}

	fmt.Fprintf(a.stdout, "Update call escalation on %d monitors? (yes/no): ", plan.Count(monitors.OutcomeNeedsSync))
	return readConfirmation(a.stdin)
}

func readConfirmation(in io.Reader) (bool, error) {
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y":
		return true, nil
	default:
		return false, nil
	}
}
