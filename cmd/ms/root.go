package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZEGIFTED/MS.MonitorOps/internal/config"
	"github.com/ZEGIFTED/MS.MonitorOps/pkg/messaging"
	"github.com/ZEGIFTED/MS.MonitorOps/pkg/providers/betterstack"
	"github.com/ZEGIFTED/MS.MonitorOps/pkg/providers/datadog"
	"github.com/ZEGIFTED/MS.MonitorOps/pkg/utils"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type app struct {
	configPath string
	logFile    string
	cfg        *config.Config

	stdin  io.Reader
	stdout io.Writer
	// isTerminal reports whether stdin can answer a prompt.
	isTerminal func(io.Reader) bool
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{
		stdin:      in,
		stdout:     out,
		isTerminal: stdinIsTerminal,
	}

	cmd := &cobra.Command{
		Use:           "ms",
		Short:         "Monitor summaries and uptime monitor reconciliation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			utils.CloseLogger()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a config file (default: monitorops.yaml if present)")
	cmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "rotating log file (overrides log.file)")

	cmd.AddCommand(
		newAlertSummaryCmd(a),
		newUptimeSummaryCmd(a),
		newListAlertsCmd(a),
		newInspectMonitorCmd(a),
		newSyncCallCmd(a),
	)

	return cmd
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logFile := cfg.Log.File
	if a.logFile != "" {
		logFile = a.logFile
	}
	return utils.InitLogger(logFile)
}

func (a *app) httpClient() *http.Client {
	return &http.Client{Timeout: a.cfg.HTTPTimeout}
}

func (a *app) datadogClient() *datadog.Client {
	return datadog.NewClient(datadog.Options{
		APIKey:     a.cfg.Datadog.APIKey,
		AppKey:     a.cfg.Datadog.AppKey,
		Site:       a.cfg.Datadog.Site,
		BaseURL:    a.cfg.Datadog.BaseURL,
		PageSize:   a.cfg.Datadog.PageSize,
		HTTPClient: a.httpClient(),
	})
}

func (a *app) betterStackClient() *betterstack.Client {
	return betterstack.NewClient(betterstack.Options{
		APIToken:   a.cfg.BetterStack.APIToken,
		BaseURL:    a.cfg.BetterStack.BaseURL,
		TeamID:     a.cfg.BetterStack.TeamID,
		PageSize:   a.cfg.BetterStack.PageSize,
		HTTPClient: a.httpClient(),
	})
}

func (a *app) notificationManager() *messaging.NotificationManager {
	return messaging.NewNotificationManager(a.cfg.Notification(), utils.Logger)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func stdinIsTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
