package messaging

import (
	"crypto/tls"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/ZEGIFTED/MS.MonitorOps/pkg/utils"
	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
	"github.com/go-mail/mail/v2"
)

// ReportMailer emails exported summary files to the configured recipients.
type ReportMailer struct {
	Config mstypes.EmailConfig
	Logger *log.Logger

	send func(*mail.Message) error
}

func NewReportMailer(cfg mstypes.EmailConfig, logger *log.Logger) *ReportMailer {
	m := &ReportMailer{Config: cfg, Logger: logger}

	dialer := mail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.Username, cfg.Password)
	if cfg.UseTLS {
		dialer.TLSConfig = &tls.Config{ServerName: cfg.SMTPServer}
		dialer.StartTLSPolicy = mail.MandatoryStartTLS
	} else {
		dialer.StartTLSPolicy = mail.OpportunisticStartTLS
	}
	m.send = func(msg *mail.Message) error {
		return dialer.DialAndSend(msg)
	}

	return m
}

// BuildReportMessage assembles the email for one exported report.
func (m *ReportMailer) BuildReportMessage(report mstypes.SummaryReport, runID string, attachments []string) *mail.Message {
	env := strings.ToUpper(string(report.Environment))

	msg := mail.NewMessage()
	msg.SetHeader("From", m.Config.FromAddress)
	msg.SetHeader("To", m.Config.Recipients...)
	msg.SetHeader("Subject", fmt.Sprintf("%s Alert Summary - %.1f%% Operational", env, report.HealthyPercent))

	var body strings.Builder
	fmt.Fprintf(&body, "<h3>%s Alert Summary</h3>", env)
	fmt.Fprintf(&body, "<p>Total: %d<br>Operational: %d<br>Down: %d<br>Paused: %d<br>Uptime: %.1f%%</p>",
		report.Total, report.Healthy, report.Unhealthy, report.Paused, report.HealthyPercent)
	if len(attachments) > 0 {
		names := make([]string, 0, len(attachments))
		for _, a := range attachments {
			names = append(names, filepath.Base(a))
		}
		fmt.Fprintf(&body, "<p>Attached: %s</p>", strings.Join(names, ", "))
	}
	fmt.Fprintf(&body, "<p><small>run %s</small></p>", runID)
	msg.SetBody("text/html", body.String())

	for _, a := range attachments {
		msg.Attach(a)
	}
	return msg
}

// SendReport builds and sends the report email.
func (m *ReportMailer) SendReport(report mstypes.SummaryReport, runID string, attachments []string) error {
	if !m.Config.Enabled {
		return nil
	}
	if len(m.Config.Recipients) == 0 {
		return fmt.Errorf("no report recipients configured")
	}

	if err := m.send(m.BuildReportMessage(report, runID, attachments)); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}

	logger := m.Logger
	if logger == nil {
		logger = utils.Logger
	}
	logger.Printf("[DELIVERY] %s report emailed to %d recipients", report.Environment, len(m.Config.Recipients))
	return nil
}
