package messaging

import (
	"errors"
	"fmt"
	"log"

	"github.com/ZEGIFTED/MS.MonitorOps/pkg/constants"
	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
)

var ErrNoWebhook = errors.New("no webhook configured for environment")

// NotificationManager handles access to the notification configuration
type NotificationManager struct {
	Config *mstypes.NotificationConfig
	Logger *log.Logger
}

// NewNotificationManager wraps an already loaded configuration.
func NewNotificationManager(cfg *mstypes.NotificationConfig, logger *log.Logger) *NotificationManager {
	if cfg == nil {
		cfg = &mstypes.NotificationConfig{}
	}
	return &NotificationManager{Config: cfg, Logger: logger}
}

// Validate checks if the loaded configuration is valid
func (cfgManager *NotificationManager) Validate() error {
	if cfgManager.Config.Email == nil && cfgManager.Config.Slack == nil {
		return errors.New("notification config validation failed: no platform configured")
	}

	// Validate Email configuration if enabled
	if email := cfgManager.Config.Email; email != nil && email.Enabled {
		if email.SMTPServer == "" || email.SMTPPort == 0 {
			return errors.New("invalid email configuration: SMTP server and port are required")
		}
		if email.FromAddress == "" || len(email.Recipients) == 0 {
			return errors.New("invalid email configuration: sender and recipients are required")
		}
	}

	// Validate Slack configuration if enabled
	if slackCfg := cfgManager.Config.Slack; slackCfg != nil && slackCfg.Enabled {
		if slackCfg.WebhookProd == "" && slackCfg.WebhookPreprod == "" {
			return errors.New("invalid Slack configuration: at least one webhook URL is required")
		}
	}

	return nil
}

// WebhookFor returns the Slack webhook of an environment.
func (cfgManager *NotificationManager) WebhookFor(env mstypes.EnvironmentLabel) (string, error) {
	slackCfg := cfgManager.GetSlackConfig()

	var webhook string
	switch env {
	case mstypes.EnvProduction:
		webhook = slackCfg.WebhookProd
	case mstypes.EnvPreProduction:
		webhook = slackCfg.WebhookPreprod
	}

	if webhook == "" {
		return "", fmt.Errorf("%w: %s", ErrNoWebhook, env)
	}
	return webhook, nil
}

// FooterText returns the configured message footer.
func (cfgManager *NotificationManager) FooterText() string {
	if footer := cfgManager.GetSlackConfig().FooterText; footer != "" {
		return footer
	}
	return constants.DefaultFooterText
}

// GetEmailConfig returns the email configuration
func (cfgManager *NotificationManager) GetEmailConfig() mstypes.EmailConfig {
	if cfgManager.Config.Email == nil {
		return mstypes.EmailConfig{}
	}
	return *cfgManager.Config.Email
}

// GetSlackConfig returns the Slack configuration
func (cfgManager *NotificationManager) GetSlackConfig() mstypes.SlackConfig {
	if cfgManager.Config.Slack == nil {
		return mstypes.SlackConfig{}
	}
	return *cfgManager.Config.Slack
}
