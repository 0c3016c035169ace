package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ZEGIFTED/MS.MonitorOps/pkg/constants"
	"github.com/ZEGIFTED/MS.MonitorOps/pkg/utils"
	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatadogConfig struct {
	APIKey   string `mapstructure:"api_key"`
	AppKey   string `mapstructure:"app_key"`
	Site     string `mapstructure:"site"`
	BaseURL  string `mapstructure:"base_url"` // overrides https://api.<site>
	PageSize int    `mapstructure:"page_size"`
}

type BetterStackConfig struct {
	APIToken     string   `mapstructure:"api_token"`
	BaseURL      string   `mapstructure:"base_url"`
	TeamID       string   `mapstructure:"team_id"`
	PageSize     int      `mapstructure:"page_size"`
	SourceDomain string   `mapstructure:"source_domain"` // monitors whose call flag is authoritative
	TargetDomain string   `mapstructure:"target_domain"` // duplicates that follow the source
	ProdHosts    []string `mapstructure:"prod_hosts"`
	PreprodHosts []string `mapstructure:"preprod_hosts"`
}

type ReportConfig struct {
	MaxGroupsPerMonitor int    `mapstructure:"max_groups_per_monitor"`
	OutputDir           string `mapstructure:"output_dir"`
	PDF                 bool   `mapstructure:"pdf"`
	CSV                 bool   `mapstructure:"csv"`
}

type LogConfig struct {
	File string `mapstructure:"file"` // empty keeps console-only logging
}

// Config is loaded once per process and passed by value.
type Config struct {
	Datadog     DatadogConfig       `mapstructure:"datadog"`
	BetterStack BetterStackConfig   `mapstructure:"betterstack"`
	Slack       mstypes.SlackConfig `mapstructure:"slack"`
	Email       mstypes.EmailConfig `mapstructure:"email"`
	Report      ReportConfig        `mapstructure:"report"`
	Log         LogConfig           `mapstructure:"log"`
	HTTPTimeout time.Duration       `mapstructure:"http_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("datadog.api_key", "")
	v.SetDefault("datadog.app_key", "")
	v.SetDefault("datadog.site", constants.DefaultDatadogSite)
	v.SetDefault("datadog.base_url", "")
	v.SetDefault("datadog.page_size", constants.DatadogPageSize)

	v.SetDefault("betterstack.api_token", "")
	v.SetDefault("betterstack.base_url", constants.DefaultBetterStackURL)
	v.SetDefault("betterstack.team_id", constants.DefaultBetterStackTeam)
	v.SetDefault("betterstack.page_size", constants.BetterStackPageSize)
	v.SetDefault("betterstack.source_domain", "mobula.io")
	v.SetDefault("betterstack.target_domain", "zobula.xyz")
	// explorer-api-2 is production while explorer-api on the same domain is not
	v.SetDefault("betterstack.prod_hosts", []string{"explorer-api-2.mobula.io", "api.mobula.io"})
	v.SetDefault("betterstack.preprod_hosts", []string{"explorer-api.mobula.io", "explorer-api.zobula.xyz", "api.zobula.xyz"})

	v.SetDefault("slack.enabled", true)
	v.SetDefault("slack.name", "Slack")
	v.SetDefault("slack.webhook_prod", "")
	v.SetDefault("slack.webhook_preprod", "")
	v.SetDefault("slack.footer_text", constants.DefaultFooterText)
	v.SetDefault("slack.notify_errors", false)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.name", "Email")
	v.SetDefault("email.smtp_server", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from_address", "")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.recipients", []string{})

	v.SetDefault("report.max_groups_per_monitor", constants.DefaultMaxGroupsPerMonitor)
	v.SetDefault("report.output_dir", constants.ReportsDir)
	v.SetDefault("report.pdf", false)
	v.SetDefault("report.csv", false)

	v.SetDefault("log.file", constants.LogFileName)
	v.SetDefault("http_timeout", constants.HTTPRequestTimeout)
}

// legacyEnv lists environment names accepted besides the derived KEY_NAME form.
var legacyEnv = map[string][]string{
	"slack.webhook_prod":    {"SLACK_WEBHOOK_URL_PRODUCTION"},
	"slack.webhook_preprod": {"SLACK_WEBHOOK_URL_STAGING", "SLACK_WEBHOOK_URL_PREPROD"},
	"betterstack.api_token": {"BETTERSTACK_API_TOKEN", "BETTER_STACK_API_TOKEN"},
}

// Load reads .env, then the optional config file, then the environment.
// An explicit path must exist; otherwise monitorops.yaml is searched in the
// usual places and may be absent.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.Logger.Printf("Warning: .env file not found. Using system environment variables.")
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("monitorops")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.monitorops")
		v.AddConfigPath("/etc/monitorops/")
	}

	// datadog.api_key -> DATADOG_API_KEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		envNames := append([]string{strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(append([]string{key}, envNames...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; using defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Notification exposes the delivery settings to the notification manager.
func (c Config) Notification() *mstypes.NotificationConfig {
	slackCfg := c.Slack
	emailCfg := c.Email
	return &mstypes.NotificationConfig{Slack: &slackCfg, Email: &emailCfg}
}

// ValidateDatadog checks the credentials of the monitor API.
func (c Config) ValidateDatadog() error {
	var missing []string
	if c.Datadog.APIKey == "" {
		missing = append(missing, "datadog.api_key")
	}
	if c.Datadog.AppKey == "" {
		missing = append(missing, "datadog.app_key")
	}
	return missingError(missing)
}

// ValidateBetterStack checks the credentials of the uptime API.
func (c Config) ValidateBetterStack() error {
	if c.BetterStack.APIToken == "" {
		return missingError([]string{"betterstack.api_token"})
	}
	return nil
}

// ValidateSync checks the domains used to pair duplicate monitors.
func (c Config) ValidateSync() error {
	if err := c.ValidateBetterStack(); err != nil {
		return err
	}
	if c.BetterStack.SourceDomain == "" || c.BetterStack.TargetDomain == "" {
		return errors.New("betterstack.source_domain and betterstack.target_domain are required")
	}
	if c.BetterStack.SourceDomain == c.BetterStack.TargetDomain {
		return errors.New("betterstack.source_domain and betterstack.target_domain must differ")
	}
	return nil
}

// ValidateSchedule checks a cron expression given on the command line.
func ValidateSchedule(expr string) error {
	if expr != "" && !utils.IsValidCron(expr) {
		return fmt.Errorf("invalid cron schedule %q", expr)
	}
	return nil
}

func missingError(keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return fmt.Errorf("missing required configuration: %s", strings.Join(keys, ", "))
}
