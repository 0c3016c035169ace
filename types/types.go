package mstypes

import (
	"sort"
)

// MonitorStatus is the normalized health state of a monitor or one of its sub-groups.
type MonitorStatus string

const (
	StatusHealthy  MonitorStatus = "Healthy"
	StatusAlerting MonitorStatus = "Alerting"
	StatusWarning  MonitorStatus = "Warning"
	StatusNoData   MonitorStatus = "NoData"
	StatusUnknown  MonitorStatus = "Unknown"
)

// IsActive reports whether the status is one that raises an alert.
func (s MonitorStatus) IsActive() bool {
	return s == StatusAlerting || s == StatusWarning || s == StatusNoData
}

// EnvironmentLabel is the derived environment of a monitor.
type EnvironmentLabel string

const (
	EnvProduction    EnvironmentLabel = "prod"
	EnvPreProduction EnvironmentLabel = "preprod"
	EnvUnknown       EnvironmentLabel = "unknown"
)

// ServiceCategory is an uppercase grouping key such as REDIS or SYSTEM.
type ServiceCategory string

const (
	CategoryRedisPubSub ServiceCategory = "REDIS_PUBSUB"
	CategoryRedis       ServiceCategory = "REDIS"
	CategoryPostgres    ServiceCategory = "POSTGRES"
	CategoryRabbitMQ    ServiceCategory = "RABBITMQ"
	CategoryKubernetes  ServiceCategory = "KUBERNETES"
	CategorySystem      ServiceCategory = "SYSTEM"
	CategoryOther       ServiceCategory = "OTHER"
)

// SubGroup is the state of one dimension (host, pod, ...) of a multi-target monitor.
type SubGroup struct {
	Name         string        `json:"name"`
	Status       MonitorStatus `json:"status"`
	CurrentValue *float64      `json:"current_value,omitempty"`
	Threshold    *float64      `json:"threshold,omitempty"`
}

// MonitorRecord is one monitor as fetched from a provider. Records live for a
// single run and are never persisted.
type MonitorRecord struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Tags    []string            `json:"tags"`
	Query   string              `json:"query"`
	URL     string              `json:"url,omitempty"`
	Metrics []string            `json:"metrics,omitempty"`
	Status  MonitorStatus       `json:"status"`
	Groups  map[string]SubGroup `json:"groups,omitempty"`
	Paused  bool                `json:"paused"`

	// Link is the provider deep-link used when rendering.
	Link string `json:"link,omitempty"`
	// Call is the uptime provider's phone-call escalation flag.
	Call bool `json:"call"`
}

// ActiveGroups returns the alerting, warning and no-data sub-groups sorted by name.
func (r MonitorRecord) ActiveGroups() []SubGroup {
	var active []SubGroup
	for name, g := range r.Groups {
		if !g.Status.IsActive() {
			continue
		}
		if g.Name == "" {
			g.Name = name
		}
		active = append(active, g)
	}

	sort.Slice(active, func(i, j int) bool {
		return active[i].Name < active[j].Name
	})

	return active
}

// ReportedMonitor is an unhealthy monitor ready to render.
type ReportedMonitor struct {
	Record       MonitorRecord `json:"record"`
	DisplayName  string        `json:"display_name"`
	Groups       []string      `json:"groups,omitempty"`
	HiddenGroups int           `json:"hidden_groups,omitempty"`
}

// CategoryGroup holds the unhealthy monitors of one service category.
type CategoryGroup struct {
	Category ServiceCategory   `json:"category"`
	Monitors []ReportedMonitor `json:"monitors"`
}

// SummaryReport is the per-environment rollup that gets rendered and delivered.
type SummaryReport struct {
	Environment    EnvironmentLabel `json:"environment"`
	Total          int              `json:"total"`
	Healthy        int              `json:"healthy"`
	Unhealthy      int              `json:"unhealthy"`
	Paused         int              `json:"paused"`
	HealthyPercent float64          `json:"healthy_percent"`
	Categories     []CategoryGroup  `json:"categories"`
}

// UnhealthyMonitors flattens the category groups in display order.
func (r SummaryReport) UnhealthyMonitors() []ReportedMonitor {
	var out []ReportedMonitor
	for _, c := range r.Categories {
		out = append(out, c.Monitors...)
	}
	return out
}

// NotificationPlatform represents the type of notification service
type NotificationPlatform string

const (
	Email NotificationPlatform = "email"
	Slack NotificationPlatform = "slack"
)

// BaseConfig contains common configuration fields
type BaseConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Name    string `json:"name" mapstructure:"name"`
}

// EmailConfig contains email-specific configuration
type EmailConfig struct {
	BaseConfig  `mapstructure:",squash"`
	SMTPServer  string   `json:"smtp_server" mapstructure:"smtp_server"`
	SMTPPort    int      `json:"smtp_port" mapstructure:"smtp_port"`
	Username    string   `json:"username" mapstructure:"username"`
	Password    string   `json:"password" mapstructure:"password"`
	FromAddress string   `json:"from_address" mapstructure:"from_address"`
	UseTLS      bool     `json:"use_tls" mapstructure:"use_tls"`
	Recipients  []string `json:"recipients" mapstructure:"recipients"`
}

// SlackConfig contains Slack-specific configuration
type SlackConfig struct {
	BaseConfig     `mapstructure:",squash"`
	WebhookProd    string `json:"webhook_prod" mapstructure:"webhook_prod"`
	WebhookPreprod string `json:"webhook_preprod" mapstructure:"webhook_preprod"`
	FooterText     string `json:"footer_text" mapstructure:"footer_text"`
	NotifyErrors   bool   `json:"notify_errors" mapstructure:"notify_errors"`
}

// NotificationConfig holds all platform configurations
type NotificationConfig struct {
	Email *EmailConfig `json:"email,omitempty"`
	Slack *SlackConfig `json:"slack,omitempty"`
}
