package constants

import (
	"time"
)

const (
	LogPath     = "logs"
	LogFileName = LogPath + "/ms_monitor_ops.log"
	ReportsDir  = "reports"
)

const (
	DefaultDatadogSite     = "datadoghq.eu"
	DefaultBetterStackURL  = "https://uptime.betterstack.com/api/v2"
	DefaultBetterStackTeam = "t161704"

	DatadogPageSize     = 1000
	BetterStackPageSize = 100

	HTTPRequestTimeout = 30 * time.Second
	CronShutdownWait   = 30 * time.Second
)

// Active alert filter used by the monitor search endpoint.
const DefaultAlertSearchQuery = `status:(Alert OR Warn OR "No Data") AND (env:prod OR env:preprod)`

const (
	// Block Kit limits for a single webhook message.
	SlackMaxBlocks      = 50
	SlackMaxSectionText = 3000
	SlackMaxHeaderText  = 150

	DefaultMaxGroupsPerMonitor = 10
	DefaultFooterText          = "Mobula Monitoring System"
)

// Report colors (RGB)
var (
	HeaderBg    = [3]int{0, 51, 102}
	TitleBg     = [3]int{0, 76, 153}
	TableBg     = [3]int{235, 240, 245}
	AlertColor  = [3]int{204, 0, 0}
	WarnColor   = [3]int{255, 165, 0}
	NormalColor = [3]int{0, 153, 76}
)
