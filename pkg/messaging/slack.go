package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ZEGIFTED/MS.MonitorOps/pkg/constants"
	"github.com/ZEGIFTED/MS.MonitorOps/pkg/utils"
	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
	"github.com/slack-go/slack"
)

const defaultTitle = "Infrastructure Health"

// RenderOptions controls the non-report parts of a summary message.
type RenderOptions struct {
	Title      string
	FooterText string
	RunID      string
	Timestamp  time.Time
	// MaxBlocks and MaxSectionText default to the Block Kit limits.
	MaxBlocks      int
	MaxSectionText int
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Title == "" {
		o.Title = defaultTitle
	}
	if o.FooterText == "" {
		o.FooterText = constants.DefaultFooterText
	}
	if o.Timestamp.IsZero() {
		o.Timestamp = time.Now()
	}
	if o.MaxBlocks <= 0 {
		o.MaxBlocks = constants.SlackMaxBlocks
	}
	if o.MaxSectionText <= 0 {
		o.MaxSectionText = constants.SlackMaxSectionText
	}
	return o
}

// HealthEmoji grades a healthy percentage.
func HealthEmoji(percent float64) string {
	switch {
	case percent >= 95:
		return "✅"
	case percent >= 80:
		return "⚠️"
	default:
		return "🚨"
	}
}

func healthText(percent float64) string {
	switch {
	case percent >= 95:
		return "Operational"
	case percent >= 80:
		return "Issues Detected"
	default:
		return "Critical Issues"
	}
}

// StatusEmoji marks a monitor line.
func StatusEmoji(status mstypes.MonitorStatus) string {
	switch status {
	case mstypes.StatusAlerting:
		return "🔴"
	case mstypes.StatusWarning:
		return "🟡"
	case mstypes.StatusNoData:
		return "⚪"
	default:
		return "⚫"
	}
}

// RenderSlackMessage builds the Block Kit summary of one environment report.
// The result never exceeds the block and section text limits; categories that
// do not fit are summarized in a single context line.
func RenderSlackMessage(report mstypes.SummaryReport, opts RenderOptions) *slack.WebhookMessage {
	opts = opts.withDefaults()
	env := strings.ToUpper(string(report.Environment))
	headline := fmt.Sprintf("%s %s %s - %.1f%% Operational", HealthEmoji(report.HealthyPercent), env, opts.Title, report.HealthyPercent)

	blocks := []slack.Block{
		slack.NewHeaderBlock(plainText(truncateRunes(headline, constants.SlackMaxHeaderText))),
		slack.NewSectionBlock(markdown(fmt.Sprintf(":bar_chart: *System Overview - %s*", healthText(report.HealthyPercent))), nil, nil),
		slack.NewSectionBlock(nil, statFields(report), nil),
		slack.NewDividerBlock(),
	}

	footer := slack.NewContextBlock("", markdown(footerText(opts)))

	if len(report.Categories) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(markdown(fmt.Sprintf(
			":white_check_mark: *%s Environment - All Systems Operational*\n\nNo active alerts. All services are running smoothly!", env)), nil, nil))
	} else {
		blocks = append(blocks, slack.NewSectionBlock(markdown(fmt.Sprintf(":office: *%s Environment*", env)), nil, nil))

		// divider, footer and a possible overflow line
		budget := opts.MaxBlocks - 3
		for i, category := range report.Categories {
			categoryBlocks := renderCategory(category, opts.MaxSectionText)
			if len(blocks)+len(categoryBlocks) > budget {
				remaining := len(report.Categories) - i
				blocks = append(blocks, slack.NewContextBlock("", markdown(fmt.Sprintf("_%d more categories not shown_", remaining))))
				break
			}
			blocks = append(blocks, categoryBlocks...)
		}
	}

	blocks = append(blocks, slack.NewDividerBlock(), footer)

	return &slack.WebhookMessage{
		Text:   headline,
		Blocks: &slack.Blocks{BlockSet: blocks},
	}
}

func statFields(report mstypes.SummaryReport) []*slack.TextBlockObject {
	fields := []*slack.TextBlockObject{
		markdown(fmt.Sprintf("*Total Monitors*\n%d", report.Total)),
		markdown(fmt.Sprintf("*Operational*\n▸ %d", report.Healthy)),
		markdown(fmt.Sprintf("*Down*\n:small_red_triangle_down: %d", report.Unhealthy)),
	}
	if report.Paused > 0 {
		fields = append(fields, markdown(fmt.Sprintf("*Paused*\n:double_vertical_bar: %d", report.Paused)))
	}
	return append(fields, markdown(fmt.Sprintf("*Uptime*\n%.1f%%", report.HealthyPercent)))
}

func renderCategory(category mstypes.CategoryGroup, maxText int) []slack.Block {
	blocks := []slack.Block{
		slack.NewSectionBlock(markdown(fmt.Sprintf("🔴 *%s*", category.Category)), nil, nil),
	}

	var lines []string
	for _, m := range category.Monitors {
		lines = append(lines, monitorLines(m)...)
	}

	for _, chunk := range chunkLines(lines, maxText) {
		blocks = append(blocks, slack.NewSectionBlock(markdown(chunk), nil, nil))
	}
	return blocks
}

func monitorLines(m mstypes.ReportedMonitor) []string {
	name := escapeMarkdown(m.DisplayName)
	if m.Record.Link != "" {
		name = fmt.Sprintf("<%s|%s>", m.Record.Link, name)
	}

	lines := []string{fmt.Sprintf("• %s %s", StatusEmoji(m.Record.Status), name)}
	for _, g := range m.Groups {
		lines = append(lines, "    ↳ "+escapeMarkdown(g))
	}
	if m.HiddenGroups > 0 {
		lines = append(lines, fmt.Sprintf("    ↳ … %d more", m.HiddenGroups))
	}
	return lines
}

// chunkLines packs lines into newline-joined chunks of at most maxText
// characters. A single oversized line is truncated.
func chunkLines(lines []string, maxText int) []string {
	var chunks []string
	var current strings.Builder

	for _, line := range lines {
		line = truncateRunes(line, maxText)

		if current.Len() > 0 && utf8.RuneCountInString(current.String())+1+utf8.RuneCountInString(line) > maxText {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

var markdownEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func footerText(opts RenderOptions) string {
	text := fmt.Sprintf("%s | %s", opts.FooterText, opts.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
	if opts.RunID != "" {
		text += " | run " + opts.RunID
	}
	return text
}

func markdown(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, true, false)
}

// SlackNotifier delivers summaries and error notices through incoming webhooks.
type SlackNotifier struct {
	Manager    *NotificationManager
	HTTPClient *http.Client
	Title      string
	// DryRun logs the rendered payload instead of posting it.
	DryRun bool
	Logger *log.Logger
}

// DeliverReport posts the report to the webhook of its environment.
func (n *SlackNotifier) DeliverReport(ctx context.Context, report mstypes.SummaryReport, runID string) error {
	msg := RenderSlackMessage(report, RenderOptions{
		Title:      n.Title,
		FooterText: n.Manager.FooterText(),
		RunID:      runID,
	})

	if n.DryRun {
		payload, err := json.MarshalIndent(msg, "", "  ")
		if err != nil {
			return err
		}
		n.logger().Printf("[DELIVERY] dry run, %s payload:\n%s", report.Environment, payload)
		return nil
	}

	webhook, err := n.Manager.WebhookFor(report.Environment)
	if err != nil {
		return err
	}
	return n.post(ctx, webhook, msg)
}

// NotifyError posts a short failure notice to the production webhook when
// error notifications are enabled.
func (n *SlackNotifier) NotifyError(ctx context.Context, source string, cause error) error {
	if !n.Manager.GetSlackConfig().NotifyErrors || n.DryRun {
		return nil
	}

	webhook, err := n.Manager.WebhookFor(mstypes.EnvProduction)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(":x: *Monitor System Error*\n*Source:* %s\n*Error:* ```%s```", source, truncateRunes(cause.Error(), 2000))
	msg := &slack.WebhookMessage{
		Text: ":x: Monitor System Error",
		Blocks: &slack.Blocks{BlockSet: []slack.Block{
			slack.NewSectionBlock(markdown(text), nil, nil),
			slack.NewContextBlock("", markdown(footerText(RenderOptions{
				FooterText: n.Manager.FooterText(),
				Timestamp:  time.Now(),
			}))),
		}},
	}
	return n.post(ctx, webhook, msg)
}

func (n *SlackNotifier) post(ctx context.Context, webhook string, msg *slack.WebhookMessage) error {
	client := n.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: constants.HTTPRequestTimeout}
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, webhook, client, msg); err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	return nil
}

func (n *SlackNotifier) logger() *log.Logger {
	if n.Logger == nil {
		return utils.Logger
	}
	return n.Logger
}
