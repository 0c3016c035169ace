package monitors

import (
	"regexp"
	"strings"

	"github.com/ZEGIFTED/MS.MonitorOps/pkg/utils"
	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
)

var (
	alertBlock    = regexp.MustCompile(`(?s)\{\{\s*#is_alert\s*\}\}(.*?)\{\{\s*/is_alert\s*\}\}`)
	warningBlock  = regexp.MustCompile(`(?s)\{\{\s*#is_warning\s*\}\}(.*?)\{\{\s*/is_warning\s*\}\}`)
	recoveryBlock = regexp.MustCompile(`(?s)\{\{\s*#is_recovery\s*\}\}(.*?)\{\{\s*/is_recovery\s*\}\}`)
)

// NormalizeName turns a templated monitor name into plain display text for
// the given status. The result may be empty when the name is template only.
func NormalizeName(raw string, status mstypes.MonitorStatus, record mstypes.MonitorRecord) string {
	text := selectBranch(raw, status)

	active := record.ActiveGroups()
	for _, resolve := range placeholderResolvers {
		text = resolve(text, active)
	}

	return cleanupSeparators(text)
}

func selectBranch(text string, status mstypes.MonitorStatus) string {
	var candidates []*regexp.Regexp

	switch status {
	case mstypes.StatusAlerting, mstypes.StatusNoData:
		candidates = []*regexp.Regexp{alertBlock}
	case mstypes.StatusWarning:
		candidates = []*regexp.Regexp{warningBlock, alertBlock}
	default:
		candidates = []*regexp.Regexp{recoveryBlock}
	}

	for _, re := range candidates {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return text
}

// placeholderResolver either substitutes or deletes one kind of token.
type placeholderResolver func(text string, active []mstypes.SubGroup) string

var placeholderResolvers = []placeholderResolver{
	resolveValue,
	resolveThreshold,
	stripAttributePlaceholders,
	stripPlaceholders,
}

var (
	valueToken     = regexp.MustCompile(`\{\{\s*value\s*\}\}`)
	thresholdToken = regexp.MustCompile(`\{\{\s*threshold\s*\}\}`)

	// A dangling token takes its leading separator and unit suffix with it,
	// or the whole parenthetical it labels.
	valueWithContext       = tokenWithContext("value")
	thresholdWithContext   = tokenWithContext("threshold")
	valueParenthetical     = tokenParenthetical("value")
	thresholdParenthetical = tokenParenthetical("threshold")

	attributeToken = regexp.MustCompile(`\{\{[^{}]+\.name\s*\}\}`)
	anyToken       = regexp.MustCompile(`\{\{[^{}]*\}\}`)
)

func tokenWithContext(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?:\s*[-–—:]\s*)?\{\{\s*` + name + `\s*\}\}(?:\s*(?:%|ms\b|s\b|[KMGT]B\b))?`)
}

func tokenParenthetical(name string) *regexp.Regexp {
	return regexp.MustCompile(`\s*[(\[][^()\[\]{}]*\{\{\s*` + name + `\s*\}\}[^()\[\]{}]*[)\]]`)
}

func resolveValue(text string, active []mstypes.SubGroup) string {
	if len(active) == 1 && active[0].CurrentValue != nil {
		return valueToken.ReplaceAllLiteralString(text, utils.FormatValue(*active[0].CurrentValue))
	}
	text = valueParenthetical.ReplaceAllString(text, "")
	return valueWithContext.ReplaceAllString(text, "")
}

func resolveThreshold(text string, active []mstypes.SubGroup) string {
	if len(active) == 1 && active[0].Threshold != nil {
		return thresholdToken.ReplaceAllLiteralString(text, utils.FormatValue(*active[0].Threshold))
	}
	text = thresholdParenthetical.ReplaceAllString(text, "")
	return thresholdWithContext.ReplaceAllString(text, "")
}

func stripAttributePlaceholders(text string, _ []mstypes.SubGroup) string {
	return attributeToken.ReplaceAllString(text, "")
}

func stripPlaceholders(text string, _ []mstypes.SubGroup) string {
	return anyToken.ReplaceAllString(text, "")
}

var (
	longDash      = regexp.MustCompile(`\s*[–—]\s*`)
	emptyParens   = regexp.MustCompile(`\(\s*\)|\[\s*\]`)
	repeatedDash  = regexp.MustCompile(`(?:\s*-){2,}\s*`)
	spacedDash    = regexp.MustCompile(`\s+-\s+`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

const edgeSeparators = " \t\r\n-|,"

func cleanupSeparators(text string) string {
	text = longDash.ReplaceAllString(text, " - ")
	// nested pairs empty out from the inside
	for {
		stripped := emptyParens.ReplaceAllString(text, "")
		if stripped == text {
			break
		}
		text = stripped
	}
	text = repeatedDash.ReplaceAllString(text, " - ")
	text = spacedDash.ReplaceAllString(text, " - ")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.Trim(text, edgeSeparators)
}
