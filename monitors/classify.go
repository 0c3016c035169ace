package monitors

import (
	"net/url"
	"strings"

	mstypes "github.com/ZEGIFTED/MS.MonitorOps/types"
)

// EnvironmentRule inspects one facet of a record. ok is false when the rule
// has nothing to say and the next rule should be tried.
type EnvironmentRule func(record mstypes.MonitorRecord) (label mstypes.EnvironmentLabel, ok bool)

// DefaultEnvironmentRules is the tag > query > name fallback chain.
// Every rule checks pre-production before production because "PROD" is a
// substring of "PREPROD".
var DefaultEnvironmentRules = []EnvironmentRule{
	EnvironmentFromTags,
	EnvironmentFromQuery,
	EnvironmentFromName,
}

// ClassifyEnvironment runs the default chain.
func ClassifyEnvironment(record mstypes.MonitorRecord) mstypes.EnvironmentLabel {
	return ClassifyEnvironmentWith(DefaultEnvironmentRules, record)
}

// ClassifyEnvironmentWith returns the label of the first rule that matches,
// or EnvUnknown.
func ClassifyEnvironmentWith(rules []EnvironmentRule, record mstypes.MonitorRecord) mstypes.EnvironmentLabel {
	for _, rule := range rules {
		if label, ok := rule(record); ok {
			return label
		}
	}
	return mstypes.EnvUnknown
}

func EnvironmentFromTags(record mstypes.MonitorRecord) (mstypes.EnvironmentLabel, bool) {
	for _, tag := range record.Tags {
		key, value, found := strings.Cut(strings.ToLower(strings.TrimSpace(tag)), ":")
		if !found || key != "env" {
			continue
		}

		if strings.Contains(value, "preprod") || strings.Contains(value, "pre-prod") || value == "staging" {
			return mstypes.EnvPreProduction, true
		}
		if value == "prod" || value == "production" {
			return mstypes.EnvProduction, true
		}
	}
	return "", false
}

func EnvironmentFromQuery(record mstypes.MonitorRecord) (mstypes.EnvironmentLabel, bool) {
	text := strings.ToLower(record.Query + " " + record.URL)

	if containsAny(text, "env:preprod", "env:pre-prod", "env:staging") {
		return mstypes.EnvPreProduction, true
	}
	if containsAny(text, "env:prod", "env:production") {
		return mstypes.EnvProduction, true
	}
	return "", false
}

func EnvironmentFromName(record mstypes.MonitorRecord) (mstypes.EnvironmentLabel, bool) {
	name := strings.ToUpper(record.Name)

	if strings.Contains(name, "PREPROD") || strings.Contains(name, "PRE-PROD") {
		return mstypes.EnvPreProduction, true
	}
	if strings.Contains(name, "PROD") && !strings.Contains(name, "PREPROD") {
		return mstypes.EnvProduction, true
	}
	return "", false
}

// EnvironmentFromHosts builds a rule that labels uptime monitors by the host
// of their URL. A URL matches a host entry when it contains it.
func EnvironmentFromHosts(prodHosts, preprodHosts []string) EnvironmentRule {
	return func(record mstypes.MonitorRecord) (mstypes.EnvironmentLabel, bool) {
		target := strings.ToLower(record.URL)
		if target == "" {
			return "", false
		}

		if u, err := url.Parse(ensureScheme(target)); err == nil && u.Host != "" {
			target = u.Host + u.Path
		}

		if containsAny(target, preprodHosts...) {
			return mstypes.EnvPreProduction, true
		}
		if containsAny(target, prodHosts...) {
			return mstypes.EnvProduction, true
		}
		return "", false
	}
}

type categoryKeywords struct {
	category mstypes.ServiceCategory
	keywords []string
}

// serviceKeywords is ordered; the first entry with a matching keyword wins.
var serviceKeywords = []categoryKeywords{
	{mstypes.CategoryRedis, []string{"redis"}},
	{mstypes.CategoryPostgres, []string{"postgres", "database"}},
	{mstypes.CategoryRabbitMQ, []string{"rabbitmq"}},
	{mstypes.CategoryKubernetes, kubernetesKeywords},
	{mstypes.CategorySystem, []string{"disk", "memory", "cpu", "load", "network", "filesystem"}},
}

var kubernetesKeywords = []string{"kubernetes", "pod", "deployment", "k8s"}

// ClassifyService derives the grouping category of a record.
func ClassifyService(record mstypes.MonitorRecord) mstypes.ServiceCategory {
	haystack := strings.ToLower(strings.Join(append([]string{record.Name, record.Query}, record.Metrics...), " "))

	for _, tag := range record.Tags {
		key, value, found := strings.Cut(strings.TrimSpace(tag), ":")
		if !found || strings.ToLower(key) != "service" || value == "" {
			continue
		}

		if strings.EqualFold(value, "all") {
			if containsAny(haystack, kubernetesKeywords...) {
				return mstypes.CategoryKubernetes
			}
			return mstypes.CategorySystem
		}

		category := mstypes.ServiceCategory(strings.ToUpper(value))
		if category == mstypes.CategoryRedis && strings.Contains(haystack, "pubsub") {
			return mstypes.CategoryRedisPubSub
		}
		return category
	}

	for _, entry := range serviceKeywords {
		if !containsAny(haystack, entry.keywords...) {
			continue
		}
		if entry.category == mstypes.CategoryRedis && strings.Contains(haystack, "pubsub") {
			return mstypes.CategoryRedisPubSub
		}
		return entry.category
	}

	return mstypes.CategoryOther
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func ensureScheme(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + u
}
