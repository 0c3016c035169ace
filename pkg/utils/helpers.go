package utils

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// GetEnvWithDefault retrieves an environment variable with a fallback default value
func GetEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// IsValidCron checks if a given string is a valid cron expression.
// Descriptors such as "@every 15m" and "@hourly" are accepted too.
func IsValidCron(expr string) bool {
	_, err := cron.ParseStandard(expr) // Uses the standard 5-field cron format
	return err == nil
}

func IsValidUUID(u string) bool {
	_, err := uuid.Parse(u)
	return err == nil
}

// NewRunID returns a short identifier that ties together the log lines,
// message footers and report files of one run.
func NewRunID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// FormatValue renders a metric value rounded to 2 decimals without trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
