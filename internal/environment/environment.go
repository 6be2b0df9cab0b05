// Package environment reads runtime environment configuration.
package environment

import (
	"os"
	"strings"
)

var (
	posthogAPIKeyDefault = "REPL_POSTHOG_API_KEY" // #nosec G101 -- build-time placeholder replaced in release builds.
)

const (
	gamePathEnvVar = "KMM_GAME_PATH"
	testEnvVar     = "KMM_TEST"
)

func PosthogAPIKey() string {
	key, present := os.LookupEnv("POSTHOG_API_KEY")
	if present {
		return key
	}

	return posthogAPIKeyDefault
}

// GamePath returns the game directory configured through KMM_GAME_PATH, if any.
func GamePath() (string, bool) {
	value, present := os.LookupEnv(gamePathEnvVar)
	if !present {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// IsTest reports whether the binary runs under the test harness.
func IsTest() bool {
	_, present := os.LookupEnv(testEnvVar)
	return present
}

func AppVersion() string {
	return "REPL_VERSION"
}

func HelpURL() string {
	return "REPL_HELP_URL"
}
