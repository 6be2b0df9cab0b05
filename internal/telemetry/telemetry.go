// Package telemetry sends anonymous command usage events to PostHog.
package telemetry

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/posthog/posthog-go"

	"github.com/meza/koikatsu-mod-manager/internal/constants"
	"github.com/meza/koikatsu-mod-manager/internal/environment"
)

const (
	disableEnvVar   = "KMM_DISABLE_TELEMETRY"
	posthogEndpoint = "https://eu.i.posthog.com"
	placeholderKey  = "REPL_POSTHOG_API_KEY"
)

type Client interface {
	io.Closer
	Enqueue(posthog.Message) error
}

type CommandTelemetry struct {
	Command   string                 `json:"command"`
	Success   bool                   `json:"success"`
	ExitCode  int                    `json:"exitCode"`
	Error     error                  `json:"-"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
	Duration  time.Duration          `json:"duration"`
}

var (
	stateMu   sync.Mutex
	client    Client
	machineID string
	pending   []CommandTelemetry

	machineIDProvider = func() (string, error) {
		return machineid.ProtectedID(constants.AppName)
	}
	clientBuilder = func(apiKey, endpoint string) (Client, error) {
		return posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	}
)

// Init prepares the PostHog client. It is a no-op when telemetry is disabled
// through KMM_DISABLE_TELEMETRY, under tests, or in builds without an API key.
func Init() {
	stateMu.Lock()
	defer stateMu.Unlock()

	if client != nil || disabled() {
		return
	}

	id, err := machineIDProvider()
	if err != nil || strings.TrimSpace(id) == "" {
		return
	}

	built, err := clientBuilder(environment.PosthogAPIKey(), posthogEndpoint)
	if err != nil {
		return
	}

	machineID = id
	client = built
}

func disabled() bool {
	if value, present := os.LookupEnv(disableEnvVar); present && value != "" && value != "0" && !strings.EqualFold(value, "false") {
		return true
	}
	if environment.IsTest() {
		return true
	}
	key := environment.PosthogAPIKey()
	return key == "" || key == placeholderKey
}

// Capture enqueues a single event immediately.
func Capture(event string, properties map[string]interface{}) {
	if strings.TrimSpace(event) == "" {
		return
	}

	stateMu.Lock()
	defer stateMu.Unlock()
	enqueueLocked(event, properties)
}

func enqueueLocked(event string, properties map[string]interface{}) {
	if client == nil {
		return
	}

	props := posthog.NewProperties()
	for key, value := range properties {
		props.Set(key, value)
	}
	props.Set("version", environment.AppVersion())

	_ = client.Enqueue(posthog.Capture{
		Event:      event,
		DistinctId: machineID,
		Properties: props,
	})
}

// RecordCommand stores the outcome of a command; events are sent on Shutdown.
func RecordCommand(command CommandTelemetry) {
	stateMu.Lock()
	defer stateMu.Unlock()
	pending = append(pending, command)
}

// Shutdown flushes recorded commands and closes the client, waiting at most
// until ctx is done.
func Shutdown(ctx context.Context) {
	stateMu.Lock()
	for _, command := range pending {
		enqueueLocked(command.Command, commandProperties(command))
	}
	pending = nil
	current := client
	client = nil
	stateMu.Unlock()

	if current == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		_ = current.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

func commandProperties(command CommandTelemetry) map[string]interface{} {
	properties := map[string]interface{}{
		"type":       "command",
		"success":    command.Success,
		"exitCode":   command.ExitCode,
		"durationMs": command.Duration.Milliseconds(),
	}
	if command.Error != nil {
		properties["error"] = command.Error.Error()
	}
	if len(command.Arguments) > 0 {
		properties["arguments"] = command.Arguments
	}
	if len(command.Extra) > 0 {
		properties["extra"] = command.Extra
	}
	return properties
}

// Reset clears all state (tests only).
func Reset() {
	stateMu.Lock()
	defer stateMu.Unlock()
	client = nil
	machineID = ""
	pending = nil
	machineIDProvider = func() (string, error) {
		return machineid.ProtectedID(constants.AppName)
	}
	clientBuilder = func(apiKey, endpoint string) (Client, error) {
		return posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	}
}
