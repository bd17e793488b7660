// Package constants provides a centralized location for configuration
// defaults and magic numbers used throughout webtask.
package constants

import "time"

// Request defaults
const (
	// DefaultTimeout bounds a fetch when neither the flag nor the config
	// sets one. The task itself has no timeout; the CLI cancels it.
	DefaultTimeout = 30 * time.Second

	// DefaultTokenEnv is the environment variable read for a bearer token.
	DefaultTokenEnv = "WEBTASK_TOKEN"

	// DefaultUserAgentPrefix is combined with the build version.
	DefaultUserAgentPrefix = "webtask"
)

// Counter demo defaults
const (
	// DefaultStartURL is the initial location of the in-memory window.
	DefaultStartURL = "https://counter.local/"
)

// Output constants
const (
	// PreviewLines is the number of body lines printed by fetch.
	PreviewLines = 20

	// PreviewWidth is the column width used when the terminal width is
	// unknown.
	PreviewWidth = 100
)
