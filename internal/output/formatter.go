package output

import (
	"io"
	"time"

	"github.com/spiffcs/webtask/internal/replay"
)

// Format represents the output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Result is a finished fetch as reported to the user.
type Result struct {
	Method    string
	URL       string
	Status    int
	Header    map[string]string
	Body      string
	Err       error
	Cancelled bool
	Elapsed   time.Duration
}

// Formatter defines the interface for output formatters
type Formatter interface {
	FormatResult(r Result, w io.Writer) error
	FormatReplay(r *replay.Report, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	default:
		return &TextFormatter{}
	}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatText, FormatJSON:
		return Format(s), true
	case "":
		return FormatText, true
	default:
		return "", false
	}
}
