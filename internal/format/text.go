// Package format provides shared text formatting utilities for terminal output.
package format

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ansiRegex matches ANSI escape sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripAnsi removes ANSI escape sequences from a string.
func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// DisplayWidth returns the visible width of a string in terminal columns,
// ignoring ANSI escape sequences.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(StripAnsi(s))
}

// Truncate shortens s to at most width display columns, ending with "..."
// when anything was cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "...")
}

// PadRight pads s with spaces to width display columns.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Preview renders the first maxLines lines of body, each cut to width
// columns. Control characters are dropped and tabs expanded. A trailing
// line notes how many lines were left out.
func Preview(body string, width, maxLines int) string {
	if body == "" {
		return ""
	}

	lines := strings.Split(strings.TrimRight(body, "\r\n"), "\n")
	shown := lines
	if maxLines > 0 && len(lines) > maxLines {
		shown = lines[:maxLines]
	}

	var b strings.Builder
	for i, line := range shown {
		if i > 0 {
			b.WriteByte('\n')
		}
		line = sanitize(line)
		if width > 0 {
			line = Truncate(line, width)
		}
		b.WriteString(line)
	}

	if rest := len(lines) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "\n... (%d more %s)", rest, plural(rest, "line", "lines"))
	}
	return b.String()
}

func sanitize(line string) string {
	line = strings.ReplaceAll(line, "\t", "    ")
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, line)
}

// Bytes renders a byte count for humans.
func Bytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

// Status renders an HTTP status code with its reason phrase.
func Status(code int) string {
	if text := http.StatusText(code); text != "" {
		return fmt.Sprintf("%d %s", code, text)
	}
	return fmt.Sprintf("%d", code)
}

// Headers renders a header map as "name: value" lines sorted by name.
func Headers(h map[string]string) []string {
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, k := range names {
		out = append(out, k+": "+h[k])
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
