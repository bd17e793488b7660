package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spiffcs/webtask/internal/constants"
	"github.com/spiffcs/webtask/internal/format"
	"github.com/spiffcs/webtask/internal/replay"
	"golang.org/x/term"
)

// TextFormatter formats output for a terminal
type TextFormatter struct {
	// Width overrides the detected terminal width when positive.
	Width int
	// Headers prints response headers.
	Headers bool
	// Full prints the whole body instead of a preview.
	Full bool
}

func (f *TextFormatter) width() int {
	if f.Width > 0 {
		return f.Width
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return constants.PreviewWidth
}

// colorStatus colors a status line by class.
func colorStatus(code int) string {
	text := format.Status(code)
	switch {
	case code >= 200 && code < 300:
		return color.GreenString(text)
	case code >= 300 && code < 400:
		return color.CyanString(text)
	case code >= 400 && code < 500:
		return color.YellowString(text)
	default:
		return color.RedString(text)
	}
}

// FormatResult outputs a fetch result
func (f *TextFormatter) FormatResult(r Result, w io.Writer) error {
	elapsed := r.Elapsed.Round(time.Millisecond)
	target := fmt.Sprintf("%s %s", r.Method, r.URL)

	switch {
	case r.Cancelled:
		reason := "cancelled"
		if r.Err != nil {
			reason = fmt.Sprintf("cancelled: %v", r.Err)
		}
		_, err := fmt.Fprintf(w, "%s %s %s\n", color.YellowString("⊘"), target, color.YellowString(reason))
		return err
	case r.Err != nil:
		_, err := fmt.Fprintf(w, "%s %s %s\n", color.RedString("✗"), target, color.RedString(r.Err.Error()))
		return err
	}

	if _, err := fmt.Fprintf(w, "%s %s %s\n", colorStatus(r.Status), target,
		color.HiBlackString("(%s, %s)", format.Bytes(len(r.Body)), elapsed)); err != nil {
		return err
	}

	if f.Headers {
		for _, line := range format.Headers(r.Header) {
			if _, err := fmt.Fprintln(w, color.HiBlackString(line)); err != nil {
				return err
			}
		}
	}

	if r.Body == "" {
		return nil
	}

	body := r.Body
	if !f.Full {
		body = format.Preview(r.Body, f.width(), constants.PreviewLines)
	}
	_, err := fmt.Fprintf(w, "\n%s\n", strings.TrimRight(body, "\n"))
	return err
}

// FormatReplay outputs a replay report
func (f *TextFormatter) FormatReplay(r *replay.Report, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Replaying from %s\n\n", r.StartURL); err != nil {
		return err
	}

	for _, s := range r.Steps {
		var parts []string
		if len(s.Delivered) > 0 {
			parts = append(parts, "delivered "+color.CyanString(strings.Join(s.Delivered, ", ")))
		}
		if s.Returned != "" {
			parts = append(parts, "returned "+color.CyanString(s.Returned))
		}
		if s.Error != "" {
			parts = append(parts, color.RedString(s.Error))
		}
		if len(parts) == 0 {
			parts = append(parts, color.HiBlackString("no message"))
		}

		step := format.PadRight(format.Truncate(s.Step, 24), 24)
		if _, err := fmt.Fprintf(w, "  %2d. %s %s  %s\n", s.Index, step, strings.Join(parts, "; "),
			color.HiBlackString("= %d", s.Value)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nFinal count: %s\n", color.New(color.Bold).Sprintf("%d", r.Final))
	return err
}
