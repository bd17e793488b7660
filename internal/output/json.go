package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/webtask/internal/replay"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// resultJSON is the wire shape of a Result.
type resultJSON struct {
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Status    int               `json:"status,omitempty"`
	Header    map[string]string `json:"header,omitempty"`
	Body      string            `json:"body,omitempty"`
	Error     string            `json:"error,omitempty"`
	Cancelled bool              `json:"cancelled,omitempty"`
	ElapsedMS int64             `json:"elapsed_ms"`
}

// FormatResult outputs a fetch result as JSON
func (f *JSONFormatter) FormatResult(r Result, w io.Writer) error {
	out := resultJSON{
		Method:    r.Method,
		URL:       r.URL,
		Status:    r.Status,
		Header:    r.Header,
		Body:      r.Body,
		Cancelled: r.Cancelled,
		ElapsedMS: r.Elapsed.Milliseconds(),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return f.encode(out, w)
}

// FormatReplay outputs a replay report as JSON
func (f *JSONFormatter) FormatReplay(r *replay.Report, w io.Writer) error {
	return f.encode(r, w)
}

func (f *JSONFormatter) encode(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}
