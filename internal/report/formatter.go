// Package report renders scenario reports for watchdemo.
package report

import (
	"io"

	"github.com/NetPo4ki/go-watcher/internal/scenario"
)

// Format names an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formatter writes scenario reports.
type Formatter interface {
	FormatReports(w io.Writer, reports []scenario.Report) error
}

// Option configures a Formatter.
type Option func(*Options)

// Options holds formatter configuration.
type Options struct {
	NoColor bool
	// Wide adds the DETAIL column to table output.
	Wide bool
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) Option {
	return func(o *Options) { o.NoColor = noColor }
}

// WithWide enables the DETAIL column.
func WithWide(wide bool) Option {
	return func(o *Options) { o.Wide = wide }
}

// NewFormatter returns the formatter for format; unknown formats render as a
// table.
func NewFormatter(format Format, opts ...Option) Formatter {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	switch format {
	case FormatJSON:
		return &jsonFormatter{}
	case FormatYAML:
		return &yamlFormatter{}
	default:
		return &tableFormatter{options: options}
	}
}

// entry is the encoder-friendly shape of a report.
type entry struct {
	Scenario  string `json:"scenario" yaml:"scenario"`
	Status    string `json:"status" yaml:"status"`
	Submitted int    `json:"submitted" yaml:"submitted"`
	Values    int    `json:"values" yaml:"values"`
	Errors    int    `json:"errors" yaml:"errors"`
	Cancelled int    `json:"cancelled" yaml:"cancelled"`
	Duration  string `json:"duration" yaml:"duration"`
	Detail    string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

func entries(reports []scenario.Report) []entry {
	out := make([]entry, len(reports))
	for i, r := range reports {
		out[i] = entry{
			Scenario:  r.Scenario,
			Status:    status(r.Passed),
			Submitted: r.Submitted,
			Values:    r.Values,
			Errors:    r.Errors,
			Cancelled: r.Cancelled,
			Duration:  r.Duration.String(),
			Detail:    r.Detail,
		}
	}
	return out
}

func status(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}
