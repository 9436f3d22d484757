package harness

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// InformReason labels a run that terminated before producing results.
type InformReason int

const (
	InformInvalidSize InformReason = iota
	InformQuickReturn
	InformMemQuery
)

// Reporter receives labeled results for external formatting. The harness
// is agnostic to the output format; it only emits section headers, label
// rows, value rows, and early-termination notices.
type Reporter interface {
	Header(title string)
	Labels(labels ...string)
	Row(values ...any)
	Inform(reason InformReason, args ...int64)
}

// TableReporter writes aligned text columns in the classic bench layout.
type TableReporter struct {
	W io.Writer
}

func (r TableReporter) Header(title string) {
	fmt.Fprintf(r.W, "%s\n", title)
}

func (r TableReporter) Labels(labels ...string) {
	vals := make([]any, len(labels))
	for i, l := range labels {
		vals[i] = l
	}
	r.Row(vals...)
}

func (r TableReporter) Row(values ...any) {
	for i, v := range values {
		if i > 0 {
			fmt.Fprint(r.W, " ")
		}
		fmt.Fprintf(r.W, "%-15v", v)
	}
	fmt.Fprintln(r.W)
}

func (r TableReporter) Inform(reason InformReason, args ...int64) {
	switch reason {
	case InformInvalidSize:
		fmt.Fprintln(r.W, "invalid size arguments, test not executed")
	case InformQuickReturn:
		fmt.Fprintln(r.W, "quick return with success status, test not executed")
	case InformMemQuery:
		var bytes int64
		if len(args) > 0 {
			bytes = args[0]
		}
		fmt.Fprintf(r.W, "required device memory workspace: %d bytes\n", bytes)
	}
}

// LogReporter emits the same information as structured log events.
type LogReporter struct {
	Log zerolog.Logger

	section string
	labels  []string
}

func (r *LogReporter) Header(title string) {
	r.section = title
}

func (r *LogReporter) Labels(labels ...string) {
	r.labels = append(r.labels[:0], labels...)
}

func (r *LogReporter) Row(values ...any) {
	ev := r.Log.Info()
	for i, v := range values {
		label := fmt.Sprintf("col%d", i)
		if i < len(r.labels) {
			label = r.labels[i]
		}
		ev = ev.Interface(label, v)
	}
	msg := r.section
	if msg == "" {
		msg = "results"
	}
	ev.Msg(msg)
}

func (r *LogReporter) Inform(reason InformReason, args ...int64) {
	switch reason {
	case InformInvalidSize:
		r.Log.Warn().Msg("invalid size arguments, test not executed")
	case InformQuickReturn:
		r.Log.Info().Msg("quick return with success status, test not executed")
	case InformMemQuery:
		var bytes int64
		if len(args) > 0 {
			bytes = args[0]
		}
		r.Log.Info().Int64("workspace_bytes", bytes).Msg("memory size query")
	}
}
