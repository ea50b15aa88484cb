// Package report renders run results for humans.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/specialistvlad/monogrid/internal/action"
	"github.com/specialistvlad/monogrid/internal/target"
)

// Printer writes headers, target lists, result lines and stats.
type Printer struct {
	w io.Writer
	// ci prefixes headers with "--- " so CI logs fold them into sections.
	ci bool
}

// New creates a printer writing to w.
func New(w io.Writer, ci bool) *Printer {
	return &Printer{w: w, ci: ci}
}

// Header prints a section title.
func (p *Printer) Header(title string) {
	prefix := ""
	if p.ci {
		prefix = "--- "
	}
	fmt.Fprintf(p.w, "%s%s\n", prefix, title)
}

// Line prints a plain line.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Warn prints a line styled as a warning.
func (p *Printer) Warn(msg string) {
	fmt.Fprintln(p.w, invalid(msg))
}

// Targets prints one indented target per line, sorted.
func (p *Printer) Targets(targets []target.Target) {
	sorted := append([]target.Target(nil), targets...)
	target.Sort(sorted)
	for _, t := range sorted {
		fmt.Fprintf(p.w, "  %s\n", cyan(t.String()))
	}
}

// Results prints one line per action, followed by its error if any.
func (p *Printer) Results(results []*action.Action) {
	for _, a := range results {
		fmt.Fprintf(p.w, "%s %s %s\n", statusWord(a.Status), bold(a.Label), muted("("+meta(a)+")"))
		if a.Error != nil {
			fmt.Fprintf(p.w, "     %s\n", muted(a.Error.Error()))
		}
	}
}

func statusWord(s action.Status) string {
	switch s {
	case action.StatusPassed, action.StatusCached, action.StatusSkipped:
		return success("pass")
	case action.StatusFailed, action.StatusFailedAndAbort:
		return failure("fail")
	case action.StatusInvalid:
		return invalid("warn")
	}
	return muted("oops")
}

func meta(a *action.Action) string {
	switch a.Status {
	case action.StatusCached:
		return "cached"
	case action.StatusSkipped:
		return "skipped"
	}
	return Elapsed(a.Duration)
}

// Stats summarizes a run.
type Stats struct {
	Completed int
	Cached    int
	Failed    int
	Skipped   int
	Invalid   int
}

// Summarize counts results by outcome. Cached actions count as completed.
func Summarize(results []*action.Action) Stats {
	var s Stats
	for _, a := range results {
		switch a.Status {
		case action.StatusPassed, action.StatusInvalid:
			s.Completed++
			if a.Status == action.StatusInvalid {
				s.Invalid++
			}
		case action.StatusCached:
			s.Completed++
			s.Cached++
		case action.StatusSkipped:
			s.Skipped++
		case action.StatusFailed, action.StatusFailedAndAbort:
			s.Failed++
		}
	}
	return s
}

// Stats prints the action counts and the total run time.
func (p *Printer) Stats(results []*action.Action, total time.Duration) {
	s := Summarize(results)

	counts := []string{fmt.Sprintf("%d completed", s.Completed)}
	if s.Cached > 0 {
		counts[0] += fmt.Sprintf(" (%d cached)", s.Cached)
	}
	failed := fmt.Sprintf("%d failed", s.Failed)
	if s.Failed > 0 {
		failed = failure(failed)
	}
	counts = append(counts, failed)

	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "%s %s\n", bold("Actions:"), strings.Join(counts, ", "))
	fmt.Fprintf(p.w, "%s %s\n", bold("   Time:"), Elapsed(total))
	fmt.Fprintln(p.w)
}

// CountFailures returns the number of failed actions. Invalid actions count
// as failures only in CI, where mutating the workspace is an error.
func CountFailures(results []*action.Action, ci bool) int {
	n := 0
	for _, a := range results {
		if a.Status.IsFailure() || (ci && a.Status == action.StatusInvalid) {
			n++
		}
	}
	return n
}

// Elapsed formats a duration compactly, e.g. "350ms", "2.4s" or "1m 5s".
func Elapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}
