// Package progress writes status lines and a progress spinner to stderr.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Reporter prints run status. Status lines are silenced in quiet mode;
// warnings are always printed. The spinner only runs on a terminal.
type Reporter struct {
	out   io.Writer
	caps  Capabilities
	quiet bool

	mu      sync.Mutex
	spin    *spinner.Spinner
	label   string
	green   *color.Color
	yellow  *color.Color
	started time.Time
}

// New returns a Reporter writing to f.
func New(f *os.File, quiet bool) *Reporter {
	return newReporter(f, Detect(f), quiet)
}

// NewWriter returns a Reporter writing plain text to w, without spinner.
func NewWriter(w io.Writer, quiet bool) *Reporter {
	return newReporter(w, Capabilities{}, quiet)
}

func newReporter(w io.Writer, caps Capabilities, quiet bool) *Reporter {
	r := &Reporter{
		out:    w,
		caps:   caps,
		quiet:  quiet,
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
	}
	if !caps.SupportsColor {
		r.green.DisableColor()
		r.yellow.DisableColor()
	}
	return r
}

// Status prints a status line.
func (r *Reporter) Status(format string, args ...any) {
	if r.quiet {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.green.Fprintln(r.out, fmt.Sprintf(format, args...))
}

// Warn prints a warning line.
func (r *Reporter) Warn(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.yellow.Fprintln(r.out, "Warning: "+fmt.Sprintf(format, args...))
}

// Start begins a progress section.
func (r *Reporter) Start(label string, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.label = label
	r.started = time.Now()

	if r.quiet || !r.caps.IsTTY {
		return
	}
	r.spin = spinner.New(spinner.CharSets[r.caps.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(r.out))
	r.spin.Suffix = fmt.Sprintf(" %s 0/%d", label, total)
	r.spin.Start()
}

// Progress updates the current section.
func (r *Reporter) Progress(done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spin == nil {
		return
	}
	r.spin.Lock()
	r.spin.Suffix = fmt.Sprintf(" %s %d/%d", r.label, done, total)
	r.spin.Unlock()
}

// Stop ends the current section and prints how long it took.
func (r *Reporter) Stop(ok bool) {
	r.mu.Lock()
	spin := r.spin
	r.spin = nil
	label := r.label
	elapsed := time.Since(r.started).Round(100 * time.Millisecond)
	r.mu.Unlock()

	if spin != nil {
		spin.Stop()
	}
	if ok {
		r.Status("%s done in %s", label, elapsed)
	}
}
