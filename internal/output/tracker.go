package output

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lockmirror/lockmirror/internal/utils"
)

// Tracker drives the live progress line for a batch of downloads and
// collects failure diagnostics. The display goroutine owns the terminal;
// everything else goes through the mutex.
type Tracker struct {
	mu          sync.Mutex
	total       int
	completed   int
	succeeded   int
	bytes       int64
	failures    []FailureReport
	startTime   time.Time
	doneCh      chan struct{}
	displayWg   sync.WaitGroup
	displayTick time.Duration
	live        bool
	lineDrawn   bool
}

type FailureReport struct {
	File  string
	Error error
	Time  time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		doneCh:      make(chan struct{}),
		displayTick: 300 * time.Millisecond,
		live:        true,
	}
}

// Quiet disables the live line; failure diagnostics and the summary are
// still emitted.
func (t *Tracker) Quiet() {
	t.live = false
}

func (t *Tracker) Started(total int) {
	t.mu.Lock()
	t.total = total
	t.startTime = time.Now()
	t.mu.Unlock()
	if !t.live {
		return
	}
	t.displayWg.Add(1)
	go func() {
		defer t.displayWg.Done()
		ticker := time.NewTicker(t.displayTick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.redraw()
			case <-t.doneCh:
				t.clearLine()
				return
			}
		}
	}()
}

// Completed records one outcome. A failure is printed to stderr the
// moment it is known; successes only advance the counters.
func (t *Tracker) Completed(file string, bytes int64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
	t.bytes += bytes
	if err == nil {
		t.succeeded++
		return
	}
	t.failures = append(t.failures, FailureReport{File: file, Error: err, Time: time.Now()})
	if t.lineDrawn {
		fmt.Print("\r\033[K")
		t.lineDrawn = false
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render(StyleSymbols["fail"]), errorStyle.Render(fmt.Sprintf("Error: %v", err)))
}

// Finished stops the display and prints the summary line plus the
// collected error list.
func (t *Tracker) Finished(dest string) {
	if t.live {
		close(t.doneCh)
		t.displayWg.Wait()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	summary := fmt.Sprintf("%d of %d packages downloaded to %s (%s)", t.succeeded, t.total, dest, utils.FormatBytes(uint64(t.bytes)))
	if t.succeeded == t.total {
		PrintSuccess2(summary)
	} else {
		PrintWarning(summary)
	}
	if len(t.failures) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, errorStyle.Bold(true).Render("Errors:"))
	for i, f := range t.failures {
		fmt.Fprintf(os.Stderr, "%s%s %s %s\n",
			strings.Repeat(" ", 2),
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", f.Time.Format("15:04:05"))),
			errorStyle.Render(f.File))
		fmt.Fprintf(os.Stderr, "%s%s\n", strings.Repeat(" ", 4), errorStyle.Render(fmt.Sprintf("Error: %v", f.Error)))
	}
}

// Failures returns the collected failure reports in arrival order.
func (t *Tracker) Failures() []FailureReport {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]FailureReport, len(t.failures))
	copy(out, t.failures)
	return out
}

func (t *Tracker) redraw() {
	t.mu.Lock()
	defer t.mu.Unlock()
	elapsed := time.Since(t.startTime)
	var eta string
	if t.completed > 0 && t.completed < t.total {
		remaining := time.Duration(float64(elapsed) / float64(t.completed) * float64(t.total-t.completed))
		eta = "~" + remaining.Round(time.Second).String() + " left"
	} else {
		eta = "calculating..."
	}
	bullet := debugStyle.Render(StyleSymbols["bullet"])
	line := fmt.Sprintf("%s %s %s %d/%d %s %s %s %s %s %s",
		pendingStyle.Render("Downloading"),
		ProgressBar(int64(t.completed), int64(t.total), 30),
		bullet, t.completed, t.total,
		bullet, debugStyle.Render(utils.FormatSpeed(t.bytes, elapsed.Seconds())),
		bullet, debugStyle.Render(elapsed.Round(time.Second).String()),
		bullet, debugStyle.Render(eta))
	if width := getTerminalWidth(); len(line) > width*2 { // styled runes inflate length, rough guard only
		line = line[:width*2]
	}
	fmt.Print("\r\033[K" + line)
	t.lineDrawn = true
}

func (t *Tracker) clearLine() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lineDrawn {
		fmt.Print("\r\033[K")
		t.lineDrawn = false
	}
}
