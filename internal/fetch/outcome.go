package fetch

import (
	"fmt"
	"sync/atomic"

	"github.com/lockmirror/lockmirror/internal/utils"
)

// Outcome is the per-record result. Exactly one outcome is produced per
// scheduled record, whether the fetch succeeded or failed.
type Outcome struct {
	Record utils.ArtifactRecord
	Err    error
	Bytes  int64
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

// HashMismatchError reports a fully downloaded artifact whose digest does
// not match the lockfile. The partial file on disk is retained.
type HashMismatchError struct {
	File     string
	Expected string
	Actual   string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("hash value of %s doesn't match. Expected: %s, got: %s", e.File, e.Expected, e.Actual)
}

// Progress holds the shared counters updated by the worker pool. Total is
// fixed before any worker starts; the other two only ever grow, one
// increment per outcome.
type Progress struct {
	total     int64
	completed atomic.Int64
	succeeded atomic.Int64
}

func NewProgress(total int) *Progress {
	return &Progress{total: int64(total)}
}

func (p *Progress) Total() int64     { return p.total }
func (p *Progress) Completed() int64 { return p.completed.Load() }
func (p *Progress) Succeeded() int64 { return p.succeeded.Load() }

// completed is bumped before succeeded so a concurrent reader never
// observes succeeded > completed.
func (p *Progress) markDone(ok bool) {
	p.completed.Add(1)
	if ok {
		p.succeeded.Add(1)
	}
}

// Reporter consumes outcomes as they land. Implementations must tolerate
// concurrent Completed calls.
type Reporter interface {
	Started(total int)
	Completed(file string, bytes int64, err error)
	Finished(dest string)
}

type nopReporter struct{}

func (nopReporter) Started(int)                    {}
func (nopReporter) Completed(string, int64, error) {}
func (nopReporter) Finished(string)                {}
