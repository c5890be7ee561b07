package fetch

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lockmirror/lockmirror/internal/utils"
)

// Coordinator runs the fetch-and-verify pipeline over a bounded worker
// pool. Workers share nothing but the progress counters and the reporter,
// and a failed record never disturbs its siblings.
type Coordinator struct {
	Workers   int // defaults to runtime.NumCPU()
	Client    *utils.MirrorHTTPClient
	Reporter  Reporter
	S3Profile string
}

type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Bytes     int64
	Outcomes  []Outcome
	Dest      string
	Elapsed   time.Duration
}

// Run blocks until every record has produced an outcome. Only
// precondition failures (destination directory creation) return a non-nil
// error; per-record failures land in the summary.
func (c *Coordinator) Run(ctx context.Context, records []utils.ArtifactRecord, destDir string) (*Summary, error) {
	log := utils.GetLogger("fetch").With().Str("run", uuid.NewString()[:8]).Logger()
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating destination directory: %v", err)
	}
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(records) {
		workers = max(len(records), 1)
	}
	reporter := c.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}
	client := c.Client
	if client == nil {
		client = utils.NewMirrorHTTPClient(utils.HTTPClientConfig{})
	}
	httpGetter := &HTTPGetter{Client: client}
	s3Getter := &S3Getter{Profile: c.S3Profile}

	progress := NewProgress(len(records))
	start := time.Now()
	log.Debug().Int("records", len(records)).Int("workers", workers).Msg("Starting download batch")

	jobCh := make(chan utils.ArtifactRecord, len(records))
	for _, record := range records {
		jobCh <- record
	}
	close(jobCh)

	outcomeCh := make(chan Outcome, len(records))
	reporter.Started(len(records))
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for record := range jobCh {
				bytes, err := c.fetchOne(ctx, record, destDir, httpGetter, s3Getter)
				progress.markDone(err == nil)
				if err != nil {
					log.Debug().Err(err).Str("file", record.File).Msg("Record failed")
				}
				reporter.Completed(record.File, bytes, err)
				outcomeCh <- Outcome{Record: record, Err: err, Bytes: bytes}
			}
		}()
	}
	wg.Wait()
	close(outcomeCh)

	summary := &Summary{
		Total:   len(records),
		Dest:    destDir,
		Elapsed: time.Since(start),
	}
	for outcome := range outcomeCh {
		summary.Outcomes = append(summary.Outcomes, outcome)
		summary.Bytes += outcome.Bytes
		if outcome.Failed() {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	reporter.Finished(destDir)
	log.Debug().
		Int64("completed", progress.Completed()).
		Int64("succeeded", progress.Succeeded()).
		Dur("elapsed", summary.Elapsed).
		Msg("Download batch finished")
	return summary, nil
}

func (c *Coordinator) fetchOne(ctx context.Context, record utils.ArtifactRecord, destDir string, httpGetter, s3Getter Getter) (int64, error) {
	switch utils.KindOfURL(record.URL) {
	case utils.SourceHTTP:
		return FetchAndVerify(ctx, record, destDir, httpGetter)
	case utils.SourceS3:
		return FetchAndVerify(ctx, record, destDir, s3Getter)
	case utils.SourceGit:
		return 0, fetchGitArtifact(ctx, record, destDir)
	default:
		return 0, fmt.Errorf("%w: %s", utils.ErrUnknownScheme, record.URL)
	}
}
