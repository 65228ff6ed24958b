package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/desertthunder/taskcal/internal/models"
	"github.com/desertthunder/taskcal/internal/shared"
)

// VerifyOpts contains configuration for ledger verification.
type VerifyOpts struct {
	NumWorkers int     // Concurrent workers (default: 4, max: 10)
	RateLimit  float64 // Requests per second (default: 5)
}

// RecordCheck is the outcome of checking one ledger record against the calendar.
type RecordCheck struct {
	Record  *models.SyncRecord
	Missing bool  // Event no longer exists on the calendar
	Error   error // Lookup failed for another reason
}

// VerifyResult summarizes a verification pass.
type VerifyResult struct {
	Checked int
	Present int
	Missing []RecordCheck
	Failed  []RecordCheck
}

// Verify checks that every recorded event still exists on the calendar.
//
// Verification is read-only. Records whose events were deleted by hand are reported in [VerifyResult.Missing];
// removing them from the ledger (records delete) lets the next run recreate the event.
func (e *SyncEngine) Verify(ctx context.Context, prog chan<- ProgressUpdate, opts VerifyOpts) (*VerifyResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	records, err := e.ledger.List()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrLedger, err)
	}

	result := &VerifyResult{}
	if len(records) == 0 {
		return result, nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan *models.SyncRecord, len(records))
	results := make(chan RecordCheck, len(records))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.verifyWorker(ctx, &wg, limiter, jobs, results)
	}

	for _, r := range records {
		jobs <- r
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Checked++
		switch {
		case res.Missing:
			result.Missing = append(result.Missing, res)
		case res.Error != nil:
			result.Failed = append(result.Failed, res)
		default:
			result.Present++
		}
		e.sendProgress(prog, verifyUpdate(completed, len(records), res))
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// verifyWorker looks up events for records from the jobs channel.
func (e *SyncEngine) verifyWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan *models.SyncRecord,
	results chan<- RecordCheck,
) {
	defer wg.Done()

	for record := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			results <- RecordCheck{Record: record, Error: err}
			continue
		}

		callCtx, cancel := e.callContext(ctx)
		_, err := e.sink.GetEvent(callCtx, record.EventID)
		cancel()

		switch {
		case errors.Is(err, shared.ErrEventNotFound):
			results <- RecordCheck{Record: record, Missing: true}
		case err != nil:
			results <- RecordCheck{Record: record, Error: err}
		default:
			results <- RecordCheck{Record: record}
		}
	}
}
