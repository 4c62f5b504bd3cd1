package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tendersza/tender-sync/app/database"
	"github.com/tendersza/tender-sync/app/ocds"
	"github.com/tendersza/tender-sync/app/tender"
)

// MaxErrorSample bounds the number of error messages carried in a run result.
const MaxErrorSample = 10

// FeedClient is the capability the orchestrator needs from the OCDS feed.
type FeedClient interface {
	FetchPage(ctx context.Context, pageNumber, pageSize int) ([]ocds.Release, error)
}

var _ FeedClient = (*ocds.Client)(nil)

// TenderStore is the reconciliation capability the orchestrator needs from
// the persistence layer.
type TenderStore interface {
	UpsertTender(ctx context.Context, record database.TenderRecord) (string, error)
}

var _ TenderStore = (database.TenderRepository)(nil)

// SyncError wraps a fetch-stage failure. There is no partial batch to report
// when the fetch itself fails, so the whole run fails with this error.
type SyncError struct {
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed: %v", e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Result summarizes one sync run. Ephemeral; reported to the caller and
// discarded.
type Result struct {
	RunID        string   `json:"run_id"`
	TotalFetched int      `json:"total_fetched"`
	Processed    int      `json:"processed_count"`
	Failed       int      `json:"error_count"`
	Errors       []string `json:"errors"`
}

func (r *Result) recordError(ocid string, err error) {
	r.Failed++
	if len(r.Errors) < MaxErrorSample {
		r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", ocid, err))
	}
}

// Orchestrator drives one batch: fetch a page, normalize and reconcile every
// release, isolate per-record failures, report counts.
type Orchestrator struct {
	client FeedClient
	store  TenderStore
	now    func() time.Time
}

func NewOrchestrator(client FeedClient, store TenderStore) *Orchestrator {
	return &Orchestrator{
		client: client,
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RunPage syncs a single page of releases. Per-record errors are folded into
// the result; only a failed fetch aborts the run.
func (o *Orchestrator) RunPage(ctx context.Context, pageNumber, pageSize int) (*Result, error) {
	result := &Result{RunID: uuid.NewString(), Errors: []string{}}

	releases, err := o.client.FetchPage(ctx, pageNumber, pageSize)
	if err != nil {
		return nil, &SyncError{Err: err}
	}

	result.TotalFetched = len(releases)
	o.processReleases(ctx, releases, result)

	return result, nil
}

// RunFull walks pages from 1 until the feed returns an empty page,
// aggregating results. Cancellation is honored between pages; per-record work
// is small enough that mid-page preemption is not needed.
func (o *Orchestrator) RunFull(ctx context.Context, pageSize int) (*Result, error) {
	result := &Result{RunID: uuid.NewString(), Errors: []string{}}

	for pageNumber := 1; ; pageNumber++ {
		select {
		case <-ctx.Done():
			return nil, &SyncError{Err: ctx.Err()}
		default:
		}

		releases, err := o.client.FetchPage(ctx, pageNumber, pageSize)
		if err != nil {
			return nil, &SyncError{Err: err}
		}
		if len(releases) == 0 {
			break
		}

		result.TotalFetched += len(releases)
		o.processReleases(ctx, releases, result)
	}

	return result, nil
}

func (o *Orchestrator) processReleases(ctx context.Context, releases []ocds.Release, result *Result) {
	now := o.now()

	for _, release := range releases {
		record, err := tender.Normalize(release, now)
		if err != nil {
			slog.Warn("Failed to normalize release", "ocid", release.OCID, "error", err)
			result.recordError(release.OCID, err)
			continue
		}

		if _, err := o.store.UpsertTender(ctx, *record); err != nil {
			slog.Warn("Failed to reconcile release", "ocid", release.OCID, "error", err)
			result.recordError(release.OCID, err)
			continue
		}

		result.Processed++
	}
}
