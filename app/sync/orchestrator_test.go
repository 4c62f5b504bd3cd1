package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tendersza/tender-sync/app/database"
	"github.com/tendersza/tender-sync/app/ocds"
)

type fakeFeed struct {
	pages   map[int][]ocds.Release
	err     error
	fetches int
}

func (f *fakeFeed) FetchPage(ctx context.Context, pageNumber, pageSize int) ([]ocds.Release, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[pageNumber], nil
}

type fakeStore struct {
	upserts  []database.TenderRecord
	failOCID string
}

func (s *fakeStore) UpsertTender(ctx context.Context, record database.TenderRecord) (string, error) {
	if record.OCID == s.failOCID {
		return "", &database.PersistenceError{OCID: record.OCID, Op: "upsert tender", Err: errors.New("connection reset")}
	}
	s.upserts = append(s.upserts, record)
	return "id-" + record.OCID, nil
}

func goodRelease(ocid string) ocds.Release {
	return ocds.Release{
		OCID: ocid,
		Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Parties: []ocds.Party{
			{Name: "City of Cape Town", Roles: []string{"buyer"}, Address: &ocds.Address{Region: "Western Cape"}},
		},
		Tender: ocds.Tender{Title: "Road construction project", Status: "active"},
	}
}

func TestRunPage_Success(t *testing.T) {
	feed := &fakeFeed{pages: map[int][]ocds.Release{
		1: {goodRelease("ocds-1"), goodRelease("ocds-2"), goodRelease("ocds-3")},
	}}
	store := &fakeStore{}

	result, err := NewOrchestrator(feed, store).RunPage(context.Background(), 1, 50)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.TotalFetched != 3 {
		t.Errorf("Expected 3 fetched, got %d", result.TotalFetched)
	}
	if result.Processed != 3 {
		t.Errorf("Expected 3 processed, got %d", result.Processed)
	}
	if result.Failed != 0 {
		t.Errorf("Expected 0 failed, got %d", result.Failed)
	}
	if len(store.upserts) != 3 {
		t.Errorf("Expected 3 upserts, got %d", len(store.upserts))
	}
	if result.RunID == "" {
		t.Error("Expected a run ID")
	}
}

func TestRunPage_BatchIsolation(t *testing.T) {
	// One release without a title fails normalization; the rest of the batch
	// still processes.
	bad := goodRelease("ocds-bad")
	bad.Tender.Title = ""

	feed := &fakeFeed{pages: map[int][]ocds.Release{
		1: {goodRelease("ocds-1"), bad, goodRelease("ocds-3")},
	}}
	store := &fakeStore{}

	result, err := NewOrchestrator(feed, store).RunPage(context.Background(), 1, 50)
	if err != nil {
		t.Fatalf("Run must not fail for a per-record error: %v", err)
	}

	if result.Processed != 2 {
		t.Errorf("Expected 2 processed, got %d", result.Processed)
	}
	if result.Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", result.Failed)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 error sample, got %d", len(result.Errors))
	}
	if result.Errors[0][:8] != "ocds-bad" {
		t.Errorf("Error sample should name the failing identifier: %q", result.Errors[0])
	}
}

func TestRunPage_PersistenceFailureIsolated(t *testing.T) {
	feed := &fakeFeed{pages: map[int][]ocds.Release{
		1: {goodRelease("ocds-1"), goodRelease("ocds-2")},
	}}
	store := &fakeStore{failOCID: "ocds-1"}

	result, err := NewOrchestrator(feed, store).RunPage(context.Background(), 1, 50)
	if err != nil {
		t.Fatalf("Run must not fail for a per-record error: %v", err)
	}

	if result.Processed != 1 || result.Failed != 1 {
		t.Errorf("Expected 1 processed / 1 failed, got %d / %d", result.Processed, result.Failed)
	}
}

func TestRunPage_FetchFailure(t *testing.T) {
	feed := &fakeFeed{err: &ocds.FeedUnavailableError{URL: "http://feed", StatusCode: 503, Status: "503 Service Unavailable"}}
	store := &fakeStore{}

	_, err := NewOrchestrator(feed, store).RunPage(context.Background(), 1, 50)
	if err == nil {
		t.Fatal("Expected error when fetch fails")
	}

	var syncErr *SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("Expected SyncError, got %T", err)
	}

	var feedErr *ocds.FeedUnavailableError
	if !errors.As(err, &feedErr) {
		t.Error("SyncError should wrap the feed failure")
	}
}

func TestRunPage_ErrorSampleBounded(t *testing.T) {
	var releases []ocds.Release
	for i := 0; i < 15; i++ {
		bad := goodRelease(fmt.Sprintf("ocds-%d", i))
		bad.Tender.Title = ""
		releases = append(releases, bad)
	}

	feed := &fakeFeed{pages: map[int][]ocds.Release{1: releases}}
	store := &fakeStore{}

	result, err := NewOrchestrator(feed, store).RunPage(context.Background(), 1, 50)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Failed != 15 {
		t.Errorf("Expected all 15 failures counted, got %d", result.Failed)
	}
	if len(result.Errors) != MaxErrorSample {
		t.Errorf("Expected error sample capped at %d, got %d", MaxErrorSample, len(result.Errors))
	}
}

func TestRunPage_EmptyPage(t *testing.T) {
	feed := &fakeFeed{pages: map[int][]ocds.Release{}}
	store := &fakeStore{}

	result, err := NewOrchestrator(feed, store).RunPage(context.Background(), 7, 50)
	if err != nil {
		t.Fatalf("Empty page is not an error: %v", err)
	}

	if result.TotalFetched != 0 || result.Processed != 0 || result.Failed != 0 {
		t.Errorf("Expected empty result, got %+v", result)
	}
}

func TestRunFull_WalksUntilEmptyPage(t *testing.T) {
	feed := &fakeFeed{pages: map[int][]ocds.Release{
		1: {goodRelease("ocds-1"), goodRelease("ocds-2")},
		2: {goodRelease("ocds-3")},
	}}
	store := &fakeStore{}

	result, err := NewOrchestrator(feed, store).RunFull(context.Background(), 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.TotalFetched != 3 {
		t.Errorf("Expected 3 fetched across pages, got %d", result.TotalFetched)
	}
	if result.Processed != 3 {
		t.Errorf("Expected 3 processed, got %d", result.Processed)
	}
	// Pages 1 and 2 plus the terminal empty page 3.
	if feed.fetches != 3 {
		t.Errorf("Expected 3 fetches, got %d", feed.fetches)
	}
}

func TestRunFull_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	feed := &fakeFeed{pages: map[int][]ocds.Release{1: {goodRelease("ocds-1")}}}
	store := &fakeStore{}

	_, err := NewOrchestrator(feed, store).RunFull(ctx, 50)
	if err == nil {
		t.Fatal("Expected error for cancelled context")
	}

	var syncErr *SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("Expected SyncError, got %T", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("Expected context.Canceled in the chain")
	}
	if feed.fetches != 0 {
		t.Errorf("Expected no fetches after cancellation, got %d", feed.fetches)
	}
}

func TestRunPage_StatusUsesInjectedClock(t *testing.T) {
	closing := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	release := goodRelease("ocds-1")
	release.Tender.TenderPeriod = &ocds.Period{EndDate: &closing}

	feed := &fakeFeed{pages: map[int][]ocds.Release{1: {release}}}
	store := &fakeStore{}

	orchestrator := NewOrchestrator(feed, store)
	orchestrator.now = func() time.Time { return closing.Add(-24 * time.Hour) }

	if _, err := orchestrator.RunPage(context.Background(), 1, 50); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if store.upserts[0].Status != "open" {
		t.Errorf("Expected 'open' before closing date, got %q", store.upserts[0].Status)
	}

	store.upserts = nil
	orchestrator.now = func() time.Time { return closing.Add(40 * 24 * time.Hour) }

	if _, err := orchestrator.RunPage(context.Background(), 1, 50); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if store.upserts[0].Status != "closed" {
		t.Errorf("Expected 'closed' after closing date, got %q", store.upserts[0].Status)
	}
}
