package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/tendersza/tender-sync/app/database"
	"github.com/tendersza/tender-sync/app/ocds"
	"github.com/tendersza/tender-sync/app/source"
	"github.com/tendersza/tender-sync/app/sync"
)

// SyncSourceTask runs a full crawl of one OCDS source and records the run
// outcome against the source row.
type SyncSourceTask struct {
	Task
	SourceConfig *source.Config
	tenderRepo   database.TenderRepository
	sourceRepo   database.SourceRepository
	userAgent    string
}

func NewSyncSourceTask(sourceName string, sourceConfig *source.Config, tenderRepo database.TenderRepository, sourceRepo database.SourceRepository, userAgent string) *SyncSourceTask {
	return &SyncSourceTask{
		Task:         NewTask(TaskTypeSyncSource, sourceName),
		SourceConfig: sourceConfig,
		tenderRepo:   tenderRepo,
		sourceRepo:   sourceRepo,
		userAgent:    userAgent,
	}
}

func (t *SyncSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.SourceName)
		return nil
	}

	client := ocds.NewClient(t.SourceConfig.URL, t.SourceConfig.APIKey, t.userAgent,
		time.Duration(t.SourceConfig.Settings.Timeout)*time.Second)
	orchestrator := sync.NewOrchestrator(client, t.tenderRepo)

	result, err := orchestrator.RunFull(ctx, t.SourceConfig.Settings.PageSize)
	if err != nil {
		return err
	}

	nextFetch := time.Now().UTC().Add(time.Duration(t.SourceConfig.Settings.RefreshInterval) * time.Second)
	if err := t.sourceRepo.UpdateSourceRun(ctx, t.SourceName, result.Processed, result.Failed, nextFetch); err != nil {
		slog.Warn("Failed to record source run", "source", t.SourceName, "error", err)
	}

	slog.Info("Task completed",
		"type", "SyncSource",
		"source", t.SourceName,
		"run_id", result.RunID,
		"duration", t.GetDuration(),
		"fetched", result.TotalFetched,
		"processed", result.Processed,
		"failed", result.Failed)

	return nil
}
