package tasks

import (
	"context"
	"log/slog"

	"github.com/tendersza/tender-sync/app/database"
	"github.com/tendersza/tender-sync/app/source"
)

// RegisterSourceTask reconciles one source configuration into the
// sync_sources table.
type RegisterSourceTask struct {
	Task
	SourceConfig *source.Config
	sourceRepo   database.SourceRepository
}

func NewRegisterSourceTask(sourceName string, sourceConfig *source.Config, sourceRepo database.SourceRepository) *RegisterSourceTask {
	return &RegisterSourceTask{
		Task:         NewTask(TaskTypeRegisterSource, sourceName),
		SourceConfig: sourceConfig,
		sourceRepo:   sourceRepo,
	}
}

func (t *RegisterSourceTask) Execute(ctx context.Context) error {
	if err := t.sourceRepo.UpsertSource(ctx, t.SourceName, t.SourceConfig.URL); err != nil {
		return err
	}

	slog.Debug("Source registered", "source", t.SourceName, "url", t.SourceConfig.URL)
	return nil
}
