package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"tcoboard/internal/amqp"
	"tcoboard/internal/storage"
)

// ImportProcessor runs one import job to completion.
type ImportProcessor interface {
	ProcessImport(ctx context.Context, id int64) error
}

// PendingLister lists import jobs still waiting for a worker.
type PendingLister interface {
	ListPendingImports(ctx context.Context, limit int) ([]storage.Import, error)
}

// JobConsumer delivers queued import jobs to a handler.
type JobConsumer interface {
	ConsumeImportJobs(ctx context.Context, handler func(*amqp.ImportMessage) error) error
}

// IngestWorker drains the import job queue and periodically sweeps the
// imports table for pending jobs whose queue message was lost.
type IngestWorker struct {
	processor      ImportProcessor
	store          PendingLister
	queue          JobConsumer
	sweepInterval  time.Duration
	sweepBatchSize int
}

func NewIngestWorker(processor ImportProcessor, store PendingLister, queue JobConsumer, sweepInterval time.Duration, sweepBatchSize int) *IngestWorker {
	return &IngestWorker{
		processor:      processor,
		store:          store,
		queue:          queue,
		sweepInterval:  sweepInterval,
		sweepBatchSize: sweepBatchSize,
	}
}

// HandleImportMessage processes a single queued import job.
func (w *IngestWorker) HandleImportMessage(ctx context.Context, msg *amqp.ImportMessage) error {
	slog.InfoContext(ctx, "Processing import message", "import_id", msg.ImportID)
	if err := w.processor.ProcessImport(ctx, msg.ImportID); err != nil {
		return fmt.Errorf("process import %d: %w", msg.ImportID, err)
	}
	return nil
}

// SweepPending processes any pending imports, oldest first. Individual job
// failures are logged and do not stop the sweep.
func (w *IngestWorker) SweepPending(ctx context.Context) error {
	pending, err := w.store.ListPendingImports(ctx, w.sweepBatchSize)
	if err != nil {
		return fmt.Errorf("list pending imports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Sweeping pending imports", "count", len(pending))
	for _, imp := range pending {
		if err := w.processor.ProcessImport(ctx, imp.ID); err != nil {
			slog.ErrorContext(ctx, "Sweep failed to process import", "import_id", imp.ID, "error", err)
		}
	}
	return nil
}

// Run blocks until ctx is cancelled, consuming queue messages and running the
// periodic sweep. A startup sweep recovers jobs left over from a crash.
func (w *IngestWorker) Run(ctx context.Context) error {
	if err := w.SweepPending(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup sweep failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	if w.queue != nil {
		g.Go(func() error {
			err := w.queue.ConsumeImportJobs(ctx, func(msg *amqp.ImportMessage) error {
				return w.HandleImportMessage(ctx, msg)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(w.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := w.SweepPending(ctx); err != nil {
					slog.ErrorContext(ctx, "Periodic sweep failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}
