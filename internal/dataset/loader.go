package dataset

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"
)

// Loader runs a Source on its own goroutine. The dataset is published only
// after the source returns successfully; a canceled load discards whatever
// was read.
type Loader struct {
	source   Source
	progress atomic.Int64
	cancel   context.CancelFunc
	done     chan struct{}
	logger   *slog.Logger

	ds  *Dataset
	err error
}

// StartLoader begins loading src in the background.
func StartLoader(ctx context.Context, src Source, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(ctx)
	l := &Loader{
		source: src,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: logger,
	}

	go l.run(ctx)
	return l
}

func (l *Loader) run(ctx context.Context) {
	defer close(l.done)
	defer l.cancel()

	start := time.Now()
	l.logger.Debug("dataset load started", "source", l.source.Name())

	ds, err := l.source.Load(ctx, &l.progress)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		l.err = err
		l.logger.Warn("dataset load failed", "source", l.source.Name(), "records", l.progress.Load(), "err", err)
		return
	}

	l.ds = ds
	l.logger.Info("dataset loaded",
		"source", l.source.Name(),
		"spikes", len(ds.Spikes),
		"neurons", ds.NumNeurons(),
		"elapsed", time.Since(start))
}

// Progress returns the number of records read so far. It only grows.
func (l *Loader) Progress() int64 { return l.progress.Load() }

func (l *Loader) Done() <-chan struct{} { return l.done }

// Cancel aborts the load. Wait then reports the context error.
func (l *Loader) Cancel() { l.cancel() }

// Wait blocks until the load finishes and returns the published dataset.
func (l *Loader) Wait() (*Dataset, error) {
	<-l.done
	return l.ds, l.err
}

// Load is the synchronous form of StartLoader(...).Wait().
func Load(ctx context.Context, src Source, logger *slog.Logger) (*Dataset, error) {
	return StartLoader(ctx, src, logger).Wait()
}
