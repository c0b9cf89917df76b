package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Recorder queues entries and delivers them to the sink from a background
// goroutine. Record never blocks the response path: when the buffer is full
// the entry is dropped with a local log line, and sink failures are dropped
// the same way. That is the accepted tradeoff — a forwarded write can
// succeed while its audit entry is lost.
type Recorder struct {
	sink    Sink
	entries chan Entry
	wg      sync.WaitGroup
	logger  *slog.Logger

	onEmit func()
	onDrop func()
}

// RecorderOption configures the Recorder.
type RecorderOption func(*Recorder)

// WithBuffer sets the queue size. Default is 256.
func WithBuffer(size int) RecorderOption {
	return func(r *Recorder) {
		if size > 0 {
			r.entries = make(chan Entry, size)
		}
	}
}

// WithCounters registers hooks invoked on successful delivery and on drop,
// used to feed gateway metrics without coupling this package to prometheus.
func WithCounters(onEmit, onDrop func()) RecorderOption {
	return func(r *Recorder) {
		r.onEmit = onEmit
		r.onDrop = onDrop
	}
}

// NewRecorder starts the delivery goroutine.
func NewRecorder(sink Sink, logger *slog.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		sink:    sink,
		entries: make(chan Entry, 256),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.wg.Add(1)
	go r.deliver()
	return r
}

func (r *Recorder) deliver() {
	defer r.wg.Done()
	for entry := range r.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := r.sink.Send(ctx, entry)
		cancel()
		if err != nil {
			// Best-effort channel: log and move on, never retry.
			r.logger.Warn("audit delivery failed, entry dropped",
				"error", err,
				"action", entry.Action,
				"subject_id", entry.SubjectID,
			)
			if r.onDrop != nil {
				r.onDrop()
			}
			continue
		}
		if r.onEmit != nil {
			r.onEmit()
		}
	}
}

// Record queues an entry without blocking. A full buffer drops the entry.
func (r *Recorder) Record(entry Entry) {
	select {
	case r.entries <- entry:
	default:
		r.logger.Warn("audit buffer full, entry dropped",
			"action", entry.Action,
			"subject_id", entry.SubjectID,
		)
		if r.onDrop != nil {
			r.onDrop()
		}
	}
}

// Close drains pending entries and stops the delivery goroutine.
func (r *Recorder) Close() {
	close(r.entries)
	r.wg.Wait()
}
