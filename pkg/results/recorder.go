package results

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"lendstack-hq/atlas/pkg/match"
)

// RecorderConfig contains configuration for the async recorder.
type RecorderConfig struct {
	// Enabled enables recording. Default: true.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for persisting one record.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder persists evaluation results asynchronously. Record returns
// immediately; a background worker drains the channel into storage. When
// the buffer is full the record is dropped and counted rather than
// blocking the matching path.
type Recorder struct {
	storage    Storage
	config     *RecorderConfig
	recordChan chan *MatchRecord
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger

	mu      sync.Mutex
	dropped int64
}

// NewRecorder creates a recorder with the provided storage backend and
// starts its background worker.
func NewRecorder(storage Storage, config *RecorderConfig) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *MatchRecord, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "results.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("results recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)
	return r
}

// Record enqueues an evaluation result for async persistence. It never
// blocks: a full buffer drops the record and increments the drop counter.
func (r *Recorder) Record(result *match.Result) {
	if !r.config.Enabled || result == nil {
		return
	}

	record := newRecord(result)
	select {
	case r.recordChan <- record:
		r.logger.Debug("match record enqueued",
			"record_id", record.ID,
			"application_id", record.ApplicationID,
		)
	default:
		r.mu.Lock()
		r.dropped++
		dropped := r.dropped
		r.mu.Unlock()
		r.logger.Error("match record channel full, dropping record",
			"record_id", record.ID,
			"application_id", record.ApplicationID,
			"dropped_total", dropped,
		)
	}
}

// Dropped returns the number of records dropped due to a full buffer.
func (r *Recorder) Dropped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Close drains pending records and stops the worker.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	return nil
}

// worker drains the record channel into storage until Close.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.write(record)
		case <-r.done:
			// Drain whatever is still buffered before exiting.
			for {
				select {
				case record := <-r.recordChan:
					r.write(record)
				default:
					return
				}
			}
		}
	}
}

// write persists one record with the configured timeout.
func (r *Recorder) write(record *MatchRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store match record",
			"record_id", record.ID,
			"application_id", record.ApplicationID,
			"error", err,
		)
		return
	}
	r.logger.Debug("match record stored", "record_id", record.ID)
}

// newRecord converts an evaluation result into a persistable record.
func newRecord(result *match.Result) *MatchRecord {
	record := &MatchRecord{
		ID:               uuid.New().String(),
		ApplicationID:    result.ApplicationID,
		PolicySetVersion: result.PolicySetVersion,
		EvaluatedAt:      result.EvaluatedAt,
		DurationMS:       result.Duration.Milliseconds(),
		TotalEvaluated:   result.TotalEvaluated,
		TotalEligible:    result.TotalEligible,
		Matches:          result.Matches,
	}
	if result.BestMatch != nil {
		record.BestLenderID = result.BestMatch.LenderID
		record.BestFitScore = result.BestMatch.FitScore
	}
	return record
}
