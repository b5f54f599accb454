package audit

import (
	"context"
	"time"

	"github.com/nerrad567/gray-logic-inventory/internal/device"
)

// insertTimeout bounds a single audit insert so a slow disk cannot stall
// the caller that reported the event.
const insertTimeout = 5 * time.Second

// Logger is the subset of logging used by Recorder.
type Logger interface {
	Warn(msg string, args ...any)
}

// Recorder persists registry events through a Repository.
// It implements device.Recorder.
type Recorder struct {
	repo   Repository
	logger Logger
}

// NewRecorder creates a recorder writing to repo. Insert failures are
// logged to logger and otherwise ignored.
func NewRecorder(repo Repository, logger Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record stores ev as an audit entry.
func (r *Recorder) Record(ctx context.Context, ev device.Event) {
	// Detach from request cancellation so an aborted HTTP call still leaves
	// its outcome on record.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), insertTimeout)
	defer cancel()

	entry := EntryFromEvent(ev)
	if err := r.repo.Create(ctx, &entry); err != nil && r.logger != nil {
		r.logger.Warn("failed to record audit entry",
			"operation", string(ev.Operation),
			"device_id", ev.DeviceID,
			"error", err,
		)
	}
}

// EntryFromEvent converts a registry event to an audit entry.
func EntryFromEvent(ev device.Event) Entry {
	e := Entry{
		Operation: string(ev.Operation),
		DeviceID:  ev.DeviceID,
		Kind:      string(ev.Kind),
		Field:     ev.Field,
		Outcome:   string(ev.Outcome),
		CreatedAt: ev.Time.UTC(),
	}
	if ev.Err != nil {
		e.Error = ev.Err.Error()
	}
	return e
}
