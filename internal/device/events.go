package device

import (
	"context"
	"time"
)

// Operation names a registry operation in reported events.
type Operation string

// Registry operations.
const (
	OpLoad    Operation = "load"
	OpAdd     Operation = "add"
	OpRemove  Operation = "remove"
	OpEdit    Operation = "edit"
	OpReplace Operation = "replace"
	OpTurnOn  Operation = "turn_on"
	OpTurnOff Operation = "turn_off"
	OpSave    Operation = "save"
)

// Outcome is the result of a registry mutation.
type Outcome string

// Mutation outcomes.
const (
	// OutcomeApplied means the mutation took effect.
	OutcomeApplied Outcome = "applied"

	// OutcomeNotFound means no device has the requested ID. Nothing changed.
	OutcomeNotFound Outcome = "not_found"

	// OutcomeNotApplicable means the device exists but lacks the edited field.
	OutcomeNotApplicable Outcome = "not_applicable"

	// OutcomeRejected means a validation or power rule refused the mutation.
	OutcomeRejected Outcome = "rejected"
)

// Event is one reported registry outcome.
type Event struct {
	Operation Operation
	DeviceID  string
	Kind      Kind
	Field     string // edited field, OpEdit only
	Outcome   Outcome
	Err       error
	Time      time.Time
}

// Recorder receives every registry outcome, including no-ops and rejections.
// Implementations handle their own failures; Record has no error return.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// Notifier receives advisory device notifications.
type Notifier interface {
	LowBattery(deviceID string, percent int)
}

type noopRecorder struct{}

func (noopRecorder) Record(context.Context, Event) {}

type noopNotifier struct{}

func (noopNotifier) LowBattery(string, int) {}

// MultiRecorder fans an event out to several recorders in order.
type MultiRecorder []Recorder

// Record forwards ev to every non-nil recorder.
func (m MultiRecorder) Record(ctx context.Context, ev Event) {
	for _, r := range m {
		if r != nil {
			r.Record(ctx, ev)
		}
	}
}

// MultiNotifier fans a notification out to several notifiers in order.
type MultiNotifier []Notifier

// LowBattery forwards the notification to every non-nil notifier.
func (m MultiNotifier) LowBattery(deviceID string, percent int) {
	for _, n := range m {
		if n != nil {
			n.LowBattery(deviceID, percent)
		}
	}
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ctx context.Context, ev Event)

// Record calls f(ctx, ev).
func (f RecorderFunc) Record(ctx context.Context, ev Event) { f(ctx, ev) }

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(deviceID string, percent int)

// LowBattery calls f(deviceID, percent).
func (f NotifierFunc) LowBattery(deviceID string, percent int) { f(deviceID, percent) }
