package device

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Deps holds the collaborators of a Registry. Nil fields get no-op defaults;
// a nil Loader starts empty and a nil Saver makes Save fail.
type Deps struct {
	Loader      Loader
	Saver       Saver
	Source      string // path handed to Loader
	Destination string // path handed to Saver
	Logger      Logger
	Recorder    Recorder
	Notifier    Notifier
}

// Registry is the ordered, bounded device inventory.
//
// All public methods are thread-safe.
type Registry struct {
	mu       sync.RWMutex
	devices  []Device // insertion order
	deps     Deps
	logger   Logger
	recorder Recorder
	notifier Notifier
	now      func() time.Time
}

// New creates an empty registry.
func New(deps Deps) *Registry {
	r := &Registry{
		deps:     deps,
		logger:   deps.Logger,
		recorder: deps.Recorder,
		notifier: deps.Notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if r.logger == nil {
		r.logger = noopLogger{}
	}
	if r.recorder == nil {
		r.recorder = noopRecorder{}
	}
	if r.notifier == nil {
		r.notifier = noopNotifier{}
	}
	return r
}

// Open creates a registry and loads it from deps.Source. Loaded devices that
// would exceed MaxDevices or repeat an ID are skipped and reported.
func Open(ctx context.Context, deps Deps) (*Registry, error) {
	r := New(deps)
	if deps.Loader == nil {
		return r, nil
	}

	devices, err := deps.Loader.Load(ctx, deps.Source)
	if err != nil {
		return nil, fmt.Errorf("loading devices: %w", err)
	}

	var events []Event
	r.mu.Lock()
	for _, d := range devices {
		ev := r.event(OpLoad, d)
		if err := r.insertLocked(d); err != nil {
			ev.Outcome, ev.Err = OutcomeRejected, err
		} else {
			ev.Outcome = OutcomeApplied
		}
		events = append(events, ev)
	}
	count := len(r.devices)
	r.mu.Unlock()

	for _, ev := range events {
		r.report(ctx, ev)
	}
	r.logger.Info("device registry loaded", "source", deps.Source, "count", count)
	return r, nil
}

// Add validates d, assigns an ID if it has none, and appends it.
//
// An empty ID becomes "<Prefix>-<n>" where n is one more than the highest
// number already used with the prefix. A non-empty ID must match d's kind and
// be unused. The assigned ID is visible through d.ID() on success; the
// registry stores its own copy of d.
func (r *Registry) Add(ctx context.Context, d Device) error {
	if d == nil {
		return ErrInvalidDevice
	}

	r.mu.Lock()
	err := r.insertLocked(d)
	r.mu.Unlock()

	ev := r.event(OpAdd, d)
	if err != nil {
		ev.Outcome, ev.Err = OutcomeRejected, err
		r.report(ctx, ev)
		return err
	}
	ev.Outcome = OutcomeApplied
	r.report(ctx, ev)
	return nil
}

// insertLocked appends d. Caller must hold r.mu for writing.
func (r *Registry) insertLocked(d Device) error {
	if len(r.devices) >= MaxDevices {
		return fmt.Errorf("%w: registry holds %d devices", ErrCapacityExceeded, MaxDevices)
	}
	if err := d.validate(); err != nil {
		return err
	}

	if d.ID() == "" {
		d.setID(FormatID(d.Kind(), r.nextNumberLocked(d.Kind())))
	} else {
		if err := ValidateID(d.ID(), d.Kind()); err != nil {
			return err
		}
		if r.indexLocked(d.ID()) >= 0 {
			return fmt.Errorf("%w: %s", ErrDeviceExists, d.ID())
		}
	}

	stored := d.clone()
	stored.bind(r.notifier)
	r.devices = append(r.devices, stored)
	return nil
}

// nextNumberLocked returns one more than the highest number in use for kind.
func (r *Registry) nextNumberLocked(kind Kind) int {
	highest := 0
	for _, d := range r.devices {
		if d.Kind() != kind {
			continue
		}
		if _, n, err := ParseID(d.ID()); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}

func (r *Registry) indexLocked(id string) int {
	for i, d := range r.devices {
		if d.ID() == id {
			return i
		}
	}
	return -1
}

// Remove deletes the device with id. An unknown id changes nothing and is
// reported as OutcomeNotFound.
func (r *Registry) Remove(ctx context.Context, id string) Outcome {
	ev := Event{Operation: OpRemove, DeviceID: id, Outcome: OutcomeNotFound}

	r.mu.Lock()
	if i := r.indexLocked(id); i >= 0 {
		ev.Kind = r.devices[i].Kind()
		ev.Outcome = OutcomeApplied
		r.devices = append(r.devices[:i], r.devices[i+1:]...)
	}
	r.mu.Unlock()

	r.report(ctx, ev)
	return ev.Outcome
}

// EditField applies a single-field edit to the device with id.
// Unknown ids and edits for another kind are reported no-ops with a nil
// error. Setter validation failures are returned and leave the device
// unchanged.
func (r *Registry) EditField(ctx context.Context, id string, edit Edit) (Outcome, error) {
	if edit == nil {
		return OutcomeRejected, fmt.Errorf("%w: no edit given", ErrUnknownField)
	}
	ev := Event{Operation: OpEdit, DeviceID: id, Field: edit.Field(), Outcome: OutcomeNotFound}

	r.mu.Lock()
	if i := r.indexLocked(id); i >= 0 {
		d := r.devices[i]
		ev.Kind = d.Kind()
		applicable, err := edit.apply(d)
		switch {
		case !applicable:
			ev.Outcome = OutcomeNotApplicable
		case err != nil:
			ev.Outcome, ev.Err = OutcomeRejected, err
		default:
			ev.Outcome = OutcomeApplied
		}
	}
	r.mu.Unlock()

	r.report(ctx, ev)
	return ev.Outcome, ev.Err
}

// Replace swaps the device with id for d, keeping the id and position.
// d must be of the same kind as the device it replaces.
func (r *Registry) Replace(ctx context.Context, id string, d Device) (Outcome, error) {
	if d == nil {
		return OutcomeRejected, ErrInvalidDevice
	}
	ev := Event{Operation: OpReplace, DeviceID: id, Kind: d.Kind(), Outcome: OutcomeNotFound}

	r.mu.Lock()
	if i := r.indexLocked(id); i >= 0 {
		existing := r.devices[i]
		switch {
		case existing.Kind() != d.Kind():
			ev.Outcome = OutcomeRejected
			ev.Err = fmt.Errorf("%w: cannot replace %s with a %s", ErrInvalidID, id, d.Kind())
		default:
			if err := d.validate(); err != nil {
				ev.Outcome, ev.Err = OutcomeRejected, err
				break
			}
			d.setID(id)
			stored := d.clone()
			stored.bind(r.notifier)
			r.devices[i] = stored
			ev.Outcome = OutcomeApplied
		}
	}
	r.mu.Unlock()

	r.report(ctx, ev)
	return ev.Outcome, ev.Err
}

// TurnOn applies the device's power rule. A refusal is reported as
// OutcomeRejected and also returned.
func (r *Registry) TurnOn(ctx context.Context, id string) (Outcome, error) {
	r.mu.Lock()
	ev := r.turnOnLocked(id)
	r.mu.Unlock()

	r.report(ctx, ev)
	return ev.Outcome, ev.Err
}

func (r *Registry) turnOnLocked(id string) Event {
	ev := Event{Operation: OpTurnOn, DeviceID: id, Outcome: OutcomeNotFound}
	i := r.indexLocked(id)
	if i < 0 {
		return ev
	}
	d := r.devices[i]
	ev.Kind = d.Kind()
	if err := d.TurnOn(); err != nil {
		ev.Outcome, ev.Err = OutcomeRejected, err
		return ev
	}
	ev.Outcome = OutcomeApplied
	return ev
}

// TurnOff switches the device off. An unknown id is reported as OutcomeNotFound.
func (r *Registry) TurnOff(ctx context.Context, id string) Outcome {
	ev := Event{Operation: OpTurnOff, DeviceID: id, Outcome: OutcomeNotFound}

	r.mu.Lock()
	if i := r.indexLocked(id); i >= 0 {
		r.devices[i].TurnOff()
		ev.Kind = r.devices[i].Kind()
		ev.Outcome = OutcomeApplied
	}
	r.mu.Unlock()

	r.report(ctx, ev)
	return ev.Outcome
}

// TurnOnAll attempts TurnOn on every device in order. Refusals are reported
// and collected; they never stop the batch.
func (r *Registry) TurnOnAll(ctx context.Context) []Event {
	r.mu.Lock()
	events := make([]Event, 0, len(r.devices))
	for _, d := range r.devices {
		events = append(events, r.turnOnLocked(d.ID()))
	}
	r.mu.Unlock()

	for _, ev := range events {
		r.report(ctx, ev)
	}
	return events
}

// TurnOffAll switches every device off.
func (r *Registry) TurnOffAll(ctx context.Context) []Event {
	r.mu.Lock()
	events := make([]Event, 0, len(r.devices))
	for _, d := range r.devices {
		d.TurnOff()
		events = append(events, Event{Operation: OpTurnOff, DeviceID: d.ID(), Kind: d.Kind(), Outcome: OutcomeApplied})
	}
	r.mu.Unlock()

	for _, ev := range events {
		r.report(ctx, ev)
	}
	return events
}

// Get returns a copy of the device with id, or ErrDeviceNotFound.
func (r *Registry) Get(_ context.Context, id string) (Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexLocked(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	return r.devices[i].clone(), nil
}

// List returns copies of all devices in insertion order.
// Callers can safely modify them.
func (r *Registry) List(_ context.Context) []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() []Device {
	out := make([]Device, len(r.devices))
	for i, d := range r.devices {
		out[i] = d.clone()
	}
	return out
}

// Save writes the current devices to deps.Destination through the Saver.
func (r *Registry) Save(ctx context.Context) error {
	ev := Event{Operation: OpSave, Outcome: OutcomeApplied}
	if r.deps.Saver == nil {
		ev.Outcome, ev.Err = OutcomeRejected, ErrStoreNotConfigured
		r.report(ctx, ev)
		return ErrStoreNotConfigured
	}

	r.mu.RLock()
	devices := r.snapshotLocked()
	r.mu.RUnlock()

	if err := r.deps.Saver.Save(ctx, r.deps.Destination, devices); err != nil {
		ev.Outcome, ev.Err = OutcomeRejected, err
		r.report(ctx, ev)
		return fmt.Errorf("saving devices: %w", err)
	}

	r.report(ctx, ev)
	r.logger.Info("device registry saved", "destination", r.deps.Destination, "count", len(devices))
	return nil
}

// Count returns the number of devices.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// Stats holds registry statistics for monitoring.
type Stats struct {
	Total     int          `json:"total"`
	Capacity  int          `json:"capacity"`
	PoweredOn int          `json:"powered_on"`
	ByKind    map[Kind]int `json:"by_kind"`
}

// Stats returns current registry statistics.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{
		Total:    len(r.devices),
		Capacity: MaxDevices,
		ByKind:   make(map[Kind]int, len(AllKinds())),
	}
	for _, k := range AllKinds() {
		stats.ByKind[k] = 0
	}
	for _, d := range r.devices {
		stats.ByKind[d.Kind()]++
		if d.IsOn() {
			stats.PoweredOn++
		}
	}
	return stats
}

func (r *Registry) event(op Operation, d Device) Event {
	return Event{Operation: op, DeviceID: d.ID(), Kind: d.Kind()}
}

// report logs ev and hands it to the recorder.
func (r *Registry) report(ctx context.Context, ev Event) {
	if ev.Time.IsZero() {
		ev.Time = r.now()
	}

	args := []any{"operation", ev.Operation, "outcome", ev.Outcome}
	if ev.DeviceID != "" {
		args = append(args, "id", ev.DeviceID)
	}
	if ev.Field != "" {
		args = append(args, "field", ev.Field)
	}
	switch ev.Outcome {
	case OutcomeApplied:
		r.logger.Debug("device operation applied", args...)
	case OutcomeRejected:
		r.logger.Warn("device operation rejected", append(args, "error", ev.Err)...)
	default:
		r.logger.Warn("device operation skipped", args...)
	}

	r.recorder.Record(ctx, ev)
}
