// Package notify publishes registry activity to MQTT and applies power
// commands received from it.
package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-inventory/internal/device"
	"github.com/nerrad567/gray-logic-inventory/internal/infrastructure/mqtt"
)

// DefaultQueueSize is the number of messages buffered before new ones are dropped.
const DefaultQueueSize = 256

// Publisher sends a JSON payload to a topic. *mqtt.Client implements it.
type Publisher interface {
	PublishJSON(topic string, v any) error
}

// Logger is the logging subset used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// EventMessage is published on {prefix}/event/{operation}.
type EventMessage struct {
	Operation string `json:"operation"`
	DeviceID  string `json:"device_id,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Field     string `json:"field,omitempty"`
	Outcome   string `json:"outcome"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// LowBatteryMessage is published on {prefix}/device/{id}/low_battery.
type LowBatteryMessage struct {
	DeviceID  string `json:"device_id"`
	Percent   int    `json:"percent"`
	Threshold int    `json:"threshold"`
	Timestamp string `json:"timestamp"`
}

type outbound struct {
	topic   string
	payload any
}

// Bridge implements device.Recorder and device.Notifier by queueing MQTT
// publishes for a single worker goroutine. The registry calls notifiers
// while holding its lock, so neither method blocks on the broker.
type Bridge struct {
	pub    Publisher
	topics mqtt.Topics
	logger Logger
	now    func() time.Time

	queue   chan outbound
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	started atomic.Bool
	dropped atomic.Uint64
}

// NewBridge creates a bridge publishing through pub. Call Start before use
// and Stop on shutdown.
func NewBridge(pub Publisher, topics mqtt.Topics, logger Logger, queueSize int) *Bridge {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Bridge{
		pub:    pub,
		topics: topics,
		logger: logger,
		now:    time.Now,
		queue:  make(chan outbound, queueSize),
		done:   make(chan struct{}),
	}
}

// Start launches the publishing worker. Calling it more than once has no effect.
func (b *Bridge) Start() {
	if !b.started.CompareAndSwap(false, true) {
		return
	}
	go b.run()
}

func (b *Bridge) run() {
	defer close(b.done)
	for msg := range b.queue {
		if err := b.pub.PublishJSON(msg.topic, msg.payload); err != nil {
			b.logger.Warn("mqtt publish failed", "topic", msg.topic, "error", err)
			continue
		}
		b.logger.Debug("mqtt message published", "topic", msg.topic)
	}
}

// Stop stops accepting messages and waits until the queue is drained or ctx ends.
func (b *Bridge) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.mu.Unlock()

	if !b.started.Load() {
		return nil
	}
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped returns how many messages were discarded because the queue was
// full or the bridge was stopped.
func (b *Bridge) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *Bridge) enqueue(topic string, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		b.dropped.Add(1)
		return
	}
	select {
	case b.queue <- outbound{topic: topic, payload: payload}:
	default:
		b.dropped.Add(1)
		b.logger.Warn("mqtt queue full, message dropped", "topic", topic)
	}
}

// Record publishes a registry outcome.
func (b *Bridge) Record(_ context.Context, ev device.Event) {
	msg := EventMessage{
		Operation: string(ev.Operation),
		DeviceID:  ev.DeviceID,
		Kind:      string(ev.Kind),
		Field:     ev.Field,
		Outcome:   string(ev.Outcome),
		Timestamp: ev.Time.UTC().Format(time.RFC3339Nano),
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}
	b.enqueue(b.topics.Event(string(ev.Operation)), msg)
}

// LowBattery publishes a low battery alert.
func (b *Bridge) LowBattery(deviceID string, percent int) {
	b.enqueue(b.topics.LowBattery(deviceID), LowBatteryMessage{
		DeviceID:  deviceID,
		Percent:   percent,
		Threshold: device.LowBatteryThreshold,
		Timestamp: b.now().UTC().Format(time.RFC3339Nano),
	})
}
