package influxdb

import (
	"context"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-inventory/internal/device"
)

// Measurement names.
const (
	measurementEvents    = "registry_events"
	measurementInventory = "inventory"
)

// Record writes a registry outcome as a point. It implements device.Recorder.
func (c *Client) Record(_ context.Context, ev device.Event) {
	c.write(eventPoint(ev))
}

// WriteStats writes a registry snapshot stamped now.
func (c *Client) WriteStats(stats device.Stats) {
	c.write(statsPoint(stats, time.Now()))
}

// eventPoint maps an event to registry_events. Operation and outcome are
// tags; the device ID is a field to keep series cardinality fixed.
func eventPoint(ev device.Event) *write.Point {
	tags := map[string]string{
		"operation": string(ev.Operation),
		"outcome":   string(ev.Outcome),
	}
	if ev.Kind != "" {
		tags["kind"] = string(ev.Kind)
	}

	fields := map[string]interface{}{"count": 1}
	if ev.DeviceID != "" {
		fields["device_id"] = ev.DeviceID
	}
	if ev.Field != "" {
		fields["field"] = ev.Field
	}
	if ev.Err != nil {
		fields["error"] = ev.Err.Error()
	}

	at := ev.Time
	if at.IsZero() {
		at = time.Now()
	}
	return write.NewPoint(measurementEvents, tags, fields, at)
}

// statsPoint maps a snapshot to the inventory measurement.
func statsPoint(stats device.Stats, at time.Time) *write.Point {
	fields := map[string]interface{}{
		"total":      stats.Total,
		"capacity":   stats.Capacity,
		"powered_on": stats.PoweredOn,
	}
	for _, kind := range device.AllKinds() {
		fields[string(kind)] = stats.ByKind[kind]
	}
	return write.NewPoint(measurementInventory, map[string]string{"source": "registry"}, fields, at)
}

// RunSnapshots writes stats() every interval until ctx is cancelled.
func (c *Client) RunSnapshots(ctx context.Context, interval time.Duration, stats func() device.Stats) {
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.WriteStats(stats())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.WriteStats(stats())
		}
	}
}
