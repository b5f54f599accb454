package influxdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-inventory/internal/device"
	"github.com/nerrad567/gray-logic-inventory/internal/infrastructure/config"
)

func TestEventPoint(t *testing.T) {
	at := time.Unix(1772355600, 0)

	tests := []struct {
		name string
		ev   device.Event
		want string
	}{
		{
			name: "applied add",
			ev: device.Event{
				Operation: device.OpAdd, DeviceID: "SW-1", Kind: device.KindSmartwatch,
				Outcome: device.OutcomeApplied, Time: at,
			},
			want: "registry_events,kind=smartwatch,operation=add,outcome=applied count=1i,device_id=\"SW-1\" 1772355600\n",
		},
		{
			name: "rejected edit",
			ev: device.Event{
				Operation: device.OpEdit, DeviceID: "ED-1", Kind: device.KindEmbedded, Field: device.FieldIPAddress,
				Outcome: device.OutcomeRejected, Err: errors.New("bad ip"), Time: at,
			},
			want: "registry_events,kind=embedded_device,operation=edit,outcome=rejected count=1i,device_id=\"ED-1\",error=\"bad ip\",field=\"IPAddress\" 1772355600\n",
		},
		{
			name: "not found without kind",
			ev:   device.Event{Operation: device.OpRemove, DeviceID: "P-9", Outcome: device.OutcomeNotFound, Time: at},
			want: "registry_events,operation=remove,outcome=not_found count=1i,device_id=\"P-9\" 1772355600\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := write.PointToLineProtocol(eventPoint(tt.ev), time.Second)
			if got != tt.want {
				t.Errorf("eventPoint() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestEventPoint_DefaultsTime(t *testing.T) {
	before := time.Now()
	p := eventPoint(device.Event{Operation: device.OpSave, Outcome: device.OutcomeApplied})
	if p.Time().Before(before) {
		t.Errorf("Time() = %v, want >= %v", p.Time(), before)
	}
}

func TestStatsPoint(t *testing.T) {
	stats := device.Stats{
		Total:     4,
		Capacity:  device.MaxDevices,
		PoweredOn: 2,
		ByKind: map[device.Kind]int{
			device.KindSmartwatch:       2,
			device.KindPersonalComputer: 1,
			device.KindEmbedded:         1,
		},
	}

	got := write.PointToLineProtocol(statsPoint(stats, time.Unix(1772355600, 0)), time.Second)
	want := "inventory,source=registry capacity=15i,embedded_device=1i,personal_computer=1i,powered_on=2i,smartwatch=2i,total=4i 1772355600\n"
	if got != want {
		t.Errorf("statsPoint() =\n%q\nwant\n%q", got, want)
	}
}

func TestClientOptions(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.InfluxDBConfig
		wantBatch uint
		wantFlush uint
	}{
		{name: "configured", cfg: config.InfluxDBConfig{BatchSize: 50, FlushInterval: 2}, wantBatch: 50, wantFlush: 2000},
		{name: "defaults", cfg: config.InfluxDBConfig{BatchSize: 0, FlushInterval: -1}, wantBatch: 100, wantFlush: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := clientOptions(tt.cfg)
			if opts.BatchSize() != tt.wantBatch {
				t.Errorf("BatchSize() = %d, want %d", opts.BatchSize(), tt.wantBatch)
			}
			if opts.FlushInterval() != tt.wantFlush {
				t.Errorf("FlushInterval() = %d, want %d", opts.FlushInterval(), tt.wantFlush)
			}
		})
	}
}

func TestConnect_Disabled(t *testing.T) {
	_, err := Connect(context.Background(), config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestDisconnectedClientIsNoop(t *testing.T) {
	c := &Client{}

	c.Record(context.Background(), device.Event{Operation: device.OpAdd})
	c.WriteStats(device.Stats{})
	c.Flush()

	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestRunSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	stats := func() device.Stats {
		calls++
		if calls == 2 {
			cancel()
		}
		return device.Stats{Total: calls, Capacity: device.MaxDevices}
	}

	done := make(chan struct{})
	go func() {
		(&Client{}).RunSnapshots(ctx, time.Millisecond, stats)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunSnapshots() did not return after the context was cancelled")
	}
	if calls < 2 {
		t.Errorf("stats called %d times, want at least 2", calls)
	}
}
