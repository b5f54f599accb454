// Package influxdb writes registry activity to InfluxDB 2.x through
// influxdb-client-go.
//
// Two measurements are produced:
//   - registry_events: one point per registry outcome, tagged by
//     operation, outcome and kind
//   - inventory: periodic device counts taken from Registry.Stats
//
// Points are batched (influxdb.batch_size, influxdb.flush_interval) and
// written asynchronously. Batch failures go to the SetOnError callback;
// Connect and HealthCheck return their errors directly.
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	reg, err := device.Open(ctx, device.Deps{Recorder: client, ...})
//	go client.RunSnapshots(ctx, time.Minute, reg.Stats)
package influxdb
