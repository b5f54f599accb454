// Package audit keeps a queryable history of registry outcomes.
//
// Every add, remove, edit, replace, power change, load and save the
// registry reports is written to the audit_events table, including no-ops
// and rejections. The API exposes the trail at GET /api/v1/audit.
//
// # Usage
//
//	repo := audit.NewSQLiteRepository(db.DB)
//	rec := audit.NewRecorder(repo, logger)
//	reg, err := device.Open(ctx, device.Deps{Recorder: rec, ...})
//
//	page, err := repo.List(ctx, audit.Filter{DeviceID: "SW-1"})
package audit
