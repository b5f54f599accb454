// Package api provides the HTTP REST API for the device inventory.
//
// It exposes the registry's operations (list, get, add, replace, field
// edits, power changes, removal and save), the audit trail and, when
// configured, Prometheus metrics.
//
// # Routes
//
//	GET    /api/v1/health
//	GET    /api/v1/devices[?type=SW]
//	GET    /api/v1/devices/stats
//	POST   /api/v1/devices/{kind}          kind: SW, P or ED
//	GET    /api/v1/devices/{id}
//	PUT    /api/v1/devices/{id}
//	PATCH  /api/v1/devices/{id}/fields     {"field":"Battery","value":50}
//	POST   /api/v1/devices/{id}/on|off
//	POST   /api/v1/devices/on|off          every device
//	DELETE /api/v1/devices/{id}
//	POST   /api/v1/devices/save
//	GET    /api/v1/audit
//	GET    /metrics
//
// # Status codes
//
// Validation failures are 400, unknown devices 404, duplicate ids and
// refused power-ons 409, and a full registry 422.
//
// The server follows the same lifecycle as the infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
