// Package logging builds the service's structured logger on log/slog.
//
// Every entry carries service and version fields. Components add their
// own name with Component so entries can be filtered per subsystem:
//
//	log := logging.New(cfg.Logging, version)
//	store.SetLogger(log.Component("filestore"))
//
// Attributes keyed password, token or secret are written as [REDACTED].
// Format "text" selects slog's text handler; any other value yields JSON.
package logging
