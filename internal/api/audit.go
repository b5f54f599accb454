package api

import (
	"net/http"

	"github.com/nerrad567/gray-logic-inventory/internal/audit"
)

// handleListAudit returns a page of the audit trail, newest first.
//
// Query parameters:
//   - operation: add, remove, edit, replace, turn_on, turn_off, load, save
//   - device_id: filter by device
//   - outcome: applied, not_found, not_applicable, rejected
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "audit log not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Operation: q.Get("operation"),
		DeviceID:  q.Get("device_id"),
		Outcome:   q.Get("outcome"),
		Limit:     queryInt(r, "limit"),
		Offset:    queryInt(r, "offset"),
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit entries", "error", err)
		writeInternalError(w, "failed to list audit entries")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
