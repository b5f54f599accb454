package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-inventory/internal/device"
)

// DeviceSummary is the short form returned by the device list.
type DeviceSummary struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Type device.Kind `json:"type"`
	IsOn bool        `json:"is_on"`
}

// DeviceView is the full form of a single device. Kind-specific fields are
// present only for the kind that has them.
type DeviceView struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Type            device.Kind `json:"type"`
	IsOn            bool        `json:"is_on"`
	Battery         *int        `json:"battery,omitempty"`
	OperatingSystem *string     `json:"operating_system,omitempty"`
	IPAddress       *string     `json:"ip_address,omitempty"`
	NetworkName     *string     `json:"network_name,omitempty"`
	Summary         string      `json:"summary"`
}

// DeviceRequest is the body of create and replace requests.
type DeviceRequest struct {
	ID              string `json:"id,omitempty"`
	Type            string `json:"type,omitempty"`
	Name            string `json:"name"`
	IsOn            bool   `json:"is_on"`
	Battery         *int   `json:"battery,omitempty"`
	OperatingSystem string `json:"operating_system,omitempty"`
	IPAddress       string `json:"ip_address,omitempty"`
	NetworkName     string `json:"network_name,omitempty"`
}

// FieldEditRequest is the body of PATCH /devices/{id}/fields. Value may be a
// JSON string or number.
type FieldEditRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// BatchResult is one device's outcome in a bulk power change.
type BatchResult struct {
	ID      string         `json:"id"`
	Outcome device.Outcome `json:"outcome"`
	Error   string         `json:"error,omitempty"`
}

func summaryOf(d device.Device) DeviceSummary {
	return DeviceSummary{ID: d.ID(), Name: d.Name(), Type: d.Kind(), IsOn: d.IsOn()}
}

func viewOf(d device.Device) DeviceView {
	v := DeviceView{
		ID:      d.ID(),
		Name:    d.Name(),
		Type:    d.Kind(),
		IsOn:    d.IsOn(),
		Summary: d.Describe(),
	}
	switch t := d.(type) {
	case *device.Smartwatch:
		battery := t.Battery()
		v.Battery = &battery
	case *device.PersonalComputer:
		os := t.OperatingSystem()
		v.OperatingSystem = &os
	case *device.EmbeddedDevice:
		ip, network := t.IPAddress(), t.NetworkName()
		v.IPAddress, v.NetworkName = &ip, &network
	}
	return v
}

// parseKind accepts an ID prefix (SW, P, ED) or a kind name.
func parseKind(s string) (device.Kind, error) {
	if kind, ok := device.KindForPrefix(strings.ToUpper(s)); ok {
		return kind, nil
	}
	for _, kind := range device.AllKinds() {
		if strings.EqualFold(string(kind), s) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", device.ErrUnknownKind, s)
}

// build constructs a device of kind from the request. Embedded devices are
// always created off; switch them on through the power endpoint.
func (req DeviceRequest) build(kind device.Kind, id string) (device.Device, error) {
	switch kind {
	case device.KindSmartwatch:
		if req.Battery == nil {
			return nil, fmt.Errorf("%w: battery is required", device.ErrInvalidDevice)
		}
		return device.NewSmartwatch(id, req.Name, req.IsOn, *req.Battery)
	case device.KindPersonalComputer:
		return device.NewPersonalComputer(id, req.Name, req.IsOn, req.OperatingSystem)
	case device.KindEmbedded:
		return device.NewEmbeddedDevice(id, req.Name, req.IPAddress, req.NetworkName)
	default:
		return nil, fmt.Errorf("%w: %q", device.ErrUnknownKind, kind)
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// handleListDevices returns the short form of every device.
//
// Query parameters:
//   - type: filter by kind (SW, P, ED or the kind name)
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	var (
		filter device.Kind
		err    error
	)
	if t := r.URL.Query().Get("type"); t != "" {
		if filter, err = parseKind(t); err != nil {
			writeDeviceError(w, err)
			return
		}
	}

	devices := s.registry.List(r.Context())
	out := make([]DeviceSummary, 0, len(devices))
	for _, d := range devices {
		if filter != "" && d.Kind() != filter {
			continue
		}
		out = append(out, summaryOf(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": out, "count": len(out)})
}

// handleDeviceStats returns registry statistics.
func (s *Server) handleDeviceStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Stats())
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.registry.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(d))
}

// handleCreateDevice adds a device of the kind in the path. An empty id in
// the body is assigned by the registry.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	var req DeviceRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	d, err := req.build(kind, req.ID)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	if err := s.registry.Add(r.Context(), d); err != nil {
		writeDeviceError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/devices/"+d.ID())
	writeJSON(w, http.StatusCreated, viewOf(d))
}

// handleReplaceDevice replaces a device's data, keeping its id. The body's
// type defaults to the existing device's kind.
func (s *Server) handleReplaceDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := s.registry.Get(ctx, id)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	var req DeviceRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.ID != "" && req.ID != id {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "id in body does not match path")
		return
	}

	kind := existing.Kind()
	if req.Type != "" {
		if kind, err = parseKind(req.Type); err != nil {
			writeDeviceError(w, err)
			return
		}
	}

	d, err := req.build(kind, "")
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	outcome, err := s.registry.Replace(ctx, id, d)
	switch {
	case outcome == device.OutcomeNotFound:
		writeNotFound(w, "device not found")
		return
	case err != nil:
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(d))
}

// handleEditField applies a single field edit.
func (s *Server) handleEditField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req FieldEditRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	value, err := rawValue(req.Value)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	// A missing device answers 404 whatever the field.
	if _, err := s.registry.Get(ctx, id); errors.Is(err, device.ErrDeviceNotFound) {
		writeNotFound(w, "device not found")
		return
	}

	edit, err := device.ParseEdit(req.Field, value)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	outcome, err := s.registry.EditField(ctx, id, edit)
	switch outcome {
	case device.OutcomeNotFound:
		writeNotFound(w, "device not found")
		return
	case device.OutcomeNotApplicable:
		writeError(w, http.StatusBadRequest, ErrCodeNotApplicable,
			fmt.Sprintf("%s has no field %s", id, edit.Field()))
		return
	case device.OutcomeRejected:
		writeDeviceError(w, err)
		return
	}

	d, err := s.registry.Get(ctx, id)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(d))
}

// rawValue renders a JSON string or number as the text ParseEdit expects.
func rawValue(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("value is required")
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str, nil
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.String(), nil
	}
	return "", errors.New("value must be a string or number")
}

// handleDeleteDevice removes a device by ID.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	if s.registry.Remove(r.Context(), chi.URLParam(r, "id")) == device.OutcomeNotFound {
		writeNotFound(w, "device not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTurnOn applies the device's power rule.
func (s *Server) handleTurnOn(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.registry.TurnOn(r.Context(), chi.URLParam(r, "id"))
	switch {
	case outcome == device.OutcomeNotFound:
		writeNotFound(w, "device not found")
	case err != nil:
		writeDeviceError(w, err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleTurnOff switches a device off.
func (s *Server) handleTurnOff(w http.ResponseWriter, r *http.Request) {
	if s.registry.TurnOff(r.Context(), chi.URLParam(r, "id")) == device.OutcomeNotFound {
		writeNotFound(w, "device not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTurnOnAll attempts to switch every device on and reports each result.
func (s *Server) handleTurnOnAll(w http.ResponseWriter, r *http.Request) {
	writeBatch(w, s.registry.TurnOnAll(r.Context()))
}

// handleTurnOffAll switches every device off.
func (s *Server) handleTurnOffAll(w http.ResponseWriter, r *http.Request) {
	writeBatch(w, s.registry.TurnOffAll(r.Context()))
}

func writeBatch(w http.ResponseWriter, events []device.Event) {
	results := make([]BatchResult, 0, len(events))
	applied := 0
	for _, ev := range events {
		res := BatchResult{ID: ev.DeviceID, Outcome: ev.Outcome}
		if ev.Err != nil {
			res.Error = ev.Err.Error()
		}
		if ev.Outcome == device.OutcomeApplied {
			applied++
		}
		results = append(results, res)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results":  results,
		"applied":  applied,
		"rejected": len(results) - applied,
	})
}

// handleSave writes the registry to the configured destination file.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Save(r.Context()); err != nil {
		if !errors.Is(err, device.ErrStoreNotConfigured) {
			s.logger.Error("failed to save devices", "error", err)
		}
		writeDeviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an integer query parameter, returning 0 when absent or malformed.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
