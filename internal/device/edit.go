package device

import (
	"fmt"
	"strconv"
	"strings"
)

// Editable field names, matched case-insensitively by ParseEdit.
const (
	FieldBattery     = "Battery"
	FieldOS          = "OperatingSystem"
	FieldIPAddress   = "IPAddress"
	FieldNetworkName = "NetworkName"
)

// Edit is a typed single-field mutation. Each edit applies to one device kind;
// applying it to another kind is a no-op reported as OutcomeNotApplicable.
type Edit interface {
	Field() string
	Value() string

	// apply reports whether the edit targets d's kind, and the setter's error if it does.
	apply(d Device) (bool, error)
}

// BatteryEdit sets a smartwatch's battery percentage.
type BatteryEdit struct{ Percent int }

// OSEdit sets a personal computer's operating system.
type OSEdit struct{ OS string }

// IPEdit sets an embedded device's IP address.
type IPEdit struct{ Address string }

// NetworkEdit sets an embedded device's network name.
type NetworkEdit struct{ Name string }

func (BatteryEdit) Field() string   { return FieldBattery }
func (e BatteryEdit) Value() string { return strconv.Itoa(e.Percent) }

func (e BatteryEdit) apply(d Device) (bool, error) {
	w, ok := d.(*Smartwatch)
	if !ok {
		return false, nil
	}
	return true, w.SetBattery(e.Percent)
}

func (OSEdit) Field() string   { return FieldOS }
func (e OSEdit) Value() string { return e.OS }

func (e OSEdit) apply(d Device) (bool, error) {
	pc, ok := d.(*PersonalComputer)
	if !ok {
		return false, nil
	}
	return true, pc.SetOperatingSystem(e.OS)
}

func (IPEdit) Field() string   { return FieldIPAddress }
func (e IPEdit) Value() string { return e.Address }

func (e IPEdit) apply(d Device) (bool, error) {
	ed, ok := d.(*EmbeddedDevice)
	if !ok {
		return false, nil
	}
	return true, ed.SetIPAddress(e.Address)
}

func (NetworkEdit) Field() string   { return FieldNetworkName }
func (e NetworkEdit) Value() string { return e.Name }

func (e NetworkEdit) apply(d Device) (bool, error) {
	ed, ok := d.(*EmbeddedDevice)
	if !ok {
		return false, nil
	}
	return true, ed.SetNetworkName(e.Name)
}

// fieldAliases maps lower-cased field names to their canonical form.
var fieldAliases = map[string]string{
	"battery":           FieldBattery,
	"batterypercentage": FieldBattery,
	"operatingsystem":   FieldOS,
	"os":                FieldOS,
	"ipaddress":         FieldIPAddress,
	"ip":                FieldIPAddress,
	"networkname":       FieldNetworkName,
	"network":           FieldNetworkName,
}

// ParseEdit builds a typed Edit from an untyped field name and value.
// Field names are case-insensitive. A non-integer battery value returns
// ErrInvalidFormat.
func ParseEdit(field, value string) (Edit, error) {
	canonical, ok := fieldAliases[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	switch canonical {
	case FieldBattery:
		percent, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(value), "%"))
		if err != nil {
			return nil, fmt.Errorf("%w: battery %q is not an integer", ErrInvalidFormat, value)
		}
		return BatteryEdit{Percent: percent}, nil
	case FieldOS:
		return OSEdit{OS: value}, nil
	case FieldIPAddress:
		return IPEdit{Address: value}, nil
	default:
		return NetworkEdit{Name: value}, nil
	}
}
