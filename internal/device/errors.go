package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrCapacityExceeded) {
//	    // registry is full
//	}
var (
	// ErrCapacityExceeded is returned when adding to a registry that already holds MaxDevices.
	ErrCapacityExceeded = errors.New("device: capacity exceeded")

	// ErrDeviceNotFound is returned by queries when a device ID does not exist.
	// Mutations report a missing device as OutcomeNotFound instead.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when adding a device with an ID that is already in use.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrInvalidDevice is returned for a nil device.
	ErrInvalidDevice = errors.New("device: invalid")

	// ErrInvalidID is returned when an ID is malformed or its prefix does not match the kind.
	ErrInvalidID = errors.New("device: invalid id")

	// ErrInvalidName is returned when a name cannot be stored in the line format.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrOutOfRange is returned when a battery percentage is outside 0..100.
	ErrOutOfRange = errors.New("device: value out of range")

	// ErrInvalidFormat is returned when an IP address or free-text field is malformed.
	ErrInvalidFormat = errors.New("device: invalid format")

	// ErrInsufficientPower is returned when a smartwatch is turned on with less than 11% battery.
	ErrInsufficientPower = errors.New("device: insufficient power")

	// ErrMissingOperatingSystem is returned when a computer without an OS is turned on.
	ErrMissingOperatingSystem = errors.New("device: missing operating system")

	// ErrConnectionRefused is returned when an embedded device is on a foreign network.
	ErrConnectionRefused = errors.New("device: connection refused")

	// ErrDecode is returned when a line cannot be decoded into a device.
	ErrDecode = errors.New("device: decode failed")

	// ErrUnknownKind is returned when encoding a value that is not a known device kind.
	ErrUnknownKind = errors.New("device: unknown kind")

	// ErrUnknownField is returned when an edit names a field no device has.
	ErrUnknownField = errors.New("device: unknown field")

	// ErrStoreNotConfigured is returned by Save when the registry has no Saver.
	ErrStoreNotConfigured = errors.New("device: store not configured")
)
