package device

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Validation constants.
const (
	minBattery = 0
	maxBattery = 100

	// Syntactic only: octets above 255 are accepted.
	ipPattern = `^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`

	// Characters that would split a record or a line in the file format.
	reservedChars = ",\r\n"
)

var ipRegex = regexp.MustCompile(ipPattern)

// ValidateBattery checks that a battery percentage is within 0..100.
func ValidateBattery(percent int) error {
	if percent < minBattery || percent > maxBattery {
		return fmt.Errorf("%w: battery %d not in %d..%d", ErrOutOfRange, percent, minBattery, maxBattery)
	}
	return nil
}

// ValidateIPAddress checks for four dot-separated groups of one to three digits.
func ValidateIPAddress(ip string) error {
	if !ipRegex.MatchString(ip) {
		return fmt.Errorf("%w: ip address %q", ErrInvalidFormat, ip)
	}
	return nil
}

// ValidateName checks that a device name can be stored as one field.
// Empty names are allowed; legacy records may have none.
func ValidateName(name string) error {
	if strings.ContainsAny(name, reservedChars) {
		return fmt.Errorf("%w: %q contains a comma or line break", ErrInvalidName, name)
	}
	return nil
}

// ValidateText checks a free-text attribute such as an operating system or
// network name.
func ValidateText(value string) error {
	if strings.ContainsAny(value, reservedChars) {
		return fmt.Errorf("%w: %q contains a comma or line break", ErrInvalidFormat, value)
	}
	return nil
}

// FormatID builds the canonical "<Prefix>-<n>" ID.
func FormatID(kind Kind, n int) string {
	return kind.Prefix() + "-" + strconv.Itoa(n)
}

// ParseID splits a canonical ID into its kind and sequence number. Only
// the exact form FormatID produces is accepted.
func ParseID(id string) (Kind, int, error) {
	prefix, num, ok := strings.Cut(id, "-")
	if !ok {
		return "", 0, fmt.Errorf("%w: %q has no prefix separator", ErrInvalidID, id)
	}
	kind, ok := KindForPrefix(prefix)
	if !ok {
		return "", 0, fmt.Errorf("%w: unknown prefix %q", ErrInvalidID, prefix)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 {
		return "", 0, fmt.Errorf("%w: %q needs a positive number after the prefix", ErrInvalidID, id)
	}
	// "SW-01" and "SW-+1" would otherwise share a sequence slot with "SW-1".
	if id != FormatID(kind, n) {
		return "", 0, fmt.Errorf("%w: %q is not canonical, want %q", ErrInvalidID, id, FormatID(kind, n))
	}
	return kind, n, nil
}

// ValidateID checks that id is canonical and belongs to kind.
func ValidateID(id string, kind Kind) error {
	got, _, err := ParseID(id)
	if err != nil {
		return err
	}
	if got != kind {
		return fmt.Errorf("%w: %q is not a %s id", ErrInvalidID, id, kind)
	}
	return nil
}
