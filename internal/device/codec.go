package device

import (
	"fmt"
	"strconv"
	"strings"
)

// fieldSeparator separates fields within one encoded device line.
const fieldSeparator = ","

// Encode renders a device as one line without a line terminator:
//
//	SW-1,Runner,True,80%
//	P-1,Workstation,False,Linux
//	ED-1,Pi,10.0.0.2,MD Ltd. Wifi
//
// Embedded devices carry no power field and always decode as off.
func Encode(d Device) (string, error) {
	switch v := d.(type) {
	case *Smartwatch:
		if v == nil {
			break
		}
		return joinFields(v.id, v.name, formatPower(v.on), strconv.Itoa(v.battery)+"%"), nil
	case *PersonalComputer:
		if v == nil {
			break
		}
		return joinFields(v.id, v.name, formatPower(v.on), v.os), nil
	case *EmbeddedDevice:
		if v == nil {
			break
		}
		return joinFields(v.id, v.name, v.ip, v.network), nil
	}
	return "", fmt.Errorf("%w: %T", ErrUnknownKind, d)
}

// Decode parses one encoded line. The first field selects the kind by its ID
// prefix. Lines written with the ID split over two columns ("SW,1,...") are
// folded into the canonical ID; when such a line is one column short it has
// no name column and decodes with an empty name. A split-ID computer line
// with two trailing fields is read as name,power whenever the second field
// is a boolean, so "P,1,True,False" is a computer named "True" rather than
// one with operating system "False".
//
// Every failure wraps ErrDecode.
func Decode(line string) (Device, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, fmt.Errorf("%w: empty line", ErrDecode)
	}

	parts := strings.Split(line, fieldSeparator)
	if len(parts) < 3 {
		return nil, fmt.Errorf("%w: %q has %d fields, need at least 3", ErrDecode, line, len(parts))
	}

	id, kind, rest, err := splitID(parts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	d, err := decodeKind(id, kind, rest)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrDecode, line, err)
	}
	return d, nil
}

// splitID extracts the canonical ID and returns the fields that follow it,
// starting with the name.
func splitID(parts []string) (string, Kind, []string, error) {
	if kind, ok := KindForPrefix(parts[0]); ok {
		n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || n < 1 {
			return "", "", nil, fmt.Errorf("%w: split id %q,%q", ErrInvalidID, parts[0], parts[1])
		}
		rest := parts[2:]
		if !hasName(kind, rest) {
			rest = append([]string{""}, rest...)
		}
		return FormatID(kind, n), kind, rest, nil
	}

	kind, _, err := ParseID(parts[0])
	if err != nil {
		return "", "", nil, err
	}
	return parts[0], kind, parts[1:], nil
}

// hasName reports whether the fields after a split ID start with a name.
func hasName(kind Kind, rest []string) bool {
	if kind != KindPersonalComputer {
		return len(rest) != 2
	}
	switch len(rest) {
	case 1:
		return false
	case 2:
		// name,power is a named computer without an OS; power,os has no name.
		// When both readings parse, name,power wins.
		if _, err := parsePower(rest[1]); err == nil {
			return true
		}
		_, err := parsePower(rest[0])
		return err != nil
	default:
		return true
	}
}

func decodeKind(id string, kind Kind, rest []string) (Device, error) {
	switch kind {
	case KindSmartwatch:
		if len(rest) != 3 {
			return nil, fmt.Errorf("smartwatch needs name,power,battery; got %d fields", len(rest))
		}
		on, err := parsePower(rest[1])
		if err != nil {
			return nil, err
		}
		battery, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(rest[2]), "%"))
		if err != nil {
			return nil, fmt.Errorf("battery %q is not an integer", rest[2])
		}
		return NewSmartwatch(id, rest[0], on, battery)

	case KindPersonalComputer:
		if len(rest) != 2 && len(rest) != 3 {
			return nil, fmt.Errorf("computer needs name,power[,os]; got %d fields", len(rest))
		}
		on, err := parsePower(rest[1])
		if err != nil {
			return nil, err
		}
		os := ""
		if len(rest) == 3 {
			os = rest[2]
		}
		return NewPersonalComputer(id, rest[0], on, os)

	case KindEmbedded:
		if len(rest) != 3 {
			return nil, fmt.Errorf("embedded device needs name,ip,network; got %d fields", len(rest))
		}
		return NewEmbeddedDevice(id, rest[0], rest[1], rest[2])
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

func parsePower(s string) (bool, error) {
	on, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("power %q is not True or False", s)
	}
	return on, nil
}

func formatPower(on bool) string {
	if on {
		return "True"
	}
	return "False"
}

func joinFields(fields ...string) string {
	return strings.Join(fields, fieldSeparator)
}
