package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when the configuration leaves topic_prefix empty.
const DefaultTopicPrefix = "inventory"

// Command actions carried in the last command topic segment.
const (
	ActionOn  = "on"
	ActionOff = "off"
)

// Topics builds the inventory MQTT topic hierarchy under a prefix:
//
//	{prefix}/event/{operation}             registry outcomes
//	{prefix}/device/{id}/low_battery       smartwatch battery alerts
//	{prefix}/command/{id}/{on|off}         inbound power commands
//	{prefix}/system/status                 retained online/offline status
type Topics struct {
	Prefix string
}

// NewTopics returns a topic builder for prefix, trimming any trailing slash.
func NewTopics(prefix string) Topics {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{Prefix: prefix}
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// Event returns the topic for a registry outcome.
//
// Example: inventory/event/turn_on
func (t Topics) Event(operation string) string {
	return fmt.Sprintf("%s/event/%s", t.prefix(), operation)
}

// LowBattery returns the alert topic for a smartwatch.
//
// Example: inventory/device/SW-1/low_battery
func (t Topics) LowBattery(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/low_battery", t.prefix(), deviceID)
}

// Command returns the topic a power command for deviceID is published on.
//
// Example: inventory/command/P-2/on
func (t Topics) Command(deviceID, action string) string {
	return fmt.Sprintf("%s/command/%s/%s", t.prefix(), deviceID, action)
}

// SystemStatus returns the retained service status topic.
//
// Example: inventory/system/status
func (t Topics) SystemStatus() string {
	return t.prefix() + "/system/status"
}

// AllCommands returns a pattern matching every power command.
//
// Pattern: inventory/command/+/+
func (t Topics) AllCommands() string {
	return t.prefix() + "/command/+/+"
}

// AllEvents returns a pattern matching every registry outcome.
//
// Pattern: inventory/event/+
func (t Topics) AllEvents() string {
	return t.prefix() + "/event/+"
}

// AllTopics returns a pattern matching everything under the prefix.
func (t Topics) AllTopics() string {
	return t.prefix() + "/#"
}

// ParseCommand extracts the device ID and action from a command topic.
// ok is false when topic is not a command topic under this prefix or the
// action is neither on nor off.
func (t Topics) ParseCommand(topic string) (deviceID, action string, ok bool) {
	rest, found := strings.CutPrefix(topic, t.prefix()+"/command/")
	if !found {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		return "", "", false
	}
	switch parts[1] {
	case ActionOn, ActionOff:
		return parts[0], parts[1], true
	default:
		return "", "", false
	}
}
