package hydroponics

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyDeviceID = errors.New("empty device id")

// Registry identifies the device registry every device of a deployment lives in.
type Registry struct {
	ProjectID  string
	Region     string
	RegistryID string
}

// DevicePath returns the fully-qualified device name used by the device manager.
func (r Registry) DevicePath(deviceID string) (string, error) {
	if strings.TrimSpace(deviceID) == "" {
		return "", ErrEmptyDeviceID
	}
	return fmt.Sprintf("projects/%s/locations/%s/registries/%s/devices/%s",
		r.ProjectID, r.Region, r.RegistryID, deviceID), nil
}

// CommandTopic is the MQTT topic a device listens on for commands.
func CommandTopic(deviceID string) string {
	return "/devices/" + deviceID + "/commands"
}

// EventsTopicFilter matches telemetry topics of all devices.
const EventsTopicFilter = "/devices/+/events"

// ParseEventTopic returns the device id of a /devices/{id}/events[/subfolder] topic.
func ParseEventTopic(topic string) (string, error) {
	parts := strings.Split(strings.Trim(topic, "/"), "/")
	if len(parts) < 3 || parts[0] != "devices" || parts[2] != "events" {
		return "", fmt.Errorf("not an events topic: %q", topic)
	}
	if parts[1] == "" {
		return "", ErrEmptyDeviceID
	}
	return parts[1], nil
}

// DeviceIDFromPath returns the device id of a fully-qualified device name.
func DeviceIDFromPath(name string) (string, error) {
	i := strings.LastIndex(name, "/devices/")
	if i < 0 || i+len("/devices/") == len(name) {
		return "", fmt.Errorf("not a device path: %q", name)
	}
	return name[i+len("/devices/"):], nil
}
