package hydroponics

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Command is an addressed, transport-safe command for a single device.
type Command struct {
	Name       string
	BinaryData string
}

// EncodeCommand serializes payload as JSON and base64-encodes it for the device transport.
func EncodeCommand(name string, payload interface{}) (*Command, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("can't marshal command payload: %w", err)
	}
	return &Command{
		Name:       name,
		BinaryData: base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// Data returns the JSON bytes carried by the command.
func (c *Command) Data() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(c.BinaryData)
	if err != nil {
		return nil, fmt.Errorf("command %s has malformed binary data: %w", c.Name, err)
	}
	return raw, nil
}
