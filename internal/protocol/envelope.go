package protocol

import (
	"fmt"
	"strings"
)

// Command keys accepted by a DREAM server.
const (
	KeyResume         = "resume"
	KeyOpenRoof       = "openRoof"
	KeyCloseRoof      = "closeRoof"
	KeyStop           = "stop"
	KeyReadyForData   = "readyForData"
	KeyDataArchived   = "dataArchived"
	KeySetWeatherInfo = "setWeatherInfo"
)

// CommandKeys lists every accepted command key.
func CommandKeys() []string {
	return []string{
		KeyResume,
		KeyOpenRoof,
		KeyCloseRoof,
		KeyStop,
		KeyReadyForData,
		KeyDataArchived,
		KeySetWeatherInfo,
	}
}

// Command is the client->server wire envelope.
type Command struct {
	CommandID       int64          `json:"command_id"`
	Key             string         `json:"key"`
	Parameters      map[string]any `json:"parameters"`
	TimeCommandSent float64        `json:"time_command_sent"`
}

// Validate checks structural envelope requirements. Full validation is the
// job of the schema registry; this guards local construction before a write.
func (c Command) Validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return fmt.Errorf("command missing key")
	}
	if c.Parameters == nil {
		return fmt.Errorf("command %q missing parameters", c.Key)
	}
	if c.TimeCommandSent <= 0 {
		return fmt.Errorf("command %q missing time_command_sent", c.Key)
	}
	return nil
}

// Response is the server->client command verdict envelope.
type Response struct {
	CommandID       int64           `json:"command_id"`
	CommandResponse CommandResponse `json:"command_response"`
}
