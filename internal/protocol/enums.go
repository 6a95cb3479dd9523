package protocol

// ServerState is the state a DREAM server reports for itself.
type ServerState int

const (
	StateInitializing ServerState = iota + 1
	StateHibernating
	StateCoolingDown
	StateCalibrating
	StateReady
	StateOpen
	StateObserving
	StateMaintenance
	StateShuttingDown
)

func (s ServerState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateHibernating:
		return "hibernating"
	case StateCoolingDown:
		return "cooling_down"
	case StateCalibrating:
		return "calibrating"
	case StateReady:
		return "ready"
	case StateOpen:
		return "open"
	case StateObserving:
		return "observing"
	case StateMaintenance:
		return "maintenance"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return "unknown"
	}
}

// ErrorCode is the error code a DREAM server reports in its status.
type ErrorCode int

const (
	ErrorCodeOK ErrorCode = iota + 1
)

// CommandResponse is the server verdict for one received command.
type CommandResponse int

const (
	ResponseAck CommandResponse = iota + 1
	ResponseLast
	ResponseInvalidJSON
	ResponseCommandFailed
)

func (r CommandResponse) String() string {
	switch r {
	case ResponseAck:
		return "ack"
	case ResponseLast:
		return "last"
	case ResponseInvalidJSON:
		return "invalid_json"
	case ResponseCommandFailed:
		return "command_failed"
	default:
		return "unknown"
	}
}

// RoofStatus is the reported position of the DREAM roof.
type RoofStatus int

const (
	RoofClosed RoofStatus = iota + 1
	RoofOpen
	RoofOpening
	RoofClosing
)

func (r RoofStatus) String() string {
	switch r {
	case RoofClosed:
		return "closed"
	case RoofOpen:
		return "open"
	case RoofOpening:
		return "opening"
	case RoofClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Device identifies one of the DREAM servers.
type Device int

const (
	DeviceMaster Device = iota + 1
	DeviceNorth
	DeviceEast
	DeviceSouth
	DeviceWest
	DeviceZenith
)

func (d Device) String() string {
	switch d {
	case DeviceMaster:
		return "master"
	case DeviceNorth:
		return "north"
	case DeviceEast:
		return "east"
	case DeviceSouth:
		return "south"
	case DeviceWest:
		return "west"
	case DeviceZenith:
		return "zenith"
	default:
		return "unknown"
	}
}
