package models

// CommandKind selects the control a Command targets.
type CommandKind string

const (
	CommandMode   CommandKind = "mode"
	CommandField  CommandKind = "field"
	CommandManual CommandKind = "manual"
	CommandFeeder CommandKind = "feeder"
)

// Command is an operator request to change a device control. It is transient:
// only its effect, echoed back by the bus, ends up in state and history.
type Command struct {
	Kind  CommandKind  `json:"kind"`
	Text  string       `json:"value,omitempty"` // mode, manual and feeder commands
	Field FieldSetting `json:"field,omitempty"` // field commands
}

// Operator modes.
const (
	ModeAuto   = "AUTO"
	ModeManual = "MANUAL"
)

// Manual drive directions.
const (
	ManualForward  = "FORWARD"
	ManualBackward = "BACKWARD"
	ManualLeft     = "LEFT"
	ManualRight    = "RIGHT"
	ManualStop     = "STOP"
)

// Switch states shared by the fan and the feeder.
const (
	SwitchOn  = "ON"
	SwitchOff = "OFF"
)

// Cycle and obstacle reports.
const (
	CycleStarted     = "STARTED"
	CycleCompleted   = "COMPLETED"
	ObstacleDetected = "DETECTED"
	ObstacleClear    = "CLEAR"
)
