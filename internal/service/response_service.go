package service

import (
	"time"

	"chickencoop_bridge/internal/models"
)

// Command outcomes.
const (
	OutcomeForwarded  = "forwarded"
	OutcomeSuppressed = "suppressed"

	ReasonNoChange = "no_change"
)

// CommandResult is what Submit reports when the command was not rejected.
type CommandResult struct {
	Outcome   string             `json:"outcome"`
	Reason    string             `json:"reason,omitempty"`
	Kind      models.CommandKind `json:"kind"`
	CommandID string             `json:"command_id,omitempty"`
	Topic     string             `json:"topic,omitempty"`
}

// StatusView is the latest temperature and fan state.
type StatusView struct {
	Temperature models.State `json:"temperature"`
	FanStatus   models.State `json:"fan_status"`
}

// StatusesView is the latest cycle, segment and obstacle reports.
type StatusesView struct {
	CycleStatus    models.State `json:"cycle_status"`
	SegmentInfo    models.State `json:"segment_info"`
	ObstacleStatus models.State `json:"obstacle_status"`
}

// CoopStatsInput is an operator inventory submission.
type CoopStatsInput struct {
	BirdCount       int64     `json:"bird_count"`
	EggCount        int64     `json:"egg_count"`
	AilingBirdCount int64     `json:"ailing_bird_count"`
	RecordedAt      time.Time `json:"recorded_at"` // zero means now
}

// SalesInput is an operator sales submission.
type SalesInput struct {
	BirdsSold  int64     `json:"birds_sold"`
	EggsSold   int64     `json:"eggs_sold"`
	RecordedAt time.Time `json:"recorded_at"` // zero means now
}

// StorageFault is the most recent history store failure.
type StorageFault struct {
	Err string    `json:"error"`
	At  time.Time `json:"at"`
}

// HealthReport is served on /health.
type HealthReport struct {
	Status         string        `json:"status"` // "ok" | "degraded"
	BusConnected   bool          `json:"bus_connected"`
	StorageOK      bool          `json:"storage_ok"`
	LastStorageErr *StorageFault `json:"last_storage_error,omitempty"`
	MemUsedPercent float64       `json:"mem_used_percent,omitempty"`
	Uptime         string        `json:"uptime"`
}
