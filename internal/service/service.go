package service

import (
	"context"
	"errors"
	"time"

	"chickencoop_bridge/internal/codec"
	"chickencoop_bridge/internal/logger"
	"chickencoop_bridge/internal/models"
	"chickencoop_bridge/internal/reconciler"
	"chickencoop_bridge/internal/repository"
)

// Error classes surfaced to callers. Handlers map them to status codes.
var (
	ErrValidation         = errors.New("validation failed")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrBusUnavailable     = errors.New("bus unavailable")
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Telemetry is the ingest path: one raw bus message in, state and history updated.
type Telemetry interface {
	Ingest(ctx context.Context, topic string, payload []byte) error
}

// Commands forwards operator commands to the device.
type Commands interface {
	Submit(ctx context.Context, cmd models.Command) (CommandResult, error)
}

// Monitoring exposes read-only canonical state.
type Monitoring interface {
	Snapshot() models.Snapshot
	Status() StatusView
	Statuses() StatusesView
	Subscribe(kinds ...models.Kind) *reconciler.Subscription
}

// History serves the append-only logs and accepts operator snapshots.
type History interface {
	ListReadings(ctx context.Context, f models.HistoryFilter) ([]models.Reading, error)
	SummarizeReadings(ctx context.Context, f models.HistoryFilter) (models.ReadingSummary, error)
	RecordCoopStats(ctx context.Context, in CoopStatsInput) (models.CoopStats, error)
	ListCoopStats(ctx context.Context, f models.HistoryFilter) ([]models.CoopStats, error)
	SummarizeCoopStats(ctx context.Context, f models.HistoryFilter) (models.CoopStatsSummary, error)
	RecordSales(ctx context.Context, in SalesInput) (models.SalesLog, error)
	ListSales(ctx context.Context, f models.HistoryFilter) ([]models.SalesLog, error)
	SummarizeSales(ctx context.Context, f models.HistoryFilter) (models.SalesSummary, error)
}

// Health reports bus and storage condition plus host memory.
type Health interface {
	Check(ctx context.Context) HealthReport
	StorageFault() (StorageFault, bool)
}

// Publisher hands an encoded command to the bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// BusStatus reports whether the bus connection is up.
type BusStatus interface {
	Connected() bool
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

// Deps is everything the services need. Nothing here is global, so tests can
// build isolated instances.
type Deps struct {
	Reconciler *reconciler.Reconciler
	Codec      *codec.Codec
	Repos      *repository.Repository
	Publisher  Publisher
	Bus        BusStatus
	Auth       AuthConfig
	Store      string // history backend name, used for metrics labels
	Clock      func() time.Time
	Log        *logger.Logger
}

type Service struct {
	Telemetry
	Commands
	Monitoring
	History
	Health
	Authorization
}

func NewService(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = func() time.Time { return time.Now().UTC() }
	}
	if d.Log == nil {
		d.Log = logger.NewNop()
	}
	if d.Codec == nil {
		d.Codec = codec.New(codec.DefaultPrefix)
	}
	if d.Store == "" {
		d.Store = "sqlite"
	}
	storage := &storageMonitor{}

	return &Service{
		Telemetry:     NewTelemetryService(d.Codec, d.Reconciler, d.Repos.Readings, storage, d.Clock, d.Log),
		Commands:      NewCommandService(d.Codec, d.Reconciler, d.Publisher, d.Log),
		Monitoring:    NewMonitoringService(d.Reconciler),
		History:       NewHistoryService(d.Repos, storage, d.Store, d.Clock),
		Health:        NewHealthService(d.Bus, storage, d.Clock),
		Authorization: NewAuthService(d.Repos.Auth, d.Auth),
	}
}
