package service

import (
	"context"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

const (
	healthOK       = "ok"
	healthDegraded = "degraded"
)

// storageMonitor remembers the last history failure. A later success clears
// the degraded flag but keeps the fault for reporting.
type storageMonitor struct {
	mu       sync.Mutex
	degraded bool
	last     StorageFault
	seen     bool
}

func (m *storageMonitor) fail(err error, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.degraded = true
	m.seen = true
	m.last = StorageFault{Err: err.Error(), At: at.UTC()}
}

func (m *storageMonitor) ok() {
	m.mu.Lock()
	m.degraded = false
	m.mu.Unlock()
}

func (m *storageMonitor) state() (degraded bool, last StorageFault, seen bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.degraded, m.last, m.seen
}

// virtualMemory is replaced in tests.
var virtualMemory = mem.VirtualMemoryWithContext

type HealthService struct {
	bus     BusStatus
	storage *storageMonitor
	clock   func() time.Time
	started time.Time
}

func NewHealthService(bus BusStatus, storage *storageMonitor, clock func() time.Time) *HealthService {
	return &HealthService{bus: bus, storage: storage, clock: clock, started: clock()}
}

// Check is degraded while the bus is down or the last storage write failed.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	degraded, last, seen := s.storage.state()
	r := HealthReport{
		Status:       healthOK,
		BusConnected: s.bus != nil && s.bus.Connected(),
		StorageOK:    !degraded,
		Uptime:       s.clock().Sub(s.started).Truncate(time.Second).String(),
	}
	if seen {
		fault := last
		r.LastStorageErr = &fault
	}
	if !r.BusConnected || !r.StorageOK {
		r.Status = healthDegraded
	}
	if vm, err := virtualMemory(ctx); err == nil && vm != nil {
		r.MemUsedPercent = vm.UsedPercent
	}
	return r
}

// StorageFault returns the most recent storage failure, if any.
func (s *HealthService) StorageFault() (StorageFault, bool) {
	_, last, seen := s.storage.state()
	return last, seen
}
