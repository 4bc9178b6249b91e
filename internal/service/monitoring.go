package service

import (
	"chickencoop_bridge/internal/models"
	"chickencoop_bridge/internal/reconciler"
)

type MonitoringService struct {
	rec *reconciler.Reconciler
}

func NewMonitoringService(rec *reconciler.Reconciler) *MonitoringService {
	return &MonitoringService{rec: rec}
}

// Snapshot returns every slot; unset slots are included.
func (s *MonitoringService) Snapshot() models.Snapshot {
	return s.rec.Snapshot()
}

// Status returns the latest temperature and fan state.
func (s *MonitoringService) Status() StatusView {
	return StatusView{
		Temperature: s.rec.Read(models.KindTemperature),
		FanStatus:   s.rec.Read(models.KindFanStatus),
	}
}

// Statuses returns the latest cycle, segment and obstacle reports.
func (s *MonitoringService) Statuses() StatusesView {
	return StatusesView{
		CycleStatus:    s.rec.Read(models.KindCycleStatus),
		SegmentInfo:    s.rec.Read(models.KindSegmentInfo),
		ObstacleStatus: s.rec.Read(models.KindObstacleStatus),
	}
}

func (s *MonitoringService) Subscribe(kinds ...models.Kind) *reconciler.Subscription {
	return s.rec.Subscribe(kinds...)
}
