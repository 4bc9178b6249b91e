package models

import "time"

// CoopStats is one operator-entered inventory snapshot.
type CoopStats struct {
	ID              string    `json:"id"`
	Seq             int64     `json:"seq"`
	BirdCount       int64     `json:"bird_count"`
	EggCount        int64     `json:"egg_count"`
	AilingBirdCount int64     `json:"ailing_bird_count"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// CoopStatsSummary sums every CoopStats field over a filter.
type CoopStatsSummary struct {
	Records         int64 `json:"records"`
	BirdCount       int64 `json:"bird_count"`
	EggCount        int64 `json:"egg_count"`
	AilingBirdCount int64 `json:"ailing_bird_count"`
}

// Add folds s into the summary.
func (sum *CoopStatsSummary) Add(s CoopStats) {
	sum.Records++
	sum.BirdCount += s.BirdCount
	sum.EggCount += s.EggCount
	sum.AilingBirdCount += s.AilingBirdCount
}

// SalesLog is one operator-entered sales snapshot.
type SalesLog struct {
	ID         string    `json:"id"`
	Seq        int64     `json:"seq"`
	BirdsSold  int64     `json:"birds_sold"`
	EggsSold   int64     `json:"eggs_sold"`
	RecordedAt time.Time `json:"recorded_at"`
}

// SalesSummary sums every SalesLog field over a filter.
type SalesSummary struct {
	Records   int64 `json:"records"`
	BirdsSold int64 `json:"birds_sold"`
	EggsSold  int64 `json:"eggs_sold"`
}

// Add folds s into the summary.
func (sum *SalesSummary) Add(s SalesLog) {
	sum.Records++
	sum.BirdsSold += s.BirdsSold
	sum.EggsSold += s.EggsSold
}

// ReadingSummary sums the numeric content of readings over a filter.
// Field readings contribute their three parameters, other kinds only count.
// Numbers are summed in thousandths so the total does not depend on order.
type ReadingSummary struct {
	Records     int64   `json:"records"`
	NumberSum   float64 `json:"number_sum"`
	NumberMilli int64   `json:"-"`
	LengthSum   int64   `json:"field_length_sum"`
	WidthSum    int64   `json:"field_width_sum"`
	SpeedSum    int64   `json:"motor_speed_sum"`
}

// Add folds r into the summary.
func (sum *ReadingSummary) Add(r Reading) {
	sum.Records++
	switch r.Kind {
	case KindTemperature:
		m, _ := ToMilli(r.Value.Number)
		sum.SetNumberMilli(sum.NumberMilli + m)
	case KindField:
		sum.LengthSum += int64(r.Value.Field.Length)
		sum.WidthSum += int64(r.Value.Field.Width)
		sum.SpeedSum += int64(r.Value.Field.Speed)
	}
}

// SetNumberMilli sets the numeric total from its fixed-point form.
func (sum *ReadingSummary) SetNumberMilli(m int64) {
	sum.NumberMilli = m
	sum.NumberSum = FromMilli(m)
}
