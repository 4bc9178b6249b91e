package models

import "time"

// Event is a decoded bus message: one typed value for one kind.
type Event struct {
	Kind  Kind
	Value Value
}

// Reading is an Event stamped on arrival. Readings are immutable once created.
type Reading struct {
	ID         string    `json:"id"`
	Seq        int64     `json:"seq"`
	Kind       Kind      `json:"kind"`
	Value      Value     `json:"value"`
	Topic      string    `json:"topic"`
	ObservedAt time.Time `json:"observed_at"`
}
