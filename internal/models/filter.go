package models

import "time"

// HistoryFilter selects history records. Zero values mean no bound.
// Kind is ignored by stores that hold a single record type.
type HistoryFilter struct {
	Kind Kind      `json:"kind,omitempty"`
	From time.Time `json:"from,omitempty"` // inclusive
	To   time.Time `json:"to,omitempty"`   // inclusive
}
