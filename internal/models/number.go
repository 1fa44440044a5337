package models

import "time"

// NumberRecord is immutable once stored. Serial is unique across all records.
type NumberRecord struct {
	ID      int64     `json:"id"`
	Value   int64     `json:"value"`
	SavedAt time.Time `json:"savedAt"`
	Serial  int64     `json:"serial"`
}
