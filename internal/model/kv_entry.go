package model

import "time"

// KVEntry is one persisted document. The visitor collection and the to-meet
// option list each live under a fixed key as a JSON-encoded value.
type KVEntry struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}
