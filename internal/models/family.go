package models

import "time"

// Family groups a guardian and its linked minor accounts under a shared code.
// The code is the primary lookup key; a family row always exists before any
// account references its code.
type Family struct {
	ID        int64
	Code      string
	CreatedAt time.Time
}
