package models

import "time"

// Category groups sweets. Names are unique.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
