package models

import "time"

// Sweet is a catalog item. ImageURL holds either an external URL or an
// object-storage key when the image lives in S3.
type Sweet struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Quantity    int
	ImageURL    string
	CategoryID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Available reports whether the sweet has stock left.
func (s *Sweet) Available() bool {
	return s.Quantity > 0
}
