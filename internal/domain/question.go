package domain

import "time"

// Question is one item of the rating rubric for a profile kind.
type Question struct {
	ID         int64
	Text       string
	Type       ProfileKind
	IsActive   bool
	OrderIndex int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
