package domain

import "time"

// Rating is a single answered question of a customer submission. Rows are immutable.
type Rating struct {
	ID           int64
	RaterName    string
	RaterEmail   string
	RaterPhone   string
	PolicyNumber *string
	Target       Target
	QuestionID   int64
	// QuestionText is populated by list queries that join the question.
	QuestionText string
	Value        int
	Comments     *string
	CreatedAt    time.Time
}

// Rating values are whole stars.
const (
	MinRatingValue = 1
	MaxRatingValue = 5
)
