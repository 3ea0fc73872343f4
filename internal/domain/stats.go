package domain

import "math"

// RatingStats are derived on read from the rating rows of a target.
// Average is nil when Count is zero.
type RatingStats struct {
	Count   int64
	Average *float64
}

// NewRatingStats rounds avg to two decimals, or drops it when there are no ratings.
func NewRatingStats(count int64, avg float64) RatingStats {
	if count <= 0 {
		return RatingStats{}
	}
	rounded := RoundAverage(avg)
	return RatingStats{Count: count, Average: &rounded}
}

// RoundAverage rounds to two decimal places.
func RoundAverage(avg float64) float64 {
	return math.Round(avg*100) / 100
}

// StaffStats backs the dashboard of an agent or frontline employee.
type StaffStats struct {
	Target            Target
	TotalRatings      int64
	AverageRating     *float64
	TotalComplaints   int64
	PendingComplaints int64
	RecentRatings     []Rating
	RecentComplaints  []Complaint
}

// AdminTotals are the headline counters of the admin dashboard.
type AdminTotals struct {
	Agents            int64
	Employees         int64
	Ratings           int64
	Complaints        int64
	PendingComplaints int64
	PendingApprovals  int64
	AverageRating     *float64
}

// AdminStats backs the admin dashboard.
type AdminStats struct {
	Totals           AdminTotals
	RecentRatings    []Rating
	RecentComplaints []Complaint
}
