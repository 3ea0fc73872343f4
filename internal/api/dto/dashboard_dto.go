package dto

import "github.com/insurecare/feedback-portal/internal/domain"

// StaffStatsResponse backs the staff dashboard.
type StaffStatsResponse struct {
	TotalRatings      int64               `json:"total_ratings"`
	AverageRating     *float64            `json:"average_rating"`
	TotalComplaints   int64               `json:"total_complaints"`
	PendingComplaints int64               `json:"pending_complaints"`
	RecentRatings     []RatingResponse    `json:"recent_ratings"`
	RecentComplaints  []ComplaintResponse `json:"recent_complaints"`
}

func NewStaffStatsResponse(s *domain.StaffStats) StaffStatsResponse {
	return StaffStatsResponse{
		TotalRatings:      s.TotalRatings,
		AverageRating:     s.AverageRating,
		TotalComplaints:   s.TotalComplaints,
		PendingComplaints: s.PendingComplaints,
		RecentRatings:     Map(s.RecentRatings, NewRatingResponse),
		RecentComplaints:  Map(s.RecentComplaints, NewComplaintResponse),
	}
}

// AdminStatsResponse backs the admin dashboard.
type AdminStatsResponse struct {
	TotalAgents       int64               `json:"total_agents"`
	TotalEmployees    int64               `json:"total_employees"`
	TotalRatings      int64               `json:"total_ratings"`
	TotalComplaints   int64               `json:"total_complaints"`
	PendingComplaints int64               `json:"pending_complaints"`
	PendingApprovals  int64               `json:"pending_approvals"`
	AverageRating     *float64            `json:"average_rating"`
	RecentRatings     []RatingResponse    `json:"recent_ratings"`
	RecentComplaints  []ComplaintResponse `json:"recent_complaints"`
}

func NewAdminStatsResponse(s *domain.AdminStats) AdminStatsResponse {
	return AdminStatsResponse{
		TotalAgents:       s.Totals.Agents,
		TotalEmployees:    s.Totals.Employees,
		TotalRatings:      s.Totals.Ratings,
		TotalComplaints:   s.Totals.Complaints,
		PendingComplaints: s.Totals.PendingComplaints,
		PendingApprovals:  s.Totals.PendingApprovals,
		AverageRating:     s.Totals.AverageRating,
		RecentRatings:     Map(s.RecentRatings, NewRatingResponse),
		RecentComplaints:  Map(s.RecentComplaints, NewComplaintResponse),
	}
}
