package service

import (
	"context"

	"github.com/insurecare/feedback-portal/internal/access"
	"github.com/insurecare/feedback-portal/internal/cache"
	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/repository"
)

const recentLimit = 10

// DashboardService builds the staff and admin dashboards.
type DashboardService struct {
	ratings    repository.RatingRepository
	complaints repository.ComplaintRepository
	stats      repository.StatsRepository
	profiles   *ProfileService
	cache      *cache.StatsCache
}

// DashboardDependencies bundles collaborators for the dashboard service.
// Cache may be nil, in which case every request is computed.
type DashboardDependencies struct {
	RatingRepo    repository.RatingRepository
	ComplaintRepo repository.ComplaintRepository
	StatsRepo     repository.StatsRepository
	Profiles      *ProfileService
	Cache         *cache.StatsCache
}

// NewDashboardService constructs the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	return &DashboardService{
		ratings:    deps.RatingRepo,
		complaints: deps.ComplaintRepo,
		stats:      deps.StatsRepo,
		profiles:   deps.Profiles,
		cache:      deps.Cache,
	}
}

// Profile returns the staff caller's own profile.
func (s *DashboardService) Profile(ctx context.Context, caller access.Caller) (domain.ProfileSummary, error) {
	if err := access.Authorize(caller, access.ReadStaffStats); err != nil {
		return domain.ProfileSummary{}, err
	}
	return s.profiles.OwnProfile(ctx, caller)
}

// StaffStats aggregates ratings and complaints of the caller's own profile.
func (s *DashboardService) StaffStats(ctx context.Context, caller access.Caller) (domain.StaffStats, error) {
	if err := access.Authorize(caller, access.ReadStaffStats); err != nil {
		return domain.StaffStats{}, err
	}
	target, err := access.OwnTarget(caller)
	if err != nil {
		return domain.StaffStats{}, err
	}
	return s.cache.StaffStats(ctx, target, func(ctx context.Context) (domain.StaffStats, error) {
		return s.computeStaff(ctx, target)
	})
}

func (s *DashboardService) computeStaff(ctx context.Context, target domain.Target) (domain.StaffStats, error) {
	summary, err := s.ratings.Stats(ctx, target)
	if err != nil {
		return domain.StaffStats{}, err
	}
	total, err := s.complaints.Count(ctx, target, nil)
	if err != nil {
		return domain.StaffStats{}, err
	}
	pendingStatus := domain.ComplaintStatusPending
	pending, err := s.complaints.Count(ctx, target, &pendingStatus)
	if err != nil {
		return domain.StaffStats{}, err
	}
	ratings, complaints, err := s.recent(ctx, target)
	if err != nil {
		return domain.StaffStats{}, err
	}
	return domain.StaffStats{
		Target:            target,
		TotalRatings:      summary.Count,
		AverageRating:     summary.Average,
		TotalComplaints:   total,
		PendingComplaints: pending,
		RecentRatings:     ratings,
		RecentComplaints:  complaints,
	}, nil
}

// AdminStats returns the headline totals and latest activity across all profiles.
func (s *DashboardService) AdminStats(ctx context.Context, caller access.Caller) (domain.AdminStats, error) {
	if err := access.Authorize(caller, access.ReadAdminStats); err != nil {
		return domain.AdminStats{}, err
	}
	return s.cache.AdminStats(ctx, func(ctx context.Context) (domain.AdminStats, error) {
		totals, err := s.stats.AdminTotals(ctx)
		if err != nil {
			return domain.AdminStats{}, err
		}
		ratings, complaints, err := s.recent(ctx, domain.NoTarget())
		if err != nil {
			return domain.AdminStats{}, err
		}
		return domain.AdminStats{Totals: totals, RecentRatings: ratings, RecentComplaints: complaints}, nil
	})
}

func (s *DashboardService) recent(ctx context.Context, target domain.Target) ([]domain.Rating, []domain.Complaint, error) {
	ratings, _, err := s.ratings.List(ctx, repository.RatingFilter{Target: target, Limit: recentLimit})
	if err != nil {
		return nil, nil, err
	}
	complaints, _, err := s.complaints.List(ctx, repository.ComplaintFilter{Target: target, Limit: recentLimit})
	if err != nil {
		return nil, nil, err
	}
	return ratings, complaints, nil
}
