package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/insurecare/feedback-portal/internal/domain"
)

// StatsRepository computes portal-wide counters for the admin dashboard.
type StatsRepository interface {
	AdminTotals(ctx context.Context) (domain.AdminTotals, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository builds the repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) AdminTotals(ctx context.Context) (domain.AdminTotals, error) {
	const query = `
        SELECT
            (SELECT COUNT(*) FROM agents),
            (SELECT COUNT(*) FROM employees),
            (SELECT COUNT(*) FROM ratings),
            (SELECT COUNT(*) FROM complaints),
            (SELECT COUNT(*) FROM complaints WHERE status = 'pending'),
            (SELECT COUNT(*) FROM users WHERE is_approved = FALSE),
            (SELECT AVG(rating_value)::float8 FROM ratings)`

	var (
		totals domain.AdminTotals
		avg    *float64
	)
	if err := r.pool.QueryRow(ctx, query).Scan(
		&totals.Agents,
		&totals.Employees,
		&totals.Ratings,
		&totals.Complaints,
		&totals.PendingComplaints,
		&totals.PendingApprovals,
		&avg,
	); err != nil {
		return domain.AdminTotals{}, err
	}
	if avg != nil {
		totals.AverageRating = domain.NewRatingStats(totals.Ratings, *avg).Average
	}
	return totals, nil
}
