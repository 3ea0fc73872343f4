package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/insurecare/feedback-portal/internal/domain"
)

// RatingFilter narrows rating listings. A None target lists every rating.
type RatingFilter struct {
	Target domain.Target
	Limit  int
	Offset int
}

// RatingRepository persists submitted ratings and derives their statistics.
type RatingRepository interface {
	// CreateBatch inserts all rows of one submission atomically.
	CreateBatch(ctx context.Context, ratings []*domain.Rating) error
	Delete(ctx context.Context, id int64) (*domain.Rating, error)
	List(ctx context.Context, filter RatingFilter) ([]domain.Rating, int, error)
	// Stats aggregates over target; None aggregates over all ratings.
	Stats(ctx context.Context, target domain.Target) (domain.RatingStats, error)
	// StatsByProfile aggregates per profile id of one kind. Profiles without ratings are absent.
	StatsByProfile(ctx context.Context, kind domain.ProfileKind, ids []int64) (map[int64]domain.RatingStats, error)
}

type ratingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository builds the repository.
func NewRatingRepository(pool *pgxpool.Pool) RatingRepository {
	return &ratingRepository{pool: pool}
}

func (r *ratingRepository) CreateBatch(ctx context.Context, ratings []*domain.Rating) error {
	if len(ratings) == 0 {
		return nil
	}
	const query = `
        INSERT INTO ratings (rater_name, rater_email, rater_phone, policy_number, agent_id, employee_id, question_id, rating_value, comments)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at`
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, rating := range ratings {
			agentID, employeeID := rating.Target.Columns()
			if err := tx.QueryRow(ctx, query,
				rating.RaterName,
				rating.RaterEmail,
				rating.RaterPhone,
				rating.PolicyNumber,
				agentID,
				employeeID,
				rating.QuestionID,
				rating.Value,
				rating.Comments,
			).Scan(&rating.ID, &rating.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ratingRepository) Delete(ctx context.Context, id int64) (*domain.Rating, error) {
	const query = `
        DELETE FROM ratings WHERE id=$1
        RETURNING id, rater_name, rater_email, rater_phone, policy_number, agent_id, employee_id,
                  question_id, '' AS question_text, rating_value, comments, created_at`
	return scanRating(r.pool.QueryRow(ctx, query, id))
}

func (r *ratingRepository) List(ctx context.Context, filter RatingFilter) ([]domain.Rating, int, error) {
	w := &where{}
	w.target(filter.Target, "r.")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ratings r WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
        SELECT r.id, r.rater_name, r.rater_email, r.rater_phone, r.policy_number, r.agent_id, r.employee_id,
               r.question_id, q.question_text, r.rating_value, r.comments, r.created_at
        FROM ratings r
        JOIN questions q ON q.id = r.question_id
        WHERE %s
        ORDER BY r.created_at DESC, r.id DESC
        LIMIT %d OFFSET %d`, w.String(), limit, offset)

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, 0, err
		}
		ratings = append(ratings, *rating)
	}
	return ratings, total, rows.Err()
}

func (r *ratingRepository) Stats(ctx context.Context, target domain.Target) (domain.RatingStats, error) {
	w := &where{}
	w.target(target, "")
	var (
		count int64
		avg   *float64
	)
	query := `SELECT COUNT(*), AVG(rating_value)::float8 FROM ratings WHERE ` + w.String()
	if err := r.pool.QueryRow(ctx, query, w.args...).Scan(&count, &avg); err != nil {
		return domain.RatingStats{}, err
	}
	if avg == nil {
		return domain.NewRatingStats(0, 0), nil
	}
	return domain.NewRatingStats(count, *avg), nil
}

func (r *ratingRepository) StatsByProfile(ctx context.Context, kind domain.ProfileKind, ids []int64) (map[int64]domain.RatingStats, error) {
	result := make(map[int64]domain.RatingStats, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	column := "agent_id"
	if kind == domain.KindEmployee {
		column = "employee_id"
	}
	query := fmt.Sprintf(`
        SELECT %[1]s, COUNT(*), AVG(rating_value)::float8
        FROM ratings
        WHERE %[1]s = ANY($1)
        GROUP BY %[1]s`, column)
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    int64
			count int64
			avg   float64
		)
		if err := rows.Scan(&id, &count, &avg); err != nil {
			return nil, err
		}
		result[id] = domain.NewRatingStats(count, avg)
	}
	return result, rows.Err()
}

func scanRating(row pgx.Row) (*domain.Rating, error) {
	var (
		rating     domain.Rating
		agentID    *int64
		employeeID *int64
	)
	if err := row.Scan(
		&rating.ID,
		&rating.RaterName,
		&rating.RaterEmail,
		&rating.RaterPhone,
		&rating.PolicyNumber,
		&agentID,
		&employeeID,
		&rating.QuestionID,
		&rating.QuestionText,
		&rating.Value,
		&rating.Comments,
		&rating.CreatedAt,
	); err != nil {
		return nil, err
	}
	target, err := domain.NewTarget(agentID, employeeID)
	if err != nil {
		return nil, err
	}
	rating.Target = target
	return &rating, nil
}
