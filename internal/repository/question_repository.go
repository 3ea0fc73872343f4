package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/insurecare/feedback-portal/internal/domain"
)

// QuestionFilter selects rubric questions. A nil Type returns both kinds.
type QuestionFilter struct {
	Type       *domain.ProfileKind
	ActiveOnly bool
}

// QuestionRepository persists the rating rubric.
type QuestionRepository interface {
	Create(ctx context.Context, question *domain.Question) error
	Update(ctx context.Context, question *domain.Question) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Question, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Question, error)
	List(ctx context.Context, filter QuestionFilter) ([]domain.Question, error)
}

type questionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository builds the repository.
func NewQuestionRepository(pool *pgxpool.Pool) QuestionRepository {
	return &questionRepository{pool: pool}
}

const questionColumns = `id, question_text, question_type, is_active, order_index, created_at, updated_at`

func (r *questionRepository) Create(ctx context.Context, question *domain.Question) error {
	const query = `
        INSERT INTO questions (question_text, question_type, is_active, order_index)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		question.Text,
		question.Type,
		question.IsActive,
		question.OrderIndex,
	).Scan(&question.ID, &question.CreatedAt, &question.UpdatedAt)
}

func (r *questionRepository) Update(ctx context.Context, question *domain.Question) error {
	const query = `
        UPDATE questions SET question_text=$1, question_type=$2, is_active=$3, order_index=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		question.Text,
		question.Type,
		question.IsActive,
		question.OrderIndex,
		question.ID,
	).Scan(&question.UpdatedAt)
}

func (r *questionRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, id int64) (*domain.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id=$1`, id))
}

func (r *questionRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
}

func (r *questionRepository) List(ctx context.Context, filter QuestionFilter) ([]domain.Question, error) {
	w := &where{}
	if filter.Type != nil {
		w.add("question_type=$%d", *filter.Type)
	}
	if filter.ActiveOnly {
		w.raw("is_active = TRUE")
	}
	query := `SELECT ` + questionColumns + ` FROM questions WHERE ` + w.String() +
		` ORDER BY order_index ASC, created_at ASC, id ASC`
	return r.query(ctx, query, w.args...)
}

func (r *questionRepository) query(ctx context.Context, query string, args ...any) ([]domain.Question, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

func scanQuestion(row pgx.Row) (*domain.Question, error) {
	var q domain.Question
	if err := row.Scan(
		&q.ID,
		&q.Text,
		&q.Type,
		&q.IsActive,
		&q.OrderIndex,
		&q.CreatedAt,
		&q.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &q, nil
}
