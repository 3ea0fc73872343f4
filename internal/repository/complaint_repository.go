package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/insurecare/feedback-portal/internal/domain"
)

// ComplaintFilter narrows complaint listings. A None target lists every complaint.
type ComplaintFilter struct {
	Target   domain.Target
	Status   *domain.ComplaintStatus
	Priority *domain.ComplaintPriority
	Type     *domain.ComplaintType
	Search   string
	Limit    int
	Offset   int
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	Delete(ctx context.Context, id int64) (*domain.Complaint, error)
	GetByID(ctx context.Context, id int64) (*domain.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, int, error)
	// Count counts complaints of target (None counts all), optionally by status.
	Count(ctx context.Context, target domain.Target, status *domain.ComplaintStatus) (int64, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, complainant_name, complainant_email, complainant_phone, policy_number, agent_id, employee_id,
    complaint_type, subject, description, status, priority, resolution, resolved_at, created_at, updated_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (complainant_name, complainant_email, complainant_phone, policy_number, agent_id, employee_id,
            complaint_type, subject, description, status, priority, resolution, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	agentID, employeeID := complaint.Target.Columns()
	return r.pool.QueryRow(ctx, query,
		complaint.ComplainantName,
		complaint.ComplainantEmail,
		complaint.ComplainantPhone,
		complaint.PolicyNumber,
		agentID,
		employeeID,
		complaint.Type,
		complaint.Subject,
		complaint.Description,
		complaint.Status,
		complaint.Priority,
		complaint.Resolution,
		complaint.ResolvedAt,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
}

// Update persists the admin-editable fields.
func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints SET status=$1, priority=$2, resolution=$3, resolved_at=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		complaint.Status,
		complaint.Priority,
		complaint.Resolution,
		complaint.ResolvedAt,
		complaint.ID,
	).Scan(&complaint.UpdatedAt)
}

func (r *complaintRepository) Delete(ctx context.Context, id int64) (*domain.Complaint, error) {
	return scanComplaint(r.pool.QueryRow(ctx, `DELETE FROM complaints WHERE id=$1 RETURNING `+complaintColumns, id))
}

func (r *complaintRepository) GetByID(ctx context.Context, id int64) (*domain.Complaint, error) {
	return scanComplaint(r.pool.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id=$1`, id))
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, int, error) {
	w := &where{}
	w.target(filter.Target, "")
	if filter.Status != nil {
		w.add("status=$%d", *filter.Status)
	}
	if filter.Priority != nil {
		w.add("priority=$%d", *filter.Priority)
	}
	if filter.Type != nil {
		w.add("complaint_type=$%d", *filter.Type)
	}
	w.search(filter.Search, "subject", "complainant_name", "complainant_email")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		complaintColumns, w.String(), limit, offset)
	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var complaints []domain.Complaint
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, 0, err
		}
		complaints = append(complaints, *complaint)
	}
	return complaints, total, rows.Err()
}

func (r *complaintRepository) Count(ctx context.Context, target domain.Target, status *domain.ComplaintStatus) (int64, error) {
	w := &where{}
	w.target(target, "")
	if status != nil {
		w.add("status=$%d", *status)
	}
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints WHERE `+w.String(), w.args...).Scan(&count)
	return count, err
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var (
		c          domain.Complaint
		agentID    *int64
		employeeID *int64
	)
	if err := row.Scan(
		&c.ID,
		&c.ComplainantName,
		&c.ComplainantEmail,
		&c.ComplainantPhone,
		&c.PolicyNumber,
		&agentID,
		&employeeID,
		&c.Type,
		&c.Subject,
		&c.Description,
		&c.Status,
		&c.Priority,
		&c.Resolution,
		&c.ResolvedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	target, err := domain.NewTarget(agentID, employeeID)
	if err != nil {
		return nil, err
	}
	c.Target = target
	return &c, nil
}
