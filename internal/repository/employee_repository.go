package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/insurecare/feedback-portal/internal/domain"
)

// EmployeeRepository encapsulates employee persistence.
type EmployeeRepository interface {
	// Create registers the employee's qr_code and inserts the row in one transaction.
	Create(ctx context.Context, employee *domain.Employee) error
	Update(ctx context.Context, employee *domain.Employee) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Employee, error)
	List(ctx context.Context, filter ProfileFilter) ([]domain.Employee, int, error)
	SearchByName(ctx context.Context, term string, limit int) ([]domain.Employee, error)
	ListAll(ctx context.Context) ([]domain.Employee, error)
}

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository instantiates repository.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

const employeeColumns = `id, user_id, name, email, phone, branch, department, position, qr_code, created_at, updated_at`

func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := registerQRCode(ctx, tx, employee.QRCode, domain.KindEmployee); err != nil {
			return err
		}
		const query = `
            INSERT INTO employees (user_id, name, email, phone, branch, department, position, qr_code)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
            RETURNING id, created_at, updated_at`
		return tx.QueryRow(ctx, query,
			employee.UserID,
			employee.Name,
			employee.Email,
			employee.Phone,
			employee.Branch,
			employee.Department,
			employee.Position,
			employee.QRCode,
		).Scan(&employee.ID, &employee.CreatedAt, &employee.UpdatedAt)
	})
}

func (r *employeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	const query = `
        UPDATE employees SET user_id=$1, name=$2, email=$3, phone=$4, branch=$5, department=$6,
            position=$7, updated_at=NOW()
        WHERE id=$8
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		employee.UserID,
		employee.Name,
		employee.Email,
		employee.Phone,
		employee.Branch,
		employee.Department,
		employee.Position,
		employee.ID,
	).Scan(&employee.UpdatedAt)
}

func (r *employeeRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	return scanEmployee(r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id=$1`, id))
}

func (r *employeeRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Employee, error) {
	return scanEmployee(r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE user_id=$1`, userID))
}

func (r *employeeRepository) List(ctx context.Context, filter ProfileFilter) ([]domain.Employee, int, error) {
	w := &where{}
	w.search(filter.Search, "name", "email", "department", "position", "branch")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		employeeColumns, w.String(), limit, offset)
	employees, err := r.query(ctx, query, w.args...)
	return employees, total, err
}

func (r *employeeRepository) SearchByName(ctx context.Context, term string, limit int) ([]domain.Employee, error) {
	w := &where{}
	w.search(term, "name")
	limit, _ = pageBounds(limit, 0)
	query := fmt.Sprintf(`SELECT %s FROM employees WHERE %s ORDER BY name ASC, id ASC LIMIT %d`, employeeColumns, w.String(), limit)
	return r.query(ctx, query, w.args...)
}

func (r *employeeRepository) ListAll(ctx context.Context) ([]domain.Employee, error) {
	return r.query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY name ASC, id ASC`)
}

func (r *employeeRepository) query(ctx context.Context, query string, args ...any) ([]domain.Employee, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *employee)
	}
	return employees, rows.Err()
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var employee domain.Employee
	if err := row.Scan(
		&employee.ID,
		&employee.UserID,
		&employee.Name,
		&employee.Email,
		&employee.Phone,
		&employee.Branch,
		&employee.Department,
		&employee.Position,
		&employee.QRCode,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &employee, nil
}
