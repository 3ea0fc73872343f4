package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/insurecare/feedback-portal/internal/domain"
)

// ProfileFilter captures admin listing parameters for agents and employees.
type ProfileFilter struct {
	Search string
	// Online applies to agents only.
	Online *bool
	Limit  int
	Offset int
}

// BoundingBox is a latitude/longitude rectangle used to prefilter proximity queries.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// AgentRepository encapsulates agent persistence.
type AgentRepository interface {
	// Create registers the agent's qr_code and inserts the row in one transaction.
	Create(ctx context.Context, agent *domain.Agent) error
	Update(ctx context.Context, agent *domain.Agent) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Agent, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Agent, error)
	List(ctx context.Context, filter ProfileFilter) ([]domain.Agent, int, error)
	SearchByName(ctx context.Context, term string, limit int) ([]domain.Agent, error)
	ListOnlineWithin(ctx context.Context, box BoundingBox) ([]domain.Agent, error)
	ListAll(ctx context.Context) ([]domain.Agent, error)
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository instantiates repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

const agentColumns = `id, user_id, name, email, phone, branch, location, latitude, longitude, is_online, qr_code, created_at, updated_at`

func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := registerQRCode(ctx, tx, agent.QRCode, domain.KindAgent); err != nil {
			return err
		}
		const query = `
            INSERT INTO agents (user_id, name, email, phone, branch, location, latitude, longitude, is_online, qr_code)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
            RETURNING id, created_at, updated_at`
		return tx.QueryRow(ctx, query,
			agent.UserID,
			agent.Name,
			agent.Email,
			agent.Phone,
			agent.Branch,
			agent.Location,
			agent.Latitude,
			agent.Longitude,
			agent.IsOnline,
			agent.QRCode,
		).Scan(&agent.ID, &agent.CreatedAt, &agent.UpdatedAt)
	})
}

// qr_code is deliberately absent from the SET list.
func (r *agentRepository) Update(ctx context.Context, agent *domain.Agent) error {
	const query = `
        UPDATE agents SET user_id=$1, name=$2, email=$3, phone=$4, branch=$5, location=$6,
            latitude=$7, longitude=$8, is_online=$9, updated_at=NOW()
        WHERE id=$10
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		agent.UserID,
		agent.Name,
		agent.Email,
		agent.Phone,
		agent.Branch,
		agent.Location,
		agent.Latitude,
		agent.Longitude,
		agent.IsOnline,
		agent.ID,
	).Scan(&agent.UpdatedAt)
}

func (r *agentRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM agents WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agentRepository) GetByID(ctx context.Context, id int64) (*domain.Agent, error) {
	return scanAgent(r.pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE id=$1`, id))
}

func (r *agentRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Agent, error) {
	return scanAgent(r.pool.QueryRow(ctx, `SELECT `+agentColumns+` FROM agents WHERE user_id=$1`, userID))
}

func (r *agentRepository) List(ctx context.Context, filter ProfileFilter) ([]domain.Agent, int, error) {
	w := &where{}
	w.search(filter.Search, "name", "email", "location", "branch")
	if filter.Online != nil {
		w.add("is_online=$%d", *filter.Online)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM agents WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM agents WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		agentColumns, w.String(), limit, offset)
	agents, err := r.query(ctx, query, w.args...)
	return agents, total, err
}

func (r *agentRepository) SearchByName(ctx context.Context, term string, limit int) ([]domain.Agent, error) {
	w := &where{}
	w.search(term, "name")
	limit, _ = pageBounds(limit, 0)
	query := fmt.Sprintf(`SELECT %s FROM agents WHERE %s ORDER BY name ASC, id ASC LIMIT %d`, agentColumns, w.String(), limit)
	return r.query(ctx, query, w.args...)
}

func (r *agentRepository) ListOnlineWithin(ctx context.Context, box BoundingBox) ([]domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents
        WHERE is_online = TRUE
          AND latitude IS NOT NULL AND longitude IS NOT NULL
          AND latitude BETWEEN $1 AND $2
          AND longitude BETWEEN $3 AND $4`
	return r.query(ctx, query, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
}

func (r *agentRepository) ListAll(ctx context.Context) ([]domain.Agent, error) {
	return r.query(ctx, `SELECT `+agentColumns+` FROM agents ORDER BY name ASC, id ASC`)
}

func (r *agentRepository) query(ctx context.Context, query string, args ...any) ([]domain.Agent, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, *agent)
	}
	return agents, rows.Err()
}

func scanAgent(row pgx.Row) (*domain.Agent, error) {
	var agent domain.Agent
	if err := row.Scan(
		&agent.ID,
		&agent.UserID,
		&agent.Name,
		&agent.Email,
		&agent.Phone,
		&agent.Branch,
		&agent.Location,
		&agent.Latitude,
		&agent.Longitude,
		&agent.IsOnline,
		&agent.QRCode,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &agent, nil
}

func registerQRCode(ctx context.Context, tx pgx.Tx, code string, kind domain.ProfileKind) error {
	_, err := tx.Exec(ctx, `INSERT INTO profile_qr_codes (qr_code, profile_kind) VALUES ($1, $2)`, code, kind)
	return err
}
