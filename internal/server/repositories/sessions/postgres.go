package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/dbx"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/jonboulle/clockwork"
)

const backendPostgres = "postgres"

type PostgresRepository struct {
	db    dbx.DBTX
	clock clockwork.Clock
}

func NewPostgresRepository(db dbx.DBTX, clock clockwork.Clock) *PostgresRepository {
	return &PostgresRepository{db: db, clock: clock}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (s *models.Session, err error) {
	defer func() { observe(backendPostgres, "get", err) }()

	query :=
		`SELECT sid, user_id, expires_at FROM sessions
		 WHERE sid = $1 AND expires_at > $2`

	s = &models.Session{}
	err = r.db.QueryRowContext(ctx, query, id, r.clock.Now()).Scan(&s.ID, &s.UserID, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Save(ctx context.Context, s *models.Session) (err error) {
	defer func() { observe(backendPostgres, "save", err) }()

	query :=
		`INSERT INTO sessions (sid, user_id, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (sid) DO UPDATE SET user_id = EXCLUDED.user_id, expires_at = EXCLUDED.expires_at`

	if _, err = r.db.ExecContext(ctx, query, s.ID, s.UserID, s.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (err error) {
	defer func() { observe(backendPostgres, "delete", err) }()

	if _, err = r.db.ExecContext(ctx, `DELETE FROM sessions WHERE sid = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// PurgeExpired removes sessions whose expiry has passed and returns how many
// rows were deleted. Get already ignores expired rows; this only reclaims space.
func (r *PostgresRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, r.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
