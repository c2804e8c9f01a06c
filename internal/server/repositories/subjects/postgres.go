package subjects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation           = "23505"
	pgInvalidTextRepresentation = "22P02"
)

// isMalformedID reports whether the database rejected a subject id that is
// not a UUID. Such an id cannot name a subject.
func isMalformedID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation
}

// PostgresRepository keeps subjects in the subjects table and their roles
// in subject_roles. Create issues several statements, so callers should
// hand it a transaction.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Subject) (*models.Subject, error) {
	query :=
		`INSERT INTO subjects (email, name, password_hash, provider)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		s.Email, s.Name, s.PasswordHash, string(s.Provider)).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	for _, role := range s.Roles {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO subject_roles (subject_id, role) VALUES ($1, $2)`, s.ID, role); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
	}

	return s, nil
}

const selectSubject = `SELECT id, email, name, password_hash, provider, second_factor_secret, second_factor_enabled, created_at
		 FROM subjects`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	return r.getOne(ctx, selectSubject+`
		 WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Subject, error) {
	return r.getOne(ctx, selectSubject+`
		 WHERE email = $1`, email)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*models.Subject, error) {
	s := &models.Subject{}
	var provider string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&s.ID, &s.Email, &s.Name, &s.PasswordHash, &provider,
		&s.SecondFactorSecret, &s.SecondFactorEnabled, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	s.Provider = models.Provider(provider)

	roles, err := r.roles(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Roles = roles

	return s, nil
}

func (r *PostgresRepository) roles(ctx context.Context, id string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT role FROM subject_roles WHERE subject_id = $1 ORDER BY role`, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	roles := []string{}
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return roles, nil
}

func (r *PostgresRepository) UpdateSecondFactor(ctx context.Context, id string, secret string, enabled bool) error {
	query :=
		`UPDATE subjects SET second_factor_secret = $2, second_factor_enabled = $3
		 WHERE id = $1`

	return r.update(ctx, query, id, secret, enabled)
}

func (r *PostgresRepository) UpdateName(ctx context.Context, id string, name string) error {
	query :=
		`UPDATE subjects SET name = $2
		 WHERE id = $1`

	return r.update(ctx, query, id, name)
}

func (r *PostgresRepository) update(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isMalformedID(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
