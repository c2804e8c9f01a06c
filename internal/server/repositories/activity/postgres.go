package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(ctx context.Context, subjectID string, at time.Time) error {
	query := `
		INSERT INTO login_activity (subject_id, day, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (subject_id, day) DO UPDATE SET count = login_activity.count + 1
	`
	if _, err := r.db.ExecContext(ctx, query, subjectID, Day(at)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, subjectID string) ([]models.LoginActivity, error) {
	query := `
		SELECT day, count
		FROM login_activity
		WHERE subject_id = $1
		ORDER BY day
	`
	rows, err := r.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.LoginActivity{}
	for rows.Next() {
		a := models.LoginActivity{SubjectID: subjectID}
		if err := rows.Scan(&a.Day, &a.Count); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		a.Day = a.Day.UTC()
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
