// Package activity keeps per-subject daily login counters.
package activity

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository records and lists login activity.
type Repository interface {
	// Record increments the counter of subjectID for the calendar day of at (UTC).
	Record(ctx context.Context, subjectID string, at time.Time) error

	// List returns all recorded days of subjectID, oldest first.
	List(ctx context.Context, subjectID string) ([]models.LoginActivity, error)
}

// Day truncates t to the start of its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
