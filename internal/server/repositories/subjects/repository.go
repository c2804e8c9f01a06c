// Package subjects stores subject profiles: identity, password hash, roles
// and second-factor state.
package subjects

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository defines the profile operations the auth services rely on.
// Lookups return common.ErrorNotFound when the subject is absent; Create
// returns common.ErrorAlreadyExists when the email is taken.
type Repository interface {
	Create(ctx context.Context, s *models.Subject) (*models.Subject, error)
	GetByID(ctx context.Context, id string) (*models.Subject, error)
	GetByEmail(ctx context.Context, email string) (*models.Subject, error)
	// UpdateSecondFactor replaces the stored TOTP secret and enabled flag.
	UpdateSecondFactor(ctx context.Context, id string, secret string, enabled bool) error
	UpdateName(ctx context.Context, id string, name string) error
}
