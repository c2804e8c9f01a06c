package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/passwords"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// Authenticator performs primary authentication. It returns
// common.ErrInvalidCredentials when the identifier or the secret is wrong,
// without saying which.
type Authenticator interface {
	Authenticate(ctx context.Context, identifier, secret string) (*models.Subject, error)
}

// PasswordAuthenticator checks an email and password against the argon2id
// hash on the subject profile.
type PasswordAuthenticator struct {
	repos  repomanager.RepositoryManager
	params passwords.Params

	dummyOnce sync.Once
	dummyHash string
}

func NewPasswordAuthenticator(m repomanager.RepositoryManager, params passwords.Params) *PasswordAuthenticator {
	return &PasswordAuthenticator{repos: m, params: params}
}

func (a *PasswordAuthenticator) Authenticate(ctx context.Context, identifier, secret string) (*models.Subject, error) {
	subject, err := a.repos.Subjects().GetByEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// spend the same effort as a real check so timing does not reveal the account
			passwords.Verify(secret, a.dummy())
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching subject: %w", err)
	}

	if subject.PasswordHash == "" {
		passwords.Verify(secret, a.dummy())
		return nil, common.ErrInvalidCredentials
	}
	if !passwords.Verify(secret, subject.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	return subject, nil
}

func (a *PasswordAuthenticator) dummy() string {
	a.dummyOnce.Do(func() {
		h, err := passwords.Hash(a.params, "dummy-password")
		if err == nil {
			a.dummyHash = h
		}
	})
	return a.dummyHash
}
