package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

const defaultName = "User"

// FederatedIdentity holds the attributes an external provider returned
// after its handshake. Login is the provider's account handle (GitHub login);
// Email and Name may be empty.
type FederatedIdentity struct {
	Provider models.Provider
	Email    string
	Name     string
	Login    string
}

// email falls back to <login>@github.com for GitHub accounts without a
// public address.
func (f FederatedIdentity) email() string {
	if f.Email != "" {
		return f.Email
	}
	if f.Login != "" {
		return f.Login + "@github.com"
	}
	return ""
}

func (f FederatedIdentity) name() string {
	if f.Name != "" {
		return f.Name
	}
	if f.Login != "" {
		return f.Login
	}
	return defaultName
}

// LoginFederated logs in a subject vouched for by an external provider,
// creating the profile on first sight. An email already registered under a
// different provider yields common.ErrProviderMismatch. The result passes
// through the same second-factor gate as a password login.
func (s *AuthService) LoginFederated(ctx context.Context, id FederatedIdentity) (*LoginResult, error) {
	if !id.Provider.Valid() || id.Provider == models.ProviderLocal {
		return nil, common.ErrorValidation
	}
	email := id.email()
	if email == "" {
		return nil, common.ErrorValidation
	}
	name := id.name()

	var subject *models.Subject
	err := s.repos.InTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		repo := tx.Subjects()

		existing, err := repo.GetByEmail(ctx, email)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			subject, err = repo.Create(ctx, &models.Subject{
				Email:    email,
				Name:     name,
				Provider: id.Provider,
				Roles:    []string{common.RoleUser},
			})
			return err
		case err != nil:
			return err
		}

		if existing.Provider != id.Provider {
			return common.ErrProviderMismatch
		}
		if existing.Name != name {
			if err := repo.UpdateName(ctx, existing.ID, name); err != nil {
				return err
			}
			existing.Name = name
		}
		subject = existing
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrProviderMismatch):
			s.metrics.Login(flowFederated, metrics.ResultRejected)
			return nil, common.ErrProviderMismatch
		case errors.Is(err, common.ErrorAlreadyExists):
			// lost a creation race; the next attempt will find the subject
			return nil, common.ErrorAlreadyExists
		}
		s.metrics.Login(flowFederated, metrics.ResultError)
		s.log.Error(ctx, "federated login failed", "provider", string(id.Provider), "error", err)
		return nil, common.ErrorInternal
	}

	return s.gate(ctx, flowFederated, subject, rolesFor(subject))
}

// rolesFor returns the roles written into a credential for subject.
// Federated subjects additionally carry OAUTH2_USER; only ROLE_* entries and
// OAUTH2_USER are kept.
func rolesFor(subject *models.Subject) []string {
	roles := subject.Roles
	if subject.Provider != models.ProviderLocal && subject.Provider != "" {
		roles = append(append([]string{}, roles...), common.RoleOAuth2User)
	}
	return filterRoles(roles)
}

func filterRoles(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if !strings.HasPrefix(r, "ROLE_") && r != common.RoleOAuth2User {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}
