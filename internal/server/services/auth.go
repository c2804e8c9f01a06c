// Package services contains server-side business logic. AuthService turns
// a successful primary authentication into a credential, holding it back
// behind a TOTP check when the subject has a second factor enabled.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/passwords"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// State is the outcome of a login step.
type State int

const (
	StateIssuedDirectly State = iota + 1
	StateAwaitingSecondFactor
	StateIssuedAfterVerification
)

func (s State) String() string {
	switch s {
	case StateIssuedDirectly:
		return "issued_directly"
	case StateAwaitingSecondFactor:
		return "awaiting_second_factor"
	case StateIssuedAfterVerification:
		return "issued_after_verification"
	}
	return "unknown"
}

// LoginResult reports where a login ended. Credential and ExpiresAt are set
// only in the two issued states; StateAwaitingSecondFactor carries nothing
// but SubjectID.
type LoginResult struct {
	State      State
	SubjectID  string
	Credential string
	ExpiresAt  time.Time
}

const (
	flowPassword     = "password"
	flowFederated    = "federated"
	flowSecondFactor = "second_factor"
	flowRegister     = "register"
)

type AuthService struct {
	repos  repomanager.RepositoryManager
	authn  Authenticator
	issuer CredentialIssuer
	otp    OTPEngine
	ttl    time.Duration

	log            logging.Logger
	metrics        *metrics.Metrics
	now            func() time.Time
	passwordParams passwords.Params
}

func NewAuthService(m repomanager.RepositoryManager, authn Authenticator, issuer CredentialIssuer, otp OTPEngine, cfg *config.Config, opts ...Option) *AuthService {
	o := buildOptions(opts)
	return &AuthService{
		repos:          m,
		authn:          authn,
		issuer:         issuer,
		otp:            otp,
		ttl:            cfg.CredentialTTL,
		log:            o.log.With("module", "auth"),
		metrics:        o.metrics,
		now:            o.now,
		passwordParams: o.passwordParams,
	}
}

// Login runs primary authentication and then either issues a credential or
// stops at StateAwaitingSecondFactor. Any primary failure is reported as
// common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, secret string) (*LoginResult, error) {
	subject, err := s.authn.Authenticate(ctx, identifier, secret)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.metrics.Login(flowPassword, metrics.ResultRejected)
			return nil, common.ErrInvalidCredentials
		}
		s.metrics.Login(flowPassword, metrics.ResultError)
		s.log.Error(ctx, "primary authentication failed", "error", err)
		return nil, common.ErrorInternal
	}

	return s.gate(ctx, flowPassword, subject, subject.Roles)
}

// CompleteSecondFactor finishes a login left in StateAwaitingSecondFactor.
// Nothing from the first step is remembered; the subject is reloaded and
// the code is checked against the current time.
func (s *AuthService) CompleteSecondFactor(ctx context.Context, subjectID, code string) (*LoginResult, error) {
	subject, err := s.loadSubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	if !subject.SecondFactorEnabled || subject.SecondFactorSecret == "" {
		s.metrics.Login(flowSecondFactor, metrics.ResultRejected)
		return nil, common.ErrInvalidOTP
	}

	ok, err := s.otp.VerifyNow(subject.SecondFactorSecret, code)
	if err != nil {
		s.metrics.Login(flowSecondFactor, metrics.ResultRejected)
		if errors.Is(err, common.ErrInvalidCodeFormat) || errors.Is(err, common.ErrInvalidSecret) {
			return nil, err
		}
		s.log.Error(ctx, "otp verification failed", "subject", subjectID, "error", err)
		return nil, common.ErrorInternal
	}
	s.metrics.OTPCheck(ok)
	if !ok {
		s.metrics.Login(flowSecondFactor, metrics.ResultRejected)
		return nil, common.ErrInvalidOTP
	}

	return s.issue(ctx, flowSecondFactor, StateIssuedAfterVerification, subject.ID, rolesFor(subject))
}

// Register creates a local subject with the ROLE_USER role and logs it in.
// A new subject never has a second factor, so the credential is issued
// directly.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*LoginResult, error) {
	if !validEmail(email) || password == "" {
		return nil, common.ErrorValidation
	}
	if name == "" {
		name = defaultName
	}

	hash, err := passwords.Hash(s.passwordParams, password)
	if err != nil {
		s.log.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	subject := &models.Subject{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Provider:     models.ProviderLocal,
		Roles:        []string{common.RoleUser},
	}

	if err := s.repos.InTx(ctx, func(ctx context.Context, tx repomanager.RepositoryManager) error {
		var err error
		subject, err = tx.Subjects().Create(ctx, subject)
		return err
	}); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		s.log.Error(ctx, "error creating subject", "error", err)
		return nil, common.ErrorInternal
	}

	s.log.Info(ctx, "subject registered", "subject", subject.ID)
	return s.issue(ctx, flowRegister, StateIssuedDirectly, subject.ID, subject.Roles)
}

// Logout revokes credential. Unknown or already revoked credentials are
// accepted silently.
func (s *AuthService) Logout(_ context.Context, credential string) {
	s.issuer.Invalidate(credential)
	s.metrics.CredentialRevoked()
}

// Validate returns the claims of a live credential.
func (s *AuthService) Validate(credential string) (*credentials.Claims, error) {
	return s.issuer.Validate(credential)
}

// LoginActivity lists the per-day login counters of subjectID, oldest first.
func (s *AuthService) LoginActivity(ctx context.Context, subjectID string) ([]models.LoginActivity, error) {
	list, err := s.repos.Activity().List(ctx, subjectID)
	if err != nil {
		s.log.Error(ctx, "error listing login activity", "subject", subjectID, "error", err)
		return nil, common.ErrorInternal
	}
	return list, nil
}

// gate is the branch point after primary authentication.
func (s *AuthService) gate(ctx context.Context, flow string, subject *models.Subject, roles []string) (*LoginResult, error) {
	if subject.SecondFactorEnabled {
		s.metrics.Login(flow, metrics.ResultAwaiting)
		s.log.Debug(ctx, "second factor required", "subject", subject.ID)
		return &LoginResult{State: StateAwaitingSecondFactor, SubjectID: subject.ID}, nil
	}
	return s.issue(ctx, flow, StateIssuedDirectly, subject.ID, roles)
}

// issue is the only place a credential leaves the service.
func (s *AuthService) issue(ctx context.Context, flow string, state State, subjectID string, roles []string) (*LoginResult, error) {
	now := s.now()

	credential, err := s.issuer.Issue(subjectID, roles, s.ttl)
	if err != nil {
		s.metrics.Login(flow, metrics.ResultError)
		s.log.Error(ctx, "error issuing credential", "subject", subjectID, "error", err)
		return nil, common.ErrorInternal
	}
	s.metrics.CredentialIssued()

	if err := s.repos.Activity().Record(ctx, subjectID, now); err != nil {
		s.log.Warn(ctx, "error recording login activity", "subject", subjectID, "error", err)
	}

	result := metrics.ResultIssued
	if state == StateIssuedAfterVerification {
		result = metrics.ResultVerified
	}
	s.metrics.Login(flow, result)
	s.log.Info(ctx, "credential issued", "subject", subjectID, "state", state.String())

	return &LoginResult{
		State:      state,
		SubjectID:  subjectID,
		Credential: credential,
		ExpiresAt:  now.Add(s.ttl),
	}, nil
}

func (s *AuthService) loadSubject(ctx context.Context, subjectID string) (*models.Subject, error) {
	subject, err := s.repos.Subjects().GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrSubjectNotFound
		}
		s.log.Error(ctx, "error loading subject", "subject", subjectID, "error", err)
		return nil, common.ErrorInternal
	}
	return subject, nil
}
