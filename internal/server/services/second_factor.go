package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/totp"
)

// SecondFactorService manages a subject's TOTP enrollment. A provisioned
// secret stays inactive until Confirm proves the subject's authenticator
// produces matching codes.
type SecondFactorService struct {
	repos   repomanager.RepositoryManager
	otp     OTPEngine
	log     logging.Logger
	metrics *metrics.Metrics
}

func NewSecondFactorService(m repomanager.RepositoryManager, otp OTPEngine, opts ...Option) *SecondFactorService {
	o := buildOptions(opts)
	return &SecondFactorService{
		repos:   m,
		otp:     otp,
		log:     o.log.With("module", "second_factor"),
		metrics: o.metrics,
	}
}

// Provision generates and stores a new secret, replacing any unconfirmed
// one. It fails with common.ErrorAlreadyExists while a second factor is
// enabled; Disable must come first.
func (s *SecondFactorService) Provision(ctx context.Context, subjectID string) (*totp.Enrollment, error) {
	subject, err := s.load(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if subject.SecondFactorEnabled {
		return nil, common.ErrorAlreadyExists
	}

	enrollment, err := s.otp.Provision(subject.Email)
	if err != nil {
		s.log.Error(ctx, "error generating totp secret", "subject", subjectID, "error", err)
		return nil, common.ErrorInternal
	}

	if err := s.repos.Subjects().UpdateSecondFactor(ctx, subject.ID, enrollment.Secret, false); err != nil {
		return nil, s.storeErr(ctx, subjectID, err)
	}

	s.log.Info(ctx, "second factor provisioned", "subject", subjectID)
	return enrollment, nil
}

// Confirm enables the provisioned secret once code matches it.
func (s *SecondFactorService) Confirm(ctx context.Context, subjectID, code string) error {
	subject, err := s.load(ctx, subjectID)
	if err != nil {
		return err
	}
	if subject.SecondFactorSecret == "" {
		return common.ErrInvalidOTP
	}

	ok, err := s.check(ctx, subject, code)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrInvalidOTP
	}

	if err := s.repos.Subjects().UpdateSecondFactor(ctx, subject.ID, subject.SecondFactorSecret, true); err != nil {
		return s.storeErr(ctx, subjectID, err)
	}

	s.log.Info(ctx, "second factor enabled", "subject", subjectID)
	return nil
}

// Verify checks code against the stored secret without changing anything.
// A subject without a secret never verifies.
func (s *SecondFactorService) Verify(ctx context.Context, subjectID, code string) (bool, error) {
	subject, err := s.load(ctx, subjectID)
	if err != nil {
		return false, err
	}
	if subject.SecondFactorSecret == "" {
		return false, nil
	}
	return s.check(ctx, subject, code)
}

// Disable clears the secret and turns the second factor off.
func (s *SecondFactorService) Disable(ctx context.Context, subjectID string) error {
	if _, err := s.load(ctx, subjectID); err != nil {
		return err
	}
	if err := s.repos.Subjects().UpdateSecondFactor(ctx, subjectID, "", false); err != nil {
		return s.storeErr(ctx, subjectID, err)
	}

	s.log.Info(ctx, "second factor disabled", "subject", subjectID)
	return nil
}

// Status reports whether the second factor is enabled.
func (s *SecondFactorService) Status(ctx context.Context, subjectID string) (bool, error) {
	subject, err := s.load(ctx, subjectID)
	if err != nil {
		return false, err
	}
	return subject.SecondFactorEnabled, nil
}

func (s *SecondFactorService) check(ctx context.Context, subject *models.Subject, code string) (bool, error) {
	ok, err := s.otp.VerifyNow(subject.SecondFactorSecret, code)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCodeFormat) || errors.Is(err, common.ErrInvalidSecret) {
			return false, err
		}
		s.log.Error(ctx, "otp verification failed", "subject", subject.ID, "error", err)
		return false, common.ErrorInternal
	}
	s.metrics.OTPCheck(ok)
	return ok, nil
}

func (s *SecondFactorService) load(ctx context.Context, subjectID string) (*models.Subject, error) {
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

func (s *SecondFactorService) storeErr(ctx context.Context, subjectID string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrSubjectNotFound
	}
	s.log.Error(ctx, "error updating second factor", "subject", subjectID, "error", err)
	return common.ErrorInternal
}
