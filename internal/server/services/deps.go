package services

import (
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/passwords"
	"github.com/dmitrijs2005/gophauth/internal/server/totp"
)

// CredentialIssuer mints, checks and revokes bearer credentials.
// credentials.Issuer implements it.
type CredentialIssuer interface {
	Issue(subjectID string, roles []string, ttl time.Duration) (string, error)
	Validate(credential string) (*credentials.Claims, error)
	Invalidate(credential string)
}

// OTPEngine provisions TOTP secrets and checks codes against the current
// time. totp.Engine implements it.
type OTPEngine interface {
	Provision(accountName string) (*totp.Enrollment, error)
	VerifyNow(secret, code string) (bool, error)
}

// Option tweaks optional collaborators of the services.
type Option func(*options)

type options struct {
	log            logging.Logger
	metrics        *metrics.Metrics
	now            func() time.Time
	passwordParams passwords.Params
}

func defaultOptions() options {
	return options{
		log:            logging.Nop{},
		now:            time.Now,
		passwordParams: passwords.Default,
	}
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithPasswordParams sets the argon2id cost used to hash new passwords.
func WithPasswordParams(p passwords.Params) Option {
	return func(o *options) { o.passwordParams = p }
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
