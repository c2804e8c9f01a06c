// Package totp derives and verifies RFC 6238 time-based one-time codes
// (HMAC-SHA1, 30 second steps, 6 digits) and provisions new secrets.
package totp

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/pquerna/otp/totp"
)

const (
	// Period is the length of one time step.
	Period = 30 * time.Second
	// SecretSize is the length of a provisioned secret in bytes (160 bits).
	SecretSize = 20

	DefaultWindow    = 3
	DefaultCacheSize = 1000
	DefaultIssuer    = "GophAuth"

	// MaxWindow bounds the steps tried on either side of the current one.
	MaxWindow = 10
)

var deriveOpts = hotp.ValidateOpts{
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// Enrollment is a freshly generated secret together with its otpauth://
// provisioning URI, suitable for rendering as a QR code.
type Enrollment struct {
	Secret string
	URL    string
}

type cacheKey struct {
	secret string
	step   uint64
}

type Engine struct {
	issuer string
	window uint64
	now    func() time.Time
	codes  *expirable.LRU[cacheKey, string]
}

type Option func(*engineOptions)

type engineOptions struct {
	issuer    string
	window    uint64
	cacheSize int
	now       func() time.Time
}

func WithIssuer(issuer string) Option {
	return func(o *engineOptions) { o.issuer = issuer }
}

// WithWindow sets how many steps on either side of the current one are
// accepted by VerifyAt.
func WithWindow(w uint64) Option {
	return func(o *engineOptions) { o.window = w }
}

func WithCacheSize(n int) Option {
	return func(o *engineOptions) { o.cacheSize = n }
}

func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) { o.now = now }
}

func NewEngine(opts ...Option) *Engine {
	o := engineOptions{
		issuer:    DefaultIssuer,
		window:    DefaultWindow,
		cacheSize: DefaultCacheSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheSize <= 0 {
		o.cacheSize = DefaultCacheSize
	}
	if o.window > MaxWindow {
		o.window = MaxWindow
	}

	return &Engine{
		issuer: o.issuer,
		window: o.window,
		now:    o.now,
		codes:  expirable.NewLRU[cacheKey, string](o.cacheSize, nil, Period),
	}
}

// Window returns the configured tolerance in steps.
func (e *Engine) Window() uint64 { return e.window }

// Step returns the time step containing t.
func Step(t time.Time) uint64 {
	u := t.Unix()
	if u < 0 {
		return 0
	}
	return uint64(u) / uint64(Period/time.Second)
}

// CurrentStep returns the step for the engine's clock.
func (e *Engine) CurrentStep() uint64 {
	return Step(e.now())
}

// Provision generates a new random secret for accountName. Nothing is stored.
func (e *Engine) Provision(accountName string) (*Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuer,
		AccountName: accountName,
		Period:      uint(Period / time.Second),
		SecretSize:  SecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp secret: %w", err)
	}

	return &Enrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// DeriveCode returns the zero-padded 6-digit code for secret at step.
// Results are cached per (secret, step) for one period.
func (e *Engine) DeriveCode(secret string, step uint64) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", common.ErrInvalidSecret
	}

	k := cacheKey{secret: secret, step: step}
	if code, ok := e.codes.Get(k); ok {
		return code, nil
	}

	code, err := hotp.GenerateCodeCustom(secret, step, deriveOpts)
	if err != nil {
		if errors.Is(err, otp.ErrValidateSecretInvalidBase32) {
			return "", common.ErrInvalidSecret
		}
		return "", fmt.Errorf("derive code: %w", err)
	}

	e.codes.Add(k, code)
	return code, nil
}

// Verify reports whether code matches the code of any step in
// [currentStep-window, currentStep+window], clamped to the uint64 range.
// window is capped at MaxWindow. A mismatch is (false, nil).
func (e *Engine) Verify(secret, code string, currentStep, window uint64) (bool, error) {
	if !isDigits(code) {
		return false, common.ErrInvalidCodeFormat
	}
	if window > MaxWindow {
		window = MaxWindow
	}

	lo := uint64(0)
	if currentStep > window {
		lo = currentStep - window
	}
	hi := uint64(math.MaxUint64)
	if window <= math.MaxUint64-currentStep {
		hi = currentStep + window
	}

	for step := lo; ; step++ {
		expected, err := e.DeriveCode(secret, step)
		if err != nil {
			return false, err
		}
		if expected == code {
			return true, nil
		}
		if step == hi {
			break
		}
	}

	return false, nil
}

// VerifyAt verifies code at time t using the configured window.
func (e *Engine) VerifyAt(secret, code string, t time.Time) (bool, error) {
	return e.Verify(secret, code, Step(t), e.window)
}

// VerifyNow verifies code against the engine's clock.
func (e *Engine) VerifyNow(secret, code string) (bool, error) {
	return e.VerifyAt(secret, code, e.now())
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
