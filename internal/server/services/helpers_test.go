package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/keystore"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/passwords"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/activity"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/subjects"
	"github.com/dmitrijs2005/gophauth/internal/server/totp"
)

var errBoom = errors.New("boom")

var cheapParams = passwords.Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

type env struct {
	repos  repomanager.RepositoryManager
	keys   *keystore.Store
	issuer *credentials.Issuer
	engine *totp.Engine
	auth   *AuthService
	sf     *SecondFactorService
	now    time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWithRepos(t, repomanager.NewMemoryRepositoryManager())
}

func newEnvWithRepos(t *testing.T, repos repomanager.RepositoryManager) *env {
	t.Helper()

	e := &env{repos: repos, now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return e.now }

	cfg := &config.Config{}
	cfg.LoadDefaults()

	e.keys = keystore.New(keystore.WithClock(clock))
	e.issuer = credentials.NewIssuer(e.keys, credentials.WithClock(clock))
	e.engine = totp.NewEngine(totp.WithClock(clock))
	e.auth = NewAuthService(repos, NewPasswordAuthenticator(repos, cheapParams), e.issuer, e.engine, cfg,
		WithClock(clock), WithPasswordParams(cheapParams))
	e.sf = NewSecondFactorService(repos, e.engine)
	return e
}

// code returns the TOTP code an authenticator app would show right now.
func (e *env) code(t *testing.T, secret string) string {
	t.Helper()
	c, err := e.engine.DeriveCode(secret, totp.Step(e.now))
	if err != nil {
		t.Fatalf("DeriveCode error: %v", err)
	}
	return c
}

// wrongCode returns a well-formed code that matches no step in the window.
func (e *env) wrongCode(t *testing.T, secret string) string {
	t.Helper()
	valid := map[string]bool{}
	cur := totp.Step(e.now)
	for s := cur - 3; s <= cur+3; s++ {
		valid[e.code0(t, secret, s)] = true
	}
	for _, c := range []string{"000000", "111111", "222222", "333333"} {
		if !valid[c] {
			return c
		}
	}
	t.Fatal("no wrong code found")
	return ""
}

func (e *env) code0(t *testing.T, secret string, step uint64) string {
	t.Helper()
	c, err := e.engine.DeriveCode(secret, step)
	if err != nil {
		t.Fatalf("DeriveCode error: %v", err)
	}
	return c
}

// enable provisions and confirms a second factor for subjectID.
func (e *env) enable(t *testing.T, subjectID string) string {
	t.Helper()
	ctx := context.Background()
	enr, err := e.sf.Provision(ctx, subjectID)
	if err != nil {
		t.Fatalf("Provision error: %v", err)
	}
	if err := e.sf.Confirm(ctx, subjectID, e.code(t, enr.Secret)); err != nil {
		t.Fatalf("Confirm error: %v", err)
	}
	return enr.Secret
}

// --- fakes ---

type fakeSubjects struct {
	subjects.Repository
	getErr    error
	updateErr error
	getOut    *models.Subject
}

func (f *fakeSubjects) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getOut != nil {
		return f.getOut, nil
	}
	return f.Repository.GetByID(ctx, id)
}

func (f *fakeSubjects) GetByEmail(ctx context.Context, email string) (*models.Subject, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Repository.GetByEmail(ctx, email)
}

func (f *fakeSubjects) UpdateSecondFactor(ctx context.Context, id, secret string, enabled bool) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.Repository.UpdateSecondFactor(ctx, id, secret, enabled)
}

type fakeActivity struct {
	activity.Repository
	recordErr error
	listErr   error
}

func (f *fakeActivity) Record(ctx context.Context, id string, at time.Time) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	return f.Repository.Record(ctx, id, at)
}

func (f *fakeActivity) List(ctx context.Context, id string) ([]models.LoginActivity, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Repository.List(ctx, id)
}

type fakeRepoManager struct {
	s     *fakeSubjects
	a     *fakeActivity
	txErr error
}

func newFakeRepoManager() *fakeRepoManager {
	mem := repomanager.NewMemoryRepositoryManager()
	return &fakeRepoManager{
		s: &fakeSubjects{Repository: mem.Subjects()},
		a: &fakeActivity{Repository: mem.Activity()},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context) error { return nil }
func (m *fakeRepoManager) Subjects() subjects.Repository       { return m.s }
func (m *fakeRepoManager) Activity() activity.Repository       { return m.a }
func (m *fakeRepoManager) InTx(ctx context.Context, fn func(context.Context, repomanager.RepositoryManager) error) error {
	if m.txErr != nil {
		return m.txErr
	}
	return fn(ctx, m)
}

type fakeAuthenticator struct {
	out *models.Subject
	err error
}

func (f *fakeAuthenticator) Authenticate(context.Context, string, string) (*models.Subject, error) {
	return f.out, f.err
}

type fakeIssuer struct {
	CredentialIssuer
	issueErr error
	issued   int
}

func (f *fakeIssuer) Issue(subjectID string, roles []string, ttl time.Duration) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	f.issued++
	return "cred", nil
}

type fakeOTP struct {
	ok  bool
	err error
}

func (f *fakeOTP) Provision(string) (*totp.Enrollment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &totp.Enrollment{Secret: "JBSWY3DPEHPK3PXP", URL: "otpauth://totp/x"}, nil
}

func (f *fakeOTP) VerifyNow(string, string) (bool, error) { return f.ok, f.err }
