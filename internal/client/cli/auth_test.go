package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubInputs answers text prompts from texts in order and the password
// prompt with password.
func stubInputs(t *testing.T, password string, texts ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			t.Fatal("unexpected text prompt")
		}
		s := texts[0]
		texts = texts[1:]
		return s, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeClient struct {
	credential string
	awaiting   bool
	enabled    bool

	gotEmail, gotName, gotPassword, gotCode string
	provisioned                             bool
}

func (f *fakeClient) Ping(context.Context) error { return nil }
func (f *fakeClient) LoggedIn() bool             { return f.credential != "" }
func (f *fakeClient) Close() error               { return nil }

func (f *fakeClient) Register(_ context.Context, email, name string, password []byte) (*rpc.LoginResponse, error) {
	f.gotEmail, f.gotName, f.gotPassword = email, name, string(password)
	if email == "taken@example.com" {
		return nil, client.ErrAlreadyExists
	}
	f.credential = "cred"
	return &rpc.LoginResponse{State: rpc.StateIssued, SubjectID: "s-1", Credential: "cred"}, nil
}

func (f *fakeClient) Login(_ context.Context, email string, password []byte) (*rpc.LoginResponse, error) {
	f.gotEmail, f.gotPassword = email, string(password)
	if string(password) != "pw" {
		return nil, client.ErrUnauthorized
	}
	if f.awaiting {
		return &rpc.LoginResponse{State: rpc.StateAwaitingSecondFactor, SubjectID: "s-1"}, nil
	}
	f.credential = "cred"
	return &rpc.LoginResponse{State: rpc.StateIssued, SubjectID: "s-1", Credential: "cred"}, nil
}

func (f *fakeClient) CompleteSecondFactor(_ context.Context, subjectID, code string) (*rpc.LoginResponse, error) {
	f.gotCode = code
	if code != "123456" {
		return nil, client.ErrUnauthorized
	}
	f.credential = "cred-2fa"
	return &rpc.LoginResponse{State: rpc.StateIssuedAfterVerify, SubjectID: subjectID, Credential: "cred-2fa"}, nil
}

func (f *fakeClient) WhoAmI(context.Context) (*rpc.ValidateResponse, error) {
	if f.credential == "" {
		return nil, client.ErrNotLoggedIn
	}
	return &rpc.ValidateResponse{SubjectID: "s-1", Roles: []string{"ROLE_USER"}, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeClient) Logout(context.Context) error {
	if f.credential == "" {
		return client.ErrNotLoggedIn
	}
	f.credential = ""
	return nil
}

func (f *fakeClient) ProvisionSecondFactor(context.Context) (*rpc.ProvisionResponse, error) {
	f.provisioned = true
	return &rpc.ProvisionResponse{Secret: "JBSWY3DPEHPK3PXP", URL: "otpauth://totp/GophAuth:ann"}, nil
}

func (f *fakeClient) ConfirmSecondFactor(_ context.Context, code string) error {
	f.gotCode = code
	if code != "123456" {
		return client.ErrUnauthorized
	}
	f.enabled = true
	return nil
}

func (f *fakeClient) DisableSecondFactor(context.Context) error {
	f.enabled = false
	return nil
}

func (f *fakeClient) SecondFactorStatus(context.Context) (bool, error) { return f.enabled, nil }

func (f *fakeClient) LoginActivity(context.Context) ([]rpc.ActivityDay, error) {
	return []rpc.ActivityDay{{Day: "2024-06-01", Count: 2}, {Day: "2024-06-02", Count: 1}}, nil
}

func newTestApp(fc *fakeClient) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{client: fc, out: &out, reader: bufio.NewReader(strings.NewReader(""))}, &out
}

func TestRegister_Success(t *testing.T) {
	stubInputs(t, "pw", "ann@example.com", "Ann")
	fc := &fakeClient{}
	a, out := newTestApp(fc)

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, "ann@example.com", fc.gotEmail)
	assert.Equal(t, "Ann", fc.gotName)
	assert.Equal(t, "pw", fc.gotPassword)
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(ann@example.com)", a.status())
	assert.Contains(t, out.String(), "Success!")
}

func TestRegister_Taken(t *testing.T) {
	stubInputs(t, "pw", "taken@example.com", "")
	a, out := newTestApp(&fakeClient{})

	err := a.Register(context.Background())
	assert.ErrorIs(t, err, client.ErrAlreadyExists)
	assert.Contains(t, out.String(), "already exists")
	assert.False(t, a.isLoggedIn())
}

func TestLogin_Direct(t *testing.T) {
	stubInputs(t, "pw", "ann@example.com")
	a, out := newTestApp(&fakeClient{})

	require.NoError(t, a.Login(context.Background()))
	assert.True(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Login successful")
}

func TestLogin_WrongPassword(t *testing.T) {
	stubInputs(t, "nope", "ann@example.com")
	a, out := newTestApp(&fakeClient{})

	assert.ErrorIs(t, a.Login(context.Background()), client.ErrUnauthorized)
	assert.Contains(t, out.String(), "access denied")
	assert.Equal(t, "", a.status())
}

func TestLogin_AsksForCode(t *testing.T) {
	stubInputs(t, "pw", "ann@example.com", "123456")
	fc := &fakeClient{awaiting: true}
	a, _ := newTestApp(fc)

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "123456", fc.gotCode)
	assert.Equal(t, "cred-2fa", fc.credential)
}

func TestLogin_WrongCode(t *testing.T) {
	stubInputs(t, "pw", "ann@example.com", "000000")
	fc := &fakeClient{awaiting: true}
	a, _ := newTestApp(fc)

	assert.ErrorIs(t, a.Login(context.Background()), client.ErrUnauthorized)
	assert.False(t, a.isLoggedIn())
}

func TestLogout(t *testing.T) {
	fc := &fakeClient{credential: "cred"}
	a, out := newTestApp(fc)
	a.email = "ann@example.com"

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, "", a.email)
	assert.Contains(t, out.String(), "Logged out")

	assert.ErrorIs(t, a.Logout(context.Background()), client.ErrNotLoggedIn)
}

func TestWhoAmIAndActivity(t *testing.T) {
	a, out := newTestApp(&fakeClient{credential: "cred"})

	require.NoError(t, a.WhoAmI(context.Background()))
	assert.Contains(t, out.String(), "Subject: s-1")
	assert.Contains(t, out.String(), "ROLE_USER")

	require.NoError(t, a.Activity(context.Background()))
	assert.Contains(t, out.String(), "2024-06-01  2")
	assert.Contains(t, out.String(), "2024-06-02  1")
}

func TestSecondFactorCommands(t *testing.T) {
	stubInputs(t, "", "123456")
	fc := &fakeClient{credential: "cred"}
	a, out := newTestApp(fc)
	ctx := context.Background()

	require.NoError(t, a.EnableSecondFactor(ctx))
	assert.True(t, fc.provisioned)
	assert.True(t, fc.enabled)
	assert.Contains(t, out.String(), "Secret: JBSWY3DPEHPK3PXP")

	require.NoError(t, a.SecondFactorStatus(ctx))
	assert.Contains(t, out.String(), "Second factor: enabled")

	require.NoError(t, a.DisableSecondFactor(ctx))
	assert.False(t, fc.enabled)
}

func TestEnableSecondFactor_WrongCode(t *testing.T) {
	stubInputs(t, "", "999999")
	fc := &fakeClient{credential: "cred"}
	a, out := newTestApp(fc)

	assert.ErrorIs(t, a.EnableSecondFactor(context.Background()), client.ErrUnauthorized)
	assert.False(t, fc.enabled)
	assert.Contains(t, out.String(), "Confirmation failed")
}
