package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
)

// authClient is the part of client.GRPCClient the CLI drives.
type authClient interface {
	Ping(ctx context.Context) error
	LoggedIn() bool
	Register(ctx context.Context, email, name string, password []byte) (*rpc.LoginResponse, error)
	Login(ctx context.Context, email string, password []byte) (*rpc.LoginResponse, error)
	CompleteSecondFactor(ctx context.Context, subjectID, code string) (*rpc.LoginResponse, error)
	WhoAmI(ctx context.Context) (*rpc.ValidateResponse, error)
	Logout(ctx context.Context) error
	ProvisionSecondFactor(ctx context.Context) (*rpc.ProvisionResponse, error)
	ConfirmSecondFactor(ctx context.Context, code string) error
	DisableSecondFactor(ctx context.Context) error
	SecondFactorStatus(ctx context.Context) (bool, error)
	LoginActivity(ctx context.Context) ([]rpc.ActivityDay, error)
	Close() error
}

type App struct {
	config *config.Config
	client authClient
	reader *bufio.Reader
	out    io.Writer
	email  string
}

func NewApp(c *config.Config) (*App, error) {

	apiClient, err := client.NewGophAuthClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{config: c, client: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	fmt.Fprintln(a.out, "Welcome to GophAuth CLI (type 'help' for commands)")
	if err := a.client.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "Server %s is not reachable: %s\n", a.config.ServerEndpointAddr, describe(err))
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) status() string {
	if a.isLoggedIn() && a.email != "" {
		return "(" + a.email + ")"
	}
	return ""
}
