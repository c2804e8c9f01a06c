package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/keystore"
	"github.com/dmitrijs2005/gophauth/internal/server/passwords"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/totp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

const testFederationKey = "gateway-secret"

var cheapParams = passwords.Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

type testEnv struct {
	srv    *GRPCServer
	engine *totp.Engine
	client *rpc.AuthServiceClient
}

// helper to build server
func newTestServer(t *testing.T, federationKey string) (*GRPCServer, *totp.Engine) {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()

	repos := repomanager.NewMemoryRepositoryManager()
	issuer := credentials.NewIssuer(keystore.New())
	engine := totp.NewEngine()

	as := services.NewAuthService(repos, services.NewPasswordAuthenticator(repos, cheapParams), issuer, engine, cfg,
		services.WithPasswordParams(cheapParams))
	sf := services.NewSecondFactorService(repos, engine)

	srv, err := NewGRPCServer("127.0.0.1:0", logging.Nop{}, as, sf, nil, federationKey)
	if err != nil {
		t.Fatalf("NewGRPCServer error: %v", err)
	}
	return srv, engine
}

// newTestEnv serves a fresh server over an in-memory listener.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	srv, engine := newTestServer(t, testFederationKey)
	lis := bufconn.Listen(1 << 20)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server did not stop")
		}
	})

	return &testEnv{srv: srv, engine: engine, client: rpc.NewAuthServiceClient(conn)}
}

func bearer(ctx context.Context, credential string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+credential)
}

func (e *testEnv) currentCode(t *testing.T, secret string) string {
	t.Helper()
	c, err := e.engine.DeriveCode(secret, e.engine.CurrentStep())
	if err != nil {
		t.Fatalf("DeriveCode error: %v", err)
	}
	return c
}
