// Package client talks to the GophAuth gRPC service. A GRPCClient keeps the
// credential of the current session and attaches it as a bearer header to
// every call.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      *rpc.AuthServiceClient

	mu         sync.RWMutex
	credential string
}

func withCredential(ctx context.Context, credential string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+credential)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) credentialInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if _, ok := ctx.Deadline(); !ok && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if credential := s.Credential(); credential != "" {
		ctx = withCredential(ctx, credential)
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewGophAuthClient(endpointURL string, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	err := c.InitGRPCClient(grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// InitGRPCClient dials the endpoint. Extra options are appended to the
// credential interceptor.
func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {

	opts = append(opts, grpc.WithUnaryInterceptor(s.credentialInterceptor))
	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewAuthServiceClient(conn)
	return nil
}

func (s *GRPCClient) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

func (s *GRPCClient) setCredential(credential string) {
	s.mu.Lock()
	s.credential = credential
	s.mu.Unlock()
}

func (s *GRPCClient) LoggedIn() bool {
	return s.Credential() != ""
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	_, err := s.client.Ping(ctx)
	return s.mapError(err)
}

func (s *GRPCClient) Register(ctx context.Context, email, name string, password []byte) (*rpc.LoginResponse, error) {

	resp, err := s.client.Register(ctx, &rpc.RegisterRequest{Email: email, Name: name, Password: string(password)})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.setCredential(resp.Credential)
	return resp, nil

}

// Login sends the primary credentials. When the response state is
// rpc.StateAwaitingSecondFactor no credential is stored yet; finish with
// CompleteSecondFactor.
func (s *GRPCClient) Login(ctx context.Context, email string, password []byte) (*rpc.LoginResponse, error) {

	resp, err := s.client.Login(ctx, &rpc.LoginRequest{Email: email, Password: string(password)})
	if err != nil {
		return nil, s.mapError(err)
	}

	if resp.Credential != "" {
		s.setCredential(resp.Credential)
	}
	return resp, nil

}

func (s *GRPCClient) CompleteSecondFactor(ctx context.Context, subjectID, code string) (*rpc.LoginResponse, error) {

	resp, err := s.client.CompleteSecondFactor(ctx, &rpc.CompleteSecondFactorRequest{SubjectID: subjectID, Code: code})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.setCredential(resp.Credential)
	return resp, nil

}

// WhoAmI validates the stored credential.
func (s *GRPCClient) WhoAmI(ctx context.Context) (*rpc.ValidateResponse, error) {
	credential := s.Credential()
	if credential == "" {
		return nil, ErrNotLoggedIn
	}
	resp, err := s.client.Validate(ctx, &rpc.ValidateRequest{Credential: credential})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

// Logout revokes the credential on the server and forgets it locally. The
// local copy is dropped even when the call fails.
func (s *GRPCClient) Logout(ctx context.Context) error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}
	err := s.client.Logout(ctx)
	s.setCredential("")
	return s.mapError(err)
}

func (s *GRPCClient) ProvisionSecondFactor(ctx context.Context) (*rpc.ProvisionResponse, error) {
	resp, err := s.client.ProvisionSecondFactor(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) ConfirmSecondFactor(ctx context.Context, code string) error {
	return s.mapError(s.client.ConfirmSecondFactor(ctx, &rpc.CodeRequest{Code: code}))
}

func (s *GRPCClient) DisableSecondFactor(ctx context.Context) error {
	return s.mapError(s.client.DisableSecondFactor(ctx))
}

func (s *GRPCClient) SecondFactorStatus(ctx context.Context) (bool, error) {
	resp, err := s.client.SecondFactorStatus(ctx)
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Enabled, nil
}

func (s *GRPCClient) LoginActivity(ctx context.Context) ([]rpc.ActivityDay, error) {
	resp, err := s.client.LoginActivity(ctx)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Days, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument, codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
