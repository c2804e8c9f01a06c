package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// AuthServiceClient calls the service over a connection. Every call is
// sent with the JSON content subtype.
type AuthServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) *AuthServiceClient {
	return &AuthServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthServiceClient) Ping(ctx context.Context, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, &Empty{}, opts)
}

func (c *AuthServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodRegister, in, opts)
}

func (c *AuthServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts)
}

func (c *AuthServiceClient) CompleteSecondFactor(ctx context.Context, in *CompleteSecondFactorRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodCompleteSecondFactor, in, opts)
}

func (c *AuthServiceClient) LoginFederated(ctx context.Context, in *FederatedLoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLoginFederated, in, opts)
}

func (c *AuthServiceClient) Validate(ctx context.Context, in *ValidateRequest, opts ...grpc.CallOption) (*ValidateResponse, error) {
	return invoke[ValidateResponse](ctx, c.cc, MethodValidate, in, opts)
}

func (c *AuthServiceClient) Logout(ctx context.Context, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c.cc, MethodLogout, &Empty{}, opts)
	return err
}

func (c *AuthServiceClient) ProvisionSecondFactor(ctx context.Context, opts ...grpc.CallOption) (*ProvisionResponse, error) {
	return invoke[ProvisionResponse](ctx, c.cc, MethodProvisionSecondFactor, &Empty{}, opts)
}

func (c *AuthServiceClient) ConfirmSecondFactor(ctx context.Context, in *CodeRequest, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c.cc, MethodConfirmSecondFactor, in, opts)
	return err
}

func (c *AuthServiceClient) VerifySecondFactor(ctx context.Context, in *CodeRequest, opts ...grpc.CallOption) (*VerifyResponse, error) {
	return invoke[VerifyResponse](ctx, c.cc, MethodVerifySecondFactor, in, opts)
}

func (c *AuthServiceClient) DisableSecondFactor(ctx context.Context, opts ...grpc.CallOption) error {
	_, err := invoke[Empty](ctx, c.cc, MethodDisableSecondFactor, &Empty{}, opts)
	return err
}

func (c *AuthServiceClient) SecondFactorStatus(ctx context.Context, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, MethodSecondFactorStatus, &Empty{}, opts)
}

func (c *AuthServiceClient) LoginActivity(ctx context.Context, opts ...grpc.CallOption) (*LoginActivityResponse, error) {
	return invoke[LoginActivityResponse](ctx, c.cc, MethodLoginActivity, &Empty{}, opts)
}
