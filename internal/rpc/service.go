package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "gophauth.AuthService"

const (
	MethodPing                  = "Ping"
	MethodRegister              = "Register"
	MethodLogin                 = "Login"
	MethodCompleteSecondFactor  = "CompleteSecondFactor"
	MethodLoginFederated        = "LoginFederated"
	MethodValidate              = "Validate"
	MethodLogout                = "Logout"
	MethodProvisionSecondFactor = "ProvisionSecondFactor"
	MethodConfirmSecondFactor   = "ConfirmSecondFactor"
	MethodVerifySecondFactor    = "VerifySecondFactor"
	MethodDisableSecondFactor   = "DisableSecondFactor"
	MethodSecondFactorStatus    = "SecondFactorStatus"
	MethodLoginActivity         = "LoginActivity"
)

// FullMethod returns the "/service/method" path used in UnaryServerInfo.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AuthServiceServer is implemented by the gRPC server.
type AuthServiceServer interface {
	Ping(context.Context, *Empty) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*LoginResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	CompleteSecondFactor(context.Context, *CompleteSecondFactorRequest) (*LoginResponse, error)
	LoginFederated(context.Context, *FederatedLoginRequest) (*LoginResponse, error)
	Validate(context.Context, *ValidateRequest) (*ValidateResponse, error)
	Logout(context.Context, *Empty) (*Empty, error)
	ProvisionSecondFactor(context.Context, *Empty) (*ProvisionResponse, error)
	ConfirmSecondFactor(context.Context, *CodeRequest) (*Empty, error)
	VerifySecondFactor(context.Context, *CodeRequest) (*VerifyResponse, error)
	DisableSecondFactor(context.Context, *Empty) (*Empty, error)
	SecondFactorStatus(context.Context, *Empty) (*StatusResponse, error)
	LoginActivity(context.Context, *Empty) (*LoginActivityResponse, error)
}

func unary[Req, Resp any](method string, call func(AuthServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AuthServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(AuthServiceServer), ctx, req.(*Req))
			})
		},
	}
}

// AuthServiceDesc describes the service for grpc.Server.RegisterService.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, AuthServiceServer.Ping),
		unary(MethodRegister, AuthServiceServer.Register),
		unary(MethodLogin, AuthServiceServer.Login),
		unary(MethodCompleteSecondFactor, AuthServiceServer.CompleteSecondFactor),
		unary(MethodLoginFederated, AuthServiceServer.LoginFederated),
		unary(MethodValidate, AuthServiceServer.Validate),
		unary(MethodLogout, AuthServiceServer.Logout),
		unary(MethodProvisionSecondFactor, AuthServiceServer.ProvisionSecondFactor),
		unary(MethodConfirmSecondFactor, AuthServiceServer.ConfirmSecondFactor),
		unary(MethodVerifySecondFactor, AuthServiceServer.VerifySecondFactor),
		unary(MethodDisableSecondFactor, AuthServiceServer.DisableSecondFactor),
		unary(MethodSecondFactorStatus, AuthServiceServer.SecondFactorStatus),
		unary(MethodLoginActivity, AuthServiceServer.LoginActivity),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophauth/auth.json",
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}
