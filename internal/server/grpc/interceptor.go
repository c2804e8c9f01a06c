package grpc

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// FederationKeyHeader carries the gateway key on LoginFederated calls.
const FederationKeyHeader = "x-federation-key"

type ctxKey string

const sessionKey ctxKey = "session"

type session struct {
	credential string
	claims     *credentials.Claims
}

// bearerMethods need a live credential in the authorization header.
var bearerMethods = map[string]bool{
	rpc.FullMethod(rpc.MethodLogout):                true,
	rpc.FullMethod(rpc.MethodProvisionSecondFactor): true,
	rpc.FullMethod(rpc.MethodConfirmSecondFactor):   true,
	rpc.FullMethod(rpc.MethodVerifySecondFactor):    true,
	rpc.FullMethod(rpc.MethodDisableSecondFactor):   true,
	rpc.FullMethod(rpc.MethodSecondFactorStatus):    true,
	rpc.FullMethod(rpc.MethodLoginActivity):         true,
}

func firstValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (s *GRPCServer) accessInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if info.FullMethod == rpc.FullMethod(rpc.MethodLoginFederated) {
		if s.federationKey == "" {
			return nil, status.Error(codes.PermissionDenied, "federated login disabled")
		}
		key := firstValue(ctx, FederationKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.federationKey)) != 1 {
			return nil, status.Error(codes.PermissionDenied, "invalid federation key")
		}
	}

	if bearerMethods[info.FullMethod] {

		header := firstValue(ctx, common.AuthorizationHeaderName)
		credential, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || credential == "" {
			return nil, status.Error(codes.Unauthenticated, "missing credential")
		}

		claims, err := s.auth.Validate(credential)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid credential")
		}

		ctx = context.WithValue(ctx, sessionKey, &session{credential: credential, claims: claims})
	}

	return handler(ctx, req)
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	method := info.FullMethod[strings.LastIndex(info.FullMethod, "/")+1:]
	code := status.Code(err)
	s.metrics.RPC(method, code.String(), time.Since(start))

	if code == codes.Internal || code == codes.Unknown {
		s.logger.Error(ctx, "rpc failed", "method", method, "error", err)
	}

	return resp, err
}

func sessionFromContext(ctx context.Context) (*session, error) {
	sess, ok := ctx.Value(sessionKey).(*session)
	if !ok || sess == nil {
		return nil, status.Error(codes.Unauthenticated, "missing credential")
	}
	return sess, nil
}
