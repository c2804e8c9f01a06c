package grpc

import (
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC status codes. Anything not
// recognised is reported as an internal error without detail.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	case errors.Is(err, common.ErrInvalidCredential):
		return status.Error(codes.Unauthenticated, "invalid credential")
	case errors.Is(err, common.ErrInvalidOTP):
		return status.Error(codes.Unauthenticated, "invalid one-time password")
	case errors.Is(err, common.ErrInvalidCodeFormat):
		return status.Error(codes.InvalidArgument, "code must be digits only")
	case errors.Is(err, common.ErrInvalidSecret):
		return status.Error(codes.InvalidArgument, "invalid second factor secret")
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, "invalid request")
	case errors.Is(err, common.ErrSubjectNotFound), errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, common.ErrProviderMismatch):
		return status.Error(codes.FailedPrecondition, "account is registered with another provider")
	}
	return status.Error(codes.Internal, "internal error")
}
