package grpc

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/rpc"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/activity"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

func toLoginResponse(r *services.LoginResult) *rpc.LoginResponse {
	resp := &rpc.LoginResponse{State: r.State.String(), SubjectID: r.SubjectID}
	if r.Credential != "" {
		exp := r.ExpiresAt.UTC()
		resp.Credential = r.Credential
		resp.ExpiresAt = &exp
	}
	return resp
}

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.Empty) (*rpc.PingResponse, error) {

	return &rpc.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) Register(ctx context.Context, req *rpc.RegisterRequest) (*rpc.LoginResponse, error) {

	s.logger.Info(ctx, "Registration request")

	result, err := s.auth.Register(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	s.logger.Info(ctx, "Registered", "subject", result.SubjectID)
	return toLoginResponse(result), nil

}

func (s *GRPCServer) Login(ctx context.Context, req *rpc.LoginRequest) (*rpc.LoginResponse, error) {

	result, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}

	return toLoginResponse(result), nil

}

func (s *GRPCServer) CompleteSecondFactor(ctx context.Context, req *rpc.CompleteSecondFactorRequest) (*rpc.LoginResponse, error) {

	result, err := s.auth.CompleteSecondFactor(ctx, req.SubjectID, req.Code)
	if err != nil {
		return nil, toStatus(err)
	}

	return toLoginResponse(result), nil

}

func (s *GRPCServer) LoginFederated(ctx context.Context, req *rpc.FederatedLoginRequest) (*rpc.LoginResponse, error) {

	result, err := s.auth.LoginFederated(ctx, services.FederatedIdentity{
		Provider: models.Provider(req.Provider),
		Email:    req.Email,
		Name:     req.Name,
		Login:    req.Login,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return toLoginResponse(result), nil

}

func (s *GRPCServer) Validate(ctx context.Context, req *rpc.ValidateRequest) (*rpc.ValidateResponse, error) {

	claims, err := s.auth.Validate(req.Credential)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &rpc.ValidateResponse{SubjectID: claims.Subject, Roles: claims.Roles}
	if claims.IssuedAt != nil {
		resp.IssuedAt = claims.IssuedAt.UTC()
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.UTC()
	}
	return resp, nil

}

func (s *GRPCServer) Logout(ctx context.Context, req *rpc.Empty) (*rpc.Empty, error) {

	sess, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	s.auth.Logout(ctx, sess.credential)
	s.logger.Info(ctx, "Logged out", "subject", sess.claims.Subject)

	return &rpc.Empty{}, nil

}

func (s *GRPCServer) ProvisionSecondFactor(ctx context.Context, req *rpc.Empty) (*rpc.ProvisionResponse, error) {

	sess, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.secondFactor.Provision(ctx, sess.claims.Subject)
	if err != nil {
		return nil, toStatus(err)
	}

	return &rpc.ProvisionResponse{Secret: enrollment.Secret, URL: enrollment.URL}, nil

}

func (s *GRPCServer) ConfirmSecondFactor(ctx context.Context, req *rpc.CodeRequest) (*rpc.Empty, error) {

	sess, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.secondFactor.Confirm(ctx, sess.claims.Subject, req.Code); err != nil {
		return nil, toStatus(err)
	}

	return &rpc.Empty{}, nil

}

func (s *GRPCServer) VerifySecondFactor(ctx context.Context, req *rpc.CodeRequest) (*rpc.VerifyResponse, error) {

	sess, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := s.secondFactor.Verify(ctx, sess.claims.Subject, req.Code)
	if err != nil {
		return nil, toStatus(err)
	}

	return &rpc.VerifyResponse{Valid: ok}, nil

}

func (s *GRPCServer) DisableSecondFactor(ctx context.Context, req *rpc.Empty) (*rpc.Empty, error) {

	sess, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.secondFactor.Disable(ctx, sess.claims.Subject); err != nil {
		return nil, toStatus(err)
	}

	return &rpc.Empty{}, nil

}

func (s *GRPCServer) SecondFactorStatus(ctx context.Context, req *rpc.Empty) (*rpc.StatusResponse, error) {

	sess, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	enabled, err := s.secondFactor.Status(ctx, sess.claims.Subject)
	if err != nil {
		return nil, toStatus(err)
	}

	return &rpc.StatusResponse{Enabled: enabled}, nil

}

func (s *GRPCServer) LoginActivity(ctx context.Context, req *rpc.Empty) (*rpc.LoginActivityResponse, error) {

	sess, err := sessionFromContext(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.auth.LoginActivity(ctx, sess.claims.Subject)
	if err != nil {
		return nil, toStatus(err)
	}

	days := make([]rpc.ActivityDay, 0, len(list))
	for _, a := range list {
		days = append(days, rpc.ActivityDay{Day: activity.Day(a.Day).Format("2006-01-02"), Count: a.Count})
	}

	return &rpc.LoginActivityResponse{Days: days}, nil

}
