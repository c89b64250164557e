package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/refurbstock-backend/pkg/auth"
	"github.com/angelmondragon/refurbstock-backend/pkg/auth/session"
	"github.com/angelmondragon/refurbstock-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/refurbstock-backend/pkg/errors"
	"github.com/angelmondragon/refurbstock-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	tokenTypeBearer           = "Bearer"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID, operator string) error
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	operator config.OperatorConfig
	session  sessionManager
	jwtCfg   config.JWTConfig
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Operator       config.OperatorConfig
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
}

// NewService constructs the operator login service.
func NewService(params ServiceParams) (Service, error) {
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if strings.TrimSpace(params.Operator.Username) == "" {
		return nil, fmt.Errorf("operator username is required")
	}
	return &service{
		operator: params.Operator,
		session:  params.SessionManager,
		jwtCfg:   params.JWTConfig,
		now:      time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := s.authenticate(req.Username, req.Password); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		Operator: s.operator.Username,
		JTI:      accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if err := s.session.Generate(ctx, accessID, s.operator.Username); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store access session")
	}

	return &LoginResponse{
		AccessToken: accessToken,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   now.Add(s.jwtCfg.SessionTTL()),
		Operator:    s.operator.Username,
	}, nil
}

// Logout revokes the session behind the presented token.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke access session")
	}
	return nil
}

func (s *service) authenticate(username, password string) error {
	input := strings.TrimSpace(username)
	if input == "" || s.operator.PasswordHash == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	valid, err := security.VerifyPassword(password, s.operator.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	sameUser := subtle.ConstantTimeCompare([]byte(strings.ToLower(input)), []byte(strings.ToLower(s.operator.Username))) == 1
	if !valid || !sameUser {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return nil
}
