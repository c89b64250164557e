package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/refurbstock-backend/api/responses"
	"github.com/angelmondragon/refurbstock-backend/api/validators"
	pkgAuth "github.com/angelmondragon/refurbstock-backend/pkg/auth"
	"github.com/angelmondragon/refurbstock-backend/pkg/auth/session"
	"github.com/angelmondragon/refurbstock-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/refurbstock-backend/pkg/errors"
	"github.com/angelmondragon/refurbstock-backend/pkg/logger"
)

type authenticator struct {
	cfg      config.JWTConfig
	sessions session.AccessSessionChecker
}

// authenticate resolves the request's bearer token to operator claims backed by
// a live session.
func (a authenticator) authenticate(ctx context.Context, header string) (*pkgAuth.AccessTokenClaims, error) {
	raw, err := validators.BearerToken(header)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	claims, err := pkgAuth.ParseAccessToken(a.cfg, raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if a.sessions == nil {
		return claims, nil
	}

	live, err := a.sessions.HasSession(ctx, claims.ID)
	switch {
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
	case !live:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
	}
	return claims, nil
}

// Auth rejects requests without a valid operator token. Accepted requests carry
// the operator and session id in their context.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	a := authenticator{cfg: cfg, sessions: verifier}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithOperator(r.Context(), claims.Operator, claims.ID)
			if logg != nil {
				ctx = logg.WithOperator(ctx, claims.Operator)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
