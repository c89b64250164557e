package controllers

import (
	"net/http"

	"github.com/angelmondragon/refurbstock-backend/api/middleware"
	"github.com/angelmondragon/refurbstock-backend/api/responses"
	"github.com/angelmondragon/refurbstock-backend/api/validators"
	"github.com/angelmondragon/refurbstock-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/refurbstock-backend/pkg/errors"
	"github.com/angelmondragon/refurbstock-backend/pkg/logger"
)

var errAuthUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")

// AuthLogin exchanges operator credentials for an access token.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errAuthUnavailable)
			return
		}

		var creds auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &creds); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		session, err := svc.Login(ctx, creds)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithOperator(ctx, session.Operator), "auth.login")
		}
		responses.WriteSuccess(w, session)
	}
}

// AuthLogout drops the caller's session so its token stops working.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, errAuthUnavailable)
			return
		}
		if err := svc.Logout(ctx, middleware.AccessIDFromContext(ctx)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
