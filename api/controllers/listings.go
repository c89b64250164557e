package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/refurbstock-backend/api/responses"
	"github.com/angelmondragon/refurbstock-backend/internal/inventory"
	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/refurbstock-backend/pkg/errors"
	"github.com/angelmondragon/refurbstock-backend/pkg/logger"
)

// ListingsCreate lists an item on a platform once every gate passes. A
// blocked attempt is answered with a LISTING_BLOCKED warning.
func ListingsCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		itemID, err := itemIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		platform, err := enums.ParsePlatform(chi.URLParam(r, "platform"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid platform"))
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithFields(logg.WithItemID(ctx, itemID.String()), map[string]any{"platform": platform.String()})
		}

		result, err := svc.ListOnPlatform(ctx, itemID, platform)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteOutcome(w, http.StatusOK, result.Outcome, fmt.Sprintf("listed on %s", platform.Label()), result)
	}
}
