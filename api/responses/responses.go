package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/refurbstock-backend/pkg/errors"
	"github.com/angelmondragon/refurbstock-backend/pkg/logger"
	"github.com/angelmondragon/refurbstock-backend/pkg/types"
)

// WriteSuccess sends data with a 200 and the success outcome.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data, Outcome: enums.OutcomeSuccess.String()})
}

// WriteOutcome sends data with an explicit outcome and operator message.
func WriteOutcome(w http.ResponseWriter, status int, outcome enums.Outcome, message string, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data, Outcome: outcome.String(), Message: message})
}

// WriteError maps err to its code's status and envelope. Untyped errors become
// INTERNAL and never leak their text.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	outcome := OutcomeFor(typed.Code())
	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: typed.PublicMessage(),
		},
		Outcome: outcome.String(),
	}

	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, pkgerrors.Dump(err).LogFields())
		switch {
		case outcome == enums.OutcomeWarning:
			logg.Warn(ctx, "request.warning")
		case meta.HTTPStatus >= http.StatusInternalServerError:
			logg.Error(ctx, "request.error", err)
		default:
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

// OutcomeFor classifies an error code for the operator. Codes that leave
// state untouched, such as a blocked listing, are reported as warnings.
func OutcomeFor(code pkgerrors.Code) enums.Outcome {
	if pkgerrors.MetadataFor(code).Warning {
		return enums.OutcomeWarning
	}
	return enums.OutcomeError
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Int("status", status).Msg("response.encode_failed")
	}
}
