package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/angelmondragon/refurbstock-backend/api/responses"
	"github.com/angelmondragon/refurbstock-backend/internal/imports"
	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/refurbstock-backend/pkg/errors"
	"github.com/angelmondragon/refurbstock-backend/pkg/logger"
)

const importFormField = "file"

// ImportsCreate ingests a multipart CSV or XLSX upload.
func ImportsCreate(svc imports.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}

		// Multipart framing adds a little on top of the file itself.
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+(1<<20))
		file, header, err := r.FormFile(importFormField)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file too large"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "no file uploaded").
				WithDetails(map[string]any{"field": importFormField}))
			return
		}
		defer file.Close()

		result, err := svc.Import(r.Context(), header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome := enums.OutcomeSuccess
		if result.Failed > 0 {
			outcome = enums.OutcomeWarning
		}
		message := fmt.Sprintf("imported %d rows, %d failed", result.Imported, result.Failed)
		responses.WriteOutcome(w, http.StatusOK, outcome, message, result)
	}
}
