package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/refurbstock-backend/api/responses"
	"github.com/angelmondragon/refurbstock-backend/api/validators"
	"github.com/angelmondragon/refurbstock-backend/internal/inventory"
	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/refurbstock-backend/pkg/errors"
	"github.com/angelmondragon/refurbstock-backend/pkg/logger"
	"github.com/angelmondragon/refurbstock-backend/pkg/pagination"
)

const maxSearchLen = 100

// ItemsList returns a filtered page of inventory items.
func ItemsList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		input := inventory.ListItemsInput{
			Search: validators.SanitizeString(query.Get("q"), maxSearchLen),
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(query.Get("cursor")),
			},
		}

		if raw := strings.TrimSpace(query.Get("condition")); raw != "" {
			condition, err := enums.ParseCondition(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition"))
				return
			}
			input.Condition = &condition
		}
		if raw := strings.TrimSpace(query.Get("platform")); raw != "" {
			platform, err := enums.ParsePlatform(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid platform"))
				return
			}
			input.Platform = &platform
		}

		result, err := svc.ListItems(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ItemsCreate adds an item from the manual entry form.
func ItemsCreate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var payload createItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ItemsGet returns one item with its platform listings.
func ItemsGet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
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

		item, err := svc.GetItem(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemsUpdate applies a partial edit, including manual price overrides.
func ItemsUpdate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), itemID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ItemsDelete removes an item and its listings.
func ItemsDelete(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.DeleteItem(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOutcome(w, http.StatusOK, enums.OutcomeSuccess, "item deleted", map[string]string{"id": itemID.String()})
	}
}

type createItemRequest struct {
	ModelName      string           `json:"model_name" validate:"required,max=100"`
	Brand          string           `json:"brand" validate:"required,max=100"`
	BasePrice      *decimal.Decimal `json:"base_price" validate:"required"`
	StockQuantity  *int             `json:"stock_quantity" validate:"required,min=0"`
	ReservedForB2B int              `json:"reserved_for_b2b" validate:"min=0"`
	Condition      string           `json:"condition" validate:"required,condition"`
	Specifications string           `json:"specifications" validate:"max=200"`
}

func (r createItemRequest) toCreateInput() (inventory.CreateItemInput, error) {
	condition, err := enums.ParseCondition(r.Condition)
	if err != nil {
		return inventory.CreateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition")
	}
	return inventory.CreateItemInput{
		ModelName:      r.ModelName,
		Brand:          r.Brand,
		BasePrice:      *r.BasePrice,
		StockQuantity:  *r.StockQuantity,
		ReservedForB2B: r.ReservedForB2B,
		Condition:      condition,
		Specifications: r.Specifications,
	}, nil
}

type updateItemRequest struct {
	ModelName      *string                    `json:"model_name" validate:"omitempty,max=100"`
	Brand          *string                    `json:"brand" validate:"omitempty,max=100"`
	BasePrice      *decimal.Decimal           `json:"base_price"`
	StockQuantity  *int                       `json:"stock_quantity" validate:"omitempty,min=0"`
	ReservedForB2B *int                       `json:"reserved_for_b2b" validate:"omitempty,min=0"`
	Condition      *string                    `json:"condition" validate:"omitempty,condition"`
	Specifications *string                    `json:"specifications" validate:"omitempty,max=200"`
	PlatformPrices map[string]decimal.Decimal `json:"platform_prices"`
}

func (r updateItemRequest) toUpdateInput() (inventory.UpdateItemInput, error) {
	input := inventory.UpdateItemInput{
		ModelName:      r.ModelName,
		Brand:          r.Brand,
		BasePrice:      r.BasePrice,
		StockQuantity:  r.StockQuantity,
		ReservedForB2B: r.ReservedForB2B,
		Specifications: r.Specifications,
	}
	if r.Condition != nil {
		condition, err := enums.ParseCondition(*r.Condition)
		if err != nil {
			return inventory.UpdateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition")
		}
		input.Condition = &condition
	}
	if len(r.PlatformPrices) > 0 {
		input.PlatformPrices = make(map[enums.Platform]decimal.Decimal, len(r.PlatformPrices))
		for raw, price := range r.PlatformPrices {
			platform, err := enums.ParsePlatform(raw)
			if err != nil {
				return inventory.UpdateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid platform").
					WithDetails(map[string]any{"platform": raw})
			}
			input.PlatformPrices[platform] = price
		}
	}
	return input, nil
}

func itemIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "itemId"))
	itemID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id")
	}
	return itemID, nil
}
