package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/refurbstock-backend/internal/inventory"
	"github.com/angelmondragon/refurbstock-backend/pkg/db/dbtest"
	"github.com/angelmondragon/refurbstock-backend/pkg/logger"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Outcome string          `json:"outcome"`
	Message string          `json:"message"`
	Error   struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func newInventoryRouter(t *testing.T) (http.Handler, inventory.Service) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := inventory.NewService(inventory.NewRepository(client.DB()), client, nil, nil)
	require.NoError(t, err)

	logg := testLogger()
	r := chi.NewRouter()
	r.Get("/items", ItemsList(svc, logg))
	r.Post("/items", ItemsCreate(svc, logg))
	r.Get("/items/{itemId}", ItemsGet(svc, logg))
	r.Patch("/items/{itemId}", ItemsUpdate(svc, logg))
	r.Delete("/items/{itemId}", ItemsDelete(svc, logg))
	r.Post("/items/{itemId}/listings/{platform}", ListingsCreate(svc, logg))
	return r, svc
}

func doJSON(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(rec.Body.Bytes()), &env), rec.Body.String())
	return rec, env
}

func createItem(t *testing.T, h http.Handler, body string) inventory.ItemDTO {
	t.Helper()
	rec, env := doJSON(t, h, http.MethodPost, "/items", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item inventory.ItemDTO
	require.NoError(t, json.Unmarshal(env.Data, &item))
	return item
}

func TestItemsCreateAndGet(t *testing.T) {
	h, _ := newInventoryRouter(t)

	item := createItem(t, h, `{"model_name":"Pixel 7","brand":"Google","base_price":"100","stock_quantity":5,"reserved_for_b2b":1,"condition":"good"}`)
	assert.Equal(t, "Good", item.Condition)
	assert.Equal(t, 4, item.AvailableStock)
	require.Len(t, item.Listings, 3)
	assert.Equal(t, "111.11", item.Listings[0].SalePrice)

	rec, env := doJSON(t, h, http.MethodGet, "/items/"+item.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Outcome)
}

func TestItemsCreateValidation(t *testing.T) {
	h, _ := newInventoryRouter(t)

	cases := map[string]string{
		"missing price":     `{"model_name":"Pixel","brand":"Google","stock_quantity":1,"condition":"Good"}`,
		"unknown condition": `{"model_name":"Pixel","brand":"Google","base_price":10,"stock_quantity":1,"condition":"Mint"}`,
		"negative stock":    `{"model_name":"Pixel","brand":"Google","base_price":10,"stock_quantity":-1,"condition":"Good"}`,
		"reserved > stock":  `{"model_name":"Pixel","brand":"Google","base_price":10,"stock_quantity":1,"reserved_for_b2b":2,"condition":"Good"}`,
		"unknown field":     `{"model_name":"Pixel","brand":"Google","base_price":10,"stock_quantity":1,"condition":"Good","color":"red"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec, env := doJSON(t, h, http.MethodPost, "/items", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
			assert.Equal(t, "error", env.Outcome)
		})
	}
}

func TestItemsGetErrors(t *testing.T) {
	h, _ := newInventoryRouter(t)

	rec, _ := doJSON(t, h, http.MethodGet, "/items/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := doJSON(t, h, http.MethodGet, "/items/6f1c1f7e-8f0b-4a53-9a37-6a2f1c9a1b11", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestItemsListFilters(t *testing.T) {
	h, _ := newInventoryRouter(t)
	createItem(t, h, `{"model_name":"Pixel 7","brand":"Google","base_price":100,"stock_quantity":5,"condition":"Good"}`)
	createItem(t, h, `{"model_name":"iPhone 12","brand":"Apple","base_price":200,"stock_quantity":2,"condition":"Scrap"}`)

	rec, env := doJSON(t, h, http.MethodGet, "/items?q=apple", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page inventory.ItemListResult
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "iPhone 12", page.Items[0].ModelName)

	rec, _ = doJSON(t, h, http.MethodGet, "/items?condition=broken", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, h, http.MethodGet, "/items?platform=w", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, h, http.MethodGet, "/items?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemsUpdateOverridesPrice(t *testing.T) {
	h, _ := newInventoryRouter(t)
	item := createItem(t, h, `{"model_name":"Pixel 7","brand":"Google","base_price":100,"stock_quantity":5,"condition":"Good"}`)

	rec, env := doJSON(t, h, http.MethodPatch, "/items/"+item.ID.String(), `{"stock_quantity":0,"platform_prices":{"x":"120.00"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated inventory.ItemDTO
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Out of Stock", updated.Tags)
	assert.Equal(t, "120.00", updated.Listings[0].SalePrice)

	rec, _ = doJSON(t, h, http.MethodPatch, "/items/"+item.ID.String(), `{"platform_prices":{"w":"1"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemsDelete(t *testing.T) {
	h, _ := newInventoryRouter(t)
	item := createItem(t, h, `{"model_name":"Pixel 7","brand":"Google","base_price":100,"stock_quantity":5,"condition":"Good"}`)

	rec, env := doJSON(t, h, http.MethodDelete, "/items/"+item.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "item deleted", env.Message)

	rec, _ = doJSON(t, h, http.MethodDelete, "/items/"+item.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListingsCreate(t *testing.T) {
	h, _ := newInventoryRouter(t)
	item := createItem(t, h, `{"model_name":"Pixel 7","brand":"Google","base_price":100,"stock_quantity":5,"condition":"Good"}`)

	rec, env := doJSON(t, h, http.MethodPost, "/items/"+item.ID.String()+"/listings/X", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "success", env.Outcome)
	assert.Equal(t, "listed on X", env.Message)

	var result inventory.ListingResultDTO
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "111.11", result.Price)
	assert.Equal(t, "Good", result.PlatformCondition)
}

func TestListingsCreateBlocked(t *testing.T) {
	h, _ := newInventoryRouter(t)
	scrap := createItem(t, h, `{"model_name":"Pixel 7","brand":"Google","base_price":100,"stock_quantity":5,"condition":"Scrap"}`)
	reserved := createItem(t, h, `{"model_name":"Pixel 8","brand":"Google","base_price":100,"stock_quantity":3,"reserved_for_b2b":3,"condition":"Good"}`)

	rec, env := doJSON(t, h, http.MethodPost, "/items/"+scrap.ID.String()+"/listings/y", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "warning", env.Outcome)
	assert.Equal(t, "LISTING_BLOCKED", env.Error.Code)
	assert.Equal(t, "unsupported_condition", env.Error.Details["rule"])

	rec, env = doJSON(t, h, http.MethodPost, "/items/"+reserved.ID.String()+"/listings/x", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "cannot list on X: out of stock or reserved for B2B", env.Error.Message)

	rec, _ = doJSON(t, h, http.MethodPost, "/items/"+scrap.ID.String()+"/listings/w", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
