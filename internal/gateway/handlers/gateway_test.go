package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"syntra-pos/internal/database"
	"syntra-pos/internal/database/databasetest"
	"syntra-pos/internal/services/catalog"
	"syntra-pos/internal/services/pos"
	"syntra-pos/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := databasetest.NewSQLite(t)
	clock := utils.NewMockClock(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	tx := database.NewTransactor(db)

	productStore := catalog.NewProductStore(db)
	prices := catalog.NewPriceCatalog(productStore, catalog.NewPriceStore(db), nil)
	products := catalog.NewProductService(productStore, nil)
	orderStore := pos.NewOrderStore(db)

	orders := pos.NewOrderService(orderStore, prices, tx, nil, clock, pos.DefaultOptions(), nil)
	payments := pos.NewPaymentService(pos.NewPaymentStore(db), orderStore, tx, nil, clock, pos.DefaultOptions(), nil)

	r := gin.New()
	api := r.Group("/api/v1")
	NewPOSHTTPHandler(orders, payments).Register(api)
	NewCatalogHTTPHandler(products, prices, clock).Register(api)

	return &testAPI{router: r}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
}

func (a *testAPI) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// seedPrice creates a product with one open price from 2024-01-01 and returns
// the product and price ids.
func (a *testAPI) seedPrice(t *testing.T, name, amount string) (int64, int64) {
	t.Helper()
	code, env := a.do(t, http.MethodPost, "/api/v1/products", fmt.Sprintf(`{"name":%q}`, name))
	require.Equal(t, http.StatusCreated, code, env.Message)
	product := decode[catalog.ProductDTO](t, env.Data)

	code, env = a.do(t, http.MethodPost, fmt.Sprintf("/api/v1/products/%d/prices", product.ID),
		fmt.Sprintf(`{"valid_from":"2024-01-01","suggested_price":%q}`, amount))
	require.Equal(t, http.StatusCreated, code, env.Message)
	price := decode[catalog.PriceDTO](t, env.Data)
	return product.ID, price.ID
}

func TestOrderLifecycle(t *testing.T) {
	api := newTestAPI(t)
	_, nasi := api.seedPrice(t, "Nasi Uduk", "5.00")
	_, teh := api.seedPrice(t, "Teh Tawar", "1.50")

	code, env := api.do(t, http.MethodPost, "/api/v1/orders",
		fmt.Sprintf(`{"branch":"JKT","lines":[{"product_price_id":%d},{"product_price_id":%d,"quantity":2}]}`, nasi, teh))
	require.Equal(t, http.StatusCreated, code, env.Message)
	order := decode[pos.OrderDTO](t, env.Data)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, "8", order.Total.String())

	path := fmt.Sprintf("/api/v1/orders/%d", order.ID)

	code, env = api.do(t, http.MethodPut, path, `{"branch":"BDG"}`)
	require.Equal(t, http.StatusOK, code, env.Message)
	updated := decode[pos.OrderDTO](t, env.Data)
	assert.Equal(t, "BDG", updated.Branch)
	assert.Len(t, updated.Lines, 2)

	code, env = api.do(t, http.MethodPut, path, `{"lines":[]}`)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Empty(t, decode[pos.OrderDTO](t, env.Data).Lines)

	code, _ = api.do(t, http.MethodPost, path+"/void", "")
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do(t, http.MethodGet, "/api/v1/orders?voided=true", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]pos.OrderDTO](t, env.Data), 1)

	code, _ = api.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do(t, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "ORDER_NOT_FOUND", env.Error)

	code, _ = api.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = api.do(t, http.MethodPost, path+"/void", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestOrderErrors(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed body", http.MethodPost, "/api/v1/orders", `{"branch":`, http.StatusBadRequest, ""},
		{"unknown price", http.MethodPost, "/api/v1/orders", `{"lines":[{"product_price_id":77}]}`, http.StatusBadRequest, "PRODUCT_PRICE_NOT_FOUND"},
		{"bad id", http.MethodGet, "/api/v1/orders/abc", "", http.StatusBadRequest, ""},
		{"missing order", http.MethodPut, "/api/v1/orders/12", `{"branch":"X"}`, http.StatusNotFound, "ORDER_NOT_FOUND"},
		{"bad date filter", http.MethodGet, "/api/v1/orders?date=10-05-2024", "", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := api.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, code)
			assert.False(t, env.Success)
			if tt.code != "" {
				assert.Equal(t, tt.code, env.Error)
			}
		})
	}
}

func TestPaymentEndpoints(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(t, http.MethodPost, "/api/v1/payments", `{"order_id":999,"lines":[{"amount":"10"}]}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "ORDER_NOT_FOUND", env.Error)

	code, env = api.do(t, http.MethodPost, "/api/v1/orders", `{"branch":"JKT"}`)
	require.Equal(t, http.StatusCreated, code)
	order := decode[pos.OrderDTO](t, env.Data)

	code, env = api.do(t, http.MethodPost, "/api/v1/payments",
		fmt.Sprintf(`{"order_id":%d,"method":"card","lines":[{"amount":"10.25"},{"amount":4}]}`, order.ID))
	require.Equal(t, http.StatusCreated, code, env.Message)
	payment := decode[pos.PaymentDTO](t, env.Data)
	assert.Equal(t, "CARD", payment.Method)
	assert.Equal(t, "14.25", payment.Total.String())
	require.NotNil(t, payment.Order)
	assert.Equal(t, "JKT", payment.Order.Branch)

	code, env = api.do(t, http.MethodGet, fmt.Sprintf("/api/v1/payments?order_id=%d", order.ID), "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]pos.PaymentDTO](t, env.Data), 1)

	path := fmt.Sprintf("/api/v1/payments/%d", payment.ID)
	code, env = api.do(t, http.MethodPut, path, `{"reference":"TRX-1"}`)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "TRX-1", *decode[pos.PaymentDTO](t, env.Data).Reference)

	code, _ = api.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, code)

	code, env = api.do(t, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "PAYMENT_NOT_FOUND", env.Error)
}

func TestPriceEndpoints(t *testing.T) {
	api := newTestAPI(t)
	productID, priceID := api.seedPrice(t, "Kopi Tubruk", "3.00")
	pricesPath := fmt.Sprintf("/api/v1/products/%d/prices", productID)

	code, env := api.do(t, http.MethodGet, pricesPath+"/effective", "")
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, priceID, decode[catalog.PriceDTO](t, env.Data).ID)

	code, env = api.do(t, http.MethodGet, pricesPath+"/effective?date=2023-12-31", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "PRICE_NOT_FOUND", env.Error)

	code, env = api.do(t, http.MethodPost, fmt.Sprintf("/api/v1/prices/%d/close", priceID), `{"valid_to":"2024-03-31"}`)
	require.Equal(t, http.StatusOK, code, env.Message)
	closed := decode[catalog.PriceDTO](t, env.Data)
	require.NotNil(t, closed.ValidTo)
	assert.Equal(t, "2024-03-31", *closed.ValidTo)

	code, env = api.do(t, http.MethodPost, pricesPath, `{"valid_from":"2024-04-01","suggested_price":"3.50"}`)
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = api.do(t, http.MethodGet, pricesPath, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]catalog.PriceDTO](t, env.Data), 2)

	code, env = api.do(t, http.MethodGet, pricesPath+"/effective?date=2024-04-15", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "3.5", decode[catalog.PriceDTO](t, env.Data).SuggestedPrice.String())

	code, _ = api.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/prices/%d", priceID), "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = api.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/prices/%d", priceID), "")
	assert.Equal(t, http.StatusNotFound, code)

	code, env = api.do(t, http.MethodGet, "/api/v1/products/4040/prices", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", env.Error)
}

func TestProductTypeEndpoints(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(t, http.MethodPost, "/api/v1/product-types", `{"name":"Minuman"}`)
	require.Equal(t, http.StatusCreated, code, env.Message)
	productType := decode[catalog.ProductTypeDTO](t, env.Data)

	code, _ = api.do(t, http.MethodPost, "/api/v1/product-types", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(t, http.MethodPost, "/api/v1/products",
		fmt.Sprintf(`{"name":"Wedang Jahe","product_type_id":%d}`, productType.ID))
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = api.do(t, http.MethodGet, "/api/v1/product-types", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]catalog.ProductTypeDTO](t, env.Data), 1)

	code, env = api.do(t, http.MethodGet, "/api/v1/products?active=true", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]catalog.ProductDTO](t, env.Data), 1)
}
