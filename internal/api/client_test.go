package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-storefront/internal/orders"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", opts...)
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/Cart", r.URL.Path)
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.GetCart(WithToken(context.Background(), "tok-123"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", auth)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestClient_UpdateOrderStatusSendsRawString(t *testing.T) {
	var body, method, path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body, method, path = string(b), r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	res, err := c.UpdateOrderStatus(context.Background(), 42, "Shipped")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, res.Status)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/api/admin/orders/42/status", path)
	assert.Equal(t, `"Shipped"`, body)
}

func TestClient_CancelOrderSendsReason(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/orders/7", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.CancelOrder(context.Background(), 7, "Other")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"reason": "Other"}, got)
}

func TestClient_ErrorMessages(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
		kind    Kind
	}{
		{"message field", 400, `{"message":"Invalid status"}`, "Invalid status", KindValidation},
		{"problem title", 422, `{"title":"One or more validation errors occurred.","errors":{"Name":["required"]}}`, "One or more validation errors occurred.", KindValidation},
		{"json string", 404, `"Order not found"`, "Order not found", KindNotFound},
		{"plain text", 409, `already blocked`, "already blocked", KindConflict},
		{"html page", 500, `<html>boom</html>`, "", KindConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := c.DeleteAddress(context.Background(), 1)
			require.Error(t, err)
			assert.Equal(t, tc.status, StatusOf(err))
			assert.Equal(t, tc.kind, KindOf(err))
			assert.Equal(t, orDefault(tc.message, "fallback"), MessageOr(err, "fallback"))
		})
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, WithTimeout(time.Second))
	_, err := c.ListAllOrders(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, "fallback", MessageOr(err, "fallback"))
}

func TestClient_ObserverSeesRouteTemplate(t *testing.T) {
	var route string
	var status int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":9,"status":"Pending"}`))
	}, WithObserver(func(method, r string, st int, _ time.Duration) {
		route, status = r, st
	}))

	_, err := c.GetOrder(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "/orders/{id}", route)
	assert.Equal(t, http.StatusOK, status)
}

func TestOrderNormalization(t *testing.T) {
	body := `[
	  {"id":1,"orderDate":"2024-05-01T10:00:00","status":"pending","paymentMethod":"Cash on Delivery",
	   "items":[{"productId":3,"name":"Runner","price":500,"quantity":2}],
	   "amount":1050},
	  {"id":"2","date":"2024-05-02T08:30:00Z","status":"Out for Delivery","customerName":"Asha",
	   "items":[{"productId":4,"price":100,"quantity":3,"totalPrice":290}]},
	  {"id":3,"status":"Shipped","totalAmount":99.5,"amount":1,"total":2,
	   "stageTimestamps":{"confirmed":"2024-05-03T00:00:00Z","SHIPPED":"2024-05-04T00:00:00Z","processing":null}}
	]`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	res, err := c.ListMyOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Data, 3)

	o1 := res.Data[0]
	assert.Equal(t, orders.StatusPending, o1.Status)
	assert.True(t, o1.Total.Equal(decimal.NewFromInt(1050)))
	assert.True(t, o1.Items[0].LineTotal.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), o1.OrderedAt)

	o2 := res.Data[1]
	assert.Equal(t, int64(2), o2.ID)
	assert.Equal(t, orders.StatusOutForDelivery, o2.Status)
	assert.Equal(t, "Asha", o2.Address.FullName)
	assert.True(t, o2.Items[0].LineTotal.Equal(decimal.NewFromInt(290)))
	assert.True(t, o2.Total.Equal(decimal.NewFromInt(290)), "total falls back to item line totals")
	assert.False(t, o2.OrderedAt.IsZero())

	o3 := res.Data[2]
	assert.True(t, o3.Total.Equal(decimal.RequireFromString("99.5")))
	assert.Len(t, o3.StageTimes, 2)
	assert.Contains(t, o3.StageTimes, orders.StageConfirmed)
	assert.Contains(t, o3.StageTimes, orders.StageShipped)
}

func TestCreateOrderReadsEitherIDField(t *testing.T) {
	for _, body := range []string{`{"orderId":55}`, `{"id":"55"}`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var req orders.PlaceOrderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, orders.MethodCashOnDelivery, req.PaymentMethod)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(body))
		})
		res, err := c.CreateOrder(context.Background(), orders.PlaceOrderRequest{PaymentMethod: orders.MethodCashOnDelivery})
		require.NoError(t, err)
		assert.Equal(t, int64(55), res.Data.OrderID)
	}
}

func TestCreateProductMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Trail", r.FormValue("Name"))
		assert.Equal(t, "1299.5", r.FormValue("Price"))
		assert.Equal(t, "Grippy", r.FormValue("Description"))
		assert.Equal(t, "2", r.FormValue("CategoryId"))
		f, hdr, err := r.FormFile("Image")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "shoe.png", hdr.Filename)
		assert.Equal(t, "PNGDATA", string(b))
		w.WriteHeader(http.StatusCreated)
	})

	_, err := c.CreateProduct(context.Background(), ProductForm{
		Name:        "Trail",
		Price:       decimal.RequireFromString("1299.5"),
		Description: "Grippy",
		CategoryID:  2,
		Image:       &Upload{Filename: "shoe.png", ContentType: "image/png", Body: strings.NewReader("PNGDATA")},
	})
	require.NoError(t, err)
}

func TestUserNormalizationPrefersEmailAddress(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"fullName":"Ravi","emailAddress":"r@x.io","email":"old@x.io","role":"user","isBlocked":true,"createdAt":"2024-01-02T03:04:05"}]`))
	})

	res, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "r@x.io", res.Data[0].Email)
	assert.True(t, res.Data[0].Blocked)
	assert.Equal(t, 2024, res.Data[0].CreatedAt.Year())
}
