package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-storefront/internal/orders"
)

// PlacedOrder is the backend's answer to an order creation.
type PlacedOrder struct {
	OrderID int64 `json:"orderId"`
}

// CreateOrder calls POST /orders.
func (c *Client) CreateOrder(ctx context.Context, req orders.PlaceOrderRequest) (Response[PlacedOrder], error) {
	var out struct {
		OrderID flexInt `json:"orderId"`
		ID      flexInt `json:"id"`
	}
	st, err := c.doJSON(ctx, http.MethodPost, "/orders", "/orders", req, &out)
	id := int64(out.OrderID)
	if id == 0 {
		id = int64(out.ID)
	}
	return Response[PlacedOrder]{Data: PlacedOrder{OrderID: id}, Status: st}, err
}

// ListMyOrders calls GET /orders; the backend scopes the list to the token's user.
func (c *Client) ListMyOrders(ctx context.Context) (Response[[]orders.Order], error) {
	var out []orderDTO
	st, err := c.doJSON(ctx, http.MethodGet, "/orders", "/orders", nil, &out)
	return Response[[]orders.Order]{Data: normalizeOrders(out), Status: st}, err
}

// GetOrder calls GET /orders/{id}.
func (c *Client) GetOrder(ctx context.Context, id int64) (Response[orders.Order], error) {
	var out orderDTO
	st, err := c.doJSON(ctx, http.MethodGet, "/orders/{id}", "/orders/"+itoa(id), nil, &out)
	if err != nil {
		return Response[orders.Order]{Status: st}, err
	}
	return Response[orders.Order]{Data: out.normalize(), Status: st}, nil
}

// CancelOrder calls DELETE /orders/{id} with the customer's reason.
func (c *Client) CancelOrder(ctx context.Context, id int64, reason string) (Response[struct{}], error) {
	body := map[string]string{"reason": reason}
	st, err := c.doJSON(ctx, http.MethodDelete, "/orders/{id}", "/orders/"+itoa(id), body, nil)
	return Response[struct{}]{Status: st}, err
}

// ListAllOrders calls GET /admin/orders.
func (c *Client) ListAllOrders(ctx context.Context) (Response[[]orders.Order], error) {
	var out []orderDTO
	st, err := c.doJSON(ctx, http.MethodGet, "/admin/orders", "/admin/orders", nil, &out)
	return Response[[]orders.Order]{Data: normalizeOrders(out), Status: st}, err
}

// AdminGetOrder calls GET /admin/orders/{id}.
func (c *Client) AdminGetOrder(ctx context.Context, id int64) (Response[orders.Order], error) {
	var out orderDTO
	st, err := c.doJSON(ctx, http.MethodGet, "/admin/orders/{id}", "/admin/orders/"+itoa(id), nil, &out)
	if err != nil {
		return Response[orders.Order]{Status: st}, err
	}
	return Response[orders.Order]{Data: out.normalize(), Status: st}, nil
}

// UpdateOrderStatus calls PUT /admin/orders/{id}/status. The body is the raw
// status encoded as a JSON string, e.g. "Shipped".
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) (Response[struct{}], error) {
	st, err := c.doJSON(ctx, http.MethodPut, "/admin/orders/{id}/status",
		fmt.Sprintf("/admin/orders/%d/status", id), status, nil)
	return Response[struct{}]{Status: st}, err
}

// DeleteOrder calls DELETE /admin/orders/{id}.
func (c *Client) DeleteOrder(ctx context.Context, id int64) (Response[struct{}], error) {
	st, err := c.doJSON(ctx, http.MethodDelete, "/admin/orders/{id}", "/admin/orders/"+itoa(id), nil, nil)
	return Response[struct{}]{Status: st}, err
}

// ListOrdersByUser calls GET /admin/orders/user/{userId}.
func (c *Client) ListOrdersByUser(ctx context.Context, userID int64) (Response[[]orders.Order], error) {
	var out []orderDTO
	st, err := c.doJSON(ctx, http.MethodGet, "/admin/orders/user/{userId}", "/admin/orders/user/"+itoa(userID), nil, &out)
	return Response[[]orders.Order]{Data: normalizeOrders(out), Status: st}, err
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
