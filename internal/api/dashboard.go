package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-storefront/internal/orders"
)

// TotalRevenue calls GET /orders/total-revenue.
func (c *Client) TotalRevenue(ctx context.Context) (Response[decimal.Decimal], error) {
	var out decimal.Decimal
	st, err := c.doJSON(ctx, http.MethodGet, "/orders/total-revenue", "/orders/total-revenue", nil, &out)
	return Response[decimal.Decimal]{Data: out, Status: st}, err
}

// RecentOrders calls GET /orders/recent.
func (c *Client) RecentOrders(ctx context.Context) (Response[[]orders.Order], error) {
	var out []orderDTO
	st, err := c.doJSON(ctx, http.MethodGet, "/orders/recent", "/orders/recent", nil, &out)
	return Response[[]orders.Order]{Data: normalizeOrders(out), Status: st}, err
}

// MonthlyRevenue calls GET /orders/monthly-revenue.
func (c *Client) MonthlyRevenue(ctx context.Context) (Response[[]MonthlyRevenue], error) {
	var out []MonthlyRevenue
	st, err := c.doJSON(ctx, http.MethodGet, "/orders/monthly-revenue", "/orders/monthly-revenue", nil, &out)
	return Response[[]MonthlyRevenue]{Data: out, Status: st}, err
}
