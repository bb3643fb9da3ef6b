package api

import (
	"context"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/orders"
)

// ListAddresses calls GET /Address.
func (c *Client) ListAddresses(ctx context.Context) (Response[[]orders.Address], error) {
	var out []orders.Address
	st, err := c.doJSON(ctx, http.MethodGet, "/Address", "/Address", nil, &out)
	if out == nil {
		out = []orders.Address{}
	}
	return Response[[]orders.Address]{Data: out, Status: st}, err
}

// CreateAddress calls POST /Address.
func (c *Client) CreateAddress(ctx context.Context, a orders.Address) (Response[orders.Address], error) {
	a.ID = 0
	var out orders.Address
	st, err := c.doJSON(ctx, http.MethodPost, "/Address", "/Address", a, &out)
	return Response[orders.Address]{Data: out, Status: st}, err
}

// UpdateAddress calls PUT /Address/{id}.
func (c *Client) UpdateAddress(ctx context.Context, id int64, a orders.Address) (Response[orders.Address], error) {
	a.ID = id
	var out orders.Address
	st, err := c.doJSON(ctx, http.MethodPut, "/Address/{id}", "/Address/"+itoa(id), a, &out)
	return Response[orders.Address]{Data: out, Status: st}, err
}

// DeleteAddress calls DELETE /Address/{id}.
func (c *Client) DeleteAddress(ctx context.Context, id int64) (Response[struct{}], error) {
	st, err := c.doJSON(ctx, http.MethodDelete, "/Address/{id}", "/Address/"+itoa(id), nil, nil)
	return Response[struct{}]{Status: st}, err
}
