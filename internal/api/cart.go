package api

import (
	"context"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/orders"
)

// GetCart calls GET /Cart.
func (c *Client) GetCart(ctx context.Context) (Response[[]orders.CartItem], error) {
	var out []cartItemDTO
	st, err := c.doJSON(ctx, http.MethodGet, "/Cart", "/Cart", nil, &out)
	items := make([]orders.CartItem, 0, len(out))
	for _, it := range out {
		items = append(items, it.normalize())
	}
	return Response[[]orders.CartItem]{Data: items, Status: st}, err
}

// RemoveCartItem calls DELETE /Cart/{itemId}.
func (c *Client) RemoveCartItem(ctx context.Context, itemID int64) (Response[struct{}], error) {
	st, err := c.doJSON(ctx, http.MethodDelete, "/Cart/{itemId}", "/Cart/"+itoa(itemID), nil, nil)
	return Response[struct{}]{Status: st}, err
}
