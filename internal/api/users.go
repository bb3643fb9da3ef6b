package api

import (
	"context"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/orders"
)

const adminUsers = "/admin/AdminUsers"

// ListUsers calls GET /admin/AdminUsers.
func (c *Client) ListUsers(ctx context.Context) (Response[[]orders.User], error) {
	var out []userDTO
	st, err := c.doJSON(ctx, http.MethodGet, adminUsers, adminUsers, nil, &out)
	users := make([]orders.User, 0, len(out))
	for _, u := range out {
		users = append(users, u.normalize())
	}
	return Response[[]orders.User]{Data: users, Status: st}, err
}

// GetUser calls GET /admin/AdminUsers/{id}.
func (c *Client) GetUser(ctx context.Context, id int64) (Response[orders.User], error) {
	var out userDTO
	st, err := c.doJSON(ctx, http.MethodGet, adminUsers+"/{id}", adminUsers+"/"+itoa(id), nil, &out)
	if err != nil {
		return Response[orders.User]{Status: st}, err
	}
	return Response[orders.User]{Data: out.normalize(), Status: st}, nil
}

// BlockUser calls PUT /admin/AdminUsers/block/{id}.
func (c *Client) BlockUser(ctx context.Context, id int64) (Response[struct{}], error) {
	st, err := c.doJSON(ctx, http.MethodPut, adminUsers+"/block/{id}", adminUsers+"/block/"+itoa(id), nil, nil)
	return Response[struct{}]{Status: st}, err
}

// UnblockUser calls PUT /admin/AdminUsers/unblock/{id}.
func (c *Client) UnblockUser(ctx context.Context, id int64) (Response[struct{}], error) {
	st, err := c.doJSON(ctx, http.MethodPut, adminUsers+"/unblock/{id}", adminUsers+"/unblock/"+itoa(id), nil, nil)
	return Response[struct{}]{Status: st}, err
}

// DeleteUser calls DELETE /admin/AdminUsers/{id}.
func (c *Client) DeleteUser(ctx context.Context, id int64) (Response[struct{}], error) {
	st, err := c.doJSON(ctx, http.MethodDelete, adminUsers+"/{id}", adminUsers+"/"+itoa(id), nil, nil)
	return Response[struct{}]{Status: st}, err
}

// GetProfile calls GET /Users/profile for the token's user.
func (c *Client) GetProfile(ctx context.Context) (Response[orders.Profile], error) {
	var out profileDTO
	st, err := c.doJSON(ctx, http.MethodGet, "/Users/profile", "/Users/profile", nil, &out)
	if err != nil {
		return Response[orders.Profile]{Status: st}, err
	}
	return Response[orders.Profile]{Data: out.normalize(), Status: st}, nil
}
