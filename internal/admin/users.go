package admin

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

const UsersPerPage = 10

type UserSort string

const (
	SortUsersByName    UserSort = "name"
	SortUsersByEmail   UserSort = "email"
	SortUsersByCreated UserSort = "created"
)

const (
	RoleAll = "all"

	StatusAll     = "all"
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

type UserQuery struct {
	Search string
	Role   string
	Status string
	Sort   UserSort
	Page   int
}

type UserDetail struct {
	User   orders.User    `json:"user"`
	Orders []orders.Order `json:"orders"`
}

type UserBackend interface {
	ListUsers(ctx context.Context) (api.Response[[]orders.User], error)
	GetUser(ctx context.Context, id int64) (api.Response[orders.User], error)
	ListOrdersByUser(ctx context.Context, userID int64) (api.Response[[]orders.Order], error)
	BlockUser(ctx context.Context, id int64) (api.Response[struct{}], error)
	UnblockUser(ctx context.Context, id int64) (api.Response[struct{}], error)
	DeleteUser(ctx context.Context, id int64) (api.Response[struct{}], error)
}

type Users struct {
	Backend UserBackend
}

func (u *Users) List(ctx context.Context, q UserQuery) (Page[orders.User], error) {
	res, err := u.Backend.ListUsers(ctx)
	if err != nil {
		return Page[orders.User]{}, &ActionError{Message: "Failed to fetch users", Err: err}
	}
	return ListUsers(res.Data, q), nil
}

// ListUsers filters by search text, role and blocked state, sorts and pages.
// Newest first when sorting by creation time.
func ListUsers(all []orders.User, q UserQuery) Page[orders.User] {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]orders.User, 0, len(all))
	for _, u := range all {
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.FullName), needle) &&
			!strings.Contains(strings.ToLower(u.Email), needle) {
			continue
		}
		if q.Role != "" && q.Role != RoleAll && u.Role != q.Role {
			continue
		}
		switch q.Status {
		case StatusActive:
			if u.Blocked {
				continue
			}
		case StatusBlocked:
			if !u.Blocked {
				continue
			}
		}
		out = append(out, u)
	}

	switch q.Sort {
	case SortUsersByEmail:
		slices.SortStableFunc(out, func(a, b orders.User) int {
			return cmp.Compare(strings.ToLower(a.Email), strings.ToLower(b.Email))
		})
	case SortUsersByCreated:
		slices.SortStableFunc(out, func(a, b orders.User) int { return b.CreatedAt.Compare(a.CreatedAt) })
	case SortUsersByName:
		slices.SortStableFunc(out, func(a, b orders.User) int {
			return cmp.Compare(strings.ToLower(a.FullName), strings.ToLower(b.FullName))
		})
	}
	return paginate(out, q.Page, UsersPerPage)
}

// Detail loads the user and their orders together.
func (u *Users) Detail(ctx context.Context, id int64) (UserDetail, error) {
	var d UserDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := u.Backend.GetUser(gctx, id)
		d.User = res.Data
		return err
	})
	g.Go(func() error {
		res, err := u.Backend.ListOrdersByUser(gctx, id)
		d.Orders = res.Data
		return err
	})
	if err := g.Wait(); err != nil {
		return UserDetail{}, &ActionError{Message: "Failed to fetch user details or orders", Err: err}
	}
	if d.Orders == nil {
		d.Orders = []orders.Order{}
	}
	return d, nil
}

// SetBlocked blocks or unblocks the user and returns the refreshed list.
func (u *Users) SetBlocked(ctx context.Context, id int64, blocked, confirmed bool, q UserQuery) (Page[orders.User], error) {
	if !confirmed {
		return Page[orders.User]{}, ErrNotConfirmed
	}
	call := u.Backend.UnblockUser
	if blocked {
		call = u.Backend.BlockUser
	}
	if _, err := call(ctx, id); err != nil {
		return Page[orders.User]{}, &ActionError{Message: "Failed to update user status", Err: err}
	}
	return u.List(ctx, q)
}

func (u *Users) Delete(ctx context.Context, id int64, confirmed bool, q UserQuery) (Page[orders.User], error) {
	if !confirmed {
		return Page[orders.User]{}, ErrNotConfirmed
	}
	if _, err := u.Backend.DeleteUser(ctx, id); err != nil {
		return Page[orders.User]{}, &ActionError{Message: "Failed to delete user", Err: err}
	}
	return u.List(ctx, q)
}
