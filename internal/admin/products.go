package admin

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

const ProductsPerPage = 8

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Categories are the backend's product categories in chart order.
var Categories = []Category{
	{ID: 2, Name: "Men's Collection"},
	{ID: 3, Name: "Women's Collection"},
	{ID: 4, Name: "Best Deals"},
	{ID: 1, Name: "Home"},
}

const DefaultCategoryID = 1

func CategoryName(id int64) string {
	for _, c := range Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return "Unknown"
}

type ProductSort string

const (
	SortByName     ProductSort = "name"
	SortByPrice    ProductSort = "price"
	SortByCategory ProductSort = "category"
)

type ProductQuery struct {
	Search string
	Sort   ProductSort
	Page   int
}

type ProductRow struct {
	orders.Product
	CategoryName string `json:"categoryName"`
}

type CategoryCount struct {
	Category
	Count int `json:"count"`
}

type ProductList struct {
	Page[ProductRow]
	Total  int             `json:"total"`
	Counts []CategoryCount `json:"categoryCounts"`
}

// ProductInput is the product form. Price is kept as typed so an empty
// field can be told apart from zero.
type ProductInput struct {
	Name        string
	Price       string
	Description string
	CategoryID  int64
	Image       *api.Upload
}

var ErrInvalidProduct = errors.New("Please fill all required fields")

type ProductBackend interface {
	AdminListProducts(ctx context.Context) (api.Response[[]orders.Product], error)
	CreateProduct(ctx context.Context, f api.ProductForm) (api.Response[struct{}], error)
	UpdateProduct(ctx context.Context, id int64, f api.ProductForm) (api.Response[struct{}], error)
	DeleteProduct(ctx context.Context, id int64) (api.Response[struct{}], error)
}

type Products struct {
	Backend ProductBackend
}

// List fetches every product and returns the requested page.
func (p *Products) List(ctx context.Context, q ProductQuery) (ProductList, error) {
	res, err := p.Backend.AdminListProducts(ctx)
	if err != nil {
		return ProductList{}, fmt.Errorf("list products: %w", err)
	}
	return ListProducts(res.Data, q), nil
}

// ListProducts filters, sorts and pages all. Category counts cover the whole
// catalogue, not just the matches.
func ListProducts(all []orders.Product, q ProductQuery) ProductList {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	rows := make([]ProductRow, 0, len(all))
	for _, pr := range all {
		if needle != "" &&
			!strings.Contains(strings.ToLower(pr.Name), needle) &&
			!strings.Contains(strings.ToLower(pr.Description), needle) {
			continue
		}
		rows = append(rows, ProductRow{Product: pr, CategoryName: CategoryName(pr.CategoryID)})
	}

	switch q.Sort {
	case SortByPrice:
		slices.SortStableFunc(rows, func(a, b ProductRow) int { return a.Price.Cmp(b.Price) })
	case SortByCategory:
		slices.SortStableFunc(rows, func(a, b ProductRow) int { return cmp.Compare(a.CategoryName, b.CategoryName) })
	default:
		slices.SortStableFunc(rows, func(a, b ProductRow) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	}

	counts := make([]CategoryCount, len(Categories))
	for i, c := range Categories {
		counts[i].Category = c
		for _, pr := range all {
			if pr.CategoryID == c.ID {
				counts[i].Count++
			}
		}
	}

	return ProductList{
		Page:   paginate(rows, q.Page, ProductsPerPage),
		Total:  len(all),
		Counts: counts,
	}
}

func (in ProductInput) form() (api.ProductForm, error) {
	name, desc := strings.TrimSpace(in.Name), strings.TrimSpace(in.Description)
	if name == "" || desc == "" || strings.TrimSpace(in.Price) == "" {
		return api.ProductForm{}, ErrInvalidProduct
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil || price.IsZero() {
		return api.ProductForm{}, ErrInvalidProduct
	}
	cat := in.CategoryID
	if cat == 0 {
		cat = DefaultCategoryID
	}
	return api.ProductForm{Name: name, Price: price, Description: desc, CategoryID: cat, Image: in.Image}, nil
}

// Save creates the product when id is zero and updates it otherwise, then
// returns the refreshed list.
func (p *Products) Save(ctx context.Context, id int64, in ProductInput, q ProductQuery) (ProductList, error) {
	f, err := in.form()
	if err != nil {
		return ProductList{}, err
	}
	if id == 0 {
		_, err = p.Backend.CreateProduct(ctx, f)
	} else {
		_, err = p.Backend.UpdateProduct(ctx, id, f)
	}
	if err != nil {
		return ProductList{}, &ActionError{Message: api.MessageOr(err, "Failed to save product"), Err: err}
	}
	return p.List(ctx, q)
}

func (p *Products) Delete(ctx context.Context, id int64, confirmed bool, q ProductQuery) (ProductList, error) {
	if !confirmed {
		return ProductList{}, ErrNotConfirmed
	}
	if _, err := p.Backend.DeleteProduct(ctx, id); err != nil {
		return ProductList{}, &ActionError{
			Message: api.MessageOr(err, "Failed to delete product. It might be referenced in orders."),
			Err:     err,
		}
	}
	return p.List(ctx, q)
}
