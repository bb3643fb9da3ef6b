package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-storefront/internal/orders"
)

const adminProducts = "/admin/AdminProducts"

// Upload is an image file attached to a product form.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ProductForm is submitted as multipart/form-data on create and update.
type ProductForm struct {
	Name        string
	Price       decimal.Decimal
	Description string
	CategoryID  int64
	Image       *Upload
}

func (f ProductForm) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	fields := [][2]string{
		{"Name", f.Name},
		{"Price", f.Price.String()},
		{"Description", f.Description},
		{"CategoryId", strconv.FormatInt(f.CategoryID, 10)},
	}
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	if f.Image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="Image"; filename=%q`, f.Image.Filename))
		ct := f.Image.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Image.Body); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// ListProducts calls GET /Products.
func (c *Client) ListProducts(ctx context.Context) (Response[[]orders.Product], error) {
	var out []productDTO
	st, err := c.doJSON(ctx, http.MethodGet, "/Products", "/Products", nil, &out)
	return Response[[]orders.Product]{Data: normalizeProducts(out), Status: st}, err
}

// ListProductsByCategory calls GET /Products/category/{name}.
func (c *Client) ListProductsByCategory(ctx context.Context, category string) (Response[[]orders.Product], error) {
	var out []productDTO
	st, err := c.doJSON(ctx, http.MethodGet, "/Products/category/{name}",
		"/Products/category/"+url.PathEscape(category), nil, &out)
	return Response[[]orders.Product]{Data: normalizeProducts(out), Status: st}, err
}

// CountProducts calls GET /Products/count.
func (c *Client) CountProducts(ctx context.Context) (Response[int], error) {
	var n int
	st, err := c.doJSON(ctx, http.MethodGet, "/Products/count", "/Products/count", nil, &n)
	return Response[int]{Data: n, Status: st}, err
}

// AdminListProducts calls GET /admin/AdminProducts.
func (c *Client) AdminListProducts(ctx context.Context) (Response[[]orders.Product], error) {
	var out []productDTO
	st, err := c.doJSON(ctx, http.MethodGet, adminProducts, adminProducts, nil, &out)
	return Response[[]orders.Product]{Data: normalizeProducts(out), Status: st}, err
}

// AdminListProductsByCategory calls GET /admin/AdminProducts/category/{id}.
func (c *Client) AdminListProductsByCategory(ctx context.Context, categoryID int64) (Response[[]orders.Product], error) {
	var out []productDTO
	st, err := c.doJSON(ctx, http.MethodGet, adminProducts+"/category/{id}",
		adminProducts+"/category/"+itoa(categoryID), nil, &out)
	return Response[[]orders.Product]{Data: normalizeProducts(out), Status: st}, err
}

// CreateProduct calls POST /admin/AdminProducts with a multipart form.
func (c *Client) CreateProduct(ctx context.Context, f ProductForm) (Response[struct{}], error) {
	body, ct, err := f.encode()
	if err != nil {
		return Response[struct{}]{}, fmt.Errorf("encode product form: %w", err)
	}
	st, err := c.do(ctx, request{method: http.MethodPost, route: adminProducts, path: adminProducts, body: body, contentType: ct}, nil)
	return Response[struct{}]{Status: st}, err
}

// UpdateProduct calls PUT /admin/AdminProducts/{id} with a multipart form.
func (c *Client) UpdateProduct(ctx context.Context, id int64, f ProductForm) (Response[struct{}], error) {
	body, ct, err := f.encode()
	if err != nil {
		return Response[struct{}]{}, fmt.Errorf("encode product form: %w", err)
	}
	st, err := c.do(ctx, request{
		method: http.MethodPut, route: adminProducts + "/{id}", path: adminProducts + "/" + itoa(id),
		body: body, contentType: ct,
	}, nil)
	return Response[struct{}]{Status: st}, err
}

// DeleteProduct calls DELETE /admin/AdminProducts/{id}.
func (c *Client) DeleteProduct(ctx context.Context, id int64) (Response[struct{}], error) {
	st, err := c.doJSON(ctx, http.MethodDelete, adminProducts+"/{id}", adminProducts+"/"+itoa(id), nil, nil)
	return Response[struct{}]{Status: st}, err
}
