package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-storefront/internal/admin"
	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/orders"
)

// maxUpload bounds product form bodies.
const maxUpload = 10 << 20

func (h *Handlers) adminRoutes(r chi.Router) {
	r.Use(RequireAdmin)
	r.Get("/dashboard", h.dashboard)
	r.Put("/orders/{id}/status", h.updateOrderStatus)

	r.Get("/products", h.listProducts)
	r.Post("/products", h.saveProduct)
	r.Put("/products/{id}", h.saveProduct)
	r.Delete("/products/{id}", h.deleteProduct)

	r.Get("/users", h.listUsers)
	r.Get("/users/{id}", h.userDetail)
	r.Delete("/users/{id}", h.deleteUser)
	r.Post("/users/{id}/block", h.blockUser(true))
	r.Post("/users/{id}/unblock", h.blockUser(false))
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Dashboard.Load(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type UpdateStatusReq struct {
	Status string        `json:"status"`
	From   orders.Status `json:"from,omitempty"`
}

func (h *Handlers) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req UpdateStatusReq
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	change, err := h.Dashboard.UpdateStatus(r.Context(), id, req.From, req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}

func pageParam(r *http.Request) int {
	p, _ := strconv.Atoi(r.URL.Query().Get("page"))
	return p
}

// confirmed reads the ?confirm=true flag destructive actions require.
func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}

func productQuery(r *http.Request) admin.ProductQuery {
	q := r.URL.Query()
	return admin.ProductQuery{Search: q.Get("search"), Sort: admin.ProductSort(q.Get("sort")), Page: pageParam(r)}
}

func userQuery(r *http.Request) admin.UserQuery {
	q := r.URL.Query()
	return admin.UserQuery{
		Search: q.Get("search"),
		Role:   q.Get("role"),
		Status: q.Get("status"),
		Sort:   admin.UserSort(q.Get("sort")),
		Page:   pageParam(r),
	}
}

func (h *Handlers) listProducts(w http.ResponseWriter, r *http.Request) {
	l, err := h.Products.List(r.Context(), productQuery(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// saveProduct reads the multipart product form. POST creates, PUT updates.
func (h *Handlers) saveProduct(w http.ResponseWriter, r *http.Request) {
	var id int64
	if chi.URLParam(r, "id") != "" {
		v, err := int64Param(r, "id")
		if err != nil {
			h.fail(w, r, err)
			return
		}
		id = v
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		badRequest(w, r, "expected a multipart product form")
		return
	}
	in := admin.ProductInput{
		Name:        r.FormValue("Name"),
		Price:       r.FormValue("Price"),
		Description: r.FormValue("Description"),
	}
	if c := strings.TrimSpace(r.FormValue("CategoryId")); c != "" {
		v, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			badRequest(w, r, "invalid CategoryId")
			return
		}
		in.CategoryID = v
	}
	if f, fh, err := r.FormFile("Image"); err == nil {
		defer f.Close()
		in.Image = &api.Upload{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Body: f}
	}

	l, err := h.Products.Save(r.Context(), id, in, productQuery(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	code := http.StatusOK
	if id == 0 {
		code = http.StatusCreated
	}
	writeJSON(w, code, l)
}

func (h *Handlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	l, err := h.Products.Delete(r.Context(), id, confirmed(r), productQuery(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *Handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	p, err := h.Users.List(r.Context(), userQuery(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) userDetail(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.Users.Detail(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) blockUser(block bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := int64Param(r, "id")
		if err != nil {
			h.fail(w, r, err)
			return
		}
		p, err := h.Users.SetBlocked(r.Context(), id, block, confirmed(r), userQuery(r))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (h *Handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.Users.Delete(r.Context(), id, confirmed(r), userQuery(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
