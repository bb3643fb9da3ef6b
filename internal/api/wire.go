package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-storefront/internal/orders"
)

// Backend payload shapes. Field-name fallbacks live here and nowhere else:
// every response is normalized into the orders types exactly once.

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// flexTime accepts RFC 3339 as well as the zone-less timestamps the backend
// serializes; zone-less values are taken as UTC.
type flexTime struct{ time.Time }

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, l := range timeLayouts {
		if v, err := time.Parse(l, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("unrecognized time %q", s)
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %s", b)
	}
	*n = flexInt(v)
	return nil
}

type orderItemDTO struct {
	ProductID   flexInt          `json:"productId"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	ImageURL    string           `json:"imageUrl"`
	Price       decimal.Decimal  `json:"price"`
	Quantity    int              `json:"quantity"`
	TotalPrice  *decimal.Decimal `json:"totalPrice"`
}

type orderDTO struct {
	ID              flexInt             `json:"id"`
	UserID          flexInt             `json:"userId"`
	OrderDate       flexTime            `json:"orderDate"`
	Date            flexTime            `json:"date"`
	Status          string              `json:"status"`
	PaymentMethod   string              `json:"paymentMethod"`
	PaymentStatus   string              `json:"paymentStatus"`
	PaymentID       string              `json:"paymentId"`
	Signature       string              `json:"razorpaySignature"`
	Address         *orders.Address     `json:"address"`
	CustomerName    string              `json:"customerName"`
	Items           []orderItemDTO      `json:"items"`
	TotalAmount     *decimal.Decimal    `json:"totalAmount"`
	Amount          *decimal.Decimal    `json:"amount"`
	Total           *decimal.Decimal    `json:"total"`
	StageTimestamps map[string]flexTime `json:"stageTimestamps"`
}

func (d orderDTO) normalize() orders.Order {
	status, _ := orders.ParseStatus(d.Status)
	o := orders.Order{
		ID:            int64(d.ID),
		UserID:        int64(d.UserID),
		OrderedAt:     d.OrderDate.Time,
		Status:        status,
		PaymentMethod: orders.PaymentMethod(d.PaymentMethod),
		PaymentStatus: orders.PaymentStatus(d.PaymentStatus),
		PaymentID:     d.PaymentID,
		Signature:     d.Signature,
		Items:         make([]orders.OrderItem, 0, len(d.Items)),
	}
	if o.OrderedAt.IsZero() {
		o.OrderedAt = d.Date.Time
	}
	if d.Address != nil {
		o.Address = *d.Address
	}
	if o.Address.FullName == "" {
		o.Address.FullName = d.CustomerName
	}
	for _, it := range d.Items {
		line := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		if it.TotalPrice != nil && !it.TotalPrice.IsZero() {
			line = *it.TotalPrice
		}
		o.Items = append(o.Items, orders.OrderItem{
			ProductID:   int64(it.ProductID),
			Name:        it.Name,
			Description: it.Description,
			ImageURL:    it.ImageURL,
			Price:       it.Price,
			Quantity:    it.Quantity,
			LineTotal:   line,
		})
	}
	switch {
	case d.TotalAmount != nil && !d.TotalAmount.IsZero():
		o.Total = *d.TotalAmount
	case d.Amount != nil && !d.Amount.IsZero():
		o.Total = *d.Amount
	case d.Total != nil && !d.Total.IsZero():
		o.Total = *d.Total
	default:
		o.Total = o.ItemsTotal()
	}
	if len(d.StageTimestamps) > 0 {
		o.StageTimes = make(map[orders.Stage]time.Time, len(d.StageTimestamps))
		for k, v := range d.StageTimestamps {
			if v.IsZero() {
				continue
			}
			for _, st := range orders.Stages {
				if strings.EqualFold(string(st), k) {
					o.StageTimes[st] = v.Time
				}
			}
		}
	}
	return o
}

func normalizeOrders(in []orderDTO) []orders.Order {
	out := make([]orders.Order, 0, len(in))
	for _, d := range in {
		out = append(out, d.normalize())
	}
	return out
}

type cartItemDTO struct {
	ID           flexInt         `json:"id"`
	ProductID    flexInt         `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	ImageURL     string          `json:"imageUrl"`
	Quantity     int             `json:"quantity"`
}

func (d cartItemDTO) normalize() orders.CartItem {
	return orders.CartItem{
		ID:          int64(d.ID),
		ProductID:   int64(d.ProductID),
		ProductName: d.ProductName,
		ImageURL:    d.ImageURL,
		Price:       d.ProductPrice,
		Quantity:    d.Quantity,
	}
}

type productDTO struct {
	ID          flexInt         `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  flexInt         `json:"categoryId"`
	ImageURL    string          `json:"imageUrl"`
}

func (d productDTO) normalize() orders.Product {
	return orders.Product{
		ID:          int64(d.ID),
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		CategoryID:  int64(d.CategoryID),
		ImageURL:    d.ImageURL,
	}
}

func normalizeProducts(in []productDTO) []orders.Product {
	out := make([]orders.Product, 0, len(in))
	for _, d := range in {
		out = append(out, d.normalize())
	}
	return out
}

type userDTO struct {
	ID           flexInt  `json:"id"`
	FullName     string   `json:"fullName"`
	EmailAddress string   `json:"emailAddress"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	IsBlocked    bool     `json:"isBlocked"`
	CreatedAt    flexTime `json:"createdAt"`
}

func (d userDTO) normalize() orders.User {
	email := d.EmailAddress
	if email == "" {
		email = d.Email
	}
	return orders.User{
		ID:        int64(d.ID),
		FullName:  d.FullName,
		Email:     email,
		Role:      d.Role,
		Blocked:   d.IsBlocked,
		CreatedAt: d.CreatedAt.Time,
	}
}

type profileDTO struct {
	ID           flexInt `json:"id"`
	FullName     string  `json:"fullName"`
	Email        string  `json:"email"`
	EmailAddress string  `json:"emailAddress"`
	Role         string  `json:"role"`
}

func (d profileDTO) normalize() orders.Profile {
	email := d.Email
	if email == "" {
		email = d.EmailAddress
	}
	return orders.Profile{ID: int64(d.ID), FullName: d.FullName, Email: email, Role: d.Role}
}

// MonthlyRevenue is one point of the revenue chart series.
type MonthlyRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}
