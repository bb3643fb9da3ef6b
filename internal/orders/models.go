package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "Admin"
)

func IsAdmin(role string) bool { return strings.EqualFold(role, RoleAdmin) }

type Address struct {
	ID          int64  `json:"id,omitempty"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	AddressLine string `json:"addressLine"`
	Pincode     string `json:"pincode"`
}

// Missing lists the required fields that are blank.
func (a Address) Missing() []string {
	var out []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			out = append(out, name)
		}
	}
	check("fullName", a.FullName)
	check("email", a.Email)
	check("phoneNumber", a.PhoneNumber)
	check("addressLine", a.AddressLine)
	check("pincode", a.Pincode)
	return out
}

func (a Address) Complete() bool { return len(a.Missing()) == 0 }

type CartItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

func (c CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

type OrderItem struct {
	ProductID   int64           `json:"productId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type Order struct {
	ID            int64               `json:"id"`
	UserID        int64               `json:"userId,omitempty"`
	OrderedAt     time.Time           `json:"orderedAt"`
	Status        Status              `json:"status"`
	PaymentMethod PaymentMethod       `json:"paymentMethod,omitempty"`
	PaymentStatus PaymentStatus       `json:"paymentStatus,omitempty"`
	PaymentID     string              `json:"paymentId,omitempty"`
	Signature     string              `json:"-"`
	Address       Address             `json:"address"`
	Items         []OrderItem         `json:"items"`
	Total         decimal.Decimal     `json:"total"`
	StageTimes    map[Stage]time.Time `json:"stageTimes,omitempty"`
}

// ItemsTotal sums the line totals of the order's items.
func (o Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.LineTotal)
	}
	return sum
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  int64           `json:"categoryId"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

type User struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Blocked   bool      `json:"blocked"`
	CreatedAt time.Time `json:"createdAt"`
}

type Profile struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// PlaceOrderRequest is what checkout submits to create an order.
type PlaceOrderRequest struct {
	Items         []PlaceOrderItem `json:"orderItems"`
	PaymentMethod PaymentMethod    `json:"paymentMethod"`
	PaymentStatus PaymentStatus    `json:"paymentStatus"`
	PaymentID     string           `json:"paymentId,omitempty"`
	Signature     string           `json:"razorpaySignature,omitempty"`
	Address       Address          `json:"address"`
}

type PlaceOrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}
