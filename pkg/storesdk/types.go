package storesdk

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// Catalog Types
// ============================================================================

// ProductImage is one uploaded image attached to a product.
type ProductImage struct {
	ID        int64  `json:"id"`
	Image     string `json:"image"`
	AltText   string `json:"alt_text,omitempty"`
	IsPrimary bool   `json:"is_primary"`
}

// Category is a catalog category. Top-level categories carry their
// subcategories inline; subcategories have a non-nil Parent.
type Category struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description,omitempty"`
	Image         string     `json:"image,omitempty"`
	Parent        *int64     `json:"parent"`
	Subcategories []Category `json:"subcategories,omitempty"`
	ProductsCount int        `json:"products_count"`
	IsActive      bool       `json:"is_active"`
}

// Product is a catalog entry. Prices are decimal strings on the wire.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	ComparePrice decimal.Decimal `json:"compare_price,omitempty"`
	Stock        int             `json:"stock"`
	Category     *Category       `json:"category"`
	Subcategory  *Category       `json:"subcategory"`
	Images       []ProductImage  `json:"images,omitempty"`
	MainImage    *ProductImage   `json:"main_image"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at,omitempty"`
}

// ProductQuery filters the public product listing.
type ProductQuery struct {
	Category    int64
	Subcategory int64
	Search      string
	Ordering    string
	Page        int
}

// ============================================================================
// User Types
// ============================================================================

// User is an account as returned by the profile and admin user endpoints.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	IsActive    bool      `json:"is_active"`
}

// AuthResponse is returned by both login and register.
type AuthResponse struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// RegisterRequest creates a new account. Password and PasswordConfirm must
// match; the client checks this before sending.
type RegisterRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
}

// ProfileUpdate carries the editable profile fields. Nil pointers are
// omitted so the server keeps the current value.
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
}

// ============================================================================
// Order Types
// ============================================================================

// Order status values as reported by the API.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// OrderProduct is a line of a placed order with the price snapshot taken at
// checkout time.
type OrderProduct struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Order is one placed order.
type Order struct {
	ID              int64           `json:"id"`
	Products        []OrderProduct  `json:"products"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          string          `json:"status"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	CustomerAddress string          `json:"customer_address"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CheckoutItem references a product and quantity at checkout.
type CheckoutItem struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// CheckoutRequest places an order. The order is handed off to the customer
// via a messaging link in the response; no payment happens in-band.
type CheckoutRequest struct {
	Products        []CheckoutItem `json:"products"`
	CustomerName    string         `json:"customer_name"`
	CustomerPhone   string         `json:"customer_phone"`
	CustomerAddress string         `json:"customer_address"`
	Notes           string         `json:"notes,omitempty"`
}

// CheckoutResponse is the checkout result, including the pre-filled
// WhatsApp handoff URL.
type CheckoutResponse struct {
	OrderID     int64           `json:"order_id"`
	Phone       string          `json:"phone"`
	Message     string          `json:"message"`
	WhatsAppURL string          `json:"whatsapp_url"`
	OrderTotal  decimal.Decimal `json:"order_total"`
}

// ============================================================================
// Admin Types
// ============================================================================

// ListQuery is the shared filter set of the admin list endpoints.
type ListQuery struct {
	Search   string
	Ordering string
	Page     int

	// Filters are additional equality filters, e.g. "status" or "category".
	Filters map[string]string
}

// ProductWrite creates or updates a product through the admin mirror.
type ProductWrite struct {
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	Price        decimal.Decimal  `json:"price"`
	ComparePrice *decimal.Decimal `json:"compare_price,omitempty"`
	Stock        int              `json:"stock"`
	Category     *int64           `json:"category"`
	Subcategory  *int64           `json:"subcategory,omitempty"`
	IsActive     bool             `json:"is_active"`
	ImageIDs     []int64          `json:"image_ids,omitempty"`
}

// CategoryWrite creates or updates a category through the admin mirror.
type CategoryWrite struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parent      *int64 `json:"parent,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// UserWrite creates or updates an account through the admin mirror. The
// credential fields are only honoured on create.
type UserWrite struct {
	Email           string `json:"email,omitempty"`
	Username        string `json:"username,omitempty"`
	Password        string `json:"password,omitempty"`
	PasswordConfirm string `json:"password_confirm,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	IsStaff         bool   `json:"is_staff"`
	IsActive        bool   `json:"is_active"`
}

// DashboardStats is the admin landing page summary.
type DashboardStats struct {
	TotalProducts int `json:"total_products"`
	TotalOrders   int `json:"total_orders"`
	PendingOrders int `json:"pending_orders"`
	TotalUsers    int `json:"total_users"`
}
