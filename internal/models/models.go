package models

import "time"

// Product is a catalog product record as the catalog API exchanges it
type Product struct {
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Title       string   `json:"title" yaml:"title"`
	Category    string   `json:"category" yaml:"category"`
	OriginPrice float64  `json:"origin_price" yaml:"origin_price"`
	Price       float64  `json:"price" yaml:"price"`
	Unit        string   `json:"unit" yaml:"unit"`
	Description string   `json:"description" yaml:"description"`
	Content     string   `json:"content" yaml:"content"`
	IsEnabled   int      `json:"is_enabled" yaml:"is_enabled"` // 1 enabled, 0 disabled
	ImageURL    string   `json:"imageUrl" yaml:"imageUrl"`
	ImagesURL   []string `json:"imagesUrl" yaml:"imagesUrl"`
}

// Enabled reports whether the product is shown in the storefront
func (p Product) Enabled() bool {
	return p.IsEnabled != 0
}

// Pagination describes one page of the admin product list
type Pagination struct {
	TotalPages  int    `json:"total_pages"`
	CurrentPage int    `json:"current_page"`
	HasPre      bool   `json:"has_pre"`
	HasNext     bool   `json:"has_next"`
	Category    string `json:"category"`
}

// ProductPage is a page of admin products
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// CartItem is one line of the shopping cart
type CartItem struct {
	ID         string  `json:"id"`
	ProductID  string  `json:"product_id"`
	Qty        int     `json:"qty"`
	Product    Product `json:"product"`
	Total      float64 `json:"total"`
	FinalTotal float64 `json:"final_total"`
}

// Cart is the current shopping cart
type Cart struct {
	Carts      []CartItem `json:"carts"`
	Total      float64    `json:"total"`
	FinalTotal float64    `json:"final_total"`
}

// Recipient is the shipping contact entered at checkout
type Recipient struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Tel     string `json:"tel"`
	Address string `json:"address"`
}

// Order is the checkout submission
type Order struct {
	User    Recipient `json:"user"`
	Message string    `json:"message"`
}

// OrderResult is the catalog API's answer to a submitted order
type OrderResult struct {
	OrderID  string  `json:"orderId"`
	Total    float64 `json:"total"`
	CreateAt int64   `json:"create_at"`
	Message  string  `json:"message"`
}

// Credential is the opaque admin token returned by sign-in
type Credential struct {
	Token   string    `json:"token" yaml:"token"`
	Expires time.Time `json:"expires" yaml:"expires"`
}

// Expired reports whether the credential is no longer usable at now.
// A zero expiry never expires.
func (c Credential) Expired(now time.Time) bool {
	if c.Expires.IsZero() {
		return false
	}
	return !now.Before(c.Expires)
}
