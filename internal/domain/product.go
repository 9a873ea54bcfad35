package domain

import "time"

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Barcode       string    `json:"barcode,omitempty"`
	SKU           string    `json:"sku,omitempty"`
	Description   string    `json:"description,omitempty"`
	PriceCents    int64     `json:"priceCents"`
	CostCents     int64     `json:"-"`
	StockQuantity int       `json:"stockQuantity"`
	MinStockLevel int       `json:"minStockLevel"`
	CategoryID    *string   `json:"categoryId,omitempty"`
	CategoryName  string    `json:"categoryName,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
}

// IsLowStock reports whether on-hand stock has fallen to the reorder level.
func (p Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
