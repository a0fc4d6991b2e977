package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Slug        string `db:"slug"`
	Description string `db:"description"`
	ImageURL    string `db:"image_url"`
	BannerURL   string `db:"banner_url"`
	CreatedAt   string `db:"created_at"`
}

type Item struct {
	ID           string          `db:"id"`
	CategoryID   string          `db:"category_id"`
	CategoryName string          `db:"category_name"`
	Name         string          `db:"name"`
	Slug         string          `db:"slug"`
	Description  string          `db:"description"`
	Price        decimal.Decimal `db:"price"`
	Stock        int             `db:"stock"`
	ImageURL     string          `db:"image_url"`
	StatsJSON    string          `db:"stats_json"` // JSON object of free-form attributes
	CreatedAt    string          `db:"created_at"`
	UpdatedAt    string          `db:"updated_at"`
}

// InStock reports whether at least one unit can be sold.
func (i Item) InStock() bool { return i.Stock > 0 }

type Banner struct {
	ID        string `db:"id"`
	Title     string `db:"title"`
	Subtitle  string `db:"subtitle"`
	BannerURL string `db:"banner_url"`
	Active    bool   `db:"is_active"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

// Availability is the stock badge shown on item pages and served by the availability API.
type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}
