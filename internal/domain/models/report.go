package models

import "time"

// KpiSnapshot is the point-in-time analytics view served to dashboards and digests.
// Currency and averages carry two decimals; counts are integers. Averages without
// a valid denominator are null.
type KpiSnapshot struct {
	AnimalsInField        int              `json:"animals_in_field"`
	AnimalsSold           int              `json:"animals_sold"`
	AnimalsCritical       int              `json:"animals_critical"`
	AvgFieldResidencyDays *float64         `json:"avg_field_residency_days"`
	AvgPriceDifferential  *float64         `json:"avg_price_differential"`
	CategoryDistribution  map[Category]int `json:"category_distribution"`
	RecentActivity        []ActivityItem   `json:"recent_activity"`
	RecentPurchases       []PurchaseView   `json:"recent_purchases"`
	RecentSales           []SaleView       `json:"recent_sales"`
	Partial               bool             `json:"partial"`
	FailedSources         []string         `json:"failed_sources,omitempty"`
	GeneratedAt           time.Time        `json:"generated_at"`
}

// PurchaseView is a purchase joined with its supplier name and head count.
type PurchaseView struct {
	ID           string     `json:"id"`
	Date         *time.Time `json:"date"`
	SupplierID   string     `json:"supplier_id"`
	SupplierName string     `json:"supplier_name"`
	TotalPrice   *float64   `json:"total_price"`
	HeadCount    int        `json:"head_count"`
}

// SaleView is a sale joined with its buyer name and head count.
type SaleView struct {
	ID        string     `json:"id"`
	Date      *time.Time `json:"date"`
	Kind      string     `json:"kind"`
	BuyerID   string     `json:"buyer_id"`
	BuyerName string     `json:"buyer_name"`
	UnitPrice *float64   `json:"unit_price"`
	HeadCount int        `json:"head_count"`
}

// HealthEventView is a health event joined with the label of its animal.
type HealthEventView struct {
	ID          string     `json:"id"`
	Date        *time.Time `json:"date"`
	Type        string     `json:"type"`
	AnimalID    string     `json:"animal_id"`
	AnimalLabel string     `json:"animal_label"`
	Description string     `json:"description"`
}

// ActivityKind tags the source collection of a feed item.
type ActivityKind string

const (
	ActivityPurchase ActivityKind = "purchase"
	ActivitySale     ActivityKind = "sale"
	ActivityHealth   ActivityKind = "health"
)

// ActivityItem is one renderable entry of the recent-activity feed.
type ActivityItem struct {
	Kind         ActivityKind `json:"kind"`
	Icon         string       `json:"icon"`
	ID           string       `json:"id"`
	Date         time.Time    `json:"date"`
	Counterparty string       `json:"counterparty"`
	Description  string       `json:"description"`
}

// BuyerPricing holds weighted selling prices per category for one buyer.
// Categories without a valid priced row are absent from Categories; Summary is
// nil when Categories is empty.
type BuyerPricing struct {
	BuyerID         string               `json:"buyer_id"`
	BuyerName       string               `json:"buyer_name"`
	SalesCount      int                  `json:"sales_count"`
	HeadCount       int                  `json:"head_count"`
	PricedHeadCount int                  `json:"priced_head_count"`
	Categories      map[Category]float64 `json:"categories"`
	Summary         *PricingSummary      `json:"summary"`
}

// PricingSummary aggregates the per-category weighted prices.
type PricingSummary struct {
	MaxPrice    float64  `json:"max_price"`
	MaxCategory Category `json:"max_category"`
	MinPrice    float64  `json:"min_price"`
	MinCategory Category `json:"min_category"`
	MeanPrice   float64  `json:"mean_price"`
}
