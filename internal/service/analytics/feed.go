package analytics

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/mamadbah2/ganadero/internal/domain/models"
)

// DefaultFeedLimit bounds the merged activity feed.
const DefaultFeedLimit = 8

const (
	iconPurchase = "truck"
	iconSale     = "banknote"
	iconHealth   = "syringe"
)

// MergeFeed concatenates the complete per-source windows, orders them newest
// first and truncates once. Items without a date are left out; equal dates
// keep purchase, sale, health order.
func MergeFeed(purchases []models.PurchaseView, sales []models.SaleView, health []models.HealthEventView, limit int) []models.ActivityItem {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	items := make([]models.ActivityItem, 0, len(purchases)+len(sales)+len(health))
	for _, p := range purchases {
		if p.Date == nil {
			continue
		}
		items = append(items, models.ActivityItem{
			Kind:         models.ActivityPurchase,
			Icon:         iconPurchase,
			ID:           p.ID,
			Date:         *p.Date,
			Counterparty: p.SupplierName,
			Description:  describePurchase(p),
		})
	}
	for _, s := range sales {
		if s.Date == nil {
			continue
		}
		items = append(items, models.ActivityItem{
			Kind:         models.ActivitySale,
			Icon:         iconSale,
			ID:           s.ID,
			Date:         *s.Date,
			Counterparty: s.BuyerName,
			Description:  describeSale(s),
		})
	}
	for _, e := range health {
		if e.Date == nil {
			continue
		}
		items = append(items, models.ActivityItem{
			Kind:         models.ActivityHealth,
			Icon:         iconHealth,
			ID:           e.ID,
			Date:         *e.Date,
			Counterparty: e.AnimalLabel,
			Description:  describeHealth(e),
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Date.After(items[j].Date) })

	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func describePurchase(p models.PurchaseView) string {
	desc := fmt.Sprintf("Purchase of %s", heads(p.HeadCount))
	if p.TotalPrice != nil {
		desc += " for $" + money(*p.TotalPrice)
	}
	return desc
}

func describeSale(s models.SaleView) string {
	desc := fmt.Sprintf("Sale of %s", heads(s.HeadCount))
	if s.Kind != "" {
		desc += " (" + s.Kind + ")"
	}
	if s.UnitPrice != nil {
		desc += " at $" + money(*s.UnitPrice) + "/kg"
	}
	return desc
}

func describeHealth(e models.HealthEventView) string {
	kind := e.Type
	if kind == "" {
		kind = "health event"
	}
	if e.Description == "" {
		return kind
	}
	return kind + ": " + e.Description
}

func heads(n int) string {
	return strconv.Itoa(n) + " head"
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
