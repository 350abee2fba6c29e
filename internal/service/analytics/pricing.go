package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/ganadero/internal/domain/models"
)

// PriceDifferential is the simple mean of sale unit price minus the animal's
// purchase price over detail rows where the sale, the animal and both prices
// resolve. It is nil when no row qualifies.
func PriceDifferential(r *Reconciled) *float64 {
	sum := decimal.Zero
	var n int64
	for _, det := range r.Details {
		animal, ok := r.Animal(det.AnimalID)
		if !ok || animal.PurchasePrice == nil {
			continue
		}
		sale, ok := r.Sale(det.SaleID)
		if !ok || sale.UnitPrice == nil {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(*sale.UnitPrice).Sub(decimal.NewFromFloat(*animal.PurchasePrice)))
		n++
	}
	if n == 0 {
		return nil
	}
	mean := sum.Div(decimal.NewFromInt(n)).Round(2).InexactFloat64()
	return &mean
}

type weightedSum struct {
	price  decimal.Decimal
	weight decimal.Decimal
}

// BuyerPricing computes weighted prices per category over the buyer's sales:
// total final price divided by total exit weight. Rows with a non-positive or
// missing weight or price count towards HeadCount only. Rows whose animal does
// not resolve are grouped under the uncategorized bucket.
func BuyerPricing(r *Reconciled, buyerID string) models.BuyerPricing {
	out := models.BuyerPricing{
		BuyerID:    buyerID,
		BuyerName:  r.BuyerName(buyerID),
		Categories: make(map[models.Category]float64),
	}

	saleIDs := make(map[string]struct{})
	for _, s := range r.Sales {
		if s.BuyerID == buyerID {
			saleIDs[s.ID] = struct{}{}
		}
	}
	out.SalesCount = len(saleIDs)

	sums := make(map[models.Category]*weightedSum)
	for _, det := range r.Details {
		if _, ok := saleIDs[det.SaleID]; !ok {
			continue
		}
		out.HeadCount++

		weight, price, ok := det.Priced()
		if !ok {
			continue
		}
		out.PricedHeadCount++

		category := models.CategoryUncategorized
		if animal, found := r.Animal(det.AnimalID); found {
			category = animal.Category
		}
		acc, exists := sums[category]
		if !exists {
			acc = &weightedSum{price: decimal.Zero, weight: decimal.Zero}
			sums[category] = acc
		}
		acc.price = acc.price.Add(decimal.NewFromFloat(price))
		acc.weight = acc.weight.Add(decimal.NewFromFloat(weight))
	}

	for category, acc := range sums {
		out.Categories[category] = acc.price.Div(acc.weight).Round(2).InexactFloat64()
	}
	out.Summary = summarize(out.Categories)
	return out
}

// summarize walks categories in name order so ties resolve deterministically.
func summarize(prices map[models.Category]float64) *models.PricingSummary {
	if len(prices) == 0 {
		return nil
	}

	categories := make([]models.Category, 0, len(prices))
	for c := range prices {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	first := categories[0]
	s := &models.PricingSummary{
		MaxPrice:    prices[first],
		MaxCategory: first,
		MinPrice:    prices[first],
		MinCategory: first,
	}
	total := decimal.Zero
	for _, c := range categories {
		p := prices[c]
		total = total.Add(decimal.NewFromFloat(p))
		if p > s.MaxPrice {
			s.MaxPrice, s.MaxCategory = p, c
		}
		if p < s.MinPrice {
			s.MinPrice, s.MinCategory = p, c
		}
	}
	s.MeanPrice = total.Div(decimal.NewFromInt(int64(len(categories)))).Round(2).InexactFloat64()
	return s
}
