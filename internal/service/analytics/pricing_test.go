package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/ganadero/internal/domain/models"
)

func pricingDataset() Dataset {
	return Dataset{
		Animals: []models.Animal{
			{ID: "n1", Category: models.CategoryNovillo},
			{ID: "n2", Category: models.CategoryNovillo},
			{ID: "v1", Category: models.CategoryVaca},
			{ID: "t1", Category: models.CategoryToro},
		},
		Sales: []models.Sale{
			{ID: "s1", BuyerID: "b1"},
			{ID: "s2", BuyerID: "b1"},
			{ID: "s3", BuyerID: "b2"},
		},
		SaleDetails: []models.SaleDetail{
			detail("d1", "s1", "n1", num(100), num(300)),
			detail("d2", "s2", "n2", num(400), num(800)),
			detail("d3", "s1", "v1", num(0), num(900)),
			detail("d4", "s2", "v1", nil, num(500)),
			detail("d5", "s2", "ghost", num(200), num(500)),
			detail("d6", "s3", "t1", num(500), num(1500)),
		},
		Buyers: []models.Buyer{{ID: "b1", Name: "Frigorifico Sur"}},
	}
}

func TestBuyerPricingIsWeightedNotNaive(t *testing.T) {
	p := BuyerPricing(Reconcile(pricingDataset()), "b1")

	naive := (300.0/100.0 + 800.0/400.0) / 2
	require.Contains(t, p.Categories, models.CategoryNovillo)
	assert.Equal(t, 2.2, p.Categories[models.CategoryNovillo])
	assert.NotEqual(t, naive, p.Categories[models.CategoryNovillo])
}

func TestBuyerPricingOmitsCategoriesWithOnlyInvalidRows(t *testing.T) {
	p := BuyerPricing(Reconcile(pricingDataset()), "b1")

	assert.NotContains(t, p.Categories, models.CategoryVaca)
	assert.NotContains(t, p.Categories, models.CategoryToro)
	assert.Equal(t, 2.5, p.Categories[models.CategoryUncategorized])

	assert.Equal(t, "Frigorifico Sur", p.BuyerName)
	assert.Equal(t, 2, p.SalesCount)
	assert.Equal(t, 5, p.HeadCount)
	assert.Equal(t, 3, p.PricedHeadCount)
}

func TestBuyerPricingSummary(t *testing.T) {
	p := BuyerPricing(Reconcile(pricingDataset()), "b1")

	require.NotNil(t, p.Summary)
	assert.Equal(t, 2.5, p.Summary.MaxPrice)
	assert.Equal(t, models.CategoryUncategorized, p.Summary.MaxCategory)
	assert.Equal(t, 2.2, p.Summary.MinPrice)
	assert.Equal(t, models.CategoryNovillo, p.Summary.MinCategory)
	assert.Equal(t, 2.35, p.Summary.MeanPrice)
}

func TestBuyerPricingWithoutValidRows(t *testing.T) {
	d := Dataset{
		Animals:     []models.Animal{{ID: "v1", Category: models.CategoryVaca}},
		Sales:       []models.Sale{{ID: "s1", BuyerID: "b9"}},
		SaleDetails: []models.SaleDetail{detail("d1", "s1", "v1", num(-1), num(100))},
	}

	p := BuyerPricing(Reconcile(d), "b9")
	assert.Empty(t, p.Categories)
	assert.NotNil(t, p.Categories)
	assert.Nil(t, p.Summary)
	assert.Equal(t, 1, p.SalesCount)
	assert.Equal(t, 1, p.HeadCount)
	assert.Zero(t, p.PricedHeadCount)
	assert.Equal(t, UnknownBuyer, p.BuyerName)
}

func TestPriceDifferentialSimpleMean(t *testing.T) {
	d := Dataset{
		Animals: []models.Animal{
			{ID: "a1", PurchasePrice: num(2.5)},
			{ID: "a2", PurchasePrice: num(2.0)},
			{ID: "a3"},
		},
		Sales: []models.Sale{
			{ID: "s1", UnitPrice: num(3.0)},
			{ID: "s2"},
		},
		SaleDetails: []models.SaleDetail{
			detail("d1", "s1", "a1", nil, nil),
			detail("d2", "s1", "a2", nil, nil),
			detail("d3", "s1", "a3", nil, nil),
			detail("d4", "s2", "a1", nil, nil),
			detail("d5", "s1", "ghost", nil, nil),
			detail("d6", "missing", "a2", nil, nil),
		},
	}

	diff := PriceDifferential(Reconcile(d))
	require.NotNil(t, diff)
	assert.Equal(t, 0.75, *diff)
}

func TestPriceDifferentialAbsentWithoutQualifyingRows(t *testing.T) {
	assert.Nil(t, PriceDifferential(Reconcile(Dataset{})))
}
