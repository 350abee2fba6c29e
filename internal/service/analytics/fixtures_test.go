package analytics

import (
	"time"

	"github.com/mamadbah2/ganadero/internal/domain/models"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := fixedNow.Add(-time.Duration(n) * 24 * time.Hour)
	return &t
}

func num(v float64) *float64 { return &v }

func animal(id string, lifecycle models.LifecycleState, category models.Category, state models.PhysicalState, entered *time.Time) models.Animal {
	return models.Animal{
		ID:            id,
		Tag:           "AR-" + id,
		Category:      category,
		PhysicalState: state,
		Lifecycle:     lifecycle,
		EntryDate:     entered,
	}
}

func detail(id, saleID, animalID string, weight, price *float64) models.SaleDetail {
	return models.SaleDetail{ID: id, SaleID: saleID, AnimalID: animalID, ExitWeight: weight, FinalPrice: price}
}
