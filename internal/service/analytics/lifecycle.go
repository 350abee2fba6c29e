package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/ganadero/internal/domain/models"
)

// Classification is the lifecycle partition of the herd.
type Classification struct {
	InField          int
	Sold             int
	Critical         int
	AvgResidencyDays *float64
	Distribution     map[models.Category]int
}

// Classify partitions animals by lifecycle state. Critical is a subset of
// in-field. Animals in an unknown lifecycle state count in neither partition.
// Residency averages whole days over in-field animals whose entry date is
// known and not after now.
func Classify(animals []models.Animal, now time.Time) Classification {
	c := Classification{Distribution: make(map[models.Category]int)}

	var residencyTotal int64
	var residencyCount int64
	for _, a := range animals {
		switch a.Lifecycle {
		case models.LifecycleSold:
			c.Sold++
			continue
		case models.LifecycleInField:
		default:
			continue
		}

		c.InField++
		c.Distribution[a.Category]++
		if a.PhysicalState.NeedsAttention() {
			c.Critical++
		}

		if days, ok := residencyDays(a.EntryDate, now); ok {
			residencyTotal += days
			residencyCount++
		}
	}

	if residencyCount > 0 {
		avg := decimal.NewFromInt(residencyTotal).
			Div(decimal.NewFromInt(residencyCount)).
			Round(2).
			InexactFloat64()
		c.AvgResidencyDays = &avg
	}
	return c
}

func residencyDays(entry *time.Time, now time.Time) (int64, bool) {
	if entry == nil || entry.After(now) {
		return 0, false
	}
	return int64(now.Sub(*entry) / (24 * time.Hour)), true
}
