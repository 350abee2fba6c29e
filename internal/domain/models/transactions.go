package models

import "time"

// Purchase records a batch of animals bought from a supplier.
type Purchase struct {
	ID            string
	Date          *time.Time
	TotalPrice    *float64
	SupplierID    string
	TransporterID string
}

// Sale records animals sold to a buyer. UnitPrice is per kilogram.
type Sale struct {
	ID        string
	Date      *time.Time
	Kind      string
	UnitPrice *float64
	BuyerID   string
}

// SaleDetail is one animal's line-item within a sale.
type SaleDetail struct {
	ID         string
	SaleID     string
	AnimalID   string
	ExitWeight *float64
	FinalPrice *float64
}

// Priced returns the exit weight and final price when both are strictly
// positive. Rows failing the check still count towards head counts.
func (d SaleDetail) Priced() (weight, price float64, ok bool) {
	if d.ExitWeight == nil || d.FinalPrice == nil {
		return 0, 0, false
	}
	if *d.ExitWeight <= 0 || *d.FinalPrice <= 0 {
		return 0, 0, false
	}
	return *d.ExitWeight, *d.FinalPrice, true
}

// HealthEvent captures a sanitary event (vaccination, treatment, ...) on an animal.
type HealthEvent struct {
	ID          string
	Date        *time.Time
	Type        string
	AnimalID    string
	Description string
}
