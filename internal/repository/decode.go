package repository

import (
	"github.com/mamadbah2/ganadero/internal/domain/models"
	"github.com/mamadbah2/ganadero/internal/repository/record"
)

// Decoders turn raw records into entities. A record without an id is rejected;
// any other malformed field decodes to its zero/nil value so that statistics
// needing the field can exclude the row while counts keep it.

// DecodeAnimal decodes an animales record.
func DecodeAnimal(r record.Record) (models.Animal, bool) {
	id := r.String(FieldID)
	if id == "" {
		return models.Animal{}, false
	}
	return models.Animal{
		ID:            id,
		Tag:           r.String(FieldTag),
		Category:      models.ParseCategory(r.String(FieldCategory)),
		PhysicalState: models.ParsePhysicalState(r.String(FieldPhysicalState)),
		Lifecycle:     models.ParseLifecycleState(r.String(FieldLifecycle)),
		EntryDate:     r.TimePtr(FieldEntryDate),
		EntryWeight:   r.FloatPtr(FieldEntryWeight),
		PurchasePrice: r.FloatPtr(FieldPurchasePrice),
		SupplierID:    r.String(FieldSupplierID),
		PurchaseID:    r.String(FieldPurchaseID),
	}, true
}

// DecodePurchase decodes a compras record.
func DecodePurchase(r record.Record) (models.Purchase, bool) {
	id := r.String(FieldID)
	if id == "" {
		return models.Purchase{}, false
	}
	return models.Purchase{
		ID:            id,
		Date:          r.TimePtr(FieldDate),
		TotalPrice:    r.FloatPtr(FieldTotalPrice),
		SupplierID:    r.String(FieldSupplierID),
		TransporterID: r.String(FieldTransporterID),
	}, true
}

// DecodeSale decodes a ventas record.
func DecodeSale(r record.Record) (models.Sale, bool) {
	id := r.String(FieldID)
	if id == "" {
		return models.Sale{}, false
	}
	return models.Sale{
		ID:        id,
		Date:      r.TimePtr(FieldDate),
		Kind:      r.String(FieldSaleKind),
		UnitPrice: r.FloatPtr(FieldUnitPrice),
		BuyerID:   r.String(FieldBuyerID),
	}, true
}

// DecodeSaleDetail decodes a detalle_ventas record.
func DecodeSaleDetail(r record.Record) (models.SaleDetail, bool) {
	id := r.String(FieldID)
	if id == "" {
		return models.SaleDetail{}, false
	}
	return models.SaleDetail{
		ID:         id,
		SaleID:     r.String(FieldSaleID),
		AnimalID:   r.String(FieldAnimalID),
		ExitWeight: r.FloatPtr(FieldExitWeight),
		FinalPrice: r.FloatPtr(FieldFinalPrice),
	}, true
}

// DecodeHealthEvent decodes an eventos_sanitarios record.
func DecodeHealthEvent(r record.Record) (models.HealthEvent, bool) {
	id := r.String(FieldID)
	if id == "" {
		return models.HealthEvent{}, false
	}
	return models.HealthEvent{
		ID:          id,
		Date:        r.TimePtr(FieldDate),
		Type:        r.String(FieldEventType),
		AnimalID:    r.String(FieldAnimalID),
		Description: r.String(FieldDescription),
	}, true
}

// DecodeBuyer decodes a compradores record.
func DecodeBuyer(r record.Record) (models.Buyer, bool) {
	id := r.String(FieldID)
	if id == "" {
		return models.Buyer{}, false
	}
	return models.Buyer{
		ID:      id,
		Name:    r.String(FieldName),
		Contact: r.String(FieldContact),
		TaxID:   r.String(FieldTaxID),
	}, true
}

// DecodeSupplier decodes a proveedores record.
func DecodeSupplier(r record.Record) (models.Supplier, bool) {
	id := r.String(FieldID)
	if id == "" {
		return models.Supplier{}, false
	}
	return models.Supplier{
		ID:      id,
		Name:    r.String(FieldName),
		Contact: r.String(FieldContact),
		TaxID:   r.String(FieldTaxID),
	}, true
}
