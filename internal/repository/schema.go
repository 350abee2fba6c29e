package repository

import (
	"fmt"
	"slices"
)

// Collection names a logical record set in the store. Values are the storage
// names shared with the CRUD application.
type Collection string

const (
	CollectionAnimals      Collection = "animales"
	CollectionPurchases    Collection = "compras"
	CollectionSales        Collection = "ventas"
	CollectionSaleDetails  Collection = "detalle_ventas"
	CollectionHealthEvents Collection = "eventos_sanitarios"
	CollectionBuyers       Collection = "compradores"
	CollectionSuppliers    Collection = "proveedores"
)

// Storage field names.
const (
	FieldID            = "id"
	FieldTag           = "caravana"
	FieldCategory      = "categoria"
	FieldPhysicalState = "estado_fisico"
	FieldLifecycle     = "estado"
	FieldEntryDate     = "fecha_ingreso"
	FieldEntryWeight   = "peso_ingreso"
	FieldPurchasePrice = "precio_compra"
	FieldSupplierID    = "proveedor_id"
	FieldPurchaseID    = "compra_id"
	FieldDate          = "fecha"
	FieldTotalPrice    = "precio_total"
	FieldTransporterID = "transportista_id"
	FieldSaleKind      = "tipo_venta"
	FieldUnitPrice     = "precio_unitario"
	FieldBuyerID       = "comprador_id"
	FieldSaleID        = "venta_id"
	FieldAnimalID      = "animal_id"
	FieldExitWeight    = "peso_salida"
	FieldFinalPrice    = "precio_final"
	FieldEventType     = "tipo"
	FieldDescription   = "descripcion"
	FieldName          = "nombre"
	FieldContact       = "contacto"
	FieldTaxID         = "cuit"
)

// Schema describes the readable fields of a collection. DateField is empty for
// collections without a natural ordering date.
type Schema struct {
	Collection Collection
	DateField  string
	Fields     []string
}

var schemas = map[Collection]Schema{
	CollectionAnimals: {
		Collection: CollectionAnimals,
		DateField:  FieldEntryDate,
		Fields: []string{FieldID, FieldTag, FieldCategory, FieldPhysicalState, FieldLifecycle,
			FieldEntryDate, FieldEntryWeight, FieldPurchasePrice, FieldSupplierID, FieldPurchaseID},
	},
	CollectionPurchases: {
		Collection: CollectionPurchases,
		DateField:  FieldDate,
		Fields:     []string{FieldID, FieldDate, FieldTotalPrice, FieldSupplierID, FieldTransporterID},
	},
	CollectionSales: {
		Collection: CollectionSales,
		DateField:  FieldDate,
		Fields:     []string{FieldID, FieldDate, FieldSaleKind, FieldUnitPrice, FieldBuyerID},
	},
	CollectionSaleDetails: {
		Collection: CollectionSaleDetails,
		Fields:     []string{FieldID, FieldSaleID, FieldAnimalID, FieldExitWeight, FieldFinalPrice},
	},
	CollectionHealthEvents: {
		Collection: CollectionHealthEvents,
		DateField:  FieldDate,
		Fields:     []string{FieldID, FieldDate, FieldEventType, FieldAnimalID, FieldDescription},
	},
	CollectionBuyers: {
		Collection: CollectionBuyers,
		Fields:     []string{FieldID, FieldName, FieldContact, FieldTaxID},
	},
	CollectionSuppliers: {
		Collection: CollectionSuppliers,
		Fields:     []string{FieldID, FieldName, FieldContact, FieldTaxID},
	},
}

// SchemaFor returns the schema of a known collection.
func SchemaFor(c Collection) (Schema, error) {
	s, ok := schemas[c]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
	return s, nil
}

// Collections lists every collection the engine reads, in a stable order.
func Collections() []Collection {
	return []Collection{
		CollectionAnimals,
		CollectionPurchases,
		CollectionSales,
		CollectionSaleDetails,
		CollectionHealthEvents,
		CollectionBuyers,
		CollectionSuppliers,
	}
}

// HasField reports whether field is readable on the collection.
func (s Schema) HasField(field string) bool {
	return slices.Contains(s.Fields, field)
}
