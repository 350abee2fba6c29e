package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/ganadero/internal/domain/models"
	"github.com/mamadbah2/ganadero/internal/repository/record"
)

// Store exposes typed reads over a Gateway.
type Store struct {
	gateway Gateway
	logger  *zap.Logger
}

// NewStore wraps a gateway with entity decoding.
func NewStore(gateway Gateway, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{gateway: gateway, logger: logger}
}

// Animals reads the animales collection.
func (s *Store) Animals(ctx context.Context, q Query) ([]models.Animal, error) {
	return fetch(ctx, s, CollectionAnimals, q, DecodeAnimal)
}

// Purchases reads the compras collection.
func (s *Store) Purchases(ctx context.Context, q Query) ([]models.Purchase, error) {
	return fetch(ctx, s, CollectionPurchases, q, DecodePurchase)
}

// Sales reads the ventas collection.
func (s *Store) Sales(ctx context.Context, q Query) ([]models.Sale, error) {
	return fetch(ctx, s, CollectionSales, q, DecodeSale)
}

// SaleDetails reads the detalle_ventas collection.
func (s *Store) SaleDetails(ctx context.Context, q Query) ([]models.SaleDetail, error) {
	return fetch(ctx, s, CollectionSaleDetails, q, DecodeSaleDetail)
}

// HealthEvents reads the eventos_sanitarios collection.
func (s *Store) HealthEvents(ctx context.Context, q Query) ([]models.HealthEvent, error) {
	return fetch(ctx, s, CollectionHealthEvents, q, DecodeHealthEvent)
}

// Buyers reads the compradores collection.
func (s *Store) Buyers(ctx context.Context, q Query) ([]models.Buyer, error) {
	return fetch(ctx, s, CollectionBuyers, q, DecodeBuyer)
}

// Suppliers reads the proveedores collection.
func (s *Store) Suppliers(ctx context.Context, q Query) ([]models.Supplier, error) {
	return fetch(ctx, s, CollectionSuppliers, q, DecodeSupplier)
}

func fetch[T any](ctx context.Context, s *Store, c Collection, q Query, decode func(record.Record) (T, bool)) ([]T, error) {
	schema, err := SchemaFor(c)
	if err != nil {
		return nil, err
	}
	if err := q.Validate(schema); err != nil {
		return nil, err
	}

	rows, err := s.gateway.Fetch(ctx, c, q)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c, err)
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		item, ok := decode(row)
		if !ok {
			s.logger.Debug("skip record without id", zap.String("collection", string(c)), zap.Any("record", row))
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
