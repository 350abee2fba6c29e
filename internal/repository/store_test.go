package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/ganadero/internal/domain/models"
	"github.com/mamadbah2/ganadero/internal/metrics"
	"github.com/mamadbah2/ganadero/internal/repository/record"
)

func staticGateway(rows map[Collection][]record.Record) Gateway {
	return GatewayFunc(func(_ context.Context, c Collection, q Query) ([]record.Record, error) {
		schema, err := SchemaFor(c)
		if err != nil {
			return nil, err
		}
		return ApplyInMemory(schema, rows[c], q), nil
	})
}

func TestStoreAnimalsDecodesAndSkipsRowsWithoutID(t *testing.T) {
	gw := staticGateway(map[Collection][]record.Record{
		CollectionAnimals: {
			{"id": "a1", "caravana": "AR-001", "categoria": "Novillo", "estado_fisico": "malo", "estado": "en_campo",
				"fecha_ingreso": "2024-01-10", "peso_ingreso": "310,5", "precio_compra": 2.1},
			{"categoria": "vaca"},
			{"id": int64(7), "categoria": "bufalo", "estado": "VENDIDO", "fecha_ingreso": "not a date"},
		},
	})
	store := NewStore(gw, nil)

	animals, err := store.Animals(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, animals, 2)

	first := animals[0]
	assert.Equal(t, "a1", first.ID)
	assert.Equal(t, "AR-001", first.Label())
	assert.Equal(t, models.CategoryNovillo, first.Category)
	assert.Equal(t, models.PhysicalPoor, first.PhysicalState)
	assert.Equal(t, models.LifecycleInField, first.Lifecycle)
	require.NotNil(t, first.EntryWeight)
	assert.InDelta(t, 310.5, *first.EntryWeight, 1e-9)
	require.NotNil(t, first.EntryDate)

	second := animals[1]
	assert.Equal(t, "7", second.ID)
	assert.Equal(t, "7", second.Label())
	assert.Equal(t, models.CategoryOther, second.Category)
	assert.Equal(t, models.LifecycleSold, second.Lifecycle)
	assert.Equal(t, models.PhysicalUnknown, second.PhysicalState)
	assert.Nil(t, second.EntryDate)
	assert.Nil(t, second.PurchasePrice)
}

func TestStoreRejectsUnknownFilterField(t *testing.T) {
	called := false
	gw := GatewayFunc(func(context.Context, Collection, Query) ([]record.Record, error) {
		called = true
		return nil, nil
	})

	_, err := NewStore(gw, nil).Sales(context.Background(), Query{}.Where("precio; DROP TABLE", "1"))
	require.ErrorIs(t, err, ErrUnknownField)
	assert.False(t, called)
}

func TestStoreWrapsGatewayErrors(t *testing.T) {
	boom := errors.New("connection reset")
	gw := GatewayFunc(func(context.Context, Collection, Query) ([]record.Record, error) {
		return nil, boom
	})

	_, err := NewStore(gw, nil).HealthEvents(context.Background(), Latest(5))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "eventos_sanitarios")
}

func TestStoreSaleDetailsKeepsInvalidPricing(t *testing.T) {
	gw := staticGateway(map[Collection][]record.Record{
		CollectionSaleDetails: {
			{"id": "d1", "venta_id": "s1", "animal_id": "a1", "peso_salida": 0, "precio_final": 1000},
			{"id": "d2", "venta_id": "s1", "animal_id": "a2", "peso_salida": 400, "precio_final": 1200},
		},
	})

	details, err := NewStore(gw, nil).SaleDetails(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, details, 2)

	_, _, ok := details[0].Priced()
	assert.False(t, ok)
	w, p, ok := details[1].Priced()
	assert.True(t, ok)
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 1200.0, p)
}

func TestQueryValidateRange(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	buyers, err := SchemaFor(CollectionBuyers)
	require.NoError(t, err)
	assert.ErrorIs(t, Query{Since: &since}.Validate(buyers), ErrUnknownField)

	sales, err := SchemaFor(CollectionSales)
	require.NoError(t, err)
	assert.NoError(t, Query{Since: &since}.Validate(sales))
	assert.Error(t, Query{Limit: -1}.Validate(sales))

	_, err = SchemaFor("corrales")
	assert.ErrorIs(t, err, ErrUnknownCollection)
}

func TestQueryKeyIsOrderIndependent(t *testing.T) {
	a := Query{}.Where(FieldBuyerID, "b1").Where(FieldSaleKind, "faena")
	b := Query{}.Where(FieldSaleKind, "faena").Where(FieldBuyerID, "b1")
	assert.Equal(t, a.Key(), b.Key())

	latest := Latest(5)
	assert.Equal(t, "order=desc&limit=5", latest.Key())
}

func TestApplyInMemory(t *testing.T) {
	schema, err := SchemaFor(CollectionSales)
	require.NoError(t, err)

	rows := []record.Record{
		{"id": "s1", "fecha": "2024-01-01", "comprador_id": "b1"},
		{"id": "s2", "fecha": "2024-03-01", "comprador_id": "b2"},
		{"id": "s3", "fecha": "bad", "comprador_id": "b1"},
		{"id": "s4", "fecha": "2024-02-01", "comprador_id": "b1"},
	}

	got := ApplyInMemory(schema, rows, Query{NewestFirst: true, Limit: 2}.Where(FieldBuyerID, "b1"))
	require.Len(t, got, 2)
	assert.Equal(t, "s4", got[0].String("id"))
	assert.Equal(t, "s1", got[1].String("id"))

	since := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	ranged := ApplyInMemory(schema, rows, Query{Since: &since})
	require.Len(t, ranged, 2)
	assert.Equal(t, "s2", ranged[0].String("id"))
	assert.Equal(t, "s4", ranged[1].String("id"))
}

func TestInstrumentedAppliesTimeout(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	next := GatewayFunc(func(ctx context.Context, _ Collection, _ Query) ([]record.Record, error) {
		deadline, hasDeadline = ctx.Deadline()
		return []record.Record{{"id": "1"}}, nil
	})

	rec, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	gw := NewInstrumented(next, 2*time.Second, rec, nil)
	rows, err := gw.Fetch(context.Background(), CollectionBuyers, Query{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(2*time.Second), deadline, time.Second)
}

func TestInstrumentedPropagatesErrors(t *testing.T) {
	boom := errors.New("unavailable")
	next := GatewayFunc(func(context.Context, Collection, Query) ([]record.Record, error) {
		return nil, boom
	})

	_, err := NewInstrumented(next, 0, nil, nil).Fetch(context.Background(), CollectionAnimals, Query{})
	assert.ErrorIs(t, err, boom)
}
