package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/ganadero/internal/repository"
)

func TestBuildFind(t *testing.T) {
	schema, err := repository.SchemaFor(repository.CollectionSales)
	require.NoError(t, err)

	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	q := repository.Latest(5).Where(repository.FieldBuyerID, "b1")
	q.Since = &since

	filter, opts := buildFind(schema, q)
	require.Len(t, filter, 2)
	assert.Equal(t, bson.E{Key: "comprador_id", Value: "b1"}, filter[0])
	assert.Equal(t, "fecha", filter[1].Key)
	assert.Equal(t, bson.D{{Key: "$gte", Value: since}}, filter[1].Value)

	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(5), *opts.Limit)
	assert.Equal(t, bson.D{{Key: "fecha", Value: -1}, {Key: "_id", Value: -1}}, opts.Sort)
}

func TestBuildFindMatchesObjectIDs(t *testing.T) {
	schema, err := repository.SchemaFor(repository.CollectionBuyers)
	require.NoError(t, err)

	oid := primitive.NewObjectID()
	filter, opts := buildFind(schema, repository.Query{}.Where(repository.FieldID, oid.Hex()))
	require.Len(t, filter, 1)
	assert.Equal(t, "_id", filter[0].Key)
	assert.Equal(t, bson.D{{Key: "$in", Value: bson.A{oid, oid.Hex()}}}, filter[0].Value)
	assert.Nil(t, opts.Sort)
	assert.Nil(t, opts.Limit)
}

func TestBuildFindMatchesObjectIDForeignKeys(t *testing.T) {
	schema, err := repository.SchemaFor(repository.CollectionSales)
	require.NoError(t, err)

	oid := primitive.NewObjectID()
	filter, _ := buildFind(schema, repository.Query{}.Where(repository.FieldBuyerID, oid.Hex()))
	require.Len(t, filter, 1)
	assert.Equal(t, "comprador_id", filter[0].Key)
	assert.Equal(t, bson.D{{Key: "$in", Value: bson.A{oid, oid.Hex()}}}, filter[0].Value)
}

func TestToRecordNormalizesBSONTypes(t *testing.T) {
	oid := primitive.NewObjectID()
	when := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	rec := toRecord(bson.M{
		"_id":           oid,
		"fecha_ingreso": primitive.NewDateTimeFromTime(when),
		"peso_ingreso":  int32(320),
		"compra_id":     "c1",
	})

	assert.Equal(t, oid.Hex(), rec.String(repository.FieldID))
	got, ok := rec.Time(repository.FieldEntryDate)
	require.True(t, ok)
	assert.True(t, got.Equal(when))
	w, ok := rec.Float(repository.FieldEntryWeight)
	require.True(t, ok)
	assert.Equal(t, 320.0, w)
	assert.Equal(t, "c1", rec.String(repository.FieldPurchaseID))
}
