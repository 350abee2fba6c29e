package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/ganadero/internal/config"
	"github.com/mamadbah2/ganadero/internal/repository"
)

func TestFetchBuildsPostgrestQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/ventas", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, "*", q.Get("select"))
		assert.Equal(t, "eq.b1", q.Get("comprador_id"))
		assert.Equal(t, "fecha.desc.nullslast", q.Get("order"))
		assert.Equal(t, "5", q.Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"s1","fecha":"2024-04-01","precio_unitario":2.75,"comprador_id":"b1"}]`))
	}))
	defer srv.Close()

	gw := NewGateway(config.RESTConfig{BaseURL: srv.URL + "/", APIKey: "secret"}, nil)
	rows, err := gw.Fetch(context.Background(), repository.CollectionSales, repository.Latest(5).Where(repository.FieldBuyerID, "b1"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	price, ok := rows[0].Float(repository.FieldUnitPrice)
	require.True(t, ok)
	assert.Equal(t, 2.75, price)
}

func TestFetchReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"42P01","message":"relation does not exist"}`))
	}))
	defer srv.Close()

	gw := NewGateway(config.RESTConfig{BaseURL: srv.URL}, nil)
	_, err := gw.Fetch(context.Background(), repository.CollectionAnimals, repository.Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "42P01")
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	gw := NewGateway(config.RESTConfig{BaseURL: srv.URL, RetryCount: 2}, nil)
	rows, err := gw.Fetch(context.Background(), repository.CollectionBuyers, repository.Query{})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestQueryParamsDefaults(t *testing.T) {
	schema, err := repository.SchemaFor(repository.CollectionAnimals)
	require.NoError(t, err)

	params := queryParams(schema, repository.Query{})
	assert.Equal(t, map[string][]string{"select": {"*"}}, params)
}
