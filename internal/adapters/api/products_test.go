package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaldes/invctl/internal/domain"
)

func newProductsClient(t *testing.T, handler http.Handler) *ProductsClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, server.Client(), zerolog.Nop())
	require.NoError(t, err)
	return NewProductsClient(client)
}

func TestProductsListAppliesFilterQuery(t *testing.T) {
	t.Parallel()

	var gotQuery string
	client := newProductsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products", r.URL.Path)
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "p1", "sku": "A-1", "name": "Anchor bolt", "categoryId": "c1", "stock": 3, "minStock": 10, "active": true},
		})
	}))

	products, err := client.List(context.Background(), ProductFilter{
		CategoryID: "c1",
		LowStock:   true,
		Search:     "bolt",
	})
	require.NoError(t, err)

	assert.Equal(t, "categoryId=c1&lowStock=true&search=bolt", gotQuery)
	require.Len(t, products, 1)
	assert.Equal(t, domain.ProductID("p1"), products[0].ID)
	assert.True(t, products[0].LowStock())
}

func TestProductsGetMapsNotFound(t *testing.T) {
	t.Parallel()

	client := newProductsClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "no such product"})
	}))

	_, err := client.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductsCreateRoundTripsSchema(t *testing.T) {
	t.Parallel()

	client := newProductsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "A-1", payload["sku"])

		payload["id"] = "p-new"
		_ = json.NewEncoder(w).Encode(payload)
	}))

	created, err := client.Create(context.Background(), domain.Product{
		SKU:        "A-1",
		Name:       "Anchor bolt",
		CategoryID: "c1",
		UnitPrice:  2.5,
		Stock:      100,
		MinStock:   10,
		Active:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ProductID("p-new"), created.ID)
	assert.Equal(t, 2.5, created.UnitPrice)
}

func TestProductsUpdateSendsPutWithFullSchema(t *testing.T) {
	t.Parallel()

	client := newProductsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/products/p1", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "p1", payload["id"])
		require.Equal(t, "A-1", payload["sku"])
		require.Equal(t, float64(25), payload["stock"])

		_ = json.NewEncoder(w).Encode(payload)
	}))

	updated, err := client.Update(context.Background(), domain.Product{
		ID:         "p1",
		SKU:        "A-1",
		Name:       "Anchor bolt",
		CategoryID: "c1",
		UnitPrice:  2.75,
		Stock:      25,
		MinStock:   10,
		Active:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ProductID("p1"), updated.ID)
	assert.Equal(t, 2.75, updated.UnitPrice)
	assert.Equal(t, int64(25), updated.Stock)
	assert.True(t, updated.Active)
}

func TestProductsDeleteUsesEscapedPath(t *testing.T) {
	t.Parallel()

	var gotPath string
	client := newProductsClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.Delete(context.Background(), "p 1"))
	assert.Equal(t, "/api/products/p%201", gotPath)
}
