package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{BaseURL: srv.URL + "/api", Logger: zerolog.Nop()})
	require.NoError(t, err)
	return c
}

func TestGetProduct(t *testing.T) {
	var gotPath, gotRequestID, gotAccept string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"abc","name":"Kettle","price":120,"priceAfterDiscount":99}}`))
	})

	p, err := c.GetProduct(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, "/api/products/abc", gotPath)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "abc", p.ID)
	assert.InDelta(t, 99.0, p.EffectivePrice(), 0.001)
}

func TestGetProduct_Cached(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path == "/api/products" {
			_, _ = w.Write([]byte(`{"success":true,"data":[{"_id":"abc","name":"Kettle","price":120}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"abc","name":"Kettle","price":120}}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{BaseURL: srv.URL + "/api", Logger: zerolog.Nop(), CacheTTL: time.Minute})
	require.NoError(t, err)

	for range 3 {
		p, err := c.GetProduct(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, "Kettle", p.Name)
	}
	assert.Equal(t, 1, calls)

	_, err = c.Products(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "listings are not cached")
}

func TestGetProduct_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "status 404",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
		{
			name: "unsuccessful envelope",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"success":false,"message":"missing"}`))
			},
		},
		{
			name: "null data",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"success":true,"data":null}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.GetProduct(context.Background(), "nope")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestGetProduct_EmptyID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := c.GetProduct(context.Background(), "  ")
	require.Error(t, err)
}

func TestList_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"bare array", `[{"id":1,"name":"a","price":1},{"id":2,"name":"b","price":2}]`, []string{"1", "2"}},
		{"data array", `{"success":true,"data":[{"_id":"x","name":"a","price":1}]}`, []string{"x"}},
		{"paged", `{"success":true,"data":{"products":[{"_id":"p","name":"a","price":1}],"total":1}}`, []string{"p"}},
		{"unsuccessful", `{"success":false}`, []string{}},
		{"invalid entries dropped", `[{"name":"no id"},{"id":"ok","name":"b","price":2}]`, []string{"ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := c.Products(context.Background())
			require.NoError(t, err)

			ids := make([]string, 0, len(got))
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestEndpoints(t *testing.T) {
	var gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		_, _ = w.Write([]byte(`[]`))
	})
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		path string
	}{
		{"search", func() error { _, err := c.Search(ctx, "glass cleaner"); return err }, "/api/products/search"},
		{"category", func() error { _, err := c.ByCategory(ctx, "منظفات"); return err }, "/api/products/category/منظفات"},
		{"featured", func() error { _, err := c.Featured(ctx); return err }, "/api/products/featured"},
		{"bestsellers", func() error { _, err := c.BestSellers(ctx); return err }, "/api/products/bestsellers"},
		{"onsale", func() error { _, err := c.OnSale(ctx); return err }, "/api/products/onsale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())
			assert.Equal(t, tt.path, gotPath)
		})
	}

	_, err := c.Search(ctx, "glass cleaner")
	require.NoError(t, err)
	assert.Equal(t, "glass cleaner", gotQuery)
}

func TestServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Featured(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestParseBaseURL(t *testing.T) {
	u, err := parseBaseURL("localhost:3000/api")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/api", u.String())

	_, err = parseBaseURL("")
	require.Error(t, err)
}
