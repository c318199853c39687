package product

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_UnmarshalIDForms(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"mongo string id", `{"_id":"abc123","name":"Kettle","price":10}`, "abc123"},
		{"mongo numeric id", `{"_id":42,"name":"Kettle","price":10}`, "42"},
		{"plain numeric id", `{"id":7,"name":"Kettle","price":10}`, "7"},
		{"plain string id", `{"id":"p1","name":"Kettle","price":10}`, "p1"},
		{"mongo id wins", `{"_id":"m","id":"p","name":"Kettle"}`, "m"},
		{"null id", `{"_id":null,"name":"Kettle"}`, ""},
		{"missing id", `{"name":"Kettle"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Product
			require.NoError(t, json.Unmarshal([]byte(tt.json), &p))
			assert.Equal(t, tt.want, p.ID)
		})
	}
}

func TestProduct_UnmarshalCategoryObjects(t *testing.T) {
	var p Product
	err := json.Unmarshal([]byte(`{
		"_id":"1","name":"Pan","price":"12.5",
		"category":{"_id":"c1","name":"Kitchen"},
		"subcategory":{"name":"Cookware"},
		"images":["a.png"],"stock":3
	}`), &p)
	require.NoError(t, err)

	assert.Equal(t, "Kitchen", p.Category)
	assert.Equal(t, "Cookware", p.SubCategory)
	assert.InDelta(t, 12.5, p.Price, 0.0001)
	assert.Equal(t, 3, p.Stock)
	assert.True(t, p.Available())
}

func TestProduct_MarshalWritesCanonicalID(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"x9","name":"Mug","price":4}`), &p))

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"x9"`)
	assert.NotContains(t, string(data), `"_id"`)

	var again Product
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, p, again)
}

func TestProduct_Pricing(t *testing.T) {
	tests := []struct {
		name      string
		p         Product
		effective float64
		list      float64
		percent   int
	}{
		{"plain", Product{Price: 100}, 100, 100, 0},
		{"discounted", Product{Price: 100, PriceAfterDiscount: 80}, 80, 100, 20},
		{"discount not lower", Product{Price: 100, PriceAfterDiscount: 120}, 100, 100, 0},
		{"original price above price", Product{Price: 75, OriginalPrice: 100}, 75, 100, 25},
		{"zero discount ignored", Product{Price: 50, PriceAfterDiscount: 0}, 50, 50, 0},
		// the sale flag never charges originalPrice; it only raises the list price
		{"on sale with original price", Product{Price: 75, OriginalPrice: 100, IsOnSale: true}, 75, 100, 25},
		{"on sale with original and discount", Product{Price: 100, OriginalPrice: 120, PriceAfterDiscount: 90, IsOnSale: true}, 90, 120, 25},
		{"sale flag alone", Product{Price: 40, IsOnSale: true}, 40, 40, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.effective, tt.p.EffectivePrice(), 0.0001)
			assert.InDelta(t, tt.list, tt.p.ListPrice(), 0.0001)
			assert.Equal(t, tt.percent, tt.p.DiscountPercent())
		})
	}
}

func TestProduct_Validate(t *testing.T) {
	assert.ErrorIs(t, Product{Name: "x"}.Validate(), ErrMissingID)
	assert.ErrorIs(t, Product{ID: "  "}.Validate(), ErrMissingID)
	assert.NoError(t, Product{ID: "1"}.Validate())

	_, err := Decode([]byte(`{"name":"no id"}`))
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestProduct_CloneDoesNotAlias(t *testing.T) {
	in := true
	p := Product{ID: "1", Images: []string{"a"}, InStock: &in}
	c := p.Clone()
	c.Images[0] = "b"
	*c.InStock = false

	assert.Equal(t, "a", p.Images[0])
	assert.True(t, *p.InStock)
}
