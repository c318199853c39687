// Package product defines the canonical product snapshot stored by the cart
// and wishlist.
package product

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingID is returned when a product has no usable identifier.
var ErrMissingID = errors.New("product id is required")

// Product is a copy of catalog fields captured when the product was added to
// a collection. It is never kept in sync with the catalog afterwards.
type Product struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	Price              float64  `json:"price"`
	OriginalPrice      float64  `json:"originalPrice,omitempty"`
	PriceAfterDiscount float64  `json:"priceAfterDiscount,omitempty"`
	DiscountPercentage float64  `json:"discountPercentage,omitempty"`
	Discount           float64  `json:"discount,omitempty"`
	IsOnSale           bool     `json:"isOnSale,omitempty"`
	Stock              int      `json:"stock,omitempty"`
	InStock            *bool    `json:"inStock,omitempty"`
	Image              string   `json:"image,omitempty"`
	Images             []string `json:"images,omitempty"`
	Brand              string   `json:"brand,omitempty"`
	Category           string   `json:"category,omitempty"`
	SubCategory        string   `json:"subCategory,omitempty"`
	Rating             float64  `json:"rating,omitempty"`
	Reviews            int      `json:"reviews,omitempty"`
}

// wire accepts every identifier and category spelling the catalog API and
// older persisted data use.
type wire struct {
	MongoID            json.RawMessage `json:"_id"`
	ID                 json.RawMessage `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              json.Number     `json:"price"`
	OriginalPrice      json.Number     `json:"originalPrice"`
	PriceAfterDiscount json.Number     `json:"priceAfterDiscount"`
	DiscountPercentage json.Number     `json:"discountPercentage"`
	Discount           json.Number     `json:"discount"`
	IsOnSale           bool            `json:"isOnSale"`
	Stock              json.Number     `json:"stock"`
	InStock            *bool           `json:"inStock"`
	Image              string          `json:"image"`
	Images             []string        `json:"images"`
	Brand              string          `json:"brand"`
	Category           json.RawMessage `json:"category"`
	SubCategory        json.RawMessage `json:"subCategory"`
	SubCategoryLower   json.RawMessage `json:"subcategory"`
	Rating             json.Number     `json:"rating"`
	Reviews            json.Number     `json:"reviews"`
}

// UnmarshalJSON normalizes "_id" (string or number) and "id" into ID,
// preferring "_id". Category fields may be plain strings or objects with a
// name.
func (p *Product) UnmarshalJSON(data []byte) error {
	var w wire
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return err
	}

	id := rawID(w.MongoID)
	if id == "" {
		id = rawID(w.ID)
	}

	sub := rawName(w.SubCategory)
	if sub == "" {
		sub = rawName(w.SubCategoryLower)
	}

	*p = Product{
		ID:                 id,
		Name:               w.Name,
		Description:        w.Description,
		Price:              num(w.Price),
		OriginalPrice:      num(w.OriginalPrice),
		PriceAfterDiscount: num(w.PriceAfterDiscount),
		DiscountPercentage: num(w.DiscountPercentage),
		Discount:           num(w.Discount),
		IsOnSale:           w.IsOnSale,
		Stock:              int(num(w.Stock)),
		InStock:            w.InStock,
		Image:              w.Image,
		Images:             w.Images,
		Brand:              w.Brand,
		Category:           rawName(w.Category),
		SubCategory:        sub,
		Rating:             num(w.Rating),
		Reviews:            int(num(w.Reviews)),
	}
	return nil
}

func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func rawName(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Name
	}
	return ""
}

func num(n json.Number) float64 {
	if n == "" {
		return 0
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0
	}
	return f
}

// Validate returns ErrMissingID when the product has no identifier.
func (p Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return ErrMissingID
	}
	return nil
}

// OnSale reports whether a discounted price applies.
func (p Product) OnSale() bool {
	return p.PriceAfterDiscount > 0 && p.PriceAfterDiscount < p.Price
}

// EffectivePrice is the unit price a shopper pays: the discounted price when
// one applies, else the list price.
func (p Product) EffectivePrice() float64 {
	if p.OnSale() {
		return p.PriceAfterDiscount
	}
	return p.Price
}

// ListPrice is the undiscounted unit price used for savings calculations.
func (p Product) ListPrice() float64 {
	if p.OriginalPrice > p.Price {
		return p.OriginalPrice
	}
	return p.Price
}

// Savings is the per-unit difference between ListPrice and EffectivePrice.
func (p Product) Savings() float64 {
	return p.ListPrice() - p.EffectivePrice()
}

// DiscountPercent returns the rounded discount relative to the list price.
func (p Product) DiscountPercent() int {
	list := p.ListPrice()
	if list <= 0 {
		return 0
	}
	pct := p.Savings() / list * 100
	return int(pct + 0.5)
}

// Available reports whether the product can be purchased.
func (p Product) Available() bool {
	if p.InStock != nil {
		return *p.InStock
	}
	return p.Stock > 0
}

func (p Product) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.ID)
}

// Clone returns a deep copy so that callers never alias stored slices.
func (p Product) Clone() Product {
	c := p
	if p.Images != nil {
		c.Images = append([]string(nil), p.Images...)
	}
	if p.InStock != nil {
		v := *p.InStock
		c.InStock = &v
	}
	return c
}

// Decode parses a single product from JSON and validates its identifier.
func Decode(data []byte) (Product, error) {
	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return Product{}, fmt.Errorf("decode product: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}
