package wishlist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/colonyops/storefront/internal/core/i18n"
	"github.com/colonyops/storefront/internal/core/product"
	"github.com/colonyops/storefront/internal/core/result"
)

// Add saves p. Duplicates are refused before the capacity check.
func (s *Store) Add(ctx context.Context, p product.Product) result.Result {
	s.mu.Lock()
	res := s.add(p)
	if !res.Success {
		s.mu.Unlock()
		return res
	}
	s.commit(ctx)
	return res
}

// Remove deletes the entry for id.
func (s *Store) Remove(ctx context.Context, id string) result.Result {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return result.Fail(result.CodeNotFound, s.printer.T(i18n.WishlistNotFound))
	}

	name := s.items[i].Name
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.commit(ctx)
	return result.OK(s.printer.T(i18n.WishlistRemoved, name))
}

// MoveToCart removes p from the wishlist. Adding it to the cart is up to
// the caller; the wishlist never touches the cart.
func (s *Store) MoveToCart(ctx context.Context, p product.Product) result.Result {
	if p.Validate() != nil {
		return result.Fail(result.CodeInvalidProduct, s.printer.T(i18n.WishlistInvalidID))
	}

	res := s.Remove(ctx, p.ID)
	if !res.Success {
		return res
	}
	return result.OK(s.printer.T(i18n.WishlistMoved, p.Name))
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) result.Result {
	s.mu.Lock()
	s.items = nil
	s.commit(ctx)
	return result.OK(s.printer.T(i18n.WishlistCleared))
}

// Reload replaces the in-memory wishlist with the persisted one.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	s.items = s.load(ctx)
	s.subject.Handoff(s.mu.Unlock, s.snapshot())
}

func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index(id) >= 0
}

// Get returns the entry for id.
func (s *Store) Get(id string) (product.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.items[i].Clone(), true
	}
	return product.Product{}, false
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) IsEmpty() bool {
	return s.Count() == 0
}

// Items returns a copy of the entries in insertion order.
func (s *Store) Items() []product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) filter(keep func(product.Product) bool) []product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]product.Product, 0)
	for _, p := range s.items {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Search returns entries whose name, description or brand contains query,
// compared under Unicode case folding.
func (s *Store) Search(query string) []product.Product {
	fold := cases.Fold()
	q := fold.String(query)
	return s.filter(func(p product.Product) bool {
		return strings.Contains(fold.String(p.Name), q) ||
			strings.Contains(fold.String(p.Description), q) ||
			strings.Contains(fold.String(p.Brand), q)
	})
}

// ByCategory returns entries whose category equals category exactly.
func (s *Store) ByCategory(category string) []product.Product {
	return s.filter(func(p product.Product) bool { return p.Category == category })
}

// ByBrand returns entries whose brand equals brand exactly.
func (s *Store) ByBrand(brand string) []product.Product {
	return s.filter(func(p product.Product) bool { return p.Brand == brand })
}

// Subscribe calls fn with the current entries and again after every
// mutation. fn must not call back into the Store.
func (s *Store) Subscribe(fn func([]product.Product)) (unsubscribe func()) {
	return s.subject.Subscribe(fn)
}

// Backup is the wishlist export document.
type Backup struct {
	ExportDate time.Time         `json:"exportDate"`
	ItemCount  int               `json:"itemCount"`
	Items      []product.Product `json:"items"`
}

// Export serializes the wishlist into an indented backup document.
func (s *Store) Export() (string, error) {
	s.mu.Lock()
	doc := Backup{
		ExportDate: s.now().UTC(),
		ItemCount:  len(s.items),
		Items:      s.snapshot(),
	}
	s.mu.Unlock()

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode wishlist backup: %w", err)
	}
	return string(out), nil
}

type importDoc struct {
	Items *[]json.RawMessage `json:"items"`
}

// Import adds the products of a backup document. Entries already present
// are skipped; malformed entries and entries refused by Add are listed in
// Errors. ImportedCount counts only successful adds.
func (s *Store) Import(ctx context.Context, doc string) result.ImportResult {
	var parsed importDoc
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil || parsed.Items == nil {
		return result.ImportResult{Result: result.Fail(result.CodeInvalidInput, s.printer.T(i18n.WishlistImportBad))}
	}

	s.mu.Lock()
	var (
		imported int
		errs     []string
	)
	for i, raw := range *parsed.Items {
		var p product.Product
		if err := json.Unmarshal(raw, &p); err != nil {
			errs = append(errs, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		if p.Validate() != nil {
			errs = append(errs, fmt.Sprintf("item %d: missing id", i))
			continue
		}
		if s.index(p.ID) >= 0 {
			continue
		}

		if res := s.add(p); !res.Success {
			errs = append(errs, fmt.Sprintf("item %d (%s): %s", i, p.ID, res.Message))
			continue
		}
		imported++
	}

	res := result.ImportResult{
		Result:        result.OK(s.printer.T(i18n.WishlistImported, imported)),
		ImportedCount: imported,
		Errors:        errs,
	}
	if imported == 0 {
		s.mu.Unlock()
		return res
	}
	s.commit(ctx)
	return res
}
