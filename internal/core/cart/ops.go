package cart

import (
	"context"

	"github.com/colonyops/storefront/internal/core/i18n"
	"github.com/colonyops/storefront/internal/core/product"
	"github.com/colonyops/storefront/internal/core/result"
)

// Add puts qty units of p in the cart, incrementing an existing line for
// the same product. It fails once the cart holds MaxLines lines, whether or
// not p is already in it.
func (s *Store) Add(ctx context.Context, p product.Product, qty int) result.Result {
	s.mu.Lock()
	res := s.add(p, qty)
	if !res.Success {
		s.mu.Unlock()
		return res
	}
	s.commit(ctx)
	return res
}

// add applies Add to the in-memory lines. Callers hold mu.
func (s *Store) add(p product.Product, qty int) result.Result {
	if err := p.Validate(); err != nil {
		return result.Fail(result.CodeInvalidProduct, s.printer.T(i18n.CartInvalidProduct))
	}
	if qty <= 0 {
		return result.Fail(result.CodeInvalidQuantity, s.printer.T(i18n.CartInvalidQuantity))
	}
	if len(s.lines) >= s.opts.MaxLines {
		return result.Fail(result.CodeCartFull, s.printer.T(i18n.CartFull))
	}

	if i := s.index(p.ID); i >= 0 {
		s.lines[i].Quantity += qty
		return result.OK(s.printer.T(i18n.CartIncremented, p.Name))
	}
	s.lines = append(s.lines, Line{Product: p.Clone(), Quantity: qty})
	return result.OK(s.printer.T(i18n.CartAdded, p.Name))
}

// Remove deletes the line for id.
func (s *Store) Remove(ctx context.Context, id string) result.Result {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return result.Fail(result.CodeNotFound, s.printer.T(i18n.CartNotFound))
	}

	name := s.lines[i].Product.Name
	s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
	s.commit(ctx)
	return result.OK(s.printer.T(i18n.CartRemoved, name))
}

// UpdateQuantity sets the quantity of the line for id. A quantity of zero
// or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, id string, qty int) result.Result {
	if qty <= 0 {
		return s.Remove(ctx, id)
	}

	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return result.Fail(result.CodeNotFound, s.printer.T(i18n.CartNotFound))
	}

	s.lines[i].Quantity = qty
	name := s.lines[i].Product.Name
	s.commit(ctx)
	return result.OK(s.printer.T(i18n.CartQuantityUpdated, name))
}

// Clear removes every line.
func (s *Store) Clear(ctx context.Context) result.Result {
	s.mu.Lock()
	s.lines = nil
	s.commit(ctx)
	return result.OK(s.printer.T(i18n.CartCleared))
}

// Reload replaces the in-memory cart with the persisted one.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	s.lines = s.load(ctx)
	s.subject.Handoff(s.mu.Unlock, s.snapshot())
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Line returns the line for id.
func (s *Store) Line(id string) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		l := s.lines[i]
		return Line{Product: l.Product.Clone(), Quantity: l.Quantity}, true
	}
	return Line{}, false
}

// Quantity returns the quantity held for id, zero when absent.
func (s *Store) Quantity(id string) int {
	l, _ := s.Line(id)
	return l.Quantity
}

// Contains reports whether id has a line.
func (s *Store) Contains(id string) bool {
	_, ok := s.Line(id)
	return ok
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// TotalItems is the sum of all quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice is the sum of line subtotals at the effective unit price.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, l := range s.lines {
		total += l.Subtotal()
	}
	return total
}

// Summary breaks the cart total down for display.
type Summary struct {
	Lines    int     `json:"lines"`
	Items    int     `json:"items"`
	Subtotal float64 `json:"subtotal"` // at list price
	Savings  float64 `json:"savings"`
	Total    float64 `json:"total"`
}

// Summary computes the cart summary.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summarize(s.lines)
}

// Summarize computes the summary of a set of lines, such as a snapshot
// delivered to a subscriber.
func Summarize(lines []Line) Summary {
	sum := Summary{Lines: len(lines)}
	for _, l := range lines {
		q := float64(l.Quantity)
		sum.Items += l.Quantity
		sum.Subtotal += l.Product.ListPrice() * q
		sum.Savings += l.Product.Savings() * q
		sum.Total += l.Subtotal()
	}
	return sum
}

// Subscribe calls fn with the current lines and again after every mutation.
// fn must not call back into the Store.
func (s *Store) Subscribe(fn func([]Line)) (unsubscribe func()) {
	return s.subject.Subscribe(fn)
}
