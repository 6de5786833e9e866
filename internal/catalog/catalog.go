package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/rad_plants/internal/models"
)

var (
	ErrNotOrderable = errors.New("not orderable")
	ErrNotFound     = errors.New("not found")
)

type Store struct {
	products []models.Product
}

func NewStore(products []models.Product) *Store {
	cp := make([]models.Product, len(products))
	copy(cp, products)
	return &Store{products: cp}
}

func (s *Store) All() []models.Product {
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) ByID(id string) (models.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func (s *Store) ByCategory(category models.Category) []models.Product {
	if category == models.CategoryAll {
		return s.All()
	}
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Search matches the query against product names only, as typed:
// surrounding spaces are part of the needle. A blank query returns nothing
// rather than the whole catalogue.
func (s *Store) Search(query string) []models.Product {
	if strings.TrimSpace(query) == "" {
		return []models.Product{}
	}
	q := strings.ToLower(query)
	out := make([]models.Product, 0)
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) Categories() []models.Category {
	seen := map[models.Category]bool{}
	out := []models.Category{}
	for _, p := range s.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// CheckOrderable applies the product page quantity bound. The cart never
// checks stock on its own.
func CheckOrderable(p models.Product, quantity int) error {
	if !p.InStock {
		return fmt.Errorf("%s is out of stock: %w", p.Name, ErrNotOrderable)
	}
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1: %w", ErrNotOrderable)
	}
	if quantity > p.Stock {
		return fmt.Errorf("only %d of %s available: %w", p.Stock, p.Name, ErrNotOrderable)
	}
	return nil
}
