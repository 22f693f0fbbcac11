package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/domain"
	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/storage"
)

// Catalog is the system of record for products. Every mutation writes
// the full catalog snapshot to the backend before touching the
// in-memory view, so a failed write leaves the store exactly as it
// was.
type Catalog struct {
	mu       sync.Mutex
	backend  storage.Backend
	log      *logrus.Logger
	products []domain.Product
	lastErr  error
}

func NewCatalog(ctx context.Context, backend storage.Backend, logger *logrus.Logger) (*Catalog, error) {
	c := &Catalog{
		backend: backend,
		log:     logger,
	}

	doc, err := backend.Load(ctx, storage.CollectionProducts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	if doc != nil {
		if err := json.Unmarshal(doc, &c.products); err != nil {
			return nil, fmt.Errorf("%w: corrupt products collection: %v", domain.ErrBackend, err)
		}
	}

	logger.Infof("Catalog: Loaded %d products", len(c.products))
	return c, nil
}

// LastError reports the most recent failure, for display. It is
// cleared at the start of every operation.
func (c *Catalog) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// List returns the full catalog in insertion order.
func (c *Catalog) List() []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) GetByID(id string) (domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	c.log.Warnf("Catalog: Product not found: %s", id)
	return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
}

func validateDraft(draft domain.ProductDraft) error {
	if draft.Name == "" || draft.Category == "" || draft.Price <= 0 {
		return fmt.Errorf("%w: name, category, and price are required", domain.ErrValidation)
	}
	return nil
}

// Add validates the draft, assigns a fresh id, applies defaults
// (available unless explicitly false, placeholder image when absent)
// and appends the product to the catalog.
func (c *Catalog) Add(ctx context.Context, draft domain.ProductDraft) (domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil

	if err := validateDraft(draft); err != nil {
		c.log.Warnf("Catalog: Rejected product draft: %v", err)
		return domain.Product{}, c.fail(err)
	}

	product := domain.Product{
		ID:          uuid.NewString(),
		Name:        draft.Name,
		Description: draft.Description,
		Price:       draft.Price,
		Category:    draft.Category,
		IsAvailable: draft.IsAvailable == nil || *draft.IsAvailable,
		Image:       draft.Image,
	}
	if product.Image == "" {
		product.Image = domain.DefaultProductImage
	}

	next := append(append([]domain.Product{}, c.products...), product)
	if err := c.persist(ctx, next); err != nil {
		return domain.Product{}, c.fail(err)
	}
	c.products = next

	c.log.Infof("Catalog: Product '%s' created with ID %s", product.Name, product.ID)
	return product, nil
}

// Update replaces the mutable fields of the product with the given id.
// An omitted image keeps the existing one, never the generic
// placeholder.
func (c *Catalog) Update(ctx context.Context, id string, draft domain.ProductDraft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil

	if err := validateDraft(draft); err != nil {
		c.log.Warnf("Catalog: Rejected update for product %s: %v", id, err)
		return c.fail(err)
	}

	idx := -1
	for i, p := range c.products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.log.Warnf("Catalog: Product %s not found for update", id)
		return c.fail(fmt.Errorf("product %s: %w", id, domain.ErrNotFound))
	}

	updated := domain.Product{
		ID:          id,
		Name:        draft.Name,
		Description: draft.Description,
		Price:       draft.Price,
		Category:    draft.Category,
		IsAvailable: draft.IsAvailable == nil || *draft.IsAvailable,
		Image:       draft.Image,
	}
	if updated.Image == "" {
		updated.Image = c.products[idx].Image
	}

	next := make([]domain.Product, len(c.products))
	copy(next, c.products)
	next[idx] = updated
	if err := c.persist(ctx, next); err != nil {
		return c.fail(err)
	}
	c.products = next

	c.log.Infof("Catalog: Product %s updated", id)
	return nil
}

// Remove deletes the product with the given id. Removing an absent id
// is a no-op: the catalog is already in the requested state.
func (c *Catalog) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil

	next := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if p.ID != id {
			next = append(next, p)
		}
	}
	if len(next) == len(c.products) {
		c.log.Warnf("Catalog: Product %s not found for removal, nothing to do", id)
		return nil
	}

	if err := c.persist(ctx, next); err != nil {
		return c.fail(err)
	}
	c.products = next

	c.log.Infof("Catalog: Product %s removed", id)
	return nil
}

// Search matches query as a case-insensitive substring of the product
// name and applies the filter's predicates conjunctively.
func (c *Catalog) Search(query string, filter domain.ProductFilter) []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()

	query = strings.ToLower(query)
	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.PriceMin != nil && p.Price < *filter.PriceMin {
			continue
		}
		if filter.PriceMax != nil && p.Price > *filter.PriceMax {
			continue
		}
		if filter.IsAvailable != nil && p.IsAvailable != *filter.IsAvailable {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ResetAll clears the catalog entirely.
func (c *Catalog) ResetAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil

	if err := c.persist(ctx, nil); err != nil {
		return c.fail(err)
	}
	c.products = nil

	c.log.Info("Catalog: All products cleared")
	return nil
}

func (c *Catalog) persist(ctx context.Context, products []domain.Product) error {
	doc, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	if err := c.backend.Save(ctx, storage.CollectionProducts, doc); err != nil {
		c.log.Errorf("Catalog: Failed to persist products: %v", err)
		return fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	return nil
}

func (c *Catalog) fail(err error) error {
	c.lastErr = err
	return err
}
