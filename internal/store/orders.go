package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/domain"
	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/storage"
)

// guestCartKey is the partition used before anyone is logged in.
const guestCartKey = ""

// Orders owns the per-user carts and the global order list. Carts are
// partitioned by the current principal's email, so switching users
// switches the visible cart. As with the catalog, the new snapshot is
// persisted before the in-memory state moves.
type Orders struct {
	mu       sync.Mutex
	backend  storage.Backend
	log      *logrus.Logger
	identity domain.IdentityProvider
	carts    map[string][]domain.CartItem
	orders   []domain.Order
	lastErr  error
}

func NewOrders(ctx context.Context, backend storage.Backend, identity domain.IdentityProvider, logger *logrus.Logger) (*Orders, error) {
	o := &Orders{
		backend:  backend,
		log:      logger,
		identity: identity,
		carts:    make(map[string][]domain.CartItem),
	}

	cartDoc, err := backend.Load(ctx, storage.CollectionCart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	if cartDoc != nil {
		if err := json.Unmarshal(cartDoc, &o.carts); err != nil {
			return nil, fmt.Errorf("%w: corrupt cart collection: %v", domain.ErrBackend, err)
		}
	}
	if o.carts == nil {
		o.carts = make(map[string][]domain.CartItem)
	}

	orderDoc, err := backend.Load(ctx, storage.CollectionOrders)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	if orderDoc != nil {
		if err := json.Unmarshal(orderDoc, &o.orders); err != nil {
			return nil, fmt.Errorf("%w: corrupt orders collection: %v", domain.ErrBackend, err)
		}
	}

	logger.Infof("Orders: Loaded %d orders and %d cart partitions", len(o.orders), len(o.carts))
	return o, nil
}

func (o *Orders) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// cartKey resolves the partition of the current principal.
func (o *Orders) cartKey() string {
	if u, ok := o.identity.Current(); ok {
		return strings.ToLower(u.Email)
	}
	return guestCartKey
}

// Cart returns the current principal's cart.
func (o *Orders) Cart() []domain.CartItem {
	o.mu.Lock()
	defer o.mu.Unlock()

	cart := o.carts[o.cartKey()]
	out := make([]domain.CartItem, len(cart))
	copy(out, cart)
	return out
}

// AddToCart puts quantity units of the product in the current cart.
// Repeated adds of the same product increment its quantity instead of
// duplicating the entry.
func (o *Orders) AddToCart(ctx context.Context, product domain.Product, quantity int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastErr = nil

	if quantity < 1 {
		quantity = 1
	}
	if !product.IsAvailable {
		o.log.Warnf("Orders: Attempted to add unavailable product %s to cart", product.ID)
		return o.fail(domain.ErrOutOfStock)
	}

	key := o.cartKey()
	cart := o.carts[key]
	next := make([]domain.CartItem, len(cart))
	copy(next, cart)

	found := false
	for i, item := range next {
		if item.Product.ID == product.ID {
			next[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		next = append(next, domain.CartItem{Product: product, Quantity: quantity})
	}

	if err := o.persistCarts(ctx, o.withCart(key, next)); err != nil {
		return o.fail(err)
	}
	o.carts[key] = next

	o.log.Infof("Orders: Added %d x product %s to cart '%s'", quantity, product.ID, key)
	return nil
}

// RemoveFromCart drops the matching item. Removing an absent product
// is a no-op.
func (o *Orders) RemoveFromCart(ctx context.Context, productID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastErr = nil

	key := o.cartKey()
	cart := o.carts[key]
	next := make([]domain.CartItem, 0, len(cart))
	for _, item := range cart {
		if item.Product.ID != productID {
			next = append(next, item)
		}
	}
	if len(next) == len(cart) {
		return nil
	}

	if err := o.persistCarts(ctx, o.withCart(key, next)); err != nil {
		return o.fail(err)
	}
	o.carts[key] = next

	o.log.Infof("Orders: Removed product %s from cart '%s'", productID, key)
	return nil
}

// UpdateQuantity sets the matching item's quantity exactly.
func (o *Orders) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastErr = nil

	if quantity < 1 {
		o.log.Warnf("Orders: Rejected quantity %d for product %s", quantity, productID)
		return o.fail(domain.ErrInvalidQuantity)
	}

	key := o.cartKey()
	cart := o.carts[key]
	idx := -1
	for i, item := range cart {
		if item.Product.ID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		o.log.Warnf("Orders: Product %s not in cart '%s'", productID, key)
		return o.fail(fmt.Errorf("cart item %s: %w", productID, domain.ErrNotFound))
	}

	next := make([]domain.CartItem, len(cart))
	copy(next, cart)
	next[idx].Quantity = quantity

	if err := o.persistCarts(ctx, o.withCart(key, next)); err != nil {
		return o.fail(err)
	}
	o.carts[key] = next
	return nil
}

// PlaceOrder turns the user's cart into an immutable order. The order
// append and the cart clear form one logical transaction: if either
// write fails, neither takes effect.
func (o *Orders) PlaceOrder(ctx context.Context, user *domain.User) (domain.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastErr = nil

	if user == nil {
		o.log.Warn("Orders: Attempted to place an order without an authenticated user")
		return domain.Order{}, o.fail(domain.ErrAuthRequired)
	}

	key := strings.ToLower(user.Email)
	cart := o.carts[key]
	if len(cart) == 0 {
		o.log.Warnf("Orders: Attempted to place an order with an empty cart for %s", key)
		return domain.Order{}, o.fail(domain.ErrEmptyCart)
	}

	items := make([]domain.CartItem, len(cart))
	copy(items, cart)
	total := 0.0
	for _, item := range items {
		total += item.Product.Price * float64(item.Quantity)
	}

	order := domain.Order{
		ID:        uuid.NewString(),
		UserID:    user.Email,
		Items:     items,
		Total:     total,
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	nextOrders := append(append([]domain.Order{}, o.orders...), order)
	if err := o.persistOrders(ctx, nextOrders); err != nil {
		return domain.Order{}, o.fail(err)
	}
	if err := o.persistCarts(ctx, o.withCart(key, nil)); err != nil {
		// The order document went out but the cart clear did not.
		// Restore the previous order list so the two stay in step.
		o.log.Errorf("Orders: Cart clear failed after order %s was written, rolling back order list: %v", order.ID, err)
		if rbErr := o.persistOrders(ctx, o.orders); rbErr != nil {
			o.log.Errorf("Orders: CRITICAL! Failed to roll back order list after cart clear failure for order %s: %v. Manual intervention required!", order.ID, rbErr)
		}
		return domain.Order{}, o.fail(err)
	}
	o.orders = nextOrders
	delete(o.carts, key)

	o.log.Infof("Orders: Order %s placed by %s, total %.2f", order.ID, user.Email, total)
	return order, nil
}

// UpdateOrderStatus moves the matching order to the given status. The
// status must belong to the known set; the order must exist.
func (o *Orders) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastErr = nil

	if !domain.IsValidStatus(status) {
		o.log.Warnf("Orders: Rejected unknown status '%s' for order %s", status, orderID)
		return o.fail(fmt.Errorf("%w: %s", domain.ErrInvalidStatus, status))
	}

	idx := -1
	for i, ord := range o.orders {
		if ord.ID == orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		o.log.Warnf("Orders: Order %s not found for status update", orderID)
		return o.fail(fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound))
	}

	next := make([]domain.Order, len(o.orders))
	copy(next, o.orders)
	next[idx].Status = status

	if err := o.persistOrders(ctx, next); err != nil {
		return o.fail(err)
	}
	o.orders = next

	o.log.Infof("Orders: Order %s moved to status '%s'", orderID, status)
	return nil
}

// ListOrders returns every placed order in insertion order.
func (o *Orders) ListOrders() []domain.Order {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]domain.Order, len(o.orders))
	copy(out, o.orders)
	return out
}

// FilterOrders applies the filter's predicates conjunctively,
// preserving insertion order. The date predicate compares calendar
// days only.
func (o *Orders) FilterOrders(filter domain.OrderFilter) []domain.Order {
	o.mu.Lock()
	defer o.mu.Unlock()

	needle := strings.ToLower(filter.UserID)
	out := make([]domain.Order, 0, len(o.orders))
	for _, ord := range o.orders {
		if filter.Status != "" && ord.Status != filter.Status {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(ord.UserID), needle) {
			continue
		}
		if filter.Date != nil {
			fy, fm, fd := filter.Date.UTC().Date()
			oy, om, od := ord.CreatedAt.UTC().Date()
			if fy != oy || fm != om || fd != od {
				continue
			}
		}
		out = append(out, ord)
	}
	return out
}

// ResetOrders drops every placed order.
func (o *Orders) ResetOrders(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastErr = nil

	if err := o.persistOrders(ctx, nil); err != nil {
		return o.fail(err)
	}
	o.orders = nil

	o.log.Info("Orders: All orders cleared")
	return nil
}

// ResetCart clears the current principal's cart.
func (o *Orders) ResetCart(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastErr = nil

	key := o.cartKey()
	if err := o.persistCarts(ctx, o.withCart(key, nil)); err != nil {
		return o.fail(err)
	}
	delete(o.carts, key)

	o.log.Infof("Orders: Cart '%s' cleared", key)
	return nil
}

// withCart builds the cart map as it would look with the given
// partition replaced; nil drops the partition.
func (o *Orders) withCart(key string, items []domain.CartItem) map[string][]domain.CartItem {
	next := make(map[string][]domain.CartItem, len(o.carts)+1)
	for k, v := range o.carts {
		next[k] = v
	}
	if items == nil {
		delete(next, key)
	} else {
		next[key] = items
	}
	return next
}

func (o *Orders) persistCarts(ctx context.Context, carts map[string][]domain.CartItem) error {
	doc, err := json.Marshal(carts)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	if err := o.backend.Save(ctx, storage.CollectionCart, doc); err != nil {
		o.log.Errorf("Orders: Failed to persist carts: %v", err)
		return fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	return nil
}

func (o *Orders) persistOrders(ctx context.Context, orders []domain.Order) error {
	doc, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	if err := o.backend.Save(ctx, storage.CollectionOrders, doc); err != nil {
		o.log.Errorf("Orders: Failed to persist orders: %v", err)
		return fmt.Errorf("%w: %v", domain.ErrBackend, err)
	}
	return nil
}

func (o *Orders) fail(err error) error {
	o.lastErr = err
	return err
}
