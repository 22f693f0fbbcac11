package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/domain"
	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/storage"
)

// stubIdentity is a fixed principal for cart scoping.
type stubIdentity struct {
	user *domain.User
}

func (s *stubIdentity) Current() (*domain.User, bool) {
	if s.user == nil {
		return nil, false
	}
	u := *s.user
	return &u, true
}

// failingBackend fails Save for one collection only, to drive the
// order/cart write pair apart.
type failingBackend struct {
	storage.Backend
	failCollection string
}

func (f *failingBackend) Save(ctx context.Context, collection string, doc []byte) error {
	if collection == f.failCollection {
		return assert.AnError
	}
	return f.Backend.Save(ctx, collection, doc)
}

func testUser() *domain.User {
	return &domain.User{Email: "shopper@example.com", Name: "Shopper", Role: domain.RoleUser}
}

func testProduct(id string, price float64) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        "Product " + id,
		Price:       price,
		Category:    "drinks",
		IsAvailable: true,
		Image:       domain.DefaultProductImage,
	}
}

func newTestOrders(t *testing.T, identity domain.IdentityProvider) (*Orders, *storage.Memory) {
	t.Helper()
	backend := storage.NewMemory()
	orders, err := NewOrders(context.Background(), backend, identity, testLogger())
	require.NoError(t, err)
	return orders, backend
}

func TestAddToCartIsAdditive(t *testing.T) {
	orders, _ := newTestOrders(t, &stubIdentity{user: testUser()})
	ctx := context.Background()
	product := testProduct("p1", 10)

	require.NoError(t, orders.AddToCart(ctx, product, 2))
	require.NoError(t, orders.AddToCart(ctx, product, 3))

	cart := orders.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, 5, cart[0].Quantity)
}

func TestAddToCartRejectsUnavailable(t *testing.T) {
	orders, _ := newTestOrders(t, &stubIdentity{user: testUser()})
	product := testProduct("p1", 10)
	product.IsAvailable = false

	err := orders.AddToCart(context.Background(), product, 1)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.Empty(t, orders.Cart())
}

func TestUpdateQuantityReplacesExactly(t *testing.T) {
	orders, _ := newTestOrders(t, &stubIdentity{user: testUser()})
	ctx := context.Background()

	require.NoError(t, orders.AddToCart(ctx, testProduct("p1", 10), 2))
	require.NoError(t, orders.UpdateQuantity(ctx, "p1", 7))

	cart := orders.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, 7, cart[0].Quantity)
}

func TestUpdateQuantityBelowOne(t *testing.T) {
	orders, _ := newTestOrders(t, &stubIdentity{user: testUser()})
	ctx := context.Background()

	require.NoError(t, orders.AddToCart(ctx, testProduct("p1", 10), 2))

	err := orders.UpdateQuantity(ctx, "p1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	cart := orders.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)
}

func TestUpdateQuantityUnknownProduct(t *testing.T) {
	orders, _ := newTestOrders(t, &stubIdentity{user: testUser()})

	err := orders.UpdateQuantity(context.Background(), "missing", 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveFromCart(t *testing.T) {
	orders, _ := newTestOrders(t, &stubIdentity{user: testUser()})
	ctx := context.Background()

	require.NoError(t, orders.AddToCart(ctx, testProduct("p1", 10), 1))
	require.NoError(t, orders.RemoveFromCart(ctx, "p1"))
	assert.Empty(t, orders.Cart())

	// Removing an absent product is a no-op.
	require.NoError(t, orders.RemoveFromCart(ctx, "p1"))
}

func TestPlaceOrder(t *testing.T) {
	user := testUser()
	orders, _ := newTestOrders(t, &stubIdentity{user: user})
	ctx := context.Background()

	require.NoError(t, orders.AddToCart(ctx, testProduct("p1", 10), 2))

	order, err := orders.PlaceOrder(ctx, user)
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, user.Email, order.UserID)
	assert.Equal(t, 20.0, order.Total)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.False(t, order.CreatedAt.IsZero())
	require.Len(t, order.Items, 1)

	assert.Empty(t, orders.Cart())
	require.Len(t, orders.ListOrders(), 1)
}

func TestPlaceOrderSnapshotsItems(t *testing.T) {
	user := testUser()
	orders, _ := newTestOrders(t, &stubIdentity{user: user})
	ctx := context.Background()

	product := testProduct("p1", 10)
	require.NoError(t, orders.AddToCart(ctx, product, 1))

	order, err := orders.PlaceOrder(ctx, user)
	require.NoError(t, err)

	// Later catalog edits must not reach back into the placed order.
	product.Price = 99
	product.Name = "Renamed"
	got := orders.ListOrders()[0]
	assert.Equal(t, 10.0, got.Items[0].Product.Price)
	assert.Equal(t, order.Items[0].Product.Name, got.Items[0].Product.Name)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	user := testUser()
	orders, _ := newTestOrders(t, &stubIdentity{user: user})

	_, err := orders.PlaceOrder(context.Background(), user)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Empty(t, orders.ListOrders())
}

func TestPlaceOrderWithoutUser(t *testing.T) {
	orders, _ := newTestOrders(t, &stubIdentity{})

	_, err := orders.PlaceOrder(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestPlaceOrderIsAllOrNothing(t *testing.T) {
	user := testUser()
	backend := storage.NewMemory()
	failing := &failingBackend{Backend: backend, failCollection: storage.CollectionCart}
	orders, err := NewOrders(context.Background(), failing, &stubIdentity{user: user}, testLogger())
	require.NoError(t, err)
	ctx := context.Background()

	// The cart write must succeed while filling the cart, so flip the
	// failure on only after.
	failing.failCollection = ""
	require.NoError(t, orders.AddToCart(ctx, testProduct("p1", 10), 2))
	failing.failCollection = storage.CollectionCart

	_, err = orders.PlaceOrder(ctx, user)
	require.ErrorIs(t, err, domain.ErrBackend)

	// Neither side of the transaction took effect.
	assert.Empty(t, orders.ListOrders())
	cart := orders.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)

	// The durable order list was rolled back too.
	reloaded, err := NewOrders(ctx, backend, &stubIdentity{user: user}, testLogger())
	require.NoError(t, err)
	assert.Empty(t, reloaded.ListOrders())
}

func TestUpdateOrderStatus(t *testing.T) {
	user := testUser()
	orders, _ := newTestOrders(t, &stubIdentity{user: user})
	ctx := context.Background()

	require.NoError(t, orders.AddToCart(ctx, testProduct("p1", 10), 1))
	order, err := orders.PlaceOrder(ctx, user)
	require.NoError(t, err)

	require.NoError(t, orders.UpdateOrderStatus(ctx, order.ID, domain.StatusShipped))
	assert.Equal(t, domain.StatusShipped, orders.ListOrders()[0].Status)

	err = orders.UpdateOrderStatus(ctx, order.ID, domain.OrderStatus("teleported"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.Equal(t, domain.StatusShipped, orders.ListOrders()[0].Status)

	err = orders.UpdateOrderStatus(ctx, "missing", domain.StatusShipped)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFilterOrders(t *testing.T) {
	alice := &domain.User{Email: "alice@example.com", Role: domain.RoleUser}
	bob := &domain.User{Email: "Bob@Example.com", Role: domain.RoleUser}
	identity := &stubIdentity{user: alice}
	orders, _ := newTestOrders(t, identity)
	ctx := context.Background()

	require.NoError(t, orders.AddToCart(ctx, testProduct("p1", 10), 1))
	first, err := orders.PlaceOrder(ctx, alice)
	require.NoError(t, err)

	identity.user = bob
	require.NoError(t, orders.AddToCart(ctx, testProduct("p2", 5), 2))
	second, err := orders.PlaceOrder(ctx, bob)
	require.NoError(t, err)

	require.NoError(t, orders.UpdateOrderStatus(ctx, second.ID, domain.StatusShipped))

	all := orders.FilterOrders(domain.OrderFilter{})
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)

	pending := orders.FilterOrders(domain.OrderFilter{Status: domain.StatusPending})
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	// userId matches as a case-insensitive substring.
	byUser := orders.FilterOrders(domain.OrderFilter{UserID: "bob"})
	require.Len(t, byUser, 1)
	assert.Equal(t, second.ID, byUser[0].ID)

	today := time.Now().UTC()
	byDay := orders.FilterOrders(domain.OrderFilter{Date: &today})
	assert.Len(t, byDay, 2)

	yesterday := today.AddDate(0, 0, -1)
	assert.Empty(t, orders.FilterOrders(domain.OrderFilter{Date: &yesterday}))
}

func TestCartIsPartitionedPerUser(t *testing.T) {
	alice := &domain.User{Email: "alice@example.com", Role: domain.RoleUser}
	bob := &domain.User{Email: "bob@example.com", Role: domain.RoleUser}
	identity := &stubIdentity{user: alice}
	orders, _ := newTestOrders(t, identity)
	ctx := context.Background()

	require.NoError(t, orders.AddToCart(ctx, testProduct("p1", 10), 1))

	identity.user = bob
	assert.Empty(t, orders.Cart())
	require.NoError(t, orders.AddToCart(ctx, testProduct("p2", 5), 3))

	identity.user = alice
	cart := orders.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, "p1", cart[0].Product.ID)
}

func TestResetOrdersAndCart(t *testing.T) {
	user := testUser()
	orders, backend := newTestOrders(t, &stubIdentity{user: user})
	ctx := context.Background()

	require.NoError(t, orders.AddToCart(ctx, testProduct("p1", 10), 1))
	_, err := orders.PlaceOrder(ctx, user)
	require.NoError(t, err)
	require.NoError(t, orders.AddToCart(ctx, testProduct("p2", 5), 1))

	require.NoError(t, orders.ResetOrders(ctx))
	assert.Empty(t, orders.ListOrders())
	require.Len(t, orders.Cart(), 1)

	require.NoError(t, orders.ResetCart(ctx))
	assert.Empty(t, orders.Cart())

	reloaded, err := NewOrders(ctx, backend, &stubIdentity{user: user}, testLogger())
	require.NoError(t, err)
	assert.Empty(t, reloaded.ListOrders())
	assert.Empty(t, reloaded.Cart())
}

func TestOrdersSurviveRestart(t *testing.T) {
	user := testUser()
	orders, backend := newTestOrders(t, &stubIdentity{user: user})
	ctx := context.Background()

	require.NoError(t, orders.AddToCart(ctx, testProduct("p1", 10), 2))
	order, err := orders.PlaceOrder(ctx, user)
	require.NoError(t, err)

	reloaded, err := NewOrders(ctx, backend, &stubIdentity{user: user}, testLogger())
	require.NoError(t, err)

	got := reloaded.ListOrders()
	require.Len(t, got, 1)
	assert.Equal(t, order.ID, got[0].ID)
	assert.Equal(t, order.Total, got[0].Total)
}
