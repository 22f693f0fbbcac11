package storage

import "context"

// Logical collection names. Each collection is one JSON document in
// the backend.
const (
	CollectionProducts = "products"
	CollectionCart     = "cart"
	CollectionOrders   = "orders"
	CollectionUsers    = "users"
	CollectionSession  = "session"
)

// Backend is the durable key-value store behind the state stores. A
// Load that finds nothing returns (nil, nil) so a fresh install starts
// from empty collections rather than an error.
type Backend interface {
	Load(ctx context.Context, collection string) ([]byte, error)
	Save(ctx context.Context, collection string, doc []byte) error
	Delete(ctx context.Context, collection string) error
}
