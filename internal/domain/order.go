package domain

import "time"

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// CartItem holds a snapshot of the product at the time it was added,
// not a reference into the catalog.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Order is an immutable record of a placed cart. Items and Total are
// copied at placement time; later catalog edits must not reach back
// into it. Status is the only field that changes afterwards.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"` // placing user's email
	Items     []CartItem  `json:"items"`
	Total     float64     `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

// OrderFilter narrows an order query. Zero values mean "no constraint";
// set fields are combined with AND. UserID matches as a
// case-insensitive substring of the order's user email; Date matches
// the calendar day of CreatedAt, ignoring time of day.
type OrderFilter struct {
	Status OrderStatus
	UserID string
	Date   *time.Time
}
