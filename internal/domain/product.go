package domain

// DefaultProductImage is used when a draft carries no image URL.
const DefaultProductImage = "https://placehold.co/600x400"

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	IsAvailable bool    `json:"isAvailable"`
	Image       string  `json:"image"`
}

// ProductDraft is the caller-supplied shape for add/update. IsAvailable
// is a pointer so "omitted" (defaults to available) and "explicitly
// false" stay distinguishable.
type ProductDraft struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	IsAvailable *bool   `json:"isAvailable"`
	Image       string  `json:"image"`
}

// ProductFilter narrows a catalog search. Nil fields mean "no
// constraint"; set fields are combined with AND.
type ProductFilter struct {
	Category    string
	PriceMin    *float64
	PriceMax    *float64
	IsAvailable *bool
}
