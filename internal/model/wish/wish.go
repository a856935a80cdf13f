package wish

import "time"

// isoLayout matches the timestamps produced by JavaScript's Date.toISOString,
// which the frontend parses.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Wish is a single wishlist entry shown to the frontend.
type Wish struct {
	ID          string   `json:"id"`
	Image       string   `json:"image,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
}

// Price returns a pointer suitable for Wish.Price and Patch.Price.
func Price(v float64) *float64 {
	return &v
}

// clone returns a copy that shares no memory with w.
func (w Wish) clone() Wish {
	if w.Price != nil {
		w.Price = Price(*w.Price)
	}
	return w
}

// Patch holds the fields supplied by a partial update. Nil means "leave as is";
// a JSON null decodes to nil as well, so a patch cannot clear a field.
type Patch struct {
	Image       *string  `json:"image,omitempty"`
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	CreatedAt   *string  `json:"createdAt,omitempty"`
}

// apply merges p into w. The identifier is never touched.
func (p Patch) apply(w Wish) Wish {
	if p.Image != nil {
		w.Image = *p.Image
	}
	if p.Title != nil {
		w.Title = *p.Title
	}
	if p.Description != nil {
		w.Description = *p.Description
	}
	if p.Price != nil {
		w.Price = Price(*p.Price)
	}
	if p.CreatedAt != nil {
		w.CreatedAt = *p.CreatedAt
	}
	return w
}

// FormatTime renders t in the layout used for CreatedAt.
func FormatTime(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// Seed provides the sample wishes served when no other data is available.
func Seed() []Wish {
	return []Wish{
		{
			ID:          "1",
			Image:       "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=800&q=80",
			Title:       "Apple Watch Smartwatch",
			Description: "Modern smartwatch with numerous features: health monitoring, notifications, fitness tracking and much more. Perfect companion for an active lifestyle.",
			Price:       Price(1299.99),
			CreatedAt:   "2025-01-01T00:00:00.000Z",
		},
		{
			ID:          "2",
			Image:       "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=800&q=80",
			Title:       "Sony WH-1000XM5 Wireless Headphones",
			Description: "Premium headphones with active noise cancellation, excellent sound quality and long battery life. Perfect for travel and daily use.",
			Price:       Price(399.99),
			CreatedAt:   "2025-01-02T00:00:00.000Z",
		},
	}
}
