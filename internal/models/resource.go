package models

import "time"

// Price units accepted by the extended policy
const (
	PriceUnitHour  = "hour"
	PriceUnitDay   = "day"
	PriceUnitWeek  = "week"
	PriceUnitMonth = "month"
)

// Resource is a bookable item as persisted in the resources table
type Resource struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Available   bool      `json:"available" db:"available"`
	Price       float64   `json:"price" db:"price"`
	PriceUnit   string    `json:"price_unit" db:"price_unit"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ResourceInput holds the normalized fields of a create or update request:
// strings trimmed, availability and price coerced.
type ResourceInput struct {
	Name        string
	Description string
	Available   bool
	Price       float64
	PriceUnit   string
}
