package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a book listing. BookingID is the single source of truth for
// booking membership: nil means the product is free to be claimed.
type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Author      string
	Price       float64
	ImageURL    string
	BookingID   *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
