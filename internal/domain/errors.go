package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError reports a request that is well-formed but violates a
// domain rule (bad date ordering, empty product set, too many products).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NotFoundError reports a referenced Booking or Product that does not exist.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found by id: '%s'", e.Entity, e.ID)
}

// AlreadyLinkedError reports a product that is owned by another booking,
// whether detected by the read-only pre-check or by a lost conditional write.
type AlreadyLinkedError struct {
	ProductID uuid.UUID
	OwnerID   uuid.UUID
}

func (e *AlreadyLinkedError) Error() string {
	return fmt.Sprintf("product '%s' is already linked to booking '%s'", e.ProductID, e.OwnerID)
}
