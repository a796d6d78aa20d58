package booking

import (
	"context"
	"fmt"

	"github.com/Domenick1991/bookshop/internal/domain"
	"github.com/Domenick1991/bookshop/internal/repository"
	"github.com/google/uuid"
)

// LinkValidator resolves candidate product ids before a booking tries to
// claim them. The check is read-only and therefore only an optimistic
// pre-check: the authoritative exclusivity guarantee is the conditional
// write inside the booking repository's transaction.
type LinkValidator struct {
	products repository.ProductRepository
}

func NewLinkValidator(products repository.ProductRepository) *LinkValidator {
	return &LinkValidator{products: products}
}

// Resolve fetches every candidate and verifies it exists and is unlinked.
// Duplicated ids are collapsed. Any failure aborts the whole resolution, so
// a booking never links some-but-not-all of its candidates.
func (v *LinkValidator) Resolve(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, &domain.ValidationError{Reason: "at least one product is required"}
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) > domain.MaxProductsPerBooking {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("more than %d products are not allowed in one booking", domain.MaxProductsPerBooking)}
	}

	products := make([]domain.Product, 0, len(unique))
	for _, id := range unique {
		product, err := v.products.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if product.BookingID != nil {
			return nil, &domain.AlreadyLinkedError{ProductID: id, OwnerID: *product.BookingID}
		}
		products = append(products, *product)
	}
	return products, nil
}
