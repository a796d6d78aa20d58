package booking

import (
	"context"
	"testing"

	"github.com/Domenick1991/bookshop/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLinkValidator_Resolve_EmptyIDs(t *testing.T) {
	mockProductRepo := &MockProductRepository{}
	validator := NewLinkValidator(mockProductRepo)

	resolved, err := validator.Resolve(context.Background(), nil)

	assert.Error(t, err)
	assert.Nil(t, resolved)

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	mockProductRepo.AssertNotCalled(t, "GetByID")
}

func TestLinkValidator_Resolve_DeduplicatesIDs(t *testing.T) {
	mockProductRepo := &MockProductRepository{}
	validator := NewLinkValidator(mockProductRepo)

	ctx := context.Background()
	id := uuid.New()

	mockProductRepo.On("GetByID", ctx, id).Return(&domain.Product{ID: id}, nil).Once()

	resolved, err := validator.Resolve(ctx, []uuid.UUID{id, id, id})

	assert.NoError(t, err)
	assert.Len(t, resolved, 1)
	assert.Equal(t, id, resolved[0].ID)

	mockProductRepo.AssertExpectations(t)
}

func TestLinkValidator_Resolve_TooManyProducts(t *testing.T) {
	mockProductRepo := &MockProductRepository{}
	validator := NewLinkValidator(mockProductRepo)

	ids := make([]uuid.UUID, domain.MaxProductsPerBooking+1)
	for i := range ids {
		ids[i] = uuid.New()
	}

	resolved, err := validator.Resolve(context.Background(), ids)

	assert.Error(t, err)
	assert.Nil(t, resolved)

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	mockProductRepo.AssertNotCalled(t, "GetByID")
}

func TestLinkValidator_Resolve_ProductNotFound(t *testing.T) {
	mockProductRepo := &MockProductRepository{}
	validator := NewLinkValidator(mockProductRepo)

	ctx := context.Background()
	missing := uuid.New()

	mockProductRepo.On("GetByID", ctx, missing).
		Return(nil, &domain.NotFoundError{Entity: "Product", ID: missing}).Once()

	resolved, err := validator.Resolve(ctx, []uuid.UUID{missing})

	assert.Error(t, err)
	assert.Nil(t, resolved)

	var notFoundErr *domain.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, missing, notFoundErr.ID)
}

func TestLinkValidator_Resolve_AlreadyLinked(t *testing.T) {
	mockProductRepo := &MockProductRepository{}
	validator := NewLinkValidator(mockProductRepo)

	ctx := context.Background()
	taken := uuid.New()
	owner := uuid.New()

	mockProductRepo.On("GetByID", ctx, taken).
		Return(&domain.Product{ID: taken, BookingID: &owner}, nil).Once()

	resolved, err := validator.Resolve(ctx, []uuid.UUID{taken})

	assert.Error(t, err)
	assert.Nil(t, resolved)

	var linkedErr *domain.AlreadyLinkedError
	assert.ErrorAs(t, err, &linkedErr)
	assert.Equal(t, taken, linkedErr.ProductID)
	assert.Equal(t, owner, linkedErr.OwnerID)
}

func TestLinkValidator_Resolve_Success(t *testing.T) {
	mockProductRepo := &MockProductRepository{}
	validator := NewLinkValidator(mockProductRepo)

	ctx := context.Background()
	p1 := uuid.New()
	p2 := uuid.New()

	mockProductRepo.On("GetByID", ctx, p1).Return(&domain.Product{ID: p1, Name: "The Three Musketeers"}, nil).Once()
	mockProductRepo.On("GetByID", ctx, p2).Return(&domain.Product{ID: p2, Name: "Twenty Years After"}, nil).Once()

	resolved, err := validator.Resolve(ctx, []uuid.UUID{p1, p2})

	assert.NoError(t, err)
	assert.Len(t, resolved, 2)
	assert.Equal(t, p1, resolved[0].ID)
	assert.Equal(t, p2, resolved[1].ID)

	mockProductRepo.AssertExpectations(t)
}
