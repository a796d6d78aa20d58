package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/bookshop/internal/domain"
	"github.com/Domenick1991/bookshop/internal/kafka"
	"github.com/Domenick1991/bookshop/internal/repository"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CreateBookingWithProducts(ctx context.Context, input CreateBookingWithProductsInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ListBookings(ctx context.Context, query ListQuery) ([]domain.Booking, int, error)
	UpdateBooking(ctx context.Context, id uuid.UUID, input UpdateBookingInput) (*domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)
	ListOrphanedBookings(ctx context.Context) ([]domain.Booking, error)
}

type Cache interface {
	InvalidateProduct(ctx context.Context, id uuid.UUID) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	validator          *LinkValidator
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
}

type BookingDraft struct {
	Name            string
	DeliveryAddress string
	CustomerEmail   string
	DeliveryDate    time.Time
}

type NewProductInput struct {
	Name        string
	Description string
	Author      string
	Price       float64
	ImageURL    string
}

type CreateBookingInput struct {
	BookingDraft
	Products []NewProductInput
}

type CreateBookingWithProductsInput struct {
	BookingDraft
	ProductIDs []uuid.UUID
}

// UpdateBookingInput mutates the booking's own fields. An empty ProductIDs
// leaves the product set untouched; a non-empty one links the additional
// products, never removing currently linked ones.
type UpdateBookingInput struct {
	BookingDraft
	ProductIDs []uuid.UUID
}

type ListQuery struct {
	Name     string
	Page     int
	PageSize int
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	products repository.ProductRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		validator:    NewLinkValidator(products),
		cache:        cache,
		producer:     producer,
		bookingTopic: bookingTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking creates a booking together with brand-new products.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	now := time.Now().UTC()
	if err := validateDraft(input.BookingDraft, now); err != nil {
		return nil, err
	}
	if len(input.Products) == 0 {
		return nil, &domain.ValidationError{Reason: "at least one product is required"}
	}
	if len(input.Products) > domain.MaxProductsPerBooking {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("more than %d products are not allowed in one booking", domain.MaxProductsPerBooking)}
	}

	products := make([]domain.Product, 0, len(input.Products))
	for _, p := range input.Products {
		if p.Price < 0 {
			return nil, &domain.ValidationError{Reason: fmt.Sprintf("product '%s' price cannot be negative", p.Name)}
		}
		products = append(products, domain.Product{
			ID:          uuid.New(),
			Name:        p.Name,
			Description: p.Description,
			Author:      p.Author,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
		})
	}

	booking := newBooking(input.BookingDraft, now)
	if err := s.bookings.CreateWithNewProducts(ctx, booking, products); err != nil {
		return nil, err
	}

	if err := s.publish(ctx, kafka.EventBookingCreated, booking); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", kafka.EventBookingCreated, booking.ID, err)
	}
	return booking, nil
}

// CreateBookingWithProducts creates a booking that claims already existing
// products. The validator pre-checks the candidates; the repository's
// conditional writes settle any race, and a lost race surfaces as
// AlreadyLinkedError with nothing persisted.
func (s *BookingService) CreateBookingWithProducts(ctx context.Context, input CreateBookingWithProductsInput) (*domain.Booking, error) {
	now := time.Now().UTC()
	if err := validateDraft(input.BookingDraft, now); err != nil {
		return nil, err
	}

	resolved, err := s.validator.Resolve(ctx, input.ProductIDs)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(resolved))
	for _, p := range resolved {
		ids = append(ids, p.ID)
	}

	booking := newBooking(input.BookingDraft, now)
	if err := s.bookings.CreateWithProducts(ctx, booking, ids); err != nil {
		return nil, err
	}
	s.invalidateProducts(ctx, ids)

	if err := s.publish(ctx, kafka.EventBookingCreated, booking); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", kafka.EventBookingCreated, booking.ID, err)
	}
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) ListBookings(ctx context.Context, query ListQuery) ([]domain.Booking, int, error) {
	return s.bookings.List(ctx, query.Name, query.Page, query.PageSize)
}

// UpdateBooking mutates delivery address, customer email, delivery date and
// name. The product set can only grow: ids already owned by this booking are
// skipped, new ones are resolved and claimed.
func (s *BookingService) UpdateBooking(ctx context.Context, id uuid.UUID, input UpdateBookingInput) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateDraft(input.BookingDraft, current.CreatedAt); err != nil {
		return nil, err
	}

	var addIDs []uuid.UUID
	if len(input.ProductIDs) > 0 {
		owned := make(map[uuid.UUID]struct{}, len(current.Products))
		for _, p := range current.Products {
			owned[p.ID] = struct{}{}
		}
		for _, pid := range input.ProductIDs {
			if _, ok := owned[pid]; !ok {
				addIDs = append(addIDs, pid)
			}
		}
		if len(current.Products)+len(addIDs) > domain.MaxProductsPerBooking {
			return nil, &domain.ValidationError{Reason: fmt.Sprintf("more than %d products are not allowed in one booking", domain.MaxProductsPerBooking)}
		}
		if len(addIDs) > 0 {
			if _, err := s.validator.Resolve(ctx, addIDs); err != nil {
				return nil, err
			}
		}
	}

	updated := *current
	updated.Name = input.Name
	updated.DeliveryAddress = input.DeliveryAddress
	updated.CustomerEmail = input.CustomerEmail
	updated.DeliveryDate = input.DeliveryDate

	if err := s.bookings.Update(ctx, &updated, addIDs); err != nil {
		return nil, err
	}
	s.invalidateProducts(ctx, addIDs)

	if err := s.publish(ctx, kafka.EventBookingUpdated, &updated); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", kafka.EventBookingUpdated, updated.ID, err)
	}
	return &updated, nil
}

// UpdateBookingStatus applies the new status unconditionally; there is no
// transition table. The notification is best effort and never rolls the
// status change back.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("unknown booking status '%s'", status)}
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	if err := s.publish(ctx, kafka.EventBookingStatusChanged, updated); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", kafka.EventBookingStatusChanged, updated.ID, err)
	}
	return updated, nil
}

// ListOrphanedBookings reports bookings whose product set has been emptied
// by product deletes.
func (s *BookingService) ListOrphanedBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.ListEmpty(ctx)
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:          eventType,
		BookingID:     b.ID.String(),
		Name:          b.Name,
		CustomerEmail: b.CustomerEmail,
		Status:        string(b.Status),
		DeliveryDate:  b.DeliveryDate.Format("2006-01-02"),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, b.ID.String(), event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, b.ID.String(), event)
	}
	return nil
}

func (s *BookingService) invalidateProducts(ctx context.Context, ids []uuid.UUID) {
	if s.cache == nil {
		return
	}
	for _, id := range ids {
		_ = s.cache.InvalidateProduct(ctx, id)
	}
}

func newBooking(draft BookingDraft, createdAt time.Time) *domain.Booking {
	return &domain.Booking{
		ID:              uuid.New(),
		Name:            draft.Name,
		DeliveryAddress: draft.DeliveryAddress,
		CustomerEmail:   draft.CustomerEmail,
		DeliveryDate:    draft.DeliveryDate,
		Status:          domain.BookingStatusSubmitted,
		CreatedAt:       createdAt,
	}
}

func validateDraft(draft BookingDraft, createdAt time.Time) error {
	if draft.CustomerEmail == "" {
		return &domain.ValidationError{Reason: "customer email is required"}
	}
	if startOfDay(draft.DeliveryDate).Before(startOfDay(createdAt)) {
		return &domain.ValidationError{Reason: fmt.Sprintf("delivery date %s cannot be before %s",
			draft.DeliveryDate.Format("2006-01-02"), createdAt.Format("2006-01-02"))}
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var _ BookingUseCase = (*BookingService)(nil)
