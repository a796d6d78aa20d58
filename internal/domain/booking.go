package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusSubmitted  BookingStatus = "SUBMITTED"
	BookingStatusRejected   BookingStatus = "REJECTED"
	BookingStatusApproved   BookingStatus = "APPROVED"
	BookingStatusCanceled   BookingStatus = "CANCELED"
	BookingStatusInDelivery BookingStatus = "IN_DELIVERY"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusSubmitted, BookingStatusRejected, BookingStatusApproved,
		BookingStatusCanceled, BookingStatusInDelivery, BookingStatusCompleted:
		return true
	}
	return false
}

// ParseBookingStatus converts boundary input into a status, case-insensitively.
func ParseBookingStatus(raw string) (BookingStatus, bool) {
	s := BookingStatus(strings.ToUpper(raw))
	return s, s.Valid()
}

// MaxProductsPerBooking caps the aggregate size of a single booking.
const MaxProductsPerBooking = 100

type Booking struct {
	ID              uuid.UUID
	Name            string
	DeliveryAddress string
	CustomerEmail   string
	DeliveryDate    time.Time
	Status          BookingStatus
	Products        []Product
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
