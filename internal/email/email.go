package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/bookshop/internal/kafka"
)

// Sender delivers booking notification emails. Delivery is best effort; a
// failed send never affects the booking that triggered it.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	subject, body := render(event)
	fmt.Printf("send email to %s: %s | %s\n", event.CustomerEmail, subject, body)
	return nil
}

func render(event kafka.BookingEvent) (subject, body string) {
	switch event.Type {
	case kafka.EventBookingCreated:
		return "Your booking was created",
			fmt.Sprintf("Congratulations! Your booking '%s' (%s) was created, delivery on %s.", event.Name, event.BookingID, event.DeliveryDate)
	case kafka.EventBookingStatusChanged:
		return "Your booking status was updated",
			fmt.Sprintf("Your booking '%s' (%s) is now %s.", event.Name, event.BookingID, event.Status)
	default:
		return "Your booking was updated",
			fmt.Sprintf("Your booking '%s' (%s) was updated.", event.Name, event.BookingID)
	}
}
