package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/petalcart/petalcart/internal/models"
	"github.com/petalcart/petalcart/internal/money"
	"github.com/petalcart/petalcart/pkg/sendgrid"
)

// NotificationService sends the order confirmation email. It is optional:
// a nil *NotificationService means email is disabled and callers skip it.
type NotificationService struct {
	email sendgrid.EmailService
}

func NewNotificationService(email sendgrid.EmailService) *NotificationService {
	return &NotificationService{email: email}
}

func (s *NotificationService) SendOrderConfirmation(ctx context.Context, to string, order *models.Order) error {
	var lines strings.Builder

	for _, item := range order.Items {
		fmt.Fprintf(&lines, "- %s x%d (%s)\n", item.Name, item.Quantity, money.FormatNTD(item.PriceCents))
	}

	total := money.FormatNTD(order.TotalCents)

	return s.email.Send(ctx, &sendgrid.Email{
		To:      to,
		Subject: fmt.Sprintf("Order %s received", order.OrderNo),
		PlainText: fmt.Sprintf("Thank you for your order!\n\nOrder number: %s\n\n%sTotal: %s\n",
			order.OrderNo, lines.String(), total),
		HTML: fmt.Sprintf("<p>Thank you for your order!</p><p>Order number: <strong>%s</strong></p><p>Total: <strong>%s</strong></p>",
			order.OrderNo, total),
	})
}
