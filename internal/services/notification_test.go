package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/petalcart/petalcart/internal/models"
	service "github.com/petalcart/petalcart/internal/services"
	"github.com/petalcart/petalcart/pkg/sendgrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedEmailService struct {
	sent []*sendgrid.Email
	err  error
}

func (f *capturedEmailService) Send(ctx context.Context, email *sendgrid.Email) error {
	f.sent = append(f.sent, email)

	return f.err
}

func TestSendOrderConfirmation(t *testing.T) {
	ctx := context.Background()
	order := &models.Order{
		ID:         uuid.New(),
		OrderNo:    "260901-3FA2BC",
		TotalCents: 25000,
		Items: []models.OrderItem{
			{Name: "Rose Bouquet", PriceCents: 10000, Quantity: 2},
			{Name: "Lily", PriceCents: 5000, Quantity: 1},
		},
	}

	t.Run("Success - Email Carries Order Number, Lines And Total", func(t *testing.T) {
		// Arrange
		fake := &capturedEmailService{}
		notifier := service.NewNotificationService(fake)

		// Act
		err := notifier.SendOrderConfirmation(ctx, "user@example.com", order)

		// Assert
		require.NoError(t, err)
		require.Len(t, fake.sent, 1)
		email := fake.sent[0]
		assert.Equal(t, "user@example.com", email.To)
		assert.Contains(t, email.Subject, "260901-3FA2BC")
		assert.Contains(t, email.PlainText, "Rose Bouquet x2")
		assert.Contains(t, email.PlainText, "Total: NT$250")
		assert.Contains(t, email.HTML, "260901-3FA2BC")
	})

	t.Run("Failure - Transport Error Propagates", func(t *testing.T) {
		// Arrange
		fake := &capturedEmailService{err: errors.New("sendgrid 503")}
		notifier := service.NewNotificationService(fake)

		// Act
		err := notifier.SendOrderConfirmation(ctx, "user@example.com", order)

		// Assert
		assert.Error(t, err)
	})
}
