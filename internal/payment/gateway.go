// Package payment captures funds for an order. Cash-like methods settle at
// the till and need no capture call; card goes through Stripe.
package payment

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"ms-pos/internal/logger"
	"ms-pos/internal/models"
)

var (
	ErrStripeAPIError         = errors.New("stripe API error")
	ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")
	ErrUnsupportedMethod      = errors.New("unsupported payment method")
)

// Gateway routes a capture by payment method.
type Gateway struct {
	stripe *client.API
	log    *logger.Logger
}

// NewGateway builds the gateway. Stripe is optional: without a key the
// gateway still handles cash/wechat/alipay and declines card.
func NewGateway(log *logger.Logger) *Gateway {
	g := &Gateway{log: log}

	if key := os.Getenv("STRIPE_SECRET_KEY"); key != "" {
		api := &client.API{}
		api.Init(key, nil)
		g.stripe = api
		log.Info("PAYMENT", "Stripe client initialized")
	} else {
		log.Warn("PAYMENT", "STRIPE_SECRET_KEY not set, card payments disabled")
	}

	return g
}

func (g *Gateway) Capture(ctx context.Context, order *models.Order, method models.PaymentMethod) error {
	switch method {
	case models.MethodCash, models.MethodWeChat, models.MethodAlipay:
		// Settled at the till; nothing to capture remotely.
		return nil
	case models.MethodCard:
		return g.captureCard(ctx, order)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
}

func (g *Gateway) captureCard(ctx context.Context, order *models.Order) error {
	if g.stripe == nil {
		return ErrStripeClientInitFailed
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(order.TotalAmount * 100)),
		Currency: stripe.String(string(stripe.CurrencyCNY)),
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		Description: stripe.String(fmt.Sprintf("POS order %s (%s)", order.ID, order.Source)),
	}
	params.Context = ctx
	params.AddMetadata("order_id", order.ID)
	params.AddMetadata("table_id", order.TableID)

	intent, err := g.stripe.PaymentIntents.New(params)
	if err != nil {
		g.log.Error("PAYMENT", fmt.Sprintf("payment intent for order %s failed: %v", order.ID, err))
		return fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}

	g.log.Info("PAYMENT", fmt.Sprintf("payment intent %s created for order %s", intent.ID, order.ID))
	return nil
}
