// internal/service/payment/stripe_gateway.go
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"contenthub-service/internal/domain/billing"
	xerrors "contenthub-service/internal/pkg/errors"
	"contenthub-service/internal/pkg/metrics"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	// BackendURL overrides the API base URL.
	BackendURL string
}

// StripeGateway implements billing.Gateway on top of stripe-go. It keeps no
// state besides its own client and never retries a failed call.
type StripeGateway struct {
	client        *client.API
	webhookSecret string
	logger        *zap.Logger
}

var _ billing.Gateway = (*StripeGateway)(nil)

func NewStripeGateway(cfg StripeConfig, logger *zap.Logger) *StripeGateway {
	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig(cfg, logger)),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig(cfg, logger)),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig(cfg, logger)),
	}

	return &StripeGateway{
		client:        client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
		logger:        logger,
	}
}

func backendConfig(cfg StripeConfig, logger *zap.Logger) *stripe.BackendConfig {
	bc := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     logger.Sugar(),
		EnableTelemetry:   stripe.Bool(false),
	}
	if cfg.BackendURL != "" {
		bc.URL = stripe.String(cfg.BackendURL)
	}
	return bc
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, email, name string) (*billing.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx

	c, err := g.client.Customers.New(params)
	if err = g.observe("create_customer", err); err != nil {
		return nil, err
	}
	return toCustomer(c), nil
}

func (g *StripeGateway) CreateProduct(ctx context.Context, name string) (*billing.Product, error) {
	params := &stripe.ProductParams{Name: stripe.String(name)}
	params.Context = ctx

	p, err := g.client.Products.New(params)
	if err = g.observe("create_product", err); err != nil {
		return nil, err
	}
	return &billing.Product{ID: p.ID, Name: p.Name}, nil
}

func (g *StripeGateway) CreatePrice(ctx context.Context, productID string, unitAmount int64, currency, interval string) (*billing.Price, error) {
	params := &stripe.PriceParams{
		Product:    stripe.String(productID),
		UnitAmount: stripe.Int64(unitAmount),
		Currency:   stripe.String(currency),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(interval),
		},
	}
	params.Context = ctx

	p, err := g.client.Prices.New(params)
	if err = g.observe("create_price", err); err != nil {
		return nil, err
	}

	out := &billing.Price{
		ID:         p.ID,
		ProductID:  productID,
		UnitAmount: p.UnitAmount,
		Currency:   string(p.Currency),
		Interval:   interval,
	}
	if p.Recurring != nil {
		out.Interval = string(p.Recurring.Interval)
	}
	return out, nil
}

func (g *StripeGateway) CreateSubscription(ctx context.Context, customerID, priceID string) (*billing.Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(priceID)},
		},
	}
	params.Context = ctx

	s, err := g.client.Subscriptions.New(params)
	if err = g.observe("create_subscription", err); err != nil {
		return nil, err
	}
	return toSubscription(s), nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in billing.CheckoutParams) (*billing.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(in.CustomerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(in.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}
	if in.ClientReference != "" {
		params.ClientReferenceID = stripe.String(in.ClientReference)
	}
	params.Context = ctx

	s, err := g.client.CheckoutSessions.New(params)
	if err = g.observe("create_checkout_session", err); err != nil {
		return nil, err
	}
	return &billing.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) GetSubscription(ctx context.Context, id string) (*billing.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	s, err := g.client.Subscriptions.Get(id, params)
	if err = g.observe("retrieve_subscription", err); err != nil {
		return nil, err
	}
	return toSubscription(s), nil
}

func (g *StripeGateway) GetCustomer(ctx context.Context, id string) (*billing.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	c, err := g.client.Customers.Get(id, params)
	if err = g.observe("retrieve_customer", err); err != nil {
		return nil, err
	}
	return toCustomer(c), nil
}

func (g *StripeGateway) GetProduct(ctx context.Context, id string) (*billing.Product, error) {
	params := &stripe.ProductParams{}
	params.Context = ctx

	p, err := g.client.Products.Get(id, params)
	if err = g.observe("retrieve_product", err); err != nil {
		return nil, err
	}
	return &billing.Product{ID: p.ID, Name: p.Name}, nil
}

// ConstructEvent verifies the Stripe-Signature header and extracts the ids
// of the objects the webhook acts on.
func (g *StripeGateway) ConstructEvent(payload []byte, signature string) (*billing.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrInvalidSignature, err)
	}

	out := &billing.Event{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case billing.EventCheckoutSessionCompleted:
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("%w: %v", billing.ErrInvalidPayload, err)
		}
		if cs.Customer != nil {
			out.CustomerID = cs.Customer.ID
		}
		if cs.Subscription != nil {
			out.SubscriptionID = cs.Subscription.ID
		}
	case billing.EventCustomerSubscriptionDeleted:
		var s stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", billing.ErrInvalidPayload, err)
		}
		out.SubscriptionID = s.ID
		if s.Customer != nil {
			out.CustomerID = s.Customer.ID
		}
	}
	return out, nil
}

// observe records the call and maps a failure to *xerrors.BillingError
// carrying the provider message.
func (g *StripeGateway) observe(op string, err error) error {
	metrics.ObserveBilling(op, err)
	if err == nil {
		return nil
	}

	var msg string
	var se *stripe.Error
	if errors.As(err, &se) {
		msg = se.Msg
	}

	g.logger.Warn("stripe call failed",
		zap.String("op", op),
		zap.String("provider_message", msg),
		zap.Error(err),
	)
	return xerrors.NewBillingError(op, msg, err)
}

func toCustomer(c *stripe.Customer) *billing.Customer {
	return &billing.Customer{ID: c.ID, Email: c.Email, Name: c.Name}
}

func toSubscription(s *stripe.Subscription) *billing.Subscription {
	out := &billing.Subscription{
		ID:               s.ID,
		Status:           string(s.Status),
		CurrentPeriodEnd: s.CurrentPeriodEnd,
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.Items != nil && len(s.Items.Data) > 0 {
		if item := s.Items.Data[0]; item.Price != nil && item.Price.Product != nil {
			out.ProductID = item.Price.Product.ID
		}
	}
	return out
}
