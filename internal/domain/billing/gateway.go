// internal/domain/billing/gateway.go
package billing

import "context"

// Gateway is the set of payment provider primitives the service relies on.
// Every failure is returned as *xerrors.BillingError.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name string) (*Customer, error)
	CreateProduct(ctx context.Context, name string) (*Product, error)
	CreatePrice(ctx context.Context, productID string, unitAmount int64, currency, interval string) (*Price, error)
	CreateSubscription(ctx context.Context, customerID, priceID string) (*Subscription, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)

	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	GetProduct(ctx context.Context, id string) (*Product, error)

	// ConstructEvent verifies the signature header and decodes the event.
	ConstructEvent(payload []byte, signature string) (*Event, error)
}
