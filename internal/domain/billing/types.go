// internal/domain/billing/types.go
package billing

type Customer struct {
	ID    string
	Email string
	Name  string
}

type Product struct {
	ID   string
	Name string
}

type Price struct {
	ID         string
	ProductID  string
	UnitAmount int64
	Currency   string
	Interval   string
}

type Subscription struct {
	ID               string
	CustomerID       string
	Status           string
	CurrentPeriodEnd int64
	// ProductID of the first subscription item.
	ProductID string
}

type CheckoutParams struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	// ClientReference is echoed back on the completed session.
	ClientReference string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Provider event types handled by the webhook.
const (
	EventCheckoutSessionCompleted    = "checkout.session.completed"
	EventInvoicePaymentFailed        = "invoice.payment_failed"
	EventCustomerSubscriptionDeleted = "customer.subscription.deleted"
)

// Event is a verified provider event reduced to the ids the service needs.
type Event struct {
	ID             string
	Type           string
	CustomerID     string
	SubscriptionID string
}
