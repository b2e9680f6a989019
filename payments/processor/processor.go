package processor

import "context"

// PaymentProcessor is the external charge provider boundary. The service
// layer never talks to Stripe directly; tests plug in a stub here.
type PaymentProcessor interface {
	// CreateIntent attempts to charge the given amount (smallest currency
	// unit) with automatic payment-method selection. Provider declines come
	// back as *ProviderError; there are no retries.
	CreateIntent(ctx context.Context, amount int64) (*ChargeResult, error)

	// ConfirmIntent confirms a previously created intent against the provider
	ConfirmIntent(ctx context.Context, intentID, paymentMethod string) (*ChargeResult, error)

	// PaymentLinks lists the provider-defined payment links
	PaymentLinks(ctx context.Context) ([]PaymentLink, error)

	// CustomerEmails lists the emails of the provider's registered customers
	CustomerEmails(ctx context.Context) ([]string, error)
}

// ChargeResult is the provider's answer to a charge attempt. It is transient:
// only the accepted flag is persisted, the rest is echoed to the caller.
type ChargeResult struct {
	ChargeID        string `json:"charge"`
	PaymentIntentID string `json:"payment_intent_id"`
	PaymentMethod   string `json:"payment_method"`
	Status          string `json:"status"`
}

// PaymentLink is one provider-hosted checkout link
type PaymentLink struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// ProviderError is a decline or fault reported by the charge provider
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}
