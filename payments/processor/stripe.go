package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/customer"
	"github.com/stripe/stripe-go/v78/paymentintent"
	"github.com/stripe/stripe-go/v78/paymentlink"

	"github.com/tgarrido/payments-api/common/metrics"
)

// Placeholder charge reference passed as the intent description and echoed in
// responses. Real charge ids only exist after the intent is confirmed.
const chargeRef = "ch_1NirD82eZvKYlo2CIvbtLWuY"

// Stripe implements PaymentProcessor against the Stripe API
type Stripe struct {
	apiKey    string
	returnURL string
	metrics   *metrics.BusinessMetrics
	logger    *slog.Logger
}

// NewStripeProcessor sets the global SDK key; all Stripe calls use it.
// metrics may be nil.
func NewStripeProcessor(apiKey, returnURL string, m *metrics.BusinessMetrics, logger *slog.Logger) *Stripe {
	stripe.Key = apiKey
	return &Stripe{
		apiKey:    apiKey,
		returnURL: returnURL,
		metrics:   m,
		logger:    logger,
	}
}

func (s *Stripe) CreateIntent(ctx context.Context, amount int64) (*ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String(chargeRef),
	}

	start := time.Now()
	intent, err := paymentintent.New(params)
	s.observe(start)

	if err != nil {
		return nil, asProviderError(err)
	}

	s.logger.Info("payment intent created",
		slog.String("intent_id", intent.ID),
		slog.Int64("amount", amount),
		slog.String("status", string(intent.Status)),
	)

	return &ChargeResult{
		ChargeID:        chargeRef,
		PaymentIntentID: intent.ID,
		PaymentMethod:   paymentMethodID(intent),
		Status:          string(intent.Status),
	}, nil
}

func (s *Stripe) ConfirmIntent(ctx context.Context, intentID, paymentMethod string) (*ChargeResult, error) {
	params := &stripe.PaymentIntentConfirmParams{
		Params:        stripe.Params{Context: ctx},
		PaymentMethod: stripe.String(paymentMethod),
		ReturnURL:     stripe.String(s.returnURL),
	}

	start := time.Now()
	intent, err := paymentintent.Confirm(intentID, params)
	s.observe(start)

	if err != nil {
		return nil, asProviderError(err)
	}

	s.logger.Info("payment intent confirmed",
		slog.String("intent_id", intent.ID),
		slog.String("status", string(intent.Status)),
	)

	return &ChargeResult{
		ChargeID:        chargeRef,
		PaymentIntentID: intent.ID,
		PaymentMethod:   paymentMethodID(intent),
		Status:          string(intent.Status),
	}, nil
}

func (s *Stripe) PaymentLinks(ctx context.Context) ([]PaymentLink, error) {
	params := &stripe.PaymentLinkListParams{
		ListParams: stripe.ListParams{Context: ctx},
	}

	start := time.Now()
	iter := paymentlink.List(params)

	links := []PaymentLink{}
	for iter.Next() {
		pl := iter.PaymentLink()
		links = append(links, PaymentLink{
			ID:     pl.ID,
			URL:    pl.URL,
			Active: pl.Active,
		})
	}
	s.observe(start)

	if err := iter.Err(); err != nil {
		return nil, asProviderError(err)
	}

	return links, nil
}

func (s *Stripe) CustomerEmails(ctx context.Context) ([]string, error) {
	params := &stripe.CustomerListParams{
		ListParams: stripe.ListParams{Context: ctx},
	}

	start := time.Now()
	iter := customer.List(params)

	var emails []string
	for iter.Next() {
		c := iter.Customer()
		if c.Email != "" {
			emails = append(emails, c.Email)
		}
	}
	s.observe(start)

	if err := iter.Err(); err != nil {
		return nil, asProviderError(err)
	}

	return emails, nil
}

func (s *Stripe) observe(start time.Time) {
	if s.metrics != nil {
		s.metrics.StripeAPIDuration.Observe(time.Since(start).Seconds())
	}
}

// paymentMethodID extracts the method id; intents created without a method
// attached carry none until confirmation.
func paymentMethodID(intent *stripe.PaymentIntent) string {
	if intent.PaymentMethod != nil {
		return intent.PaymentMethod.ID
	}
	return ""
}

// asProviderError maps Stripe SDK errors to the provider error kind
func asProviderError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &ProviderError{
			Code:    string(stripeErr.Code),
			Message: stripeErr.Msg,
		}
	}
	return fmt.Errorf("stripe request failed: %w", err)
}
