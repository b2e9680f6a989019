package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tgarrido/payments-api/common/metrics"
	"github.com/tgarrido/payments-api/payments/processor"
	"github.com/tgarrido/payments-api/products"
	"github.com/tgarrido/payments-api/users"
)

// Service orchestrates the payment workflow: referential validation,
// persistence, and charge initiation against the external provider.
type Service struct {
	store     Store
	users     UserDirectory
	products  ProductCatalog
	processor processor.PaymentProcessor
	events    EventPublisher // nil disables event publishing
	metrics   *metrics.BusinessMetrics
	logger    *slog.Logger

	// fixed confirmation target echoed in creation responses
	confirmRedirectURL string
}

func NewService(
	store Store,
	userDir UserDirectory,
	catalog ProductCatalog,
	proc processor.PaymentProcessor,
	events EventPublisher,
	m *metrics.BusinessMetrics,
	logger *slog.Logger,
	confirmRedirectURL string,
) *Service {
	return &Service{
		store:              store,
		users:              userDir,
		products:           catalog,
		processor:          proc,
		events:             events,
		metrics:            m,
		logger:             logger,
		confirmRedirectURL: confirmRedirectURL,
	}
}

// CreatePayment validates the user and product references, persists a pending
// payment row, and attempts the external charge. The row is inserted before
// the provider is contacted; a provider decline leaves it pending rather than
// rolling it back, so the attempt stays auditable.
func (s *Service) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error) {
	// Fail fast on dangling references: no row is written for these.
	user, err := s.users.Get(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	payment, err := s.store.Create(ctx, req.UserID, req.ProductID, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.PaymentsCreated.Inc()
	}

	s.logger.Info("payment persisted",
		slog.Int64("payment_id", payment.ID),
		slog.Int64("user_id", payment.UserID),
		slog.Int64("product_id", payment.ProductID),
		slog.Int64("amount", payment.Amount),
	)

	charge, err := s.PaymentIntent(ctx, payment.ID)
	if err != nil {
		var provErr *processor.ProviderError
		if errors.As(err, &provErr) {
			// Decline: the pending row stays as the record of the attempt.
			if s.metrics != nil {
				s.metrics.PaymentsDeclined.Inc()
			}
			s.logger.Warn("charge declined by provider",
				slog.Int64("payment_id", payment.ID),
				slog.String("code", provErr.Code),
			)
			return nil, err
		}
		return nil, fmt.Errorf("charge attempt failed: %w", err)
	}

	if err := s.store.SetAccepted(ctx, payment.ID, true); err != nil {
		return nil, fmt.Errorf("failed to mark payment accepted: %w", err)
	}
	payment.Accepted = true

	if s.metrics != nil {
		s.metrics.PaymentsAccepted.Inc()
	}

	// Best-effort: the payment is accepted whether or not consumers hear it.
	if s.events != nil {
		if err := s.events.PaymentAccepted(ctx, payment); err != nil {
			s.logger.Error("failed to publish payment.accepted",
				slog.Int64("payment_id", payment.ID),
				slog.Any("error", err),
			)
		}
	}

	s.logger.Info("payment accepted",
		slog.Int64("payment_id", payment.ID),
		slog.String("intent_id", charge.PaymentIntentID),
		slog.String("status", charge.Status),
	)

	return &CreatePaymentResult{
		Message:         "Payment created successfully",
		PaymentInfo:     buildView(payment, user, product),
		ChargeID:        charge.ChargeID,
		PaymentIntentID: charge.PaymentIntentID,
		PaymentMethod:   charge.PaymentMethod,
		PaymentStatus:   charge.Status,
		RedirectURL:     s.confirmRedirectURL,
	}, nil
}

// PaymentIntent requests a charge from the provider for the payment's amount.
// Never retried: a transient provider fault surfaces to the caller as-is.
func (s *Service) PaymentIntent(ctx context.Context, paymentID int64) (*processor.ChargeResult, error) {
	view, err := s.FindPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	return s.processor.CreateIntent(ctx, view.Amount)
}

// ConfirmPayment confirms a previously created charge intent
func (s *Service) ConfirmPayment(ctx context.Context, intentID, paymentMethod string) (*processor.ChargeResult, error) {
	return s.processor.ConfirmIntent(ctx, intentID, paymentMethod)
}

func (s *Service) FindPayment(ctx context.Context, id int64) (*PaymentView, error) {
	payment, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.enrich(ctx, payment)
}

func (s *Service) FindAllPayments(ctx context.Context) ([]*PaymentView, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*PaymentView, 0, len(all))
	for _, payment := range all {
		view, err := s.enrich(ctx, payment)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

// UpdatePayment overwrites product_id and amount. The new product reference
// is validated before the row is touched, so the store never ends up pointing
// at a missing product.
func (s *Service) UpdatePayment(ctx context.Context, id int64, req UpdatePaymentRequest) (*UpdatePaymentResult, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}

	product, err := s.products.Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, id, req.ProductID, req.Amount)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment updated",
		slog.Int64("payment_id", id),
		slog.Int64("product_id", req.ProductID),
		slog.Int64("amount", req.Amount),
	)

	return &UpdatePaymentResult{
		Message: fmt.Sprintf("Payment %d updated successfully", id),
		Payment: updated,
		Product: &ProductSummary{ID: product.ID, Name: product.Name},
	}, nil
}

// DeletePayment removes the row. Deleting an unknown id is an error, not a
// no-op.
func (s *Service) DeletePayment(ctx context.Context, id int64) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if s.events != nil {
		if err := s.events.PaymentDeleted(ctx, id); err != nil {
			s.logger.Error("failed to publish payment.deleted",
				slog.Int64("payment_id", id),
				slog.Any("error", err),
			)
		}
	}

	s.logger.Info("payment deleted", slog.Int64("payment_id", id))
	return nil
}

// PaymentLinks lists the provider-defined payment links
func (s *Service) PaymentLinks(ctx context.Context) ([]processor.PaymentLink, error) {
	return s.processor.PaymentLinks(ctx)
}

// enrich joins a payment with its user and product via two independent
// lookups. Deleted references yield null fields, not errors.
func (s *Service) enrich(ctx context.Context, payment *Payment) (*PaymentView, error) {
	user, err := s.users.Get(ctx, payment.UserID)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	product, err := s.products.Get(ctx, payment.ProductID)
	if err != nil && !errors.Is(err, products.ErrProductNotFound) {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}

	view := buildView(payment, user, product)
	return &view, nil
}

func buildView(payment *Payment, user *users.User, product *products.Product) PaymentView {
	view := PaymentView{
		PaymentID: payment.ID,
		Amount:    payment.Amount,
		Accepted:  payment.Accepted,
		CreatedAt: payment.CreatedAt,
		UpdatedAt: payment.UpdatedAt,
	}

	if user != nil {
		view.UserID = &user.ID
		view.UserName = &user.Name
	}
	if product != nil {
		view.ProductID = &product.ID
		view.ProductName = &product.Name
		view.ProductDescription = &product.Description
	}

	return view
}
