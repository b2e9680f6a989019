package payments

import (
	"context"
	"errors"
	"time"

	"github.com/tgarrido/payments-api/payments/processor"
)

var ErrPaymentNotFound = errors.New("payment not found")

// Payment is a charge attempt against a user/product pair. Rows are created
// pending (accepted=false) and flipped to accepted exactly once, when the
// charge provider reports success.
type Payment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Amount    int64     `json:"amount"`
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatePaymentRequest is the POST /api/payments body
type CreatePaymentRequest struct {
	Amount    int64 `json:"amount"`
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
}

// UpdatePaymentRequest is the PUT /api/payments/{id} body. It overwrites
// product_id and amount unconditionally; accepted is not reachable here.
type UpdatePaymentRequest struct {
	ProductID int64 `json:"product_id"`
	Amount    int64 `json:"amount"`
}

// PaymentView is a payment joined with the current user and product data.
// The referenced rows may have been deleted since the payment was created;
// in that case the fields stay null instead of failing the read.
type PaymentView struct {
	PaymentID          int64     `json:"payment_id"`
	UserID             *int64    `json:"user_id"`
	UserName           *string   `json:"user_name"`
	ProductID          *int64    `json:"product_id"`
	ProductName        *string   `json:"product_name"`
	ProductDescription *string   `json:"product_description"`
	Amount             int64     `json:"amount"`
	Accepted           bool      `json:"accepted"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CreatePaymentResult is the success payload of the creation workflow:
// payment metadata plus the provider's charge metadata and the fixed
// confirmation redirect target.
type CreatePaymentResult struct {
	Message         string      `json:"message"`
	PaymentInfo     PaymentView `json:"payment_info"`
	ChargeID        string      `json:"charge"`
	PaymentIntentID string      `json:"payment_intent_id"`
	PaymentMethod   string      `json:"payment_method"`
	PaymentStatus   string      `json:"payment_status"`
	RedirectURL     string      `json:"redirect_url"`
}

// UpdatePaymentResult echoes the overwritten row plus the product name
type UpdatePaymentResult struct {
	Message string          `json:"message"`
	Payment *Payment        `json:"payment"`
	Product *ProductSummary `json:"product,omitempty"`
}

type ProductSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ConfirmPaymentRequest is the POST /api/payments/confirm body
type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
	PaymentMethod   string `json:"payment_method"`
}

// PaymentService defines the business logic interface
type PaymentService interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error)
	FindPayment(ctx context.Context, id int64) (*PaymentView, error)
	FindAllPayments(ctx context.Context) ([]*PaymentView, error)
	UpdatePayment(ctx context.Context, id int64, req UpdatePaymentRequest) (*UpdatePaymentResult, error)
	DeletePayment(ctx context.Context, id int64) error
	PaymentIntent(ctx context.Context, paymentID int64) (*processor.ChargeResult, error)
	ConfirmPayment(ctx context.Context, intentID, paymentMethod string) (*processor.ChargeResult, error)
	PaymentLinks(ctx context.Context) ([]processor.PaymentLink, error)
}
