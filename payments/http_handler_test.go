package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgarrido/payments-api/login"
	"github.com/tgarrido/payments-api/payments/processor"
	"github.com/tgarrido/payments-api/users"
)

// mockService implements PaymentService with func fields
type mockService struct {
	CreatePaymentFunc   func(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error)
	FindPaymentFunc     func(ctx context.Context, id int64) (*PaymentView, error)
	FindAllPaymentsFunc func(ctx context.Context) ([]*PaymentView, error)
	UpdatePaymentFunc   func(ctx context.Context, id int64, req UpdatePaymentRequest) (*UpdatePaymentResult, error)
	DeletePaymentFunc   func(ctx context.Context, id int64) error
	PaymentIntentFunc   func(ctx context.Context, paymentID int64) (*processor.ChargeResult, error)
	ConfirmPaymentFunc  func(ctx context.Context, intentID, paymentMethod string) (*processor.ChargeResult, error)
	PaymentLinksFunc    func(ctx context.Context) ([]processor.PaymentLink, error)
}

func (m *mockService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error) {
	return m.CreatePaymentFunc(ctx, req)
}

func (m *mockService) FindPayment(ctx context.Context, id int64) (*PaymentView, error) {
	return m.FindPaymentFunc(ctx, id)
}

func (m *mockService) FindAllPayments(ctx context.Context) ([]*PaymentView, error) {
	return m.FindAllPaymentsFunc(ctx)
}

func (m *mockService) UpdatePayment(ctx context.Context, id int64, req UpdatePaymentRequest) (*UpdatePaymentResult, error) {
	return m.UpdatePaymentFunc(ctx, id, req)
}

func (m *mockService) DeletePayment(ctx context.Context, id int64) error {
	return m.DeletePaymentFunc(ctx, id)
}

func (m *mockService) PaymentIntent(ctx context.Context, paymentID int64) (*processor.ChargeResult, error) {
	return m.PaymentIntentFunc(ctx, paymentID)
}

func (m *mockService) ConfirmPayment(ctx context.Context, intentID, paymentMethod string) (*processor.ChargeResult, error) {
	return m.ConfirmPaymentFunc(ctx, intentID, paymentMethod)
}

func (m *mockService) PaymentLinks(ctx context.Context) ([]processor.PaymentLink, error) {
	return m.PaymentLinksFunc(ctx)
}

var testSecret = []byte("test-secret")

func newTestServer(t *testing.T, svc PaymentService) *httptest.Server {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	NewHTTPHandler(svc, login.RequireAuth(testSecret), log).RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHandleCreatePayment(t *testing.T) {
	svc := &mockService{
		CreatePaymentFunc: func(_ context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error) {
			return &CreatePaymentResult{
				Message:         "Payment created successfully",
				PaymentInfo:     PaymentView{PaymentID: 1, Amount: req.Amount},
				ChargeID:        "ch_test",
				PaymentIntentID: "pi_123",
				PaymentMethod:   "pm_card",
				PaymentStatus:   "succeeded",
				RedirectURL:     "localhost:8000/confirm",
			}, nil
		},
	}
	srv := newTestServer(t, svc)

	payload := bytes.NewBufferString(`{"amount":1000,"user_id":1,"product_id":1}`)
	resp, err := http.Post(srv.URL+"/api/payments", "application/json", payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Payment created successfully", body["message"])
	assert.Equal(t, "ch_test", body["charge"])
	assert.Equal(t, "pi_123", body["payment_intent_id"])
	assert.Equal(t, "pm_card", body["payment_method"])
	assert.Equal(t, "succeeded", body["payment_status"])
}

func TestHandleCreatePaymentUnknownUser(t *testing.T) {
	svc := &mockService{
		CreatePaymentFunc: func(context.Context, CreatePaymentRequest) (*CreatePaymentResult, error) {
			return nil, users.ErrUserNotFound
		},
	}
	srv := newTestServer(t, svc)

	payload := bytes.NewBufferString(`{"amount":1000,"user_id":99,"product_id":1}`)
	resp, err := http.Post(srv.URL+"/api/payments", "application/json", payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "User not found", body["error"])
}

func TestHandleCreatePaymentProviderDeclined(t *testing.T) {
	svc := &mockService{
		CreatePaymentFunc: func(context.Context, CreatePaymentRequest) (*CreatePaymentResult, error) {
			return nil, &processor.ProviderError{Code: "card_declined", Message: "card_declined"}
		},
	}
	srv := newTestServer(t, svc)

	payload := bytes.NewBufferString(`{"amount":1000,"user_id":1,"product_id":1}`)
	resp, err := http.Post(srv.URL+"/api/payments", "application/json", payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Payment processing failed", body["error"])
	assert.Equal(t, "card_declined", body["details"])
}

func TestHandleCreatePaymentMissingFields(t *testing.T) {
	srv := newTestServer(t, &mockService{})

	payload := bytes.NewBufferString(`{"amount":0,"user_id":1,"product_id":1}`)
	resp, err := http.Post(srv.URL+"/api/payments", "application/json", payload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestHandleGetPaymentInvalidID(t *testing.T) {
	srv := newTestServer(t, &mockService{})

	resp, err := http.Get(srv.URL + "/api/payments/abc")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestHandleGetPaymentNotFound(t *testing.T) {
	svc := &mockService{
		FindPaymentFunc: func(context.Context, int64) (*PaymentView, error) {
			return nil, ErrPaymentNotFound
		},
	}
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/api/payments/42")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Payment ID not found", body["error"])
}

func TestHandleListPaymentsEmpty(t *testing.T) {
	svc := &mockService{
		FindAllPaymentsFunc: func(context.Context) ([]*PaymentView, error) {
			return []*PaymentView{}, nil
		},
	}
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/api/payments")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var views []PaymentView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	assert.Empty(t, views)
}

func TestHandleDeletePayment(t *testing.T) {
	svc := &mockService{
		DeletePaymentFunc: func(_ context.Context, id int64) error {
			require.Equal(t, int64(7), id)
			return nil
		},
	}
	srv := newTestServer(t, svc)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/payments/7", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Payment 7 deleted successfully", body["message"])
}

func TestHandlePaymentLinksRequiresAuth(t *testing.T) {
	svc := &mockService{
		PaymentLinksFunc: func(context.Context) ([]processor.PaymentLink, error) {
			return []processor.PaymentLink{{ID: "plink_1", URL: "https://buy.stripe.com/x", Active: true}}, nil
		},
	}
	srv := newTestServer(t, svc)

	// No token: rejected.
	resp, err := http.Get(srv.URL + "/api/payments/payment_links")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Valid bearer token: accepted.
	token, err := login.CreateToken(testSecret, "a@example.com", time.Hour)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/payments/payment_links", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var links []processor.PaymentLink
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&links))
	require.Len(t, links, 1)
	assert.Equal(t, "plink_1", links[0].ID)
}

func TestHandleConfirmPayment(t *testing.T) {
	svc := &mockService{
		ConfirmPaymentFunc: func(_ context.Context, intentID, paymentMethod string) (*processor.ChargeResult, error) {
			return &processor.ChargeResult{PaymentIntentID: intentID, PaymentMethod: paymentMethod, Status: "succeeded"}, nil
		},
	}
	srv := newTestServer(t, svc)

	payload := bytes.NewBufferString(`{"payment_intent_id":"pi_123","payment_method":"pm_card"}`)
	resp, err := http.Post(srv.URL+"/api/payments/confirm", "application/json", payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "pi_123", body["payment_intent_id"])
	assert.Equal(t, "succeeded", body["status"])
}

func TestHandleConfirmPaymentMissingFields(t *testing.T) {
	srv := newTestServer(t, &mockService{})

	payload := bytes.NewBufferString(`{"payment_intent_id":"","payment_method":""}`)
	resp, err := http.Post(srv.URL+"/api/payments/confirm", "application/json", payload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
