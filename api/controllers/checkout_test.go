package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	checkoutsvc "github.com/angelmondragon/rxcart-backend/internal/checkout"
	"github.com/angelmondragon/rxcart-backend/internal/orders"
	"github.com/angelmondragon/rxcart-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
)

type stubCheckoutService struct {
	order    *orders.OrderDTO
	intent   *checkoutsvc.PaymentIntent
	err      error
	lastForm checkoutsvc.Form
	actor    auth.Actor
}

func (s *stubCheckoutService) Execute(ctx context.Context, actor auth.Actor, form checkoutsvc.Form) (*orders.OrderDTO, error) {
	s.actor = actor
	s.lastForm = form
	return s.order, s.err
}

func (s *stubCheckoutService) BeginOnlinePayment(ctx context.Context, actor auth.Actor, form checkoutsvc.Form) (*checkoutsvc.PaymentIntent, error) {
	s.actor = actor
	s.lastForm = form
	return s.intent, s.err
}

func (s *stubCheckoutService) CompleteOnlinePayment(context.Context, auth.Actor, checkoutsvc.GatewayPayment, checkoutsvc.Form) (*orders.OrderDTO, error) {
	return s.order, s.err
}

func TestCheckoutCreatesOrder(t *testing.T) {
	actor := customerActor()
	svc := &stubCheckoutService{order: &orders.OrderDTO{ID: uuid.New(), TotalAmount: decimal.RequireFromString("85.00")}}
	body := `{"delivery_method":"home_delivery","delivery_address":"12 MG Road","payment_method":"cod"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body)), actor)
	resp := httptest.NewRecorder()

	Checkout(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.actor.UserID != actor.UserID {
		t.Fatalf("expected actor forwarded")
	}
	if svc.lastForm.DeliveryAddress != "12 MG Road" || svc.lastForm.PaymentMethod != "cod" {
		t.Fatalf("unexpected form %+v", svc.lastForm)
	}
}

func TestCheckoutRejectsUnknownDeliveryMethod(t *testing.T) {
	body := `{"delivery_method":"drone","payment_method":"cod"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body)), customerActor())
	resp := httptest.NewRecorder()

	Checkout(&stubCheckoutService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutRejectsUnknownFields(t *testing.T) {
	body := `{"delivery_method":"pickup","payment_method":"cod","coupon":"FREE"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body)), customerActor())
	resp := httptest.NewRecorder()

	Checkout(&stubCheckoutService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutMapsEmptyCart(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")}
	body := `{"delivery_method":"pickup","payment_method":"cod"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body)), customerActor())
	resp := httptest.NewRecorder()

	Checkout(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Message != "cart is empty" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func TestCheckoutPaymentIntentReturnsMinorUnits(t *testing.T) {
	svc := &stubCheckoutService{intent: &checkoutsvc.PaymentIntent{GatewayOrderID: "order_123", AmountMinor: 8500, Currency: "INR"}}
	body := `{"delivery_method":"home_delivery","delivery_address":"12 MG Road","payment_method":"online"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/checkout/payment-intent", strings.NewReader(body)), customerActor())
	resp := httptest.NewRecorder()

	CheckoutPaymentIntent(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	var envelope struct {
		Data checkoutsvc.PaymentIntent `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.GatewayOrderID != "order_123" || envelope.Data.AmountMinor != 8500 {
		t.Fatalf("unexpected intent %+v", envelope.Data)
	}
}
