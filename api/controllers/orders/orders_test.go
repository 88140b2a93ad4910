package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/rxcart-backend/api/middleware"
	internalorders "github.com/angelmondragon/rxcart-backend/internal/orders"
	"github.com/angelmondragon/rxcart-backend/pkg/auth"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
	"github.com/angelmondragon/rxcart-backend/pkg/pagination"
)

type stubOrdersService struct {
	order       *internalorders.OrderDTO
	advance     *internalorders.AdvanceOrderDTO
	page        pagination.Page[internalorders.OrderDTO]
	err         error
	lastStatus  string
	lastCode    string
	lastQty     int
	lastItem    uuid.UUID
	lastAdvance internalorders.AdvanceStatusInput
}

func (s *stubOrdersService) UpdateStatus(ctx context.Context, actor auth.Actor, orderID uuid.UUID, status string) (*internalorders.OrderDTO, error) {
	s.lastStatus = status
	return s.order, s.err
}

func (s *stubOrdersService) UpdateAdvanceStatus(ctx context.Context, actor auth.Actor, advanceID uuid.UUID, input internalorders.AdvanceStatusInput) (*internalorders.AdvanceOrderDTO, error) {
	s.lastAdvance = input
	return s.advance, s.err
}

func (s *stubOrdersService) UpdateItemQuantity(ctx context.Context, actor auth.Actor, orderID, itemID uuid.UUID, qty int) (*internalorders.OrderDTO, error) {
	s.lastItem = itemID
	s.lastQty = qty
	return s.order, s.err
}

func (s *stubOrdersService) RemoveItem(ctx context.Context, actor auth.Actor, orderID, itemID uuid.UUID) (*internalorders.OrderDTO, error) {
	s.lastItem = itemID
	return s.order, s.err
}

func (s *stubOrdersService) VerifyPickup(ctx context.Context, actor auth.Actor, orderID uuid.UUID, code string) (*internalorders.OrderDTO, error) {
	s.lastCode = code
	return s.order, s.err
}

func (s *stubOrdersService) Get(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrdersService) ListForCustomer(ctx context.Context, customerID uuid.UUID, limit int, cursor string) (pagination.Page[internalorders.OrderDTO], error) {
	return s.page, s.err
}

func (s *stubOrdersService) ListForPharmacy(ctx context.Context, actor auth.Actor, status string, limit int, cursor string) (pagination.Page[internalorders.OrderDTO], error) {
	s.lastStatus = status
	return s.page, s.err
}

func staffRequest(method, target, body string, params map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	pharmacyID := uuid.New()
	actor := auth.Actor{UserID: uuid.New(), Role: enums.UserRolePharmacyStaff, PharmacyID: &pharmacyID}
	ctx := middleware.WithActor(req.Context(), actor)
	rc := chi.NewRouteContext()
	for k, v := range params {
		rc.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(ctx, chi.RouteCtxKey, rc))
}

func TestUpdateStatusForwardsRawStatus(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{order: &internalorders.OrderDTO{ID: orderID, Status: enums.OrderStatusReady}}
	req := staffRequest(http.MethodPatch, "/api/v1/pharmacy/orders/"+orderID.String()+"/status", `{"status":"ready"}`, map[string]string{"orderId": orderID.String()})
	resp := httptest.NewRecorder()

	UpdateStatus(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastStatus != "ready" {
		t.Fatalf("unexpected status %q", svc.lastStatus)
	}
	var envelope struct {
		Data internalorders.OrderDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Status != enums.OrderStatusReady {
		t.Fatalf("unexpected order %+v", envelope.Data)
	}
}

func TestUpdateStatusRejectsBadOrderID(t *testing.T) {
	req := staffRequest(http.MethodPatch, "/api/v1/pharmacy/orders/nope/status", `{"status":"ready"}`, map[string]string{"orderId": "nope"})
	resp := httptest.NewRecorder()

	UpdateStatus(&stubOrdersService{}, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUpdateItemQuantityMapsTerminalOrder(t *testing.T) {
	orderID, itemID := uuid.New(), uuid.New()
	svc := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "order is completed")}
	req := staffRequest(http.MethodPatch, "/", `{"quantity":2}`, map[string]string{"orderId": orderID.String(), "itemId": itemID.String()})
	resp := httptest.NewRecorder()

	UpdateItemQuantity(svc, nil)(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	if svc.lastItem != itemID || svc.lastQty != 2 {
		t.Fatalf("unexpected item update %s x%d", svc.lastItem, svc.lastQty)
	}
}

func TestVerifyPickupValidatesCodeShape(t *testing.T) {
	orderID := uuid.New()
	req := staffRequest(http.MethodPost, "/", `{"code":"12ab"}`, map[string]string{"orderId": orderID.String()})
	resp := httptest.NewRecorder()

	VerifyPickup(&stubOrdersService{}, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestVerifyPickupForwardsCode(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{order: &internalorders.OrderDTO{ID: orderID, IsVerified: true}}
	req := staffRequest(http.MethodPost, "/", `{"code":"654321"}`, map[string]string{"orderId": orderID.String()})
	resp := httptest.NewRecorder()

	VerifyPickup(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastCode != "654321" {
		t.Fatalf("unexpected code %q", svc.lastCode)
	}
}

func TestPharmacyListPassesStatusFilter(t *testing.T) {
	svc := &stubOrdersService{}
	req := staffRequest(http.MethodGet, "/api/v1/pharmacy/orders?status=pending", "", nil)
	resp := httptest.NewRecorder()

	PharmacyList(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastStatus != "pending" {
		t.Fatalf("unexpected status filter %q", svc.lastStatus)
	}
}

func TestUpdateAdvanceStatusCarriesSupplier(t *testing.T) {
	advanceID := uuid.New()
	svc := &stubOrdersService{advance: &internalorders.AdvanceOrderDTO{ID: advanceID}}
	body := `{"status":"ordered","supplier_name":"MedSupply","estimated_delivery":"2026-06-01T10:00:00Z"}`
	req := staffRequest(http.MethodPatch, "/", body, map[string]string{"advanceOrderId": advanceID.String()})
	resp := httptest.NewRecorder()

	UpdateAdvanceStatus(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastAdvance.SupplierName == nil || *svc.lastAdvance.SupplierName != "MedSupply" {
		t.Fatalf("expected supplier name forwarded")
	}
	if svc.lastAdvance.EstimatedDelivery == nil {
		t.Fatalf("expected estimated delivery forwarded")
	}
}
