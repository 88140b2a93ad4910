package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/rxcart-backend/pkg/auth"
	"github.com/angelmondragon/rxcart-backend/pkg/config"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testJWT, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testJWT, nil)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsPharmacyActor(t *testing.T) {
	pharmacyID := uuid.New()
	token := mintTestToken(t, enums.UserRolePharmacyStaff, &pharmacyID)

	var captured auth.Actor
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.Role != enums.UserRolePharmacyStaff {
		t.Fatalf("expected staff role got %s", captured.Role)
	}
	if !captured.MemberOf(pharmacyID) {
		t.Fatalf("expected actor to act for %s", pharmacyID)
	}
}

func TestAuthSeedsCustomerWithoutPharmacy(t *testing.T) {
	token := mintTestToken(t, enums.UserRoleCustomer, nil)

	var pharmacy string
	var user string
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = UserIDFromContext(r.Context())
		pharmacy = PharmacyIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if user == "" {
		t.Fatal("expected user id in context")
	}
	if pharmacy != "" {
		t.Fatalf("expected empty pharmacy got %s", pharmacy)
	}
}

func mintTestToken(t *testing.T, role enums.UserRole, pharmacyID *uuid.UUID) string {
	t.Helper()
	token, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{
		UserID:     uuid.New(),
		Role:       role,
		PharmacyID: pharmacyID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
