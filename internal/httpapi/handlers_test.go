package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Samsuesca/uniformes-backend/internal/domain"
	"github.com/Samsuesca/uniformes-backend/internal/drafts"
	"github.com/Samsuesca/uniformes-backend/internal/service"
	"github.com/Samsuesca/uniformes-backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	svc := service.New(repo, drafts.NewMemoryStore(0, 0))
	auth := NewAuthManager("test-secret-key", time.Hour, "123456", repo)

	return New(svc, auth, "*")
}

// mustHashPassword generates a bcrypt hash of the given password or fails the test.
func mustHashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_Success(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["access_token"] == "" || body["access_token"] == nil {
		t.Fatalf("expected access_token in response, got %v", body)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "wrongpassword",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleSchools_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schools", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleSchools_WithValidToken(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schools", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["schools"] == nil {
		t.Fatalf("expected schools key in response, got %v", body)
	}
}

func TestHandleSchoolProducts(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schools/sch-sanjose/products?garment_type=Camisa", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Products) == 0 {
		t.Fatalf("expected seeded camisa products for sch-sanjose")
	}
	for _, p := range body.Products {
		if p.GarmentType != "Camisa" {
			t.Fatalf("unexpected garment type %s in filtered listing", p.GarmentType)
		}
	}
}

func TestHandleCheckout_MultiSchool(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	payload, _ := json.Marshal(domain.CheckoutRequest{
		TerminalID: "terminal-1",
		Items: []domain.CartItem{
			{ProductID: "prod-sj-camisa-10", Qty: 1},
			{ProductID: "prod-ls-falda-8", Qty: 1},
		},
		Payments: []domain.PaymentLine{
			{ID: "p1", Method: domain.PaymentMethodCash, AmountCents: 1000_00},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp domain.CheckoutResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 school sales, got %d", len(resp.Results))
	}
	if resp.GrandTotal != 1000_00 {
		t.Fatalf("expected grand total 100000, got %d", resp.GrandTotal)
	}
}

func TestHandleCheckout_RequiresCSRF(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)

	payload, _ := json.Marshal(domain.CheckoutRequest{
		TerminalID: "terminal-1",
		Items: []domain.CartItem{
			{ProductID: "prod-sj-camisa-10", Qty: 1},
		},
		Payments: []domain.PaymentLine{
			{ID: "p1", Method: domain.PaymentMethodCash, AmountCents: 450_00},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without CSRF token, got %d", rec.Code)
	}
}

func TestHandleCheckout_PaymentMismatchReturns400(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	payload, _ := json.Marshal(domain.CheckoutRequest{
		TerminalID: "terminal-1",
		Items: []domain.CartItem{
			{ProductID: "prod-sj-camisa-10", Qty: 1},
		},
		Payments: []domain.PaymentLine{
			{ID: "p1", Method: domain.PaymentMethodCash, AmountCents: 1_00},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-CSRF-Token", csrf)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for payment mismatch, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleVoidSale_ManagerPIN(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	checkoutPayload, _ := json.Marshal(domain.CheckoutRequest{
		TerminalID: "terminal-1",
		Items: []domain.CartItem{
			{ProductID: "prod-sj-camisa-10", Qty: 1},
		},
		Payments: []domain.PaymentLine{
			{ID: "p1", Method: domain.PaymentMethodCash, AmountCents: 450_00},
		},
	})
	checkoutReq := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader(checkoutPayload))
	checkoutReq.Header.Set("Content-Type", "application/json")
	checkoutReq.Header.Set("Authorization", "Bearer "+token)
	checkoutReq.Header.Set("X-CSRF-Token", csrf)
	checkoutRec := httptest.NewRecorder()
	handler.ServeHTTP(checkoutRec, checkoutReq)
	if checkoutRec.Code != http.StatusOK {
		t.Fatalf("checkout failed: %d %s", checkoutRec.Code, checkoutRec.Body.String())
	}

	var checkoutResp domain.CheckoutResponse
	if err := json.NewDecoder(checkoutRec.Body).Decode(&checkoutResp); err != nil {
		t.Fatalf("decode checkout response: %v", err)
	}
	saleID := checkoutResp.Results[0].SaleID

	wrongPIN, _ := json.Marshal(map[string]string{"reason": "test", "manager_pin": "000000"})
	wrongReq := httptest.NewRequest(http.MethodPost, "/api/v1/sales/"+saleID+"/void", bytes.NewReader(wrongPIN))
	wrongReq.Header.Set("Content-Type", "application/json")
	wrongReq.Header.Set("Authorization", "Bearer "+token)
	wrongReq.Header.Set("X-CSRF-Token", csrf)
	wrongRec := httptest.NewRecorder()
	handler.ServeHTTP(wrongRec, wrongReq)
	if wrongRec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong pin, got %d", wrongRec.Code)
	}

	goodPIN, _ := json.Marshal(map[string]string{"reason": "wrong size", "manager_pin": "123456"})
	goodReq := httptest.NewRequest(http.MethodPost, "/api/v1/sales/"+saleID+"/void", bytes.NewReader(goodPIN))
	goodReq.Header.Set("Content-Type", "application/json")
	goodReq.Header.Set("Authorization", "Bearer "+token)
	goodReq.Header.Set("X-CSRF-Token", csrf)
	goodRec := httptest.NewRecorder()
	handler.ServeHTTP(goodRec, goodReq)
	if goodRec.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid pin, got %d (body: %s)", goodRec.Code, goodRec.Body.String())
	}

	var voidResp domain.VoidSaleResponse
	if err := json.NewDecoder(goodRec.Body).Decode(&voidResp); err != nil {
		t.Fatalf("decode void response: %v", err)
	}
	if voidResp.Status != domain.SaleStatusVoided {
		t.Fatalf("expected voided status, got %s", voidResp.Status)
	}
}

func TestHandleDrafts_SaveAndResume(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	savePayload, _ := json.Marshal(domain.DraftSaveRequest{
		TerminalID: "terminal-1",
		Items: []domain.CartItem{
			{ProductID: "prod-sj-camisa-10", Qty: 1},
		},
	})
	saveReq := httptest.NewRequest(http.MethodPost, "/api/v1/drafts", bytes.NewReader(savePayload))
	saveReq.Header.Set("Content-Type", "application/json")
	saveReq.Header.Set("Authorization", "Bearer "+token)
	saveReq.Header.Set("X-CSRF-Token", csrf)
	saveRec := httptest.NewRecorder()
	handler.ServeHTTP(saveRec, saveReq)
	if saveRec.Code != http.StatusCreated {
		t.Fatalf("save draft failed: %d %s", saveRec.Code, saveRec.Body.String())
	}

	var saveResp struct {
		Draft domain.SaleDraft `json:"draft"`
	}
	if err := json.NewDecoder(saveRec.Body).Decode(&saveResp); err != nil {
		t.Fatalf("decode save response: %v", err)
	}

	resumeReq := httptest.NewRequest(http.MethodPost, "/api/v1/drafts/"+saveResp.Draft.ID+"/resume?terminal_id=terminal-1", nil)
	resumeReq.Header.Set("Authorization", "Bearer "+token)
	resumeReq.Header.Set("X-CSRF-Token", csrf)
	resumeRec := httptest.NewRecorder()
	handler.ServeHTTP(resumeRec, resumeReq)
	if resumeRec.Code != http.StatusOK {
		t.Fatalf("resume draft failed: %d %s", resumeRec.Code, resumeRec.Body.String())
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/drafts?terminal_id=terminal-1", nil)
	listReq.Header.Set("Authorization", "Bearer "+token)
	listRec := httptest.NewRecorder()
	handler.ServeHTTP(listRec, listReq)

	var listResp domain.DraftListResponse
	if err := json.NewDecoder(listRec.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listResp.Drafts) != 0 {
		t.Fatalf("expected no drafts after resume, got %d", len(listResp.Drafts))
	}
}

func TestHandleReports_SellerForbidden(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	loginPayload, _ := json.Marshal(map[string]string{
		"username": "seller",
		"password": "seller123",
	})
	loginReq := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(loginPayload))
	loginReq.Header.Set("Content-Type", "application/json")
	loginRec := httptest.NewRecorder()
	handler.ServeHTTP(loginRec, loginReq)
	if loginRec.Code != http.StatusOK {
		t.Fatalf("seller login failed: %d %s", loginRec.Code, loginRec.Body.String())
	}
	var loginResp domain.LoginResponse
	if err := json.NewDecoder(loginRec.Body).Decode(&loginResp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/daily", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for seller on reports, got %d", rec.Code)
	}
}

// TestMustHashPassword verifies that the test helper produces valid bcrypt hashes
// (used to confirm test infrastructure is sound).
func TestMustHashPassword(t *testing.T) {
	hash := mustHashPassword(t, "secret")
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")); err != nil {
		t.Fatalf("hash verification failed: %v", err)
	}
}
