package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"enterprise-pos/internal/domain"
	"enterprise-pos/internal/hold"
	"enterprise-pos/internal/pos"
	productrepo "enterprise-pos/internal/repository/product"
	salerepo "enterprise-pos/internal/repository/sale"
)

type stubCatalog struct {
	products map[string]domain.Product
	listed   []domain.Product
	err      error
}

func (s *stubCatalog) List(_ context.Context, _ productrepo.ListFilter) ([]domain.Product, error) {
	return s.listed, s.err
}

func (s *stubCatalog) Get(_ context.Context, id string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubCatalog) Categories(_ context.Context) ([]domain.Category, error) {
	return nil, s.err
}

type stubCustomers struct {
	customer *domain.Customer
	err      error
}

func (s *stubCustomers) Find(_ context.Context, _ string) (*domain.Customer, error) {
	if s.customer == nil && s.err == nil {
		return nil, domain.ErrNotFound
	}
	return s.customer, s.err
}

func (s *stubCustomers) Search(_ context.Context, _ string, _ int) ([]domain.Customer, error) {
	if s.customer == nil {
		return nil, s.err
	}
	return []domain.Customer{*s.customer}, s.err
}

type stubSaleStore struct {
	result  *pos.SaleResult
	err     error
	calls   int
	lastReq pos.SaleRequest
}

func (s *stubSaleStore) CreateSale(_ context.Context, req pos.SaleRequest) (*pos.SaleResult, error) {
	s.calls++
	s.lastReq = req
	return s.result, s.err
}

type stubReceipts struct {
	receipt *domain.Receipt
	err     error
}

func (s *stubReceipts) GetReceipt(_ context.Context, _ string) (*domain.Receipt, error) {
	return s.receipt, s.err
}

type stubRefunds struct {
	result     *salerepo.RefundResult
	err        error
	lastSaleID string
	lastReason string
}

func (s *stubRefunds) RefundSale(_ context.Context, saleID, reason string) (*salerepo.RefundResult, error) {
	s.lastSaleID = saleID
	s.lastReason = reason
	return s.result, s.err
}

func testRouter(t *testing.T, store pos.SaleStore, catalog CatalogService) *gin.Engine {
	t.Helper()
	return refundRouter(t, store, catalog, &stubRefunds{err: domain.ErrNotFound})
}

func refundRouter(t *testing.T, store pos.SaleStore, catalog CatalogService, refunds RefundStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard, "", 0)
	return buildRouter(logger, nil, Deps{
		Catalog:           catalog,
		Customers:         &stubCustomers{},
		Checkout:          pos.NewCheckout(store, nil),
		Receipts:          &stubReceipts{err: domain.ErrNotFound},
		Refunds:           refunds,
		Holds:             hold.NewStore(),
		DefaultTaxPercent: 15,
		CORSOrigins:       []string{"*"},
	})
}

func vinylCatalog() *stubCatalog {
	return &stubCatalog{products: map[string]domain.Product{
		"p1": {ID: "p1", Name: "Vinyl", PriceCents: 2999, StockQuantity: 4, IsActive: true},
	}}
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCheckout_Success(t *testing.T) {
	store := &stubSaleStore{result: &pos.SaleResult{SaleID: "s1", ReceiptNumber: "RCP-20260826-4242"}}
	router := testRouter(t, store, vinylCatalog())

	rec := postJSON(t, router, "/api/v1/pos/checkout", map[string]interface{}{
		"items":               []map[string]interface{}{{"productId": "p1", "quantity": 2}},
		"paymentMethod":       "cash",
		"amountTenderedCents": 7000,
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp checkoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.SaleID != "s1" || resp.ReceiptNumber != "RCP-20260826-4242" {
		t.Fatalf("unexpected response %+v", resp)
	}
	// default 15% tax: subtotal 5998, tax 900, total 6898, change 102
	if resp.TotalCents != 6898 || resp.ChangeDueCents != 102 {
		t.Fatalf("unexpected totals %+v", resp)
	}
	if store.calls != 1 {
		t.Fatalf("expected 1 store call, got %d", store.calls)
	}
	if store.lastReq.Lines[0].UnitPriceCents != 2999 {
		t.Fatalf("expected catalog price in request, got %+v", store.lastReq.Lines)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	store := &stubSaleStore{}
	router := testRouter(t, store, vinylCatalog())

	rec := postJSON(t, router, "/api/v1/pos/checkout", map[string]interface{}{
		"items": []map[string]interface{}{},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if store.calls != 0 {
		t.Fatalf("expected no store call, got %d", store.calls)
	}
}

func TestCheckout_InsufficientPayment(t *testing.T) {
	store := &stubSaleStore{}
	router := testRouter(t, store, vinylCatalog())

	rec := postJSON(t, router, "/api/v1/pos/checkout", map[string]interface{}{
		"items":               []map[string]interface{}{{"productId": "p1", "quantity": 2}},
		"paymentMethod":       "cash",
		"amountTenderedCents": 6000,
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["code"] != "INSUFFICIENT_PAYMENT" || body["shortfallCents"] != float64(898) {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestCheckout_OutOfStockConflict(t *testing.T) {
	store := &stubSaleStore{err: &pos.OutOfStockError{ProductID: "p1", Available: 1}}
	router := testRouter(t, store, vinylCatalog())

	rec := postJSON(t, router, "/api/v1/pos/checkout", map[string]interface{}{
		"items":         []map[string]interface{}{{"productId": "p1", "quantity": 2}},
		"paymentMethod": "card",
	})

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCheckout_UnknownProduct(t *testing.T) {
	store := &stubSaleStore{}
	router := testRouter(t, store, vinylCatalog())

	rec := postJSON(t, router, "/api/v1/pos/checkout", map[string]interface{}{
		"items": []map[string]interface{}{{"productId": "missing", "quantity": 1}},
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	if store.calls != 0 {
		t.Fatalf("expected no store call, got %d", store.calls)
	}
}

func TestCheckout_ServiceUnavailable(t *testing.T) {
	store := &stubSaleStore{err: pos.ErrServiceUnavailable}
	router := testRouter(t, store, vinylCatalog())

	rec := postJSON(t, router, "/api/v1/pos/checkout", map[string]interface{}{
		"items":         []map[string]interface{}{{"productId": "p1", "quantity": 1}},
		"paymentMethod": "card",
	})

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCheckout_ValidationError(t *testing.T) {
	store := &stubSaleStore{err: &pos.ValidationError{Field: "customerId", Reason: "unknown customer"}}
	router := testRouter(t, store, vinylCatalog())

	rec := postJSON(t, router, "/api/v1/pos/checkout", map[string]interface{}{
		"items":         []map[string]interface{}{{"productId": "p1", "quantity": 1}},
		"paymentMethod": "card",
		"customerId":    "nobody",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["code"] != "VALIDATION" || body["field"] != "customerId" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestRefundSale_Success(t *testing.T) {
	refunds := &stubRefunds{result: &salerepo.RefundResult{SaleID: "s1", RefundedCents: 6898}}
	router := refundRouter(t, &stubSaleStore{}, vinylCatalog(), refunds)

	rec := postJSON(t, router, "/api/v1/pos/sales/s1/refund", map[string]interface{}{
		"reason": "damaged sleeve",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["saleId"] != "s1" || body["refundedCents"] != float64(6898) || body["status"] != "refunded" {
		t.Fatalf("unexpected body %v", body)
	}
	if refunds.lastSaleID != "s1" || refunds.lastReason != "damaged sleeve" {
		t.Fatalf("unexpected refund call saleID=%q reason=%q", refunds.lastSaleID, refunds.lastReason)
	}
}

func TestRefundSale_AlreadyRefunded(t *testing.T) {
	refunds := &stubRefunds{err: pos.ErrAlreadyRefunded}
	router := refundRouter(t, &stubSaleStore{}, vinylCatalog(), refunds)

	rec := postJSON(t, router, "/api/v1/pos/sales/s1/refund", nil)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRefundSale_NotFound(t *testing.T) {
	router := refundRouter(t, &stubSaleStore{}, vinylCatalog(), &stubRefunds{err: domain.ErrNotFound})

	rec := postJSON(t, router, "/api/v1/pos/sales/missing/refund", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHoldAndResumeRoundTrip(t *testing.T) {
	store := &stubSaleStore{}
	router := testRouter(t, store, vinylCatalog())

	rec := postJSON(t, router, "/api/v1/pos/holds", map[string]interface{}{
		"items": []map[string]interface{}{{"productId": "p1", "quantity": 2}},
		"note":  "customer stepping out",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	var held hold.HeldCart
	if err := json.Unmarshal(rec.Body.Bytes(), &held); err != nil {
		t.Fatalf("unmarshal hold: %v", err)
	}
	if held.Reference == "" || len(held.Lines) != 1 || held.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected hold %+v", held)
	}

	resume := postJSON(t, router, "/api/v1/pos/holds/"+held.Reference+"/resume", nil)
	if resume.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", resume.Code, resume.Body.String())
	}

	again := postJSON(t, router, "/api/v1/pos/holds/"+held.Reference+"/resume", nil)
	if again.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second resume, got %d", again.Code)
	}
}

func TestListProducts(t *testing.T) {
	catalog := vinylCatalog()
	catalog.listed = []domain.Product{
		{ID: "p1", Name: "Vinyl", PriceCents: 2999, StockQuantity: 1, MinStockLevel: 5, IsActive: true},
	}
	router := testRouter(t, &stubSaleStore{}, catalog)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pos/products?search=vin", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Items []posProduct `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if len(body.Items) != 1 || !body.Items[0].IsLowStock {
		t.Fatalf("unexpected items %+v", body.Items)
	}
}
