package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dirhamflow/internal/advisor"
	"dirhamflow/internal/core"
	"dirhamflow/internal/ledger"
	"dirhamflow/internal/services"
	"dirhamflow/internal/storage"
)

type stubAdvisor struct{ text string }

func (s stubAdvisor) Advise(ctx context.Context, txns []core.Transaction) (string, error) {
	return s.text, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := ledger.New(context.Background(), storage.NewMemoryPersister())
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}
	svc := services.NewLedgerService(store, nil)
	runner := advisor.NewRunner(stubAdvisor{text: "use the Metro"}, svc.ListTransactions, time.Second)
	return NewServer(":0", svc, runner)
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
	}
}

func TestCreateTransactionValidationAndSuccess(t *testing.T) {
	srv := newTestServer(t)

	// Malformed body
	rr := doJSON(t, srv, http.MethodPost, "/transactions", `{"amount":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	// Negative amount
	rr = doJSON(t, srv, http.MethodPost, "/transactions",
		`{"amount":-5,"type":"expense","category":"Other","description":"x"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	// Missing description
	rr = doJSON(t, srv, http.MethodPost, "/transactions",
		`{"amount":5,"type":"expense","category":"Other","description":"  "}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	// Unknown type
	rr = doJSON(t, srv, http.MethodPost, "/transactions",
		`{"amount":5,"type":"transfer","category":"Other","description":"x"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}

	// Success
	rr = doJSON(t, srv, http.MethodPost, "/transactions",
		`{"amount":50,"type":"Expense","category":"Food & Dining","description":"Coffee"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created core.Transaction
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created transaction: %v", err)
	}
	if created.ID == "" || created.Type != core.Expense || created.Amount != 50 {
		t.Fatalf("unexpected created transaction: %+v", created)
	}
}

func TestListTransactionsNewestFirst(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/transactions",
		`{"amount":10,"type":"expense","category":"Transport","description":"Metro"}`)
	doJSON(t, srv, http.MethodPost, "/transactions",
		`{"amount":20,"type":"expense","category":"Transport","description":"Taxi"}`)

	rr := doJSON(t, srv, http.MethodGet, "/transactions", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var got []core.Transaction
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(got) != 2 || got[0].Description != "Taxi" || got[1].Description != "Metro" {
		t.Fatalf("expected newest-first list, got %+v", got)
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/transactions",
		`{"amount":10,"type":"expense","category":"Transport","description":"Metro"}`)
	var created core.Transaction
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created transaction: %v", err)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/transactions/"+created.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}

	// Deleting again is idempotent.
	rr = doJSON(t, srv, http.MethodDelete, "/transactions/"+created.ID, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("repeat delete status = %d", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/transactions", "")
	var got []core.Transaction
	_ = json.Unmarshal(rr.Body.Bytes(), &got)
	if len(got) != 0 {
		t.Fatalf("expected empty ledger, got %+v", got)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/transactions",
		`{"amount":50,"type":"expense","category":"Food & Dining","description":"Coffee"}`)
	doJSON(t, srv, http.MethodPost, "/transactions",
		`{"amount":5000,"type":"income","category":"Salary","description":"Paycheck"}`)

	rr := doJSON(t, srv, http.MethodGet, "/summary", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rr.Code)
	}
	var sum services.Summary
	if err := json.Unmarshal(rr.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Balance != 4950 || sum.TotalExpense != 50 || sum.TotalIncome != 5000 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if len(sum.ByCategory) != 1 || sum.ByCategory[0].Name != "Food & Dining" {
		t.Fatalf("unexpected breakdown: %+v", sum.ByCategory)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rr := doJSON(t, srv, http.MethodGet, "/categories", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("categories status = %d", rr.Code)
	}
	var cats []string
	if err := json.Unmarshal(rr.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if len(cats) == 0 {
		t.Fatal("expected non-empty suggested categories")
	}
}

func TestAdviceFlow(t *testing.T) {
	srv := newTestServer(t)

	// Before any refresh
	rr := doJSON(t, srv, http.MethodGet, "/advice", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("advice status = %d", rr.Code)
	}
	var state adviceResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &state)
	if state.Fetched {
		t.Fatal("advice should start unfetched")
	}

	rr = doJSON(t, srv, http.MethodPost, "/advice", "")
	if rr.Code != http.StatusAccepted {
		t.Fatalf("refresh status = %d", rr.Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rr = doJSON(t, srv, http.MethodGet, "/advice", "")
		_ = json.Unmarshal(rr.Body.Bytes(), &state)
		if state.Fetched && !state.Pending {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("advice never settled: %+v", state)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if state.Advice != "use the Metro" {
		t.Fatalf("advice = %q", state.Advice)
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	srv := newTestServer(t)

	body := `{"amount":1,"type":"expense","category":"Other","description":"x"}`
	limited := false
	for i := 0; i < 70; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Real-IP", "10.0.0.9")
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatal("expected rate limiting to kick in for a POST burst")
	}

	// GETs from the same client stay unthrottled.
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	req.Header.Set("X-Real-IP", "10.0.0.9")
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET after throttle status = %d", rr.Code)
	}
}
