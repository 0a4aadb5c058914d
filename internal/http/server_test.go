package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"financas/internal/core"
	"financas/internal/ledger"
	"financas/internal/metrics"
	"financas/internal/services"
	"financas/internal/store/memory"
)

type testServer struct {
	*Server
	store *memory.Store
	m     *metrics.Metrics
}

func newTestServer(t *testing.T, txs []core.Transaction, mutate func(*Deps)) *testServer {
	t.Helper()
	store := memory.New([]core.Member{
		{ID: "a", Name: "Ana", Income: core.Money{Cents: 3000_00}},
		{ID: "b", Name: "Bruno", Income: core.Money{Cents: 2000_00}},
	}, txs)
	m := metrics.New()
	deps := Deps{
		Ledger:             services.NewLedgerService(store, store, m),
		Transactions:       services.NewTransactionService(store, nil, m),
		Metrics:            m,
		RateLimitPerMinute: 100,
	}
	if mutate != nil {
		mutate(&deps)
	}
	srv := NewServer(":0", deps)
	srv.now = func() time.Time { return time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(srv.rateLimiter.stop)
	return &testServer{Server: srv, store: store, m: m}
}

func (ts *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	ts.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func ledgerFixture() []core.Transaction {
	rent := core.Transaction{ID: "rent", Title: "Aluguel", Amount: core.Money{Cents: 1500_00}, Category: "casa",
		Date: "01/01/2024", SpenderID: "a", Type: core.Expense, IsFixed: true, PaidMonths: core.NewMonthSet("2024-3")}
	bonus := core.Transaction{ID: "bonus", Title: "Bônus", Amount: core.Money{Cents: 1000_00}, Category: "trabalho",
		Date: "05/03/2024", SpenderID: "b", Type: core.Revenue}
	tv := core.Transaction{ID: "tv", Title: "TV", Amount: core.Money{Cents: 300_00}, Category: "lazer",
		Date: "10/03/2024", SpenderID: "b", Type: core.Expense, Installments: &core.Installments{Current: 3, Total: 12}}
	return []core.Transaction{rent, bonus, tv}
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		if rr := ts.do(t, http.MethodGet, path, ""); rr.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rr.Code)
		}
	}

	down := newTestServer(t, nil, func(d *Deps) {
		d.Ready = func(context.Context) error { return errors.New("db locked") }
	})
	if rr := down.do(t, http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status = %d, want 503", rr.Code)
	}
}

func TestLedgerEndpoint(t *testing.T) {
	ts := newTestServer(t, ledgerFixture(), nil)

	rr := ts.do(t, http.MethodGet, "/api/ledger?year=2024&month=3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rr.Code, rr.Body.String())
	}
	st := decode[struct {
		Transactions []core.Transaction `json:"transactions"`
		Stats        struct {
			EffectiveIncome float64 `json:"effectiveIncome"`
			PaidTotal       float64 `json:"paidTotal"`
			PendingTotal    float64 `json:"pendingTotal"`
			Balance         float64 `json:"balance"`
			Status          string  `json:"status"`
		} `json:"stats"`
	}](t, rr)

	if len(st.Transactions) != 3 || st.Transactions[0].ID != "tv" {
		t.Errorf("transactions = %+v", st.Transactions)
	}
	s := st.Stats
	if s.EffectiveIncome != 6000 || s.PaidTotal != 1500 || s.PendingTotal != 300 || s.Balance != 4500 {
		t.Errorf("stats = %+v", s)
	}
	if s.Status != string(ledger.Excellent) {
		t.Errorf("status = %s", s.Status)
	}

	if rr.Header().Get("X-Request-ID") == "" || rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("missing middleware headers: %v", rr.Header())
	}
}

func TestLedgerEndpoint_DefaultsToCurrentMonth(t *testing.T) {
	ts := newTestServer(t, ledgerFixture(), nil)
	rr := ts.do(t, http.MethodGet, "/api/ledger", "")
	st := decode[ledger.Statement](t, rr)
	if st.Month != core.NewMonth(2024, 3) {
		t.Errorf("month = %+v", st.Month)
	}
}

func TestLedgerEndpoint_Errors(t *testing.T) {
	bad := core.Transaction{ID: "bad", Title: "x", Date: "2024-03-01", SpenderID: "a", Type: core.Expense}

	tests := []struct {
		name   string
		txs    []core.Transaction
		target string
		want   int
	}{
		{"month out of range", nil, "/api/ledger?year=2024&month=13", http.StatusUnprocessableEntity},
		{"non numeric year", nil, "/api/ledger?year=abc", http.StatusUnprocessableEntity},
		{"stored date malformed", []core.Transaction{bad}, "/api/ledger?year=2024&month=3", http.StatusUnprocessableEntity},
		{"trend window too large", nil, "/api/trend?months=48", http.StatusUnprocessableEntity},
		{"trend window zero", nil, "/api/trend?months=0", http.StatusUnprocessableEntity},
		{"recent n negative", nil, "/api/recent?n=-1", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.txs, nil)
			rr := ts.do(t, http.MethodGet, tt.target, "")
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
			body := decode[errorBody](t, rr)
			if body.Error == "" || body.RequestID == "" {
				t.Errorf("error body = %+v", body)
			}
		})
	}
}

type failingLedger struct{ LedgerReader }

func (failingLedger) Statement(context.Context, core.Month) (ledger.Statement, error) {
	return ledger.Statement{}, errors.New("disk on fire")
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	ts := newTestServer(t, nil, func(d *Deps) { d.Ledger = failingLedger{} })
	rr := ts.do(t, http.MethodGet, "/api/ledger", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "disk on fire") {
		t.Errorf("internal detail leaked: %s", rr.Body.String())
	}
}

func TestTrendRecentHousehold(t *testing.T) {
	ts := newTestServer(t, ledgerFixture(), nil)

	rr := ts.do(t, http.MethodGet, "/api/trend?year=2024&month=3&months=3", "")
	trend := decode[struct {
		Points []ledger.TrendPoint `json:"points"`
	}](t, rr)
	if len(trend.Points) != 3 || trend.Points[2].Expenses.Cents != 1800_00 || trend.Points[0].Expenses.Cents != 1500_00 {
		t.Errorf("trend = %+v", trend.Points)
	}

	rr = ts.do(t, http.MethodGet, "/api/trend", "")
	trend = decode[struct {
		Points []ledger.TrendPoint `json:"points"`
	}](t, rr)
	if len(trend.Points) != ledger.DefaultTrendMonths {
		t.Errorf("default window = %d points", len(trend.Points))
	}

	rr = ts.do(t, http.MethodGet, "/api/recent?n=2", "")
	recent := decode[struct {
		Transactions []core.Transaction `json:"transactions"`
	}](t, rr)
	if len(recent.Transactions) != 2 || recent.Transactions[0].ID != "tv" || recent.Transactions[1].ID != "bonus" {
		t.Errorf("recent = %+v", recent.Transactions)
	}

	rr = ts.do(t, http.MethodGet, "/api/household", "")
	h := decode[services.Household](t, rr)
	if len(h.Members) != 2 || h.BaseIncome.Cents != 5000_00 {
		t.Errorf("household = %+v", h)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	body := `{"title": "Internet", "amount": "99,90", "category": "casa", "date": "10/01/2024",
	  "spenderId": "a", "type": "expense", "isFixed": true}`
	rr := ts.do(t, http.MethodPost, "/api/transactions", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rr.Code, rr.Body.String())
	}
	created := decode[core.Transaction](t, rr)
	if created.ID == "" || created.Amount.Cents != 99_90 || rr.Header().Get("Location") != "/api/transactions/"+created.ID {
		t.Fatalf("created = %+v, location = %q", created, rr.Header().Get("Location"))
	}

	rr = ts.do(t, http.MethodPost, "/api/transactions/"+created.ID+"/paid?year=2024&month=2", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("toggle status = %d body = %s", rr.Code, rr.Body.String())
	}
	if toggled := decode[core.Transaction](t, rr); !toggled.PaidMonths.Has("2024-2") {
		t.Errorf("paid months = %v", toggled.PaidMonths.Keys())
	}

	update := strings.Replace(body, `"99,90"`, `120`, 1)
	rr = ts.do(t, http.MethodPut, "/api/transactions/"+created.ID, update)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d body = %s", rr.Code, rr.Body.String())
	}
	if updated := decode[core.Transaction](t, rr); updated.Amount.Cents != 120_00 || !updated.PaidMonths.Has("2024-2") {
		t.Errorf("updated = %+v", updated)
	}

	if rr = ts.do(t, http.MethodDelete, "/api/transactions/"+created.ID, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if rr = ts.do(t, http.MethodDelete, "/api/transactions/"+created.ID, ""); rr.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", rr.Code)
	}
	if rr = ts.do(t, http.MethodPut, "/api/transactions/"+created.ID, update); rr.Code != http.StatusNotFound {
		t.Errorf("update deleted status = %d", rr.Code)
	}
}

func TestCreateTransaction_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"title":`, http.StatusBadRequest},
		{"unknown field", `{"title": "x", "colour": "red"}`, http.StatusBadRequest},
		{"trailing data", `{"title": "x"} {}`, http.StatusBadRequest},
		{"bad amount", `{"title": "x", "amount": "abc", "date": "01/01/2024", "spenderId": "a", "type": "expense"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"title": "x", "amount": 1, "date": "2024-01-01", "spenderId": "a", "type": "expense"}`, http.StatusUnprocessableEntity},
		{"empty title", `{"title": " ", "amount": 1, "date": "01/01/2024", "spenderId": "a", "type": "expense"}`, http.StatusUnprocessableEntity},
		{"bad type", `{"title": "x", "amount": 1, "date": "01/01/2024", "spenderId": "a", "type": "gift"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil, nil)
			rr := ts.do(t, http.MethodPost, "/api/transactions", tt.body)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
			if list, _ := ts.store.ListTransactions(context.Background()); len(list) != 0 {
				t.Errorf("invalid request stored %d transactions", len(list))
			}
		})
	}
}

func TestTogglePaid_UnknownID(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	if rr := ts.do(t, http.MethodPost, "/api/transactions/nope/paid", ""); rr.Code != http.StatusNotFound {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestStatementExports(t *testing.T) {
	ts := newTestServer(t, ledgerFixture(), nil)

	tests := []struct {
		path, contentType, filename string
	}{
		{"/api/statement.xlsx?year=2024&month=3", contentTypeXLSX, "extrato-2024-03.xlsx"},
		{"/api/statement.pdf?year=2024&month=3", contentTypePDF, "extrato-2024-03.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			rr := ts.do(t, http.MethodGet, tt.path, "")
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d body = %s", rr.Code, rr.Body.String())
			}
			if rr.Header().Get("Content-Type") != tt.contentType {
				t.Errorf("content type = %q", rr.Header().Get("Content-Type"))
			}
			if !strings.Contains(rr.Header().Get("Content-Disposition"), tt.filename) {
				t.Errorf("disposition = %q", rr.Header().Get("Content-Disposition"))
			}
			if rr.Body.Len() == 0 {
				t.Error("empty export")
			}
		})
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	ts := newTestServer(t, nil, func(d *Deps) { d.RateLimitPerMinute = 2 })

	body := `{"title": "x", "amount": 1, "date": "01/01/2024", "spenderId": "a", "type": "expense"}`
	for i := 0; i < 2; i++ {
		if rr := ts.do(t, http.MethodPost, "/api/transactions", body); rr.Code != http.StatusCreated {
			t.Fatalf("request %d status = %d", i, rr.Code)
		}
	}
	rr := ts.do(t, http.MethodPost, "/api/transactions", body)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") != "60" {
		t.Errorf("status = %d, retry-after = %q", rr.Code, rr.Header().Get("Retry-After"))
	}

	// Reads are not limited.
	if rr := ts.do(t, http.MethodGet, "/api/household", ""); rr.Code != http.StatusOK {
		t.Errorf("read after limit status = %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, ledgerFixture(), nil)
	ts.do(t, http.MethodGet, "/api/ledger?year=2024&month=3", "")

	rr := ts.do(t, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	out := rr.Body.String()
	for _, want := range []string{
		`financas_http_requests_total{route="GET /api/ledger",status="2xx"} 1`,
		`financas_ledger_aggregations_total{kind="statement"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	if rr := ts.do(t, http.MethodGet, "/api/nope", ""); rr.Code != http.StatusNotFound {
		t.Errorf("status = %d", rr.Code)
	}
	if rr := ts.do(t, http.MethodPatch, "/api/transactions/x", "{}"); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("PATCH status = %d", rr.Code)
	}
}
