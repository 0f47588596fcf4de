package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/pbudget/internal/logging"
	"github.com/theirongolddev/pbudget/internal/model"
	"github.com/theirongolddev/pbudget/internal/report"
)

type fakeSource struct {
	mu    sync.Mutex
	snap  model.Snapshot
	rev   int64
	err   error
	reads int
}

func (f *fakeSource) Snapshot(context.Context) (model.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return f.snap, f.err
}

func (f *fakeSource) Revision(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rev, f.err
}

func (f *fakeSource) set(snap model.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
	f.rev++
}

func scenario() model.Snapshot {
	jan, _ := model.ParseDate("2025-01-15")
	feb, _ := model.ParseDate("2025-02-03")
	return model.Snapshot{
		Expenses: []model.Expense{
			{ID: "1", Name: "Camera", Category: model.CategoryEquipmentRental, Amount: 100, Date: jan},
			{ID: "2", Name: "Editor", Category: model.CategoryPostProduction, Amount: 50, Date: feb},
		},
		Budget: model.BudgetSettings{MonthlyPayment: 200, DurationMonths: 3},
	}
}

func newTestService(src Source, buffer int) *Service {
	s := New(Config{DBPath: "test.db", Currency: "₪", Interval: 10 * time.Second, EventsBuffer: buffer}, src)
	s.log = logging.Discard()
	return s
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		ExpenseCount:   2,
		MonthlyPayment: 200,
		TotalExpenses:  150,
		Variance:       50,
		DurationMonths: 3,
	}
	curr := Snapshot{
		ExpenseCount:   3,
		MonthlyPayment: 200,
		TotalExpenses:  182.6,
		Variance:       17.4,
		DurationMonths: 4,
	}

	delta := diffSnapshots(prev, curr)
	if delta.ExpenseCount != 1 {
		t.Fatalf("ExpenseCount delta = %d, want 1", delta.ExpenseCount)
	}
	if delta.MonthlyPayment != 0 {
		t.Fatalf("MonthlyPayment delta = %.2f, want 0", delta.MonthlyPayment)
	}
	if math.Abs(delta.TotalExpenses-32.6) > 1e-9 {
		t.Fatalf("TotalExpenses delta = %.2f, want 32.60", delta.TotalExpenses)
	}
	if math.Abs(delta.Variance+32.6) > 1e-9 {
		t.Fatalf("Variance delta = %.2f, want -32.60", delta.Variance)
	}
	if delta.DurationMonths != 1 {
		t.Fatalf("DurationMonths delta = %d, want 1", delta.DurationMonths)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := newTestService(&fakeSource{}, 2)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOnce_EventsOnChangeOnly(t *testing.T) {
	src := &fakeSource{}
	src.set(scenario())
	s := newTestService(src, 10)
	ctx := context.Background()

	s.pollOnce(ctx)
	s.pollOnce(ctx)

	status := s.snapshotStatus()
	if status.EventCount != 1 {
		t.Fatalf("EventCount = %d, want 1", status.EventCount)
	}
	if status.PollCount != 2 {
		t.Fatalf("PollCount = %d, want 2", status.PollCount)
	}
	if src.reads != 1 {
		t.Fatalf("snapshot reads = %d, want 1 (unchanged revision skips the read)", src.reads)
	}
	if status.Summary.Variance != 50 || status.Summary.TotalProjectProfit != 150 {
		t.Fatalf("summary = %+v, want variance 50 and profit 150", status.Summary)
	}

	next := scenario()
	next.Budget.MonthlyPayment = 100
	src.set(next)
	s.pollOnce(ctx)

	s.mu.RLock()
	last := s.events[len(s.events)-1]
	s.mu.RUnlock()
	if last.Type != EventBudgetDelta {
		t.Fatalf("last event type = %q, want %q", last.Type, EventBudgetDelta)
	}
	if last.Delta.MonthlyPayment != -100 {
		t.Fatalf("payment delta = %.2f, want -100", last.Delta.MonthlyPayment)
	}
}

func TestPollOnce_RecordsError(t *testing.T) {
	src := &fakeSource{err: errors.New("database is locked")}
	s := newTestService(src, 10)

	s.pollOnce(context.Background())

	status := s.snapshotStatus()
	if status.LastError != "database is locked" {
		t.Fatalf("LastError = %q", status.LastError)
	}
	if status.EventCount != 0 {
		t.Fatalf("EventCount = %d, want 0", status.EventCount)
	}
}

func TestHandleReportBeforeFirstSnapshot(t *testing.T) {
	src := &fakeSource{err: errors.New("database is locked")}
	s := newTestService(src, 10)
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/report")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	if !strings.Contains(string(body), "database is locked") {
		t.Fatalf("body = %q, want last poll error", body)
	}

	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()
	src.set(scenario())
	s.pollOnce(context.Background())

	var doc report.Document
	getJSON(t, srv.URL+"/v1/report", &doc)
	if doc.Settings.DurationMonths != 3 {
		t.Fatalf("duration = %d, want 3", doc.Settings.DurationMonths)
	}
}

func TestHandlers(t *testing.T) {
	src := &fakeSource{}
	src.set(scenario())
	s := newTestService(src, 10)
	s.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/healthz status = %d", resp.StatusCode)
	}

	var status Status
	getJSON(t, srv.URL+"/v1/status", &status)
	if status.Currency != "₪" || status.Summary.ExpenseCount != 2 {
		t.Fatalf("status = %+v", status)
	}

	var summary model.Summary
	getJSON(t, srv.URL+"/v1/summary", &summary)
	if len(summary.ByMonth) != 2 || summary.ByMonth[0].Label != "Jan 2025" {
		t.Fatalf("summary months = %+v", summary.ByMonth)
	}

	var doc report.Document
	getJSON(t, srv.URL+"/v1/report", &doc)
	if doc.Financial.TotalProjectProfit != 150 || len(doc.Rows) != 2 {
		t.Fatalf("report = %+v", doc)
	}
	if doc.Title != report.DefaultTitle {
		t.Fatalf("report title = %q", doc.Title)
	}

	var events []Event
	getJSON(t, srv.URL+"/v1/events", &events)
	if len(events) != 1 || events[0].Type != EventSnapshot {
		t.Fatalf("events = %+v", events)
	}

	resp, err = http.Get(srv.URL + "/v1/report?format=pdf")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown format status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/report?format=csv")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv") {
		t.Fatalf("csv content type = %q", resp.Header.Get("Content-Type"))
	}
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec // test server URL
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding %s: %v", url, err)
	}
}

func TestHandlerCORS(t *testing.T) {
	src := &fakeSource{}
	src.set(scenario())

	s := New(Config{Interval: 10 * time.Second, AllowedOrigins: []string{"http://localhost:5173"}}, src)
	s.log = logging.Discard()
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	get := func(origin string) string {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/status", nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Origin", origin)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = resp.Body.Close() }()
		return resp.Header.Get("Access-Control-Allow-Origin")
	}

	if got := get("http://localhost:5173"); got != "http://localhost:5173" {
		t.Errorf("allowed origin header = %q", got)
	}
	if got := get("http://evil.example"); got != "" {
		t.Errorf("disallowed origin got header %q", got)
	}
}
