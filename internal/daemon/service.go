// Package daemon provides the long-running local read-only budget API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/pbudget/internal/logging"
	"github.com/theirongolddev/pbudget/internal/model"
	"github.com/theirongolddev/pbudget/internal/pipeline"
	"github.com/theirongolddev/pbudget/internal/report"
)

// Source is the read side of the expense store. *store.Store implements it.
type Source interface {
	Snapshot(ctx context.Context) (model.Snapshot, error)
	Revision(ctx context.Context) (int64, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	DBPath       string
	Currency     string
	ReportTitle  string
	Interval     time.Duration
	Addr         string
	EventsBuffer int

	// AllowedOrigins lists browser origins allowed to read the API.
	// Empty means same-origin only.
	AllowedOrigins []string
}

// Snapshot is a compact budget state for status/event payloads.
type Snapshot struct {
	At                 time.Time `json:"at"`
	Revision           int64     `json:"revision"`
	ExpenseCount       int       `json:"expense_count"`
	MonthlyPayment     float64   `json:"monthly_payment"`
	TotalExpenses      float64   `json:"total_expenses"`
	Variance           float64   `json:"variance"`
	UsagePercent       float64   `json:"usage_percent"`
	DurationMonths     int       `json:"duration_months"`
	TotalProjectProfit float64   `json:"total_project_profit"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	ExpenseCount   int     `json:"expense_count"`
	MonthlyPayment float64 `json:"monthly_payment"`
	TotalExpenses  float64 `json:"total_expenses"`
	Variance       float64 `json:"variance"`
	DurationMonths int     `json:"duration_months"`
}

func (d Delta) isZero() bool {
	return d.ExpenseCount == 0 &&
		d.MonthlyPayment == 0 &&
		d.TotalExpenses == 0 &&
		d.Variance == 0 &&
		d.DurationMonths == 0
}

// Event is emitted whenever the budget snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Event types.
const (
	EventSnapshot    = "snapshot"
	EventBudgetDelta = "budget_delta"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path"`
	Currency        string    `json:"currency"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	src Source
	log *slog.Logger
	now func() time.Time

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	state       model.Snapshot
	summary     model.Summary
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service reading from src.
func New(cfg Config, src Source) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}

	return &Service{
		cfg:       cfg,
		src:       src,
		log:       logging.For(logging.ComponentDaemon),
		now:       time.Now,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/summary", s.handleSummary)
	mux.HandleFunc("/v1/report", s.handleReport)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)

	if len(s.cfg.AllowedOrigins) == 0 {
		return mux
	}
	return cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Cache-Control", "Last-Event-ID"},
	}).Handler(mux)
}

// Run serves the HTTP API and polls the store until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				s.pollOnce(gctx)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	s.log.Info("serving", "addr", s.cfg.Addr, "interval", s.cfg.Interval.String())
	return g.Wait()
}

func (s *Service) pollOnce(ctx context.Context) {
	rev, err := s.src.Revision(ctx)
	if err == nil {
		s.mu.RLock()
		unchanged := s.hasSnapshot && s.snapshot.Revision == rev
		s.mu.RUnlock()
		if unchanged {
			s.mu.Lock()
			s.lastPollAt = s.now()
			s.pollCount++
			s.lastError = ""
			s.mu.Unlock()
			return
		}
	}

	var state model.Snapshot
	if err == nil {
		state, err = s.src.Snapshot(ctx)
	}
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = s.now()
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("poll failed", logging.Err(err))
		return
	}

	now := s.now()
	summary := pipeline.Summarize(state)
	snap := snapshotFromSummary(summary, rev, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.state = state
	s.summary = summary
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      EventSnapshot,
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      EventBudgetDelta,
				Timestamp: now,
				Snapshot:  snap,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.log.Debug("budget changed", "event", ev.Type, "revision", rev)
		s.publishEvent(ev)
	}
}

func snapshotFromSummary(sum model.Summary, rev int64, at time.Time) Snapshot {
	return Snapshot{
		At:                 at,
		Revision:           rev,
		ExpenseCount:       sum.ExpenseCount,
		MonthlyPayment:     sum.Totals.MonthlyPayment,
		TotalExpenses:      sum.Totals.TotalExpenses,
		Variance:           sum.Totals.Variance,
		UsagePercent:       sum.Totals.UsagePercent,
		DurationMonths:     sum.Project.DurationMonths,
		TotalProjectProfit: sum.Project.TotalProfit,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		ExpenseCount:   curr.ExpenseCount - prev.ExpenseCount,
		MonthlyPayment: curr.MonthlyPayment - prev.MonthlyPayment,
		TotalExpenses:  curr.TotalExpenses - prev.TotalExpenses,
		Variance:       curr.Variance - prev.Variance,
		DurationMonths: curr.DurationMonths - prev.DurationMonths,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		Currency:        s.cfg.Currency,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.snapshotStatus())
}

func (s *Service) handleSummary(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	summary := s.summary
	s.mu.RUnlock()
	writeJSON(w, summary)
}

// handleReport renders the current report. ?format= selects any report
// format, json by default. Until a poll has succeeded there is nothing to
// report and the handler answers 503.
func (s *Service) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	state, ready, lastErr := s.state, s.hasSnapshot, s.lastError
	s.mu.RUnlock()

	if !ready {
		msg := "budget not loaded yet"
		if lastErr != "" {
			msg += ": " + lastErr
		}
		http.Error(w, msg, http.StatusServiceUnavailable)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	rep := pipeline.BuildReport(state.Expenses, state.Budget, state.Budget.DurationMonths)
	opts := report.Options{
		Title:       s.cfg.ReportTitle,
		Currency:    s.cfg.Currency,
		GeneratedAt: s.now(),
	}

	w.Header().Set("Content-Type", report.ContentType(format))
	if err := report.Render(w, format, rep, opts); err != nil {
		if errors.Is(err, report.ErrUnknownFormat) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.log.Warn("report render failed", logging.Err(err))
	}
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: s.now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
