// Package scheduler fires the timed start and end of auctions. Each auction
// has at most one pending timer; registering a new one or cancelling
// supersedes the old one, and a fired timer only acts when it is still the
// latest registration. A periodic sweep backs the timers up so nothing stays
// overdue after a crash or a lost timer.
package scheduler

import (
	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/clock"
	"auction-engine/internal/events"
	model "auction-engine/internal/models"
	"auction-engine/utils"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Store is the read access the scheduler needs
type Store interface {
	GetAuction(ctx context.Context, auctionID string) (model.Auction, error)
	ListByStatus(ctx context.Context, statuses ...model.AuctionStatus) ([]model.Auction, error)
	ListDueToStart(ctx context.Context, now time.Time) ([]model.Auction, error)
	ListDueToEnd(ctx context.Context, now time.Time) ([]model.Auction, error)
	ListEndingBetween(ctx context.Context, from, to time.Time) ([]model.Auction, error)
}

// Transitioner performs due transitions. Both methods re-check the
// auction under its lock and report ErrNotDue when called early.
type Transitioner interface {
	StartDue(ctx context.Context, auctionID string) error
	EndDue(ctx context.Context, auctionID string) error
}

type Config struct {
	SweepInterval    time.Duration
	EndingSoonWindow time.Duration
	RetryDelay       time.Duration
	FireTimeout      time.Duration
}

// DefaultConfig returns the production scheduler settings
func DefaultConfig() Config {
	return Config{
		SweepInterval:    30 * time.Second,
		EndingSoonWindow: 5 * time.Minute,
		RetryDelay:       time.Second,
		FireTimeout:      10 * time.Second,
	}
}

type kind int

const (
	kindStart kind = iota
	kindEnd
)

func (k kind) String() string {
	if k == kindStart {
		return "start"
	}
	return "end"
}

type entry struct {
	seq   uint64
	kind  kind
	at    time.Time
	timer clock.Timer
}

// SweepReport summarizes one sweep
type SweepReport struct {
	Started int
	Ended   int
	Skipped int
	Alerted int
}

type Scheduler struct {
	store Store
	sink  events.Sink
	clock clock.Clock
	cfg   Config

	mu      sync.Mutex
	target  Transitioner
	timers  map[string]entry     // key: auctionID -> latest registration
	alerted map[string]time.Time // key: auctionID -> end the ending-soon alert was sent for
	seq     uint64
	closed  bool
}

// New creates a Scheduler. SetTarget must be called before timers fire.
func New(store Store, sink events.Sink, clk clock.Clock, cfg Config) *Scheduler {
	def := DefaultConfig()
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.EndingSoonWindow <= 0 {
		cfg.EndingSoonWindow = def.EndingSoonWindow
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	if cfg.FireTimeout <= 0 {
		cfg.FireTimeout = def.FireTimeout
	}
	return &Scheduler{
		store:   store,
		sink:    sink,
		clock:   clk,
		cfg:     cfg,
		timers:  make(map[string]entry),
		alerted: make(map[string]time.Time),
	}
}

// SetTarget wires the component that performs transitions
func (s *Scheduler) SetTarget(t Transitioner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target = t
}

// ScheduleStart registers the start of auctionID at at, replacing any pending timer
func (s *Scheduler) ScheduleStart(auctionID string, at time.Time) {
	s.register(auctionID, kindStart, at)
}

// ScheduleEnd registers the end of auctionID at at, replacing any pending timer
func (s *Scheduler) ScheduleEnd(auctionID string, at time.Time) {
	s.register(auctionID, kindEnd, at)
}

// Cancel drops the pending timer of auctionID, if any
func (s *Scheduler) Cancel(auctionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.timers[auctionID]; ok {
		e.timer.Stop()
		delete(s.timers, auctionID)
	}
	delete(s.alerted, auctionID)
}

// Pending reports the registered transition time of auctionID
func (s *Scheduler) Pending(auctionID string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.timers[auctionID]
	return e.at, ok
}

func (s *Scheduler) register(auctionID string, k kind, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if e, ok := s.timers[auctionID]; ok {
		e.timer.Stop()
	}

	s.seq++
	seq := s.seq
	timer := s.clock.AfterFunc(at.Sub(s.clock.Now()), func() {
		s.fire(auctionID, seq)
	})
	s.timers[auctionID] = entry{seq: seq, kind: k, at: at, timer: timer}

	utils.Debug("transition scheduled", map[string]any{
		"auction_id": auctionID,
		"kind":       k.String(),
		"at":         at,
	})
}

func (s *Scheduler) fire(auctionID string, seq uint64) {
	s.mu.Lock()
	e, ok := s.timers[auctionID]
	if !ok || e.seq != seq || s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.timers, auctionID)
	target := s.target
	s.mu.Unlock()

	if target == nil {
		utils.Warn("timer fired without a target", map[string]any{"auction_id": auctionID})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.FireTimeout)
	defer cancel()

	err := s.transition(ctx, target, auctionID, e.kind)
	switch {
	case err == nil:
		utils.Info("timed transition applied", map[string]any{
			"auction_id": auctionID,
			"kind":       e.kind.String(),
		})
	case errors.Is(err, auctionerrors.ErrInvalidTransition):
		// already moved on by someone else
		utils.Debug("timed transition skipped", map[string]any{
			"auction_id": auctionID,
			"kind":       e.kind.String(),
			"reason":     err.Error(),
		})
	case errors.Is(err, auctionerrors.ErrNotDue):
		s.reschedule(ctx, auctionID, e.kind)
	case auctionerrors.IsRetryable(err):
		s.register(auctionID, e.kind, s.clock.Now().Add(s.cfg.RetryDelay))
	default:
		utils.Error("timed transition failed, sweep will retry", map[string]any{
			"auction_id": auctionID,
			"kind":       e.kind.String(),
			"error":      err.Error(),
		})
	}
}

// reschedule re-arms a timer that fired early at the stored transition time
func (s *Scheduler) reschedule(ctx context.Context, auctionID string, k kind) {
	a, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		utils.Error("failed to reload auction for reschedule", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return
	}

	at := a.ScheduledStart
	if k == kindEnd {
		at = a.ScheduledEnd
	}
	if floor := s.clock.Now().Add(s.cfg.RetryDelay); at.Before(floor) {
		at = floor
	}
	s.register(auctionID, k, at)
}

func (s *Scheduler) transition(ctx context.Context, target Transitioner, auctionID string, k kind) error {
	if k == kindStart {
		return target.StartDue(ctx, auctionID)
	}
	return target.EndDue(ctx, auctionID)
}

// Recover re-registers timers for every non-terminal auction. Overdue
// auctions fire immediately.
func (s *Scheduler) Recover(ctx context.Context) (int, error) {
	pending, err := s.store.ListByStatus(ctx, model.StatusScheduled, model.StatusReady, model.StatusInProgress)
	if err != nil {
		return 0, fmt.Errorf("scheduler: recover: %w", err)
	}

	for _, a := range pending {
		if a.Status == model.StatusInProgress {
			s.ScheduleEnd(a.AuctionID, a.ScheduledEnd)
		} else {
			s.ScheduleStart(a.AuctionID, a.ScheduledStart)
		}
	}

	utils.Info("scheduler recovered", map[string]any{"timers": len(pending)})
	return len(pending), nil
}

// Sweep applies every overdue transition and sends ending-soon alerts.
// Running it repeatedly is safe: transitions already applied are skipped and
// each auction is alerted once per scheduled end.
func (s *Scheduler) Sweep(ctx context.Context) (SweepReport, error) {
	s.mu.Lock()
	target := s.target
	s.mu.Unlock()
	if target == nil {
		return SweepReport{}, fmt.Errorf("scheduler: sweep without a target")
	}

	var (
		report SweepReport
		errs   []error
	)
	now := s.clock.Now()

	toStart, err := s.store.ListDueToStart(ctx, now)
	if err != nil {
		return report, fmt.Errorf("scheduler: list due to start: %w", err)
	}
	for _, a := range toStart {
		applied, err := s.apply(ctx, target, a.AuctionID, kindStart)
		switch {
		case err != nil:
			errs = append(errs, err)
		case applied:
			report.Started++
		default:
			report.Skipped++
		}
	}

	toEnd, err := s.store.ListDueToEnd(ctx, now)
	if err != nil {
		return report, fmt.Errorf("scheduler: list due to end: %w", err)
	}
	for _, a := range toEnd {
		applied, err := s.apply(ctx, target, a.AuctionID, kindEnd)
		switch {
		case err != nil:
			errs = append(errs, err)
		case applied:
			report.Ended++
		default:
			report.Skipped++
		}
	}

	alerted, err := s.alertEndingSoon(ctx, now)
	if err != nil {
		errs = append(errs, err)
	}
	report.Alerted = alerted

	if report != (SweepReport{}) {
		utils.Info("sweep finished", map[string]any{
			"started": report.Started,
			"ended":   report.Ended,
			"skipped": report.Skipped,
			"alerted": report.Alerted,
		})
	}
	return report, errors.Join(errs...)
}

func (s *Scheduler) apply(ctx context.Context, target Transitioner, auctionID string, k kind) (bool, error) {
	err := s.transition(ctx, target, auctionID, k)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, auctionerrors.ErrInvalidTransition), errors.Is(err, auctionerrors.ErrNotDue):
		return false, nil
	default:
		return false, fmt.Errorf("scheduler: %s auction %s: %w", k, auctionID, err)
	}
}

func (s *Scheduler) alertEndingSoon(ctx context.Context, now time.Time) (int, error) {
	soon, err := s.store.ListEndingBetween(ctx, now, now.Add(s.cfg.EndingSoonWindow))
	if err != nil {
		return 0, fmt.Errorf("scheduler: list ending soon: %w", err)
	}

	s.mu.Lock()
	var due []model.Auction
	for _, a := range soon {
		if end, ok := s.alerted[a.AuctionID]; ok && end.Equal(a.ScheduledEnd) {
			continue
		}
		s.alerted[a.AuctionID] = a.ScheduledEnd
		due = append(due, a)
	}
	for id, end := range s.alerted {
		if end.Before(now) {
			delete(s.alerted, id)
		}
	}
	s.mu.Unlock()

	for _, a := range due {
		s.sink.Publish(events.Event{
			Kind:       events.KindAuctionEndingSoon,
			AuctionID:  a.AuctionID,
			OccurredAt: now,
			EndsAt:     a.ScheduledEnd,
		})
	}
	return len(due), nil
}

// Run recovers pending timers and sweeps every SweepInterval until ctx ends
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.Recover(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Close()
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				utils.Error("sweep failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

// Close stops every pending timer. Later registrations are ignored.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.timers {
		e.timer.Stop()
		delete(s.timers, id)
	}
	s.closed = true
}
