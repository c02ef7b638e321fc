package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"accounting/internal/amqp"
	"accounting/internal/core"
	"accounting/internal/storage"
)

// ResetStore is the part of the ledger store the scheduler needs.
type ResetStore interface {
	GetSetting(ctx context.Context, name string) (string, bool, error)
	EnsureSetting(ctx context.Context, name, value string) (bool, error)
	ApplyReset(ctx context.Context, p storage.ResetParams) (storage.ResetOutcome, error)
}

type State int

const (
	Idle State = iota
	ResetFired
)

func (s State) String() string {
	if s == ResetFired {
		return "reset_fired"
	}
	return "idle"
}

// Outcome of a single TryReset call.
const (
	StatusNotConfigured  = "not_configured"
	StatusNotResetDay    = "not_reset_day"
	StatusAlreadyApplied = "already_applied"
	StatusApplied        = "applied"
)

type ResetResult struct {
	Status   string            `json:"status"`
	Day      string            `json:"day"`
	ResetDay int               `json:"reset_day,omitempty"`
	NetWorth decimal.Decimal   `json:"net_worth"`
	Removed  int               `json:"removed"`
	Opening  *core.Transaction `json:"-"`
}

func (r ResetResult) Fired() bool {
	return r.Status == StatusApplied
}

// ResetScheduler rolls the current month's transactions into one opening
// balance on the configured day of month. TryReset is idempotent per
// calendar day: the in-memory guard short-circuits repeated ticks and the
// reset_log row written with the reset survives restarts.
type ResetScheduler struct {
	store     ResetStore
	publisher EventPublisher
	clock     func() time.Time
	loop      loop

	mu       sync.Mutex
	firedDay string
}

func NewResetScheduler(store ResetStore, publisher EventPublisher) *ResetScheduler {
	return &ResetScheduler{
		store:     store,
		publisher: publisher,
		clock:     time.Now,
		loop:      loop{name: "reset scheduler"},
	}
}

// EnsureResetDay stores now's day of month as the reset day when none is
// configured yet, so a fresh ledger resets monthly from the day it was
// first started. An existing value is left alone.
func (s *ResetScheduler) EnsureResetDay(ctx context.Context, now time.Time) error {
	day := strconv.Itoa(now.Day())
	seeded, err := s.store.EnsureSetting(ctx, core.SettingResetDay, day)
	if err != nil {
		return fmt.Errorf("seed reset day: %w", err)
	}
	if seeded {
		slog.InfoContext(ctx, "Reset day initialized", "reset_day", day)
	}
	return nil
}

// TryReset checks the reset day against now and applies the reset when it
// matches. A reset day beyond the month's length never matches that month.
func (s *ResetScheduler) TryReset(ctx context.Context, now time.Time) (ResetResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := core.DayKey(now)
	result := ResetResult{Day: day}

	if s.firedDay == day {
		result.Status = StatusAlreadyApplied
		return result, nil
	}

	value, ok, err := s.store.GetSetting(ctx, core.SettingResetDay)
	if err != nil {
		return result, fmt.Errorf("read reset day: %w", err)
	}
	if !ok {
		result.Status = StatusNotConfigured
		return result, nil
	}
	resetDay, err := core.ParseResetDay(value)
	if err != nil {
		slog.WarnContext(ctx, "Ignoring malformed reset day", "value", value, "error", err)
		result.Status = StatusNotConfigured
		return result, nil
	}
	result.ResetDay = resetDay

	if now.Day() != resetDay {
		result.Status = StatusNotResetDay
		return result, nil
	}

	start, end := core.MonthRange(now)
	out, err := s.store.ApplyReset(ctx, storage.ResetParams{
		Day:   day,
		Start: start,
		End:   end,
		At:    now,
	})
	if err != nil {
		return result, fmt.Errorf("apply reset: %w", err)
	}

	s.firedDay = day
	if !out.Applied {
		result.Status = StatusAlreadyApplied
		return result, nil
	}

	result.Status = StatusApplied
	result.NetWorth = out.NetWorth
	result.Removed = len(out.Removed)
	opening := out.Opening
	result.Opening = &opening

	slog.InfoContext(ctx, "Monthly reset applied",
		"day", day,
		"removed", result.Removed,
		"net_worth", core.FormatAmount(out.NetWorth),
		"opening_kind", opening.Kind)

	s.publishReset(ctx, day, out)
	return result, nil
}

func (s *ResetScheduler) publishReset(ctx context.Context, day string, out storage.ResetOutcome) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewResetAppliedMessage(day, out.NetWorth, out.Removed)
	if err := s.publisher.PublishResetApplied(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish reset event", "day", day, "error", err)
	}
}

// State reports ResetFired for the rest of the calendar day a reset ran on.
func (s *ResetScheduler) State(now time.Time) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firedDay == core.DayKey(now) {
		return ResetFired
	}
	return Idle
}

// Start checks immediately, then on every interval tick.
func (s *ResetScheduler) Start(ctx context.Context, interval time.Duration) error {
	return s.loop.start(ctx, interval, s.tick)
}

func (s *ResetScheduler) Stop(ctx context.Context) error {
	return s.loop.stop(ctx)
}

func (s *ResetScheduler) IsRunning() bool {
	return s.loop.isRunning()
}

func (s *ResetScheduler) tick(ctx context.Context) {
	res, err := s.TryReset(ctx, s.clock())
	if err != nil {
		slog.ErrorContext(ctx, "Reset check failed", "error", err)
		return
	}
	slog.DebugContext(ctx, "Reset check", "status", res.Status, "day", res.Day)
}
