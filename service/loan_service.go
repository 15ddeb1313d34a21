package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"loan-amortizer/domain"
	"loan-amortizer/metrics"
	"loan-amortizer/repository"
)

// Limits are the configurable upper bounds applied before amortizing.
type Limits struct {
	MaxLoanAmount   float32
	MaxInterestRate float32
	MaxTermMonths   int
}

func DefaultLimits() Limits {
	return Limits{
		MaxLoanAmount:   MaxLoanAmount,
		MaxInterestRate: MaxInterestRate,
		MaxTermMonths:   MaxTermMonths,
	}
}

type LoanService struct {
	cache    repository.CacheRepository
	cacheTTL time.Duration
	metrics  *metrics.Registry
	now      func() time.Time

	mu     sync.RWMutex
	limits Limits
}

type Option func(*LoanService)

// WithClock replaces time.Now as the source of the first period date.
func WithClock(now func() time.Time) Option {
	return func(s *LoanService) { s.now = now }
}

func WithMetrics(reg *metrics.Registry) Option {
	return func(s *LoanService) { s.metrics = reg }
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(s *LoanService) { s.cacheTTL = ttl }
}

func WithLimits(l Limits) Option {
	return func(s *LoanService) { s.limits = l }
}

// NewLoanService creates a LoanService backed by cache. A nil cache disables
// caching.
func NewLoanService(cache repository.CacheRepository, opts ...Option) *LoanService {
	if cache == nil {
		cache = repository.NoopCache{}
	}
	s := &LoanService{
		cache:    cache,
		cacheTTL: DefaultCacheTTL,
		now:      time.Now,
		limits:   DefaultLimits(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetLimits swaps the limits used by subsequent calls.
func (s *LoanService) SetLimits(l Limits) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits = l
}

func (s *LoanService) Limits() Limits {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits
}

// Schedule returns the amortization schedule for req, dated from the
// service clock. Cached schedules are re-dated before being returned.
func (s *LoanService) Schedule(
	ctx context.Context,
	req domain.AmortizationRequest,
) (domain.AmortizationSchedule, error) {
	if err := s.checkLimits(req); err != nil {
		return nil, err
	}

	start := s.now()
	key := cacheKey(req)

	if schedule, ok := s.fromCache(ctx, key); ok {
		s.metrics.Inc(metrics.CacheHitsTotal)
		return redate(schedule, start), nil
	}
	s.metrics.Inc(metrics.CacheMissesTotal)

	schedule, err := Amortize(req, start)
	if err != nil {
		return nil, err
	}
	s.metrics.Inc(metrics.SchedulesComputedTotal)

	// Caching is best effort.
	if data, err := json.Marshal(schedule); err != nil {
		slog.Warn("failed to encode schedule for cache", "key", key, "err", err)
	} else if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
		slog.Warn("failed to cache schedule", "key", key, "err", err)
	}

	return schedule, nil
}

// Summary condenses the schedule for req into totals.
func (s *LoanService) Summary(
	ctx context.Context,
	req domain.AmortizationRequest,
) (domain.LoanSummary, error) {
	schedule, err := s.Schedule(ctx, req)
	if err != nil {
		return domain.LoanSummary{}, err
	}
	return Summarize(req, schedule), nil
}

// Summarize totals a non-empty schedule produced for req.
func Summarize(req domain.AmortizationRequest, schedule domain.AmortizationSchedule) domain.LoanSummary {
	if len(schedule) == 0 {
		return domain.LoanSummary{}
	}
	first, last := schedule[0], schedule[len(schedule)-1]
	return domain.LoanSummary{
		MonthlyPayment:   first.Payment,
		TotalPayment:     roundCents(req.LoanAmount + last.CumulativeInterest),
		TotalInterest:    last.CumulativeInterest,
		Periods:          len(schedule),
		FirstPaymentDate: first.PeriodDate,
		PayoffDate:       last.PeriodDate,
	}
}

func (s *LoanService) checkLimits(req domain.AmortizationRequest) error {
	l := s.Limits()
	if req.LoanAmount > l.MaxLoanAmount {
		return fmt.Errorf("%w: loan amount exceeds the maximum of %.2f", ErrInvalidInput, l.MaxLoanAmount)
	}
	if req.AnnualInterestRate > l.MaxInterestRate {
		return fmt.Errorf("%w: annual interest rate exceeds the maximum of %.2f%%", ErrInvalidInput, l.MaxInterestRate)
	}
	if req.TermsInMonths > l.MaxTermMonths {
		return fmt.Errorf("%w: term exceeds the maximum of %d months", ErrInvalidInput, l.MaxTermMonths)
	}
	return nil
}

func (s *LoanService) fromCache(ctx context.Context, key string) (domain.AmortizationSchedule, bool) {
	value, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("schedule cache read failed", "key", key, "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var schedule domain.AmortizationSchedule
	if err := json.Unmarshal([]byte(value), &schedule); err != nil || len(schedule) == 0 {
		slog.Warn("discarding unreadable cached schedule", "key", key, "err", err)
		return nil, false
	}
	return schedule, true
}

func cacheKey(req domain.AmortizationRequest) string {
	return fmt.Sprintf("%s:%s:%d:%s",
		cacheKeyPrefix,
		strconv.FormatFloat(float64(req.LoanAmount), 'g', -1, 32),
		req.TermsInMonths,
		strconv.FormatFloat(float64(req.AnnualInterestRate), 'g', -1, 32),
	)
}

// redate rewrites period dates so the first period falls on start.
func redate(schedule domain.AmortizationSchedule, start time.Time) domain.AmortizationSchedule {
	date := start
	for i := range schedule {
		schedule[i].PeriodDate = date
		date = date.Add(PeriodStep)
	}
	return schedule
}
