package service

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"loan-amortizer/domain"
)

var preferences = map[string]bool{
	"minimize_interest": true,
	"minimize_payment":  true,
	"balanced":          true,
}

type TermComparisonService struct {
	loanService *LoanService
}

func NewTermComparisonService(loanService *LoanService) *TermComparisonService {
	return &TermComparisonService{loanService: loanService}
}

// Compare amortizes every term in [MinTermMonths, MaxTermMonths] and ranks
// the affordable ones by preference.
func (s *TermComparisonService) Compare(
	input domain.TermComparisonRequest,
) (domain.TermComparisonResult, error) {
	if input.Preference == "" {
		input.Preference = "balanced"
	}
	if err := s.validate(input); err != nil {
		return domain.TermComparisonResult{}, err
	}

	start := s.loanService.now()
	options := []domain.TermOption{}

	for term := input.MinTermMonths; term <= input.MaxTermMonths; term++ {
		schedule, err := Amortize(domain.AmortizationRequest{
			LoanAmount:         input.LoanAmount,
			TermsInMonths:      term,
			AnnualInterestRate: input.AnnualInterestRate,
		}, start)
		if err != nil {
			if errors.Is(err, ErrNonAmortizing) {
				slog.Warn("skipping term that does not amortize", "term", term, "err", err)
				continue
			}
			return domain.TermComparisonResult{}, err
		}

		first, last := schedule[0], schedule[len(schedule)-1]
		if input.MaxMonthlyPayment > 0 && first.Payment > input.MaxMonthlyPayment {
			continue
		}

		options = append(options, domain.TermOption{
			TermMonths:     term,
			MonthlyPayment: first.Payment,
			TotalInterest:  last.CumulativeInterest,
			Periods:        len(schedule),
		})
	}

	if len(options) == 0 {
		return domain.TermComparisonResult{}, fmt.Errorf("%w: no term in [%d, %d] fits a monthly payment of %.2f",
			ErrInvalidInput, input.MinTermMonths, input.MaxTermMonths, input.MaxMonthlyPayment)
	}

	scoreOptions(options, input)

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Score > options[j].Score
	})

	return domain.TermComparisonResult{
		RecommendedTerm: options[0].TermMonths,
		Options:         options,
	}, nil
}

func (s *TermComparisonService) validate(input domain.TermComparisonRequest) error {
	if input.MinTermMonths < MinTermMonths || input.MaxTermMonths < MinTermMonths {
		return fmt.Errorf("%w: term bounds must be at least %d month", ErrInvalidInput, MinTermMonths)
	}
	if input.MinTermMonths > input.MaxTermMonths {
		return fmt.Errorf("%w: min term %d is greater than max term %d", ErrInvalidInput, input.MinTermMonths, input.MaxTermMonths)
	}
	if input.MaxTermMonths-input.MinTermMonths > MaxTermRangeMonths {
		return fmt.Errorf("%w: term range exceeds %d months", ErrInvalidInput, MaxTermRangeMonths)
	}
	if input.MaxMonthlyPayment < 0 {
		return fmt.Errorf("%w: max monthly payment must not be negative", ErrInvalidInput)
	}
	if !preferences[input.Preference] {
		return fmt.Errorf("%w: unknown preference %q", ErrInvalidInput, input.Preference)
	}
	return s.loanService.checkLimits(domain.AmortizationRequest{
		LoanAmount:         input.LoanAmount,
		TermsInMonths:      input.MaxTermMonths,
		AnnualInterestRate: input.AnnualInterestRate,
	})
}

// scoreOptions rates every option on a 0-10 scale relative to the best and
// worst option in the set.
func scoreOptions(options []domain.TermOption, input domain.TermComparisonRequest) {
	minInterest, maxInterest := math.Inf(1), math.Inf(-1)
	minPayment, maxPayment := math.Inf(1), math.Inf(-1)
	for _, o := range options {
		minInterest = math.Min(minInterest, float64(o.TotalInterest))
		maxInterest = math.Max(maxInterest, float64(o.TotalInterest))
		minPayment = math.Min(minPayment, float64(o.MonthlyPayment))
		maxPayment = math.Max(maxPayment, float64(o.MonthlyPayment))
	}
	termRange := float64(input.MaxTermMonths - input.MinTermMonths)

	for i := range options {
		o := &options[i]

		interestScore := relativeScore(float64(o.TotalInterest), minInterest, maxInterest)
		paymentScore := relativeScore(float64(o.MonthlyPayment), minPayment, maxPayment)
		termScore := 10.0
		if termRange > 0 {
			termScore = 10.0 * (1.0 - float64(o.TermMonths-input.MinTermMonths)/termRange)
		}

		var score float64
		switch input.Preference {
		case "minimize_interest":
			score = 0.7*interestScore + 0.3*termScore
			o.Reason = "Term chosen to minimize total interest"
		case "minimize_payment":
			score = 0.2*interestScore + 0.8*paymentScore
			o.Reason = "Term chosen to minimize the monthly payment"
		case "balanced":
			score = 0.4*interestScore + 0.4*paymentScore + 0.2*termScore
			o.Reason = "Balance between monthly payment and total interest"
		}
		o.Score = math.Round(score*100) / 100
	}
}

// relativeScore maps v in [lo, hi] to 10 (at lo) .. 0 (at hi).
func relativeScore(v, lo, hi float64) float64 {
	if hi <= lo {
		return 10.0
	}
	return 10.0 * (1.0 - (v-lo)/(hi-lo))
}
