package service

import (
	"fmt"
	"math"
	"time"

	"loan-amortizer/domain"
)

// PeriodStep is the flat distance between due dates. Periods are not
// calendar months.
const PeriodStep = 30 * 24 * time.Hour

// Amortize builds the fixed-rate schedule for req with the first due date
// at start.
//
// All arithmetic is float32. The level payment is computed once from the
// nominal term and rounded; the loop then runs until the balance reaches
// zero, so the number of records can differ from TermsInMonths when the
// rounded payment is slightly short or long.
func Amortize(req domain.AmortizationRequest, start time.Time) (domain.AmortizationSchedule, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	monthlyRate := req.AnnualInterestRate / 100 / 12
	payment := roundCents(levelPayment(req.LoanAmount, monthlyRate, req.TermsInMonths))
	if !isFinite(payment) || payment <= 0 {
		return nil, fmt.Errorf("%w: level payment %v for rate %v%% over %d months",
			ErrNonAmortizing, payment, req.AnnualInterestRate, req.TermsInMonths)
	}

	maxPeriods := 2*req.TermsInMonths + 12
	schedule := make(domain.AmortizationSchedule, 0, req.TermsInMonths+1)

	balance := req.LoanAmount
	var cumulativeInterest float32
	periodDate := start

	for period := 1; balance > 0; period++ {
		if period > maxPeriods {
			return nil, fmt.Errorf("%w: balance %v still outstanding after %d periods",
				ErrNonAmortizing, balance, maxPeriods)
		}

		interest := float32(monthlyRate * balance)
		principal := payment - interest
		if principal > balance {
			principal = balance
		}
		if principal <= 0 {
			return nil, fmt.Errorf("%w: payment %v does not cover interest %v in period %d",
				ErrNonAmortizing, payment, interest, period)
		}

		cumulativeInterest += interest
		next := balance - principal
		if next >= balance {
			return nil, fmt.Errorf("%w: balance %v stopped decreasing in period %d",
				ErrNonAmortizing, balance, period)
		}
		balance = next

		schedule = append(schedule, domain.PaymentRecord{
			PeriodNumber:       period,
			PeriodDate:         periodDate,
			Payment:            roundCents(payment),
			Principal:          roundCents(principal),
			Interest:           roundCents(interest),
			CumulativeInterest: roundCents(cumulativeInterest),
			RemainingBalance:   roundCents(balance),
		})

		periodDate = periodDate.Add(PeriodStep)
	}

	return schedule, nil
}

func validateRequest(req domain.AmortizationRequest) error {
	if !(req.LoanAmount > 0) || !isFinite(req.LoanAmount) {
		return fmt.Errorf("%w: loan amount must be a positive number, got %v", ErrInvalidInput, req.LoanAmount)
	}
	if req.TermsInMonths < MinTermMonths {
		return fmt.Errorf("%w: term must be at least %d month, got %d", ErrInvalidInput, MinTermMonths, req.TermsInMonths)
	}
	if !(req.AnnualInterestRate >= 0) || !isFinite(req.AnnualInterestRate) {
		return fmt.Errorf("%w: annual interest rate must not be negative, got %v", ErrInvalidInput, req.AnnualInterestRate)
	}
	return nil
}

// levelPayment is the unrounded annuity payment. A zero rate, or one too
// small to move (1+r)^n away from 1 in float32, falls back to straight-line
// repayment.
func levelPayment(loanAmount, monthlyRate float32, terms int) float32 {
	if monthlyRate == 0 {
		return loanAmount / float32(terms)
	}
	growth := powi(1+monthlyRate, terms)
	if growth == 1 {
		return loanAmount / float32(terms)
	}
	return float32(float32(loanAmount*monthlyRate)*growth) / (growth - 1)
}

// powi raises base to a non-negative integer power by repeated squaring,
// rounding to float32 after every multiplication.
func powi(base float32, exp int) float32 {
	result := float32(1)
	for {
		if exp&1 == 1 {
			result = float32(result * base)
		}
		exp /= 2
		if exp == 0 {
			break
		}
		base = float32(base * base)
	}
	return result
}

// roundCents rounds up to the next cent: ceil(x*100)/100.
func roundCents(x float32) float32 {
	return float32(math.Ceil(float64(float32(x*100)))) / 100
}

func isFinite(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
