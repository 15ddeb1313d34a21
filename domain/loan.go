package domain

import "time"

// AmortizationRequest holds the three inputs of a fixed-rate schedule.
// AnnualInterestRate is a percentage: 5.0 means 5%.
type AmortizationRequest struct {
	LoanAmount         float32 `json:"loan_amount"`
	TermsInMonths      int     `json:"terms_in_months"`
	AnnualInterestRate float32 `json:"annual_interest_rate"`
}

// PaymentRecord is one period of an amortization schedule. Money fields are
// rounded up to the cent independently of each other.
type PaymentRecord struct {
	PeriodNumber       int       `json:"period_number"`
	PeriodDate         time.Time `json:"period_date"`
	Payment            float32   `json:"payment"`
	Principal          float32   `json:"principal"`
	Interest           float32   `json:"interest"`
	CumulativeInterest float32   `json:"cumulative_interest"`
	RemainingBalance   float32   `json:"remaining_balance"`
}

// AmortizationSchedule is ordered by PeriodNumber, starting at 1.
type AmortizationSchedule []PaymentRecord

type LoanSummary struct {
	MonthlyPayment   float32   `json:"monthly_payment"`
	TotalPayment     float32   `json:"total_payment"`
	TotalInterest    float32   `json:"total_interest"`
	Periods          int       `json:"periods"`
	FirstPaymentDate time.Time `json:"first_payment_date"`
	PayoffDate       time.Time `json:"payoff_date"`
}
