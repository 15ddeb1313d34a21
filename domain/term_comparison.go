package domain

type TermComparisonRequest struct {
	LoanAmount         float32 `json:"loan_amount"`
	AnnualInterestRate float32 `json:"annual_interest_rate"`
	MinTermMonths      int     `json:"min_term_months"`
	MaxTermMonths      int     `json:"max_term_months"`
	MaxMonthlyPayment  float32 `json:"max_monthly_payment,omitempty"`
	Preference         string  `json:"preference"` // "minimize_interest", "minimize_payment", "balanced"
}

type TermOption struct {
	TermMonths     int     `json:"term_months"`
	MonthlyPayment float32 `json:"monthly_payment"`
	TotalInterest  float32 `json:"total_interest"`
	Periods        int     `json:"periods"`
	Score          float64 `json:"score"`
	Reason         string  `json:"reason"`
}

type TermComparisonResult struct {
	RecommendedTerm int          `json:"recommended_term"`
	Options         []TermOption `json:"options"`
}
