package service

import "time"

const (
	MaxLoanAmount   = 1_000_000_000.0 // 1 billion
	MaxInterestRate = 1000.0          // 1000% annual
	MaxTermMonths   = 600             // 50 years
	MinTermMonths   = 1

	// Widest [min, max] term range a comparison may evaluate (10 years).
	MaxTermRangeMonths = 120

	DefaultCacheTTL = 10 * time.Minute
	cacheKeyPrefix  = "amortization:v1"
)
