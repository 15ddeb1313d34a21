package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"loan-amortizer/domain"
)

func requiredFloat32(q url.Values, name string) (float32, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, fmt.Errorf("missing query parameter %q", name)
	}
	return parseFloat32(name, raw)
}

func optionalFloat32(q url.Values, name string) (float32, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	return parseFloat32(name, raw)
}

func parseFloat32(name, raw string) (float32, error) {
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be a number, got %q", name, raw)
	}
	return float32(v), nil
}

func requiredInt(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, fmt.Errorf("missing query parameter %q", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be an integer, got %q", name, raw)
	}
	return v, nil
}

// amortizationRequest reads loan_amount, terms_in_months and
// annual_interest_rate from the query string.
func amortizationRequest(q url.Values) (domain.AmortizationRequest, error) {
	var req domain.AmortizationRequest
	var err error

	if req.LoanAmount, err = requiredFloat32(q, "loan_amount"); err != nil {
		return req, err
	}
	if req.TermsInMonths, err = requiredInt(q, "terms_in_months"); err != nil {
		return req, err
	}
	if req.AnnualInterestRate, err = requiredFloat32(q, "annual_interest_rate"); err != nil {
		return req, err
	}
	return req, nil
}
