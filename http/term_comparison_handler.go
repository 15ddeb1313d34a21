package http

import (
	"net/http"
	"strings"

	"loan-amortizer/domain"
	"loan-amortizer/service"
)

type TermComparisonHandler struct {
	service *service.TermComparisonService
}

func NewTermComparisonHandler(service *service.TermComparisonService) *TermComparisonHandler {
	return &TermComparisonHandler{service: service}
}

func (h *TermComparisonHandler) Compare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var input domain.TermComparisonRequest
	var err error
	if input.LoanAmount, err = requiredFloat32(q, "loan_amount"); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if input.AnnualInterestRate, err = requiredFloat32(q, "annual_interest_rate"); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if input.MinTermMonths, err = requiredInt(q, "min_term_months"); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if input.MaxTermMonths, err = requiredInt(q, "max_term_months"); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if input.MaxMonthlyPayment, err = optionalFloat32(q, "max_monthly_payment"); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	input.Preference = strings.TrimSpace(q.Get("preference"))

	result, err := h.service.Compare(input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}
