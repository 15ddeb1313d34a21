package http

import (
	"bytes"
	"log/slog"
	"net/http"

	"loan-amortizer/export"
	"loan-amortizer/service"
)

type LoanHandler struct {
	service *service.LoanService
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

// Amortize serves the full schedule for the query's loan_amount,
// terms_in_months and annual_interest_rate. The optional format parameter
// selects json (default), csv, xlsx or pdf.
func (h *LoanHandler) Amortize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req, err := amortizationRequest(q)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	schedule, err := h.service.Schedule(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if format == export.JSON {
		writeJSON(w, r, http.StatusOK, schedule)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, schedule); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename=amortization."+string(format))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to write export", "request_id", RequestID(r.Context()), "format", format, "err", err)
	}
}

// Summary serves the totals of the same schedule Amortize would return.
func (h *LoanHandler) Summary(w http.ResponseWriter, r *http.Request) {
	req, err := amortizationRequest(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.service.Summary(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, summary)
}
