// Package export writes amortization schedules as JSON, CSV, XLSX or PDF.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"loan-amortizer/domain"
)

type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	PDF  Format = "pdf"
)

// Columns is the header used by the tabular formats; it mirrors the JSON
// field names of domain.PaymentRecord.
var Columns = []string{
	"period_number",
	"period_date",
	"payment",
	"principal",
	"interest",
	"cumulative_interest",
	"remaining_balance",
}

const sheetName = "Schedule"

// ParseFormat accepts a format name case-insensitively. The empty string
// means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return JSON, nil
	case JSON, CSV, XLSX, PDF:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q: want json|csv|xlsx|pdf", s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv"
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case PDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// Write encodes schedule to w in format f.
func Write(w io.Writer, f Format, schedule domain.AmortizationSchedule) error {
	switch f {
	case JSON, "":
		return writeJSON(w, schedule)
	case CSV:
		return writeCSV(w, schedule)
	case XLSX:
		return writeXLSX(w, schedule)
	case PDF:
		return writePDF(w, schedule)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

func writeJSON(w io.Writer, schedule domain.AmortizationSchedule) error {
	if schedule == nil {
		schedule = domain.AmortizationSchedule{}
	}
	return json.NewEncoder(w).Encode(schedule)
}

func writeCSV(w io.Writer, schedule domain.AmortizationSchedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, rec := range schedule {
		if err := cw.Write(row(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, schedule domain.AmortizationSchedule) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	for i, rec := range schedule {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			rec.PeriodNumber,
			rec.PeriodDate.UTC().Format(time.RFC3339),
			money(rec.Payment),
			money(rec.Principal),
			money(rec.Interest),
			money(rec.CumulativeInterest),
			money(rec.RemainingBalance),
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

var pdfWidths = []float64{16, 44, 24, 24, 22, 30, 30}

func writePDF(w io.Writer, schedule domain.AmortizationSchedule) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Amortization schedule", false)

	header := func() {
		pdf.SetFont("Arial", "B", 8)
		for i, c := range Columns {
			pdf.CellFormat(pdfWidths[i], 7, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}

	pdf.SetHeaderFunc(header)
	pdf.AddPage()

	for _, rec := range schedule {
		for i, v := range row(rec) {
			align := "R"
			if i == 1 {
				align = "L"
			}
			pdf.CellFormat(pdfWidths[i], 6, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

func row(rec domain.PaymentRecord) []string {
	return []string{
		strconv.Itoa(rec.PeriodNumber),
		rec.PeriodDate.UTC().Format(time.RFC3339),
		formatMoney(rec.Payment),
		formatMoney(rec.Principal),
		formatMoney(rec.Interest),
		formatMoney(rec.CumulativeInterest),
		formatMoney(rec.RemainingBalance),
	}
}

// formatMoney prints the float32 value with two decimals.
func formatMoney(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 2, 32)
}

// money widens v through its shortest decimal form so spreadsheets show
// 1610.46 rather than 1610.4599609375.
func money(v float32) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(float64(v), 'f', -1, 32), 64)
	return f
}
