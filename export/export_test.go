package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"loan-amortizer/domain"
)

var start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleSchedule() domain.AmortizationSchedule {
	return domain.AmortizationSchedule{
		{PeriodNumber: 1, PeriodDate: start, Payment: 1610.46, Principal: 360.46, Interest: 1250.01, CumulativeInterest: 1250.01, RemainingBalance: 299639.53},
		{PeriodNumber: 2, PeriodDate: start.Add(30 * 24 * time.Hour), Payment: 1610.46, Principal: 361.96, Interest: 1248.51, CumulativeInterest: 2498.51, RemainingBalance: 299277.56},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", JSON, false},
		{"json", JSON, false},
		{"CSV", CSV, false},
		{" xlsx ", XLSX, false},
		{"pdf", PDF, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseFormat(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseFormat(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", JSON.ContentType())
	assert.Equal(t, "text/csv", CSV.ContentType())
	assert.Equal(t, "application/pdf", PDF.ContentType())
	assert.Contains(t, XLSX.ContentType(), "spreadsheetml")
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, sampleSchedule()))

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 1610.46, got[0]["payment"])
	assert.Equal(t, "2025-01-31T00:00:00Z", got[1]["period_date"])
}

func TestWrite_JSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, sampleSchedule()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{"1", "2025-01-01T00:00:00Z", "1610.46", "360.46", "1250.01", "1250.01", "299639.53"}, rows[1])
}

func TestWrite_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, XLSX, sampleSchedule()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, "1610.46", rows[1][2])
}

func TestWrite_PDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, PDF, sampleSchedule()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "output should be a PDF document")
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, Format("xml"), sampleSchedule()))
}
