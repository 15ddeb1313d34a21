package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"loan-amortizer/domain"
)

func TestScheduleCommand_Stdout(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	err := app.Run([]string{"amortizer", "schedule",
		"--loan-amount", "10000",
		"--terms-in-months", "12",
		"--annual-interest-rate", "8",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	var schedule domain.AmortizationSchedule
	if err := json.Unmarshal(out.Bytes(), &schedule); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(schedule) != 12 {
		t.Errorf("expected 12 periods, got %d", len(schedule))
	}
}

func TestScheduleCommand_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.csv")

	err := newApp().Run([]string{"amortizer", "schedule",
		"--loan-amount", "10000",
		"--terms-in-months", "12",
		"--annual-interest-rate", "8",
		"--format", "csv",
		"-o", path,
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 13 {
		t.Errorf("expected header + 12 rows, got %d", len(rows))
	}
}

func TestScheduleCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"invalid loan", []string{"--loan-amount", "0", "--terms-in-months", "12", "--annual-interest-rate", "8"}},
		{"unknown format", []string{"--loan-amount", "1000", "--terms-in-months", "12", "--annual-interest-rate", "8", "--format", "xml"}},
		{"unwritable output", []string{"--loan-amount", "1000", "--terms-in-months", "12", "--annual-interest-rate", "8",
			"-o", filepath.Join(t.TempDir(), "missing", "schedule.json")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Writer = &bytes.Buffer{}
			if err := app.Run(append([]string{"amortizer", "schedule"}, tt.args...)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
