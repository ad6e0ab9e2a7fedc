package billing

import (
	"math"
	"testing"
	"time"

	"github.com/aarshiv/grader-api/internal/models"
)

var august30 = time.Date(2026, time.August, 30, 15, 4, 5, 0, time.UTC)

func item(sheets int, percentage float64) models.HistoryItem {
	return models.HistoryItem{
		SheetsCount: sheets,
		Report:      &models.EvaluationReport{Percentage: percentage},
	}
}

func TestInfoEmptyHistory(t *testing.T) {
	info := Info(nil, 0.50, august30)

	if info.PendingAmount != 0 {
		t.Errorf("PendingAmount = %v, want 0", info.PendingAmount)
	}
	if info.SheetsEvaluatedThisMonth != 0 {
		t.Errorf("SheetsEvaluatedThisMonth = %v, want 0", info.SheetsEvaluatedThisMonth)
	}
	if info.IsPaid {
		t.Error("IsPaid must be false")
	}
}

func TestInfoChargesPerSheet(t *testing.T) {
	history := []models.HistoryItem{item(10, 55)}

	info := Info(history, 0.50, august30)

	if info.PendingAmount != 5.00 {
		t.Errorf("PendingAmount = %v, want 5.00", info.PendingAmount)
	}
	if info.SheetsEvaluatedThisMonth != 10 {
		t.Errorf("SheetsEvaluatedThisMonth = %v, want 10", info.SheetsEvaluatedThisMonth)
	}
}

func TestInfoDueDateIsFirstOfNextMonth(t *testing.T) {
	info := Info(nil, 0.50, august30)
	if info.DueDate != "September 1, 2026" {
		t.Errorf("DueDate = %q, want \"September 1, 2026\"", info.DueDate)
	}

	// Year rollover
	december := time.Date(2026, time.December, 15, 0, 0, 0, 0, time.UTC)
	info = Info(nil, 0.50, december)
	if info.DueDate != "January 1, 2027" {
		t.Errorf("DueDate = %q, want \"January 1, 2027\"", info.DueDate)
	}
}

func TestInfoSumsAllSheets(t *testing.T) {
	history := []models.HistoryItem{item(3, 40), item(0, 80), item(5, 60)}

	info := Info(history, 0.50, august30)

	if info.SheetsEvaluatedThisMonth != 8 {
		t.Errorf("SheetsEvaluatedThisMonth = %v, want 8", info.SheetsEvaluatedThisMonth)
	}
	if info.PendingAmount != 4.00 {
		t.Errorf("PendingAmount = %v, want 4.00", info.PendingAmount)
	}
}

func TestInfoOrderIndependent(t *testing.T) {
	forward := []models.HistoryItem{item(2, 10), item(7, 90)}
	reversed := []models.HistoryItem{item(7, 90), item(2, 10)}

	a := Info(forward, 0.50, august30)
	b := Info(reversed, 0.50, august30)

	if a != b {
		t.Errorf("billing must be order independent: %+v vs %+v", a, b)
	}
}

func TestMetricsEmptyHistory(t *testing.T) {
	metrics := Metrics(nil, 0.50, august30)

	if metrics.Evaluations != 0 {
		t.Errorf("Evaluations = %d, want 0", metrics.Evaluations)
	}
	if metrics.MonthlyCharge != 0 {
		t.Errorf("MonthlyCharge = %v, want 0", metrics.MonthlyCharge)
	}
	if metrics.AveragePercentage != 0 {
		t.Errorf("AveragePercentage = %v, want 0", metrics.AveragePercentage)
	}
	if math.IsNaN(metrics.AveragePercentage) {
		t.Error("empty history must not produce NaN")
	}
}

func TestMetricsAverages(t *testing.T) {
	history := []models.HistoryItem{item(2, 40), item(3, 80)}

	metrics := Metrics(history, 0.50, august30)

	if metrics.Evaluations != 2 {
		t.Errorf("Evaluations = %d, want 2", metrics.Evaluations)
	}
	if metrics.AveragePercentage != 60 {
		t.Errorf("AveragePercentage = %v, want 60", metrics.AveragePercentage)
	}
	if metrics.MonthlyCharge != 2.50 {
		t.Errorf("MonthlyCharge = %v, want 2.50", metrics.MonthlyCharge)
	}
	if metrics.RenewalDate != "September 1, 2026" {
		t.Errorf("RenewalDate = %q", metrics.RenewalDate)
	}
}

func TestMetricsTolerateMissingReport(t *testing.T) {
	history := []models.HistoryItem{
		{SheetsCount: 1},
		item(1, 50),
	}

	metrics := Metrics(history, 0.50, august30)

	if metrics.AveragePercentage != 25 {
		t.Errorf("AveragePercentage = %v, want 25", metrics.AveragePercentage)
	}
}
