// Package billing derives charge and usage metrics from a user's history.
// Everything here is a pure function of its inputs: nothing is stored, and
// the same history always yields the same figures.
package billing

import (
	"time"

	"github.com/aarshiv/grader-api/internal/models"
)

// dueDateLayout renders the first of the next month long-form, e.g.
// "September 1, 2026".
const dueDateLayout = "January 2, 2006"

// Info projects a history into billing figures. Order of the input does not
// matter; a record with a zero sheet count simply contributes nothing.
func Info(history []models.HistoryItem, costPerSheet float64, now time.Time) models.BillingInfo {
	sheets := totalSheets(history)
	return models.BillingInfo{
		PendingAmount:            float64(sheets) * costPerSheet,
		DueDate:                  nextBillingDate(now).Format(dueDateLayout),
		IsPaid:                   false,
		SheetsEvaluatedThisMonth: sheets,
	}
}

// Metrics projects a history into the dashboard figures. An empty history
// yields zeros across the board; the average is 0, not NaN.
func Metrics(history []models.HistoryItem, costPerSheet float64, now time.Time) models.DashboardMetrics {
	metrics := models.DashboardMetrics{
		Evaluations:   len(history),
		MonthlyCharge: float64(totalSheets(history)) * costPerSheet,
		RenewalDate:   nextBillingDate(now).Format(dueDateLayout),
	}

	if len(history) > 0 {
		var sum float64
		for _, item := range history {
			if item.Report != nil {
				sum += item.Report.Percentage
			}
		}
		metrics.AveragePercentage = sum / float64(len(history))
	}

	return metrics
}

func totalSheets(history []models.HistoryItem) int {
	var total int
	for _, item := range history {
		total += item.SheetsCount
	}
	return total
}

// nextBillingDate is the first day of the calendar month after now.
func nextBillingDate(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
}
