package grader

import (
	"math"

	"github.com/aarshiv/grader-api/internal/models"
)

// Reconcile recomputes the aggregate score fields from the itemized grades,
// overwriting whatever totals the model reported. The model is not trusted to
// do arithmetic; this is where correctness is enforced.
//
// Each grade's marksObtained is clamped into [0, totalMarks] (missing or
// non-numeric values count as 0), totalScore becomes the sum of the clamped
// marks, and percentage is rederived from maxScore. MaxScore itself and all
// other fields pass through unchanged. Reconciling an already-reconciled
// report is a no-op.
func Reconcile(report *models.EvaluationReport) *models.EvaluationReport {
	var total float64
	for i := range report.Grades {
		grade := &report.Grades[i]
		marks := grade.MarksObtained
		if math.IsNaN(marks) || marks < 0 {
			marks = 0
		}
		if grade.TotalMarks > 0 && marks > grade.TotalMarks {
			marks = grade.TotalMarks
		}
		grade.MarksObtained = marks
		total += marks
	}

	report.TotalScore = total
	if report.MaxScore > 0 {
		report.Percentage = total / report.MaxScore * 100
	} else {
		report.Percentage = 0
	}
	return report
}
