package budget

import (
	"sort"

	"github.com/atelierhq/atelier-admin/pkg/models"
)

// Budget health statuses derived from spend percentage.
const (
	StatusGood     = "good"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// CategoryTotal is one row of the per-category breakdown used by the
// dashboard chart.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Percent  float64 `json:"percent"`
	Count    int     `json:"count"`
}

// DailyTotal is one point of the daily spend trend, keyed by calendar day.
type DailyTotal struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// Breakdown is the full budget report for one budget.
type Breakdown struct {
	Budget     models.Budget   `json:"budget"`
	TotalSpent float64         `json:"total_spent"`
	Remaining  float64         `json:"remaining"`
	Percent    float64         `json:"spent_percent"`
	Status     string          `json:"status"`
	Categories []CategoryTotal `json:"categories"`
	Daily      []DailyTotal    `json:"daily_trend"`
}

// AggregateByCategory groups expenses by category and sums them against
// totalBudget. Categories with no expenses are absent from the result.
// Rows come back ordered by first appearance in the expense list. A budget
// total of zero or less yields zero percentages rather than dividing.
func AggregateByCategory(expenses []models.Expense, totalBudget float64) []CategoryTotal {
	index := make(map[string]int)
	var rows []CategoryTotal

	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(rows)
			index[e.Category] = i
			rows = append(rows, CategoryTotal{Category: e.Category})
		}
		rows[i].Total += e.Amount
		rows[i].Count++
	}

	for i := range rows {
		rows[i].Percent = percentOf(rows[i].Total, totalBudget)
	}
	return rows
}

// DailyTrend sums expenses per calendar day, sorted ascending by date.
// Dates render as YYYY-MM-DD.
func DailyTrend(expenses []models.Expense) []DailyTotal {
	byDay := make(map[string]float64)
	for _, e := range expenses {
		byDay[e.Date.Format("2006-01-02")] += e.Amount
	}

	trend := make([]DailyTotal, 0, len(byDay))
	for day, amount := range byDay {
		trend = append(trend, DailyTotal{Date: day, Amount: amount})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })
	return trend
}

// StatusFor maps a spend percentage onto a health status. Both thresholds
// are exclusive: exactly 90 is a warning, exactly 75 is good.
func StatusFor(spentPercent float64) string {
	switch {
	case spentPercent > 90:
		return StatusCritical
	case spentPercent > 75:
		return StatusWarning
	default:
		return StatusGood
	}
}

// BuildBreakdown assembles the full report for one budget and its expenses.
func BuildBreakdown(b models.Budget, expenses []models.Expense) Breakdown {
	var spent float64
	for _, e := range expenses {
		spent += e.Amount
	}
	percent := percentOf(spent, b.TotalBudget)

	return Breakdown{
		Budget:     b,
		TotalSpent: spent,
		Remaining:  b.TotalBudget - spent,
		Percent:    percent,
		Status:     StatusFor(percent),
		Categories: AggregateByCategory(expenses, b.TotalBudget),
		Daily:      DailyTrend(expenses),
	}
}

func percentOf(amount, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return amount / total * 100
}
