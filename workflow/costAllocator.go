package workflow

import (
	"github.com/boost-jp/ops_backend/models"
	"github.com/shopspring/decimal"
)

// RoundYen rounds to the nearest integer yen, half away from zero. Every
// per-row amount is rounded before aggregation so a rerun over identical
// inputs reproduces identical totals.
func RoundYen(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(0)
}

// ProjectCosts is the allocator output for one project: the summed labor and
// tool cost contributions of every member allocated to it.
type ProjectCosts struct {
	LaborCost decimal.Decimal
	ToolCost  decimal.Decimal
}

// memberTotalHours sums reported hours per member across all their projects
// in the month. Monthly salaries and tool costs apportion against this total.
func memberTotalHours(rows []*models.AllocationRow) map[int]decimal.Decimal {
	totals := make(map[int]decimal.Decimal)
	for _, row := range rows {
		totals[row.MemberId] = totals[row.MemberId].Add(row.ReportedHours)
	}
	return totals
}

// rowLaborCost computes one member's labor cost contribution to one project.
// Hourly members bill hours at their rate; monthly members have their fixed
// salary apportioned by share of total hours. A monthly member whose hours
// all come in at zero contributes nothing rather than dividing by zero.
func rowLaborCost(row *models.AllocationRow, totalHours decimal.Decimal) decimal.Decimal {
	switch row.SalaryType {
	case models.SalaryTypeHourly:
		return RoundYen(row.ReportedHours.Mul(row.SalaryAmount))
	default:
		if totalHours.IsZero() {
			return decimal.Zero
		}
		return RoundYen(row.SalaryAmount.Mul(row.ReportedHours).Div(totalHours))
	}
}

// rowToolCost apportions the member's subscription total by share of hours,
// regardless of salary type.
func rowToolCost(row *models.AllocationRow, totalHours decimal.Decimal) decimal.Decimal {
	if totalHours.IsZero() {
		return decimal.Zero
	}
	return RoundYen(row.ToolCostSum.Mul(row.ReportedHours).Div(totalHours))
}

// AllocateCosts turns the month's allocation rows into per-project labor and
// tool cost totals. Pure; the caller supplies the rows.
func AllocateCosts(rows []*models.AllocationRow) map[int]*ProjectCosts {
	totals := memberTotalHours(rows)

	costs := make(map[int]*ProjectCosts)
	for _, row := range rows {
		projectCosts, ok := costs[row.ProjectId]
		if !ok {
			projectCosts = &ProjectCosts{LaborCost: decimal.Zero, ToolCost: decimal.Zero}
			costs[row.ProjectId] = projectCosts
		}
		totalHours := totals[row.MemberId]
		projectCosts.LaborCost = projectCosts.LaborCost.Add(rowLaborCost(row, totalHours))
		projectCosts.ToolCost = projectCosts.ToolCost.Add(rowToolCost(row, totalHours))
	}
	return costs
}
