package workflow

import (
	"testing"

	"github.com/boost-jp/ops_backend/models"
	"github.com/shopspring/decimal"
)

// NOTE: These tests are intentionally DB-free. The allocator, pricing and
// merge stages are pure; generation-level behavior (row locking, partial
// success) needs MySQL and lives behind INTEGRATION_TESTS.

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func row(memberId, projectId int, hours string, salaryType models.SalaryType, salary string, toolSum string) *models.AllocationRow {
	return &models.AllocationRow{
		MemberId:      memberId,
		ProjectId:     projectId,
		ReportedHours: dec(hours),
		SalaryType:    salaryType,
		SalaryAmount:  dec(salary),
		ToolCostSum:   dec(toolSum),
	}
}

func TestAllocateCosts_HourlyMember(t *testing.T) {
	// Hourly member at 2000/h, 10h on X (project 1) and 5h on Y (project 2).
	rows := []*models.AllocationRow{
		row(1, 1, "10", models.SalaryTypeHourly, "2000", "0"),
		row(1, 2, "5", models.SalaryTypeHourly, "2000", "0"),
	}
	costs := AllocateCosts(rows)

	if got := costs[1].LaborCost; !got.Equal(dec("20000")) {
		t.Errorf("project 1 labor cost = %s, want 20000", got)
	}
	if got := costs[2].LaborCost; !got.Equal(dec("10000")) {
		t.Errorf("project 2 labor cost = %s, want 10000", got)
	}
}

func TestAllocateCosts_MonthlySingleProject(t *testing.T) {
	// Monthly member at 300000, all 80h on one project: full salary lands there.
	rows := []*models.AllocationRow{
		row(2, 3, "80", models.SalaryTypeMonthly, "300000", "0"),
	}
	costs := AllocateCosts(rows)

	if got := costs[3].LaborCost; !got.Equal(dec("300000")) {
		t.Errorf("labor cost = %s, want 300000", got)
	}
}

func TestAllocateCosts_MonthlyApportionmentSumsToSalary(t *testing.T) {
	cases := []struct {
		name   string
		salary string
		hours  []string
	}{
		{"even split", "300000", []string{"40", "40"}},
		{"uneven split", "300000", []string{"70", "30", "20"}},
		{"rounding heavy", "100000", []string{"1", "1", "1"}},
		{"tiny hours", "333333", []string{"0.5", "0.25", "0.25"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows := make([]*models.AllocationRow, 0, len(tc.hours))
			for i, h := range tc.hours {
				rows = append(rows, row(7, 100+i, h, models.SalaryTypeMonthly, tc.salary, "0"))
			}
			costs := AllocateCosts(rows)

			total := decimal.Zero
			for _, c := range costs {
				total = total.Add(c.LaborCost)
			}
			// Per-row rounding may drift by at most N-1 yen off the salary.
			drift := total.Sub(dec(tc.salary)).Abs()
			tolerance := decimal.NewFromInt(int64(len(tc.hours) - 1))
			if drift.GreaterThan(tolerance) {
				t.Errorf("apportioned total %s drifts %s from salary %s (tolerance %s)",
					total, drift, tc.salary, tolerance)
			}
		})
	}
}

func TestAllocateCosts_ZeroTotalHours(t *testing.T) {
	// Monthly member with an allocation row but zero hours: no division, no cost.
	rows := []*models.AllocationRow{
		row(4, 5, "0", models.SalaryTypeMonthly, "300000", "12000"),
	}
	costs := AllocateCosts(rows)

	if got := costs[5].LaborCost; !got.IsZero() {
		t.Errorf("labor cost = %s, want 0", got)
	}
	if got := costs[5].ToolCost; !got.IsZero() {
		t.Errorf("tool cost = %s, want 0", got)
	}
}

func TestAllocateCosts_ToolCostApportionsForHourlyToo(t *testing.T) {
	rows := []*models.AllocationRow{
		row(5, 1, "30", models.SalaryTypeHourly, "2000", "10000"),
		row(5, 2, "10", models.SalaryTypeHourly, "2000", "10000"),
	}
	costs := AllocateCosts(rows)

	if got := costs[1].ToolCost; !got.Equal(dec("7500")) {
		t.Errorf("project 1 tool cost = %s, want 7500", got)
	}
	if got := costs[2].ToolCost; !got.Equal(dec("2500")) {
		t.Errorf("project 2 tool cost = %s, want 2500", got)
	}
}

func TestAllocateCosts_Deterministic(t *testing.T) {
	rows := []*models.AllocationRow{
		row(1, 1, "33.33", models.SalaryTypeMonthly, "345678", "9876"),
		row(1, 2, "66.67", models.SalaryTypeMonthly, "345678", "9876"),
		row(2, 1, "12.5", models.SalaryTypeHourly, "3210", "5432"),
	}
	first := AllocateCosts(rows)
	second := AllocateCosts(rows)

	for projectId, c := range first {
		if !c.LaborCost.Equal(second[projectId].LaborCost) || !c.ToolCost.Equal(second[projectId].ToolCost) {
			t.Errorf("project %d: rerun produced %s/%s, first run %s/%s",
				projectId, second[projectId].LaborCost, second[projectId].ToolCost, c.LaborCost, c.ToolCost)
		}
	}
}

func TestBreakevenMarkup(t *testing.T) {
	cases := []struct {
		name  string
		labor string
		other string
		want  string
	}{
		{"no other cost", "100000", "0", "1"},
		{"with other cost", "100000", "20000", "1.2"},
		{"zero labor falls back", "0", "50000", "1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := BreakevenMarkup(dec(tc.labor), dec(tc.other))
			if !got.Equal(dec(tc.want)) {
				t.Errorf("BreakevenMarkup(%s, %s) = %s, want %s", tc.labor, tc.other, got, tc.want)
			}
		})
	}
}

func TestMerge_FirstGenerationBreakevenHasZeroProfit(t *testing.T) {
	// Pass-through project, no stored record: the derived breakeven markup
	// must price revenue so gross profit comes out to zero.
	computed := &ComputedPL{
		ProjectId:     1,
		TargetMonth:   "2026-02",
		LaborCost:     dec("100000"),
		ToolCost:      dec("5000"),
		OtherCostAuto: dec("0"),
		Pricing:       PassThroughPricing{},
	}
	record := MergeComputedWithStored(computed, nil)

	if record.MarkupRate == nil || !record.MarkupRate.Equal(dec("1")) {
		t.Fatalf("markup rate = %v, want 1", record.MarkupRate)
	}
	if !record.RevenueContract.Equal(dec("105000")) {
		t.Errorf("revenue contract = %s, want 105000", record.RevenueContract)
	}
	if !record.GrossProfit.IsZero() {
		t.Errorf("gross profit = %s, want 0", record.GrossProfit)
	}
}

func TestMerge_FirstGenerationBreakevenWithOtherCost(t *testing.T) {
	computed := &ComputedPL{
		ProjectId:     1,
		TargetMonth:   "2026-02",
		LaborCost:     dec("100000"),
		ToolCost:      dec("5000"),
		OtherCostAuto: dec("20000"),
		Pricing:       PassThroughPricing{},
	}
	record := MergeComputedWithStored(computed, nil)

	if record.MarkupRate == nil || !record.MarkupRate.Equal(dec("1.2")) {
		t.Fatalf("markup rate = %v, want 1.2", record.MarkupRate)
	}
	if !record.GrossProfit.IsZero() {
		t.Errorf("gross profit = %s, want 0 at breakeven", record.GrossProfit)
	}
}

func TestMerge_DirectPricingIgnoresCosts(t *testing.T) {
	computed := &ComputedPL{
		ProjectId:     2,
		TargetMonth:   "2026-02",
		LaborCost:     dec("400000"),
		ToolCost:      dec("30000"),
		OtherCostAuto: dec("10000"),
		Pricing:       DirectPricing{ContractAmount: dec("800000")},
	}
	record := MergeComputedWithStored(computed, nil)

	if !record.RevenueContract.Equal(dec("800000")) {
		t.Errorf("revenue contract = %s, want 800000", record.RevenueContract)
	}
	if record.MarkupRate != nil {
		t.Errorf("markup rate = %s, want nil for direct pricing", record.MarkupRate)
	}
	if !record.GrossProfit.Equal(dec("360000")) {
		t.Errorf("gross profit = %s, want 360000", record.GrossProfit)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	computed := &ComputedPL{
		ProjectId:     3,
		TargetMonth:   "2026-02",
		LaborCost:     dec("250000"),
		ToolCost:      dec("12000"),
		OtherCostAuto: dec("8000"),
		Pricing:       PassThroughPricing{},
	}
	first := MergeComputedWithStored(computed, nil)
	second := MergeComputedWithStored(computed, first)

	if !first.RevenueContract.Equal(second.RevenueContract) ||
		!first.LaborCost.Equal(second.LaborCost) ||
		!first.ToolCost.Equal(second.ToolCost) ||
		!first.OtherCost.Equal(second.OtherCost) ||
		!first.GrossProfit.Equal(second.GrossProfit) ||
		!first.GrossProfitRate.Equal(second.GrossProfitRate) {
		t.Errorf("second merge diverged: first %+v, second %+v", first, second)
	}
	if !first.MarkupRate.Equal(*second.MarkupRate) {
		t.Errorf("markup rate changed across idempotent rerun: %s vs %s", first.MarkupRate, second.MarkupRate)
	}
}

func TestMerge_ManualMarkupSurvivesRegeneration(t *testing.T) {
	computed := &ComputedPL{
		ProjectId:     4,
		TargetMonth:   "2026-02",
		LaborCost:     dec("100000"),
		ToolCost:      dec("5000"),
		OtherCostAuto: dec("0"),
		Pricing:       PassThroughPricing{},
	}
	stored := MergeComputedWithStored(computed, nil)

	// Operator hand-tunes the markup, then hours change and we regenerate.
	manual := dec("1.35")
	stored.MarkupRate = &manual

	regenerated := &ComputedPL{
		ProjectId:     4,
		TargetMonth:   "2026-02",
		LaborCost:     dec("120000"),
		ToolCost:      dec("6000"),
		OtherCostAuto: dec("0"),
		Pricing:       PassThroughPricing{},
	}
	record := MergeComputedWithStored(regenerated, stored)

	if !record.MarkupRate.Equal(dec("1.35")) {
		t.Errorf("markup rate = %s, want manual 1.35 preserved", record.MarkupRate)
	}
	if !record.LaborCost.Equal(dec("120000")) {
		t.Errorf("labor cost = %s, want recomputed 120000", record.LaborCost)
	}
	if !record.RevenueContract.Equal(dec("168000")) {
		t.Errorf("revenue contract = %s, want 120000*1.35+6000 = 168000", record.RevenueContract)
	}
}

func TestMerge_RevenueExtraSurvivesRegeneration(t *testing.T) {
	computed := &ComputedPL{
		ProjectId:     5,
		TargetMonth:   "2026-02",
		LaborCost:     dec("100000"),
		ToolCost:      dec("0"),
		OtherCostAuto: dec("0"),
		Pricing:       PassThroughPricing{},
	}
	stored := MergeComputedWithStored(computed, nil)
	stored.RevenueExtra = dec("50000")

	record := MergeComputedWithStored(computed, stored)

	if !record.RevenueExtra.Equal(dec("50000")) {
		t.Errorf("revenue extra = %s, want manual 50000 preserved", record.RevenueExtra)
	}
	if !record.GrossProfit.Equal(dec("50000")) {
		t.Errorf("gross profit = %s, want 50000", record.GrossProfit)
	}
}

func TestMerge_OtherCostDeltaNeverDoubleCounts(t *testing.T) {
	// Regression for the re-summation rule: generate, add an expense item,
	// generate again. The new item is layered in exactly once and a manual
	// adjustment survives both runs.
	base := &ComputedPL{
		ProjectId:     6,
		TargetMonth:   "2026-02",
		LaborCost:     dec("100000"),
		ToolCost:      dec("0"),
		OtherCostAuto: dec("10000"),
		Pricing:       PassThroughPricing{},
	}
	stored := MergeComputedWithStored(base, nil)
	if !stored.OtherCost.Equal(dec("10000")) {
		t.Fatalf("initial other cost = %s, want 10000", stored.OtherCost)
	}

	// Operator adds an ad-hoc 3000 on top of the automatic 10000.
	stored.OtherCost = dec("13000")

	// A new 5000 expense item gets linked, auto sum becomes 15000.
	withNewItem := &ComputedPL{
		ProjectId:     6,
		TargetMonth:   "2026-02",
		LaborCost:     dec("100000"),
		ToolCost:      dec("0"),
		OtherCostAuto: dec("15000"),
		Pricing:       PassThroughPricing{},
	}
	second := MergeComputedWithStored(withNewItem, stored)
	if !second.OtherCost.Equal(dec("18000")) {
		t.Fatalf("other cost after new item = %s, want 13000+5000 = 18000", second.OtherCost)
	}

	// Third run with no further changes must not re-add anything.
	third := MergeComputedWithStored(withNewItem, second)
	if !third.OtherCost.Equal(dec("18000")) {
		t.Errorf("other cost after no-op rerun = %s, want 18000", third.OtherCost)
	}
}

func TestMerge_ConservationHoldsAfterRounding(t *testing.T) {
	cases := []struct {
		name    string
		pricing Pricing
		labor   string
		tool    string
		other   string
	}{
		{"pass through odd amounts", PassThroughPricing{}, "123457", "7891", "3333"},
		{"direct odd amounts", DirectPricing{ContractAmount: dec("999999")}, "123457", "7891", "3333"},
		{"zero everything", PassThroughPricing{}, "0", "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			computed := &ComputedPL{
				ProjectId:     9,
				TargetMonth:   "2026-02",
				LaborCost:     dec(tc.labor),
				ToolCost:      dec(tc.tool),
				OtherCostAuto: dec(tc.other),
				Pricing:       tc.pricing,
			}
			record := MergeComputedWithStored(computed, nil)

			revenue := record.RevenueContract.Add(record.RevenueExtra)
			want := revenue.Sub(record.LaborCost).Sub(record.ToolCost).Sub(record.OtherCost)
			if !record.GrossProfit.Equal(want) {
				t.Errorf("gross profit = %s, conservation wants %s", record.GrossProfit, want)
			}
		})
	}
}

func TestRoundYen_HalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"10.4", "10"},
		{"10.5", "11"},
		{"10.6", "11"},
		{"0.5", "1"},
		{"100000", "100000"},
	}
	for _, tc := range cases {
		if got := RoundYen(dec(tc.in)); !got.Equal(dec(tc.want)) {
			t.Errorf("RoundYen(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
