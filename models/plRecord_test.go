package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRecomputeProfit(t *testing.T) {
	record := &PLRecord{
		RevenueContract: d(500000),
		RevenueExtra:    d(50000),
		LaborCost:       d(300000),
		ToolCost:        d(20000),
		OtherCost:       d(10000),
	}
	RecomputeProfit(record)

	if !record.GrossProfit.Equal(d(220000)) {
		t.Errorf("gross profit = %s, want 220000", record.GrossProfit)
	}
	// 220000 / 550000 * 100 = 40.00
	if !record.GrossProfitRate.Equal(decimal.NewFromInt(40)) {
		t.Errorf("gross profit rate = %s, want 40", record.GrossProfitRate)
	}
}

func TestRecomputeProfit_ZeroRevenue(t *testing.T) {
	record := &PLRecord{
		LaborCost: d(100000),
		ToolCost:  d(5000),
	}
	RecomputeProfit(record)

	if !record.GrossProfit.Equal(d(-105000)) {
		t.Errorf("gross profit = %s, want -105000", record.GrossProfit)
	}
	if !record.GrossProfitRate.IsZero() {
		t.Errorf("gross profit rate = %s, want 0 when revenue is 0", record.GrossProfitRate)
	}
}
