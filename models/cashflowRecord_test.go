package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestCashflowRecord_RecomputeClosing(t *testing.T) {
	cases := []struct {
		name   string
		record CashflowRecord
		want   int64
	}{
		{
			name: "boost march scenario",
			record: CashflowRecord{
				OpeningBalance: d(500000),
				CashInClient:   d(1200000),
				CashOutSalary:  d(900000),
				CashOutFixed:   d(50000),
				CashOutExpense: d(20000),
			},
			want: 730000,
		},
		{
			name: "manual other fields count",
			record: CashflowRecord{
				OpeningBalance: d(100000),
				CashInClient:   d(200000),
				CashInOther:    d(50000),
				CashOutSalary:  d(150000),
				CashOutOther:   d(30000),
			},
			want: 170000,
		},
		{
			name:   "all zero",
			record: CashflowRecord{},
			want:   0,
		},
		{
			name: "negative closing allowed",
			record: CashflowRecord{
				OpeningBalance: d(10000),
				CashOutSalary:  d(50000),
			},
			want: -40000,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.record.RecomputeClosing()
			if !tc.record.ClosingBalance.Equal(d(tc.want)) {
				t.Errorf("closing balance = %s, want %d", tc.record.ClosingBalance, tc.want)
			}
		})
	}
}
