package workflow_test

import (
	"context"
	"testing"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/models"
	"github.com/boost-jp/ops_backend/workflow"
	"github.com/shopspring/decimal"
)

func TestCashflow_PlainReadDoesNotPersist(t *testing.T) {
	skipUnlessIntegration(t)

	ctx := context.Background()
	logger := config.GetLogger()
	const month = "2031-09"

	view, err := workflow.GetOrUpdateCashflow(ctx, logger, models.CompanyBoost, month, nil)
	if err != nil {
		t.Fatalf("GetOrUpdateCashflow read: %v", err)
	}
	if view == nil {
		t.Fatal("read returned no record")
	}

	stored, err := models.GetCashflowRecord(ctx, models.CompanyBoost, month)
	if err != nil {
		t.Fatalf("GetCashflowRecord: %v", err)
	}
	if stored != nil {
		t.Fatalf("plain read persisted a cashflow row: %+v", stored)
	}

	// A manual write persists, and subsequent reads keep the manual fields.
	opening := decimal.NewFromInt(500000)
	updated, err := workflow.GetOrUpdateCashflow(ctx, logger, models.CompanyBoost, month, &workflow.CashflowManualInput{
		OpeningBalance: &opening,
	})
	if err != nil {
		t.Fatalf("GetOrUpdateCashflow write: %v", err)
	}
	if !updated.OpeningBalance.Equal(opening) {
		t.Errorf("opening balance = %s, want %s", updated.OpeningBalance, opening)
	}

	stored, err = models.GetCashflowRecord(ctx, models.CompanyBoost, month)
	if err != nil {
		t.Fatalf("GetCashflowRecord after write: %v", err)
	}
	if stored == nil {
		t.Fatal("manual write did not persist a cashflow row")
	}
	if !stored.OpeningBalance.Equal(opening) {
		t.Errorf("stored opening balance = %s, want %s", stored.OpeningBalance, opening)
	}

	reread, err := workflow.GetOrUpdateCashflow(ctx, logger, models.CompanyBoost, month, nil)
	if err != nil {
		t.Fatalf("GetOrUpdateCashflow reread: %v", err)
	}
	if !reread.OpeningBalance.Equal(opening) {
		t.Errorf("reread opening balance = %s, want %s", reread.OpeningBalance, opening)
	}
}
