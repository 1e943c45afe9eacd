package models_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/models"
	"github.com/shopspring/decimal"
)

// The expense sums are raw joins, so they need MySQL. Run with:
// INTEGRATION_TESTS=1 go test ./models -run Expense -v against a disposable
// database configured via the usual DB_* env vars.
func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 (and DB_* env) to run")
	}
	config.ConnectDatabaseWithRetry()
	models.MigrateTable()
}

func TestExpenseSums_TaxabilityAndCompanyScope(t *testing.T) {
	skipUnlessIntegration(t)

	ctx := context.Background()
	const month = "2031-08"

	boostProject, err := models.CreateProject(ctx, &models.NewProject{
		Name:        "Expense Scope Boost",
		ProjectType: models.ProjectTypeDirect,
		Company:     models.CompanyBoost,
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	saltProject, err := models.CreateProject(ctx, &models.NewProject{
		Name:        "Expense Scope SALT2",
		ProjectType: models.ProjectTypeDirect,
		Company:     models.CompanySalt2,
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	cashOut := false
	nonTaxable := false
	// A Boost invoice carrying a taxable item, two non-taxable linked items
	// (one of them against a SALT2 project) and a non-taxable unlinked item.
	if _, err := models.CreateInvoice(ctx, &models.NewInvoice{
		Number:     "EXP-2031-08-01",
		Company:    models.CompanyBoost,
		IsCashIn:   &cashOut,
		Status:     models.InvoiceStatusSent,
		IssueMonth: month,
		LineItems: []*models.NewInvoiceLineItem{
			{ProjectId: &boostProject.ID, Description: "taxable tooling", AmountYen: decimal.NewFromInt(10000)},
			{ProjectId: &boostProject.ID, Description: "subcontractor fee", AmountYen: decimal.NewFromInt(20000), IsTaxable: &nonTaxable},
			{ProjectId: &saltProject.ID, Description: "seconded subcontractor", AmountYen: decimal.NewFromInt(7000), IsTaxable: &nonTaxable},
			{Description: "unlinked overhead", AmountYen: decimal.NewFromInt(4000), IsTaxable: &nonTaxable},
		},
	}); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if _, err := models.CreateInvoice(ctx, &models.NewInvoice{
		Number:     "EXP-2031-08-02",
		Company:    models.CompanySalt2,
		IsCashIn:   &cashOut,
		Status:     models.InvoiceStatusConfirmed,
		IssueMonth: month,
		LineItems: []*models.NewInvoiceLineItem{
			{Description: "office rent", AmountYen: decimal.NewFromInt(5000), IsTaxable: &nonTaxable},
		},
	}); err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	// Boost: only the non-taxable item linked to a Boost project. The taxable
	// item, the SALT2-project item and the unlinked item must not count.
	boostTotal, err := models.SumExpenseLineItems(ctx, models.CompanyBoost, month)
	if err != nil {
		t.Fatalf("SumExpenseLineItems(Boost): %v", err)
	}
	if !boostTotal.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("Boost expense total = %s, want 20000", boostTotal)
	}

	// SALT2: the item linked to its project (even though the invoice belongs
	// to Boost) plus its own unlinked overhead. The Boost invoice's unlinked
	// item counts for nobody.
	saltTotal, err := models.SumExpenseLineItems(ctx, models.CompanySalt2, month)
	if err != nil {
		t.Fatalf("SumExpenseLineItems(SALT2): %v", err)
	}
	if !saltTotal.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("SALT2 expense total = %s, want 12000", saltTotal)
	}

	// The per-project map must agree with the cashflow view on the same items.
	byProject, err := models.SumProjectExpenseItems(ctx, month)
	if err != nil {
		t.Fatalf("SumProjectExpenseItems: %v", err)
	}
	if got := byProject[boostProject.ID]; !got.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("Boost project expense = %s, want 20000", got)
	}
	if got := byProject[saltProject.ID]; !got.Equal(decimal.NewFromInt(7000)) {
		t.Errorf("SALT2 project expense = %s, want 7000", got)
	}
}
