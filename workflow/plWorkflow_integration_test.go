package workflow_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/models"
	"github.com/boost-jp/ops_backend/workflow"
	"github.com/shopspring/decimal"
)

// Generation-level behavior needs MySQL (row locking, upsert, the allocation
// join). Run with: INTEGRATION_TESTS=1 go test ./workflow -run Generation -v
// against a disposable database configured via the usual DB_* env vars.
func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 (and DB_* env) to run")
	}
	config.ConnectDatabaseWithRetry()
	models.MigrateTable()
}

func TestGeneration_EndToEnd(t *testing.T) {
	skipUnlessIntegration(t)

	ctx := context.Background()
	logger := config.GetLogger()
	const month = "2031-07"

	member, err := models.CreateMember(ctx, &models.NewMember{
		Name:    "Gen Test Member",
		Email:   "gen-test-member@boost-ops.local",
		Company: models.CompanyBoost,
	})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	if _, err := models.UpsertCompensationTerm(ctx, &models.NewCompensationTerm{
		MemberId:     member.ID,
		SalaryType:   models.SalaryTypeHourly,
		SalaryAmount: decimal.NewFromInt(2000),
	}); err != nil {
		t.Fatalf("UpsertCompensationTerm: %v", err)
	}
	project, err := models.CreateProject(ctx, &models.NewProject{
		Name:        "Gen Test Project",
		ProjectType: models.ProjectTypePassThrough,
		Company:     models.CompanyBoost,
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if _, err := models.SubmitWorkAllocation(ctx, &models.NewWorkAllocation{
		MemberId:      member.ID,
		ProjectId:     project.ID,
		TargetMonth:   month,
		ReportedHours: decimal.NewFromInt(10),
	}); err != nil {
		t.Fatalf("SubmitWorkAllocation: %v", err)
	}

	result, err := workflow.GeneratePL(ctx, logger, month)
	if err != nil {
		t.Fatalf("GeneratePL: %v", err)
	}
	if result.Generated != 1 {
		t.Fatalf("generated = %d, want 1", result.Generated)
	}

	record, err := models.GetPLRecord(ctx, project.ID, month)
	if err != nil {
		t.Fatalf("GetPLRecord: %v", err)
	}
	if !record.LaborCost.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("labor cost = %s, want 20000", record.LaborCost)
	}

	// Month is now closed; further allocation submissions must be rejected.
	_, err = models.SubmitWorkAllocation(ctx, &models.NewWorkAllocation{
		MemberId:      member.ID,
		ProjectId:     project.ID,
		TargetMonth:   month,
		ReportedHours: decimal.NewFromInt(20),
	})
	if err == nil {
		t.Fatal("allocation submission after close succeeded, want month-closed rejection")
	}

	// Regeneration with unchanged data is idempotent.
	second, err := workflow.GeneratePL(ctx, logger, month)
	if err != nil {
		t.Fatalf("second GeneratePL: %v", err)
	}
	if second.Generated != 1 {
		t.Fatalf("second generated = %d, want 1", second.Generated)
	}
	rerun, err := models.GetPLRecord(ctx, project.ID, month)
	if err != nil {
		t.Fatalf("GetPLRecord after rerun: %v", err)
	}
	if !rerun.LaborCost.Equal(record.LaborCost) || !rerun.RevenueContract.Equal(record.RevenueContract) {
		t.Errorf("rerun changed computed fields: %s/%s vs %s/%s",
			rerun.LaborCost, rerun.RevenueContract, record.LaborCost, record.RevenueContract)
	}
}
