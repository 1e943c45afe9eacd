package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/models"
	"github.com/boost-jp/ops_backend/utils"
	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GeneratePLResult is the caller-facing confirmation: how many records were
// written for the month. Skipped projects reduce the count, they do not fail
// the call.
type GeneratePLResult struct {
	Generated   int    `json:"generated"`
	TargetMonth string `json:"target_month"`
}

// obtainMonthLock takes a best-effort cross-instance lock for the month.
// When redis is unavailable or the lock cannot be obtained, generation
// proceeds anyway; the per-project row locks still serialize writers.
func obtainMonthLock(ctx context.Context, logger *logrus.Logger, targetMonth string) *redislock.Lock {
	locker := config.GetRedisLock()
	if locker == nil {
		logger.WithFields(logrus.Fields{
			"field":        "GeneratePL",
			"target_month": targetMonth,
		}).Warn("redis lock not ready; proceeding without redis lock")
		return nil
	}
	lock, err := locker.Obtain(ctx, fmt.Sprintf("pl_generate:%s", targetMonth), 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		logger.WithFields(logrus.Fields{
			"field":        "GeneratePL",
			"target_month": targetMonth,
		}).Warn("could not obtain redis lock; proceeding without redis lock")
		return nil
	} else if err != nil {
		logger.WithFields(logrus.Fields{
			"field":        "GeneratePL",
			"target_month": targetMonth,
		}).Warn("error obtaining redis lock; proceeding without redis lock: " + err.Error())
		return nil
	}
	return lock
}

// GeneratePL runs the full aggregation for every project with at least one
// allocation row in the month: load allocation rows, allocate costs, price
// revenue, upsert one PL record per project.
//
// Failures are per-project: a project whose upsert fails is logged and
// skipped, the rest of the month still generates. Re-invoking for the same
// month is safe; already-succeeded projects recompute to the same values.
func GeneratePL(ctx context.Context, logger *logrus.Logger, targetMonth string) (*GeneratePLResult, error) {
	if _, err := utils.ParseTargetMonth(targetMonth); err != nil {
		return nil, err
	}

	lock := obtainMonthLock(ctx, logger, targetMonth)
	defer func() {
		if lock != nil {
			_ = lock.Release(ctx)
		}
	}()

	rows, err := models.LoadAllocationRows(ctx, targetMonth)
	if err != nil {
		config.LogError(logger, "plWorkflow.go", "GeneratePL", "LoadAllocationRows", targetMonth, err)
		return nil, err
	}
	result := &GeneratePLResult{Generated: 0, TargetMonth: targetMonth}
	if len(rows) == 0 {
		return result, nil
	}

	costs := AllocateCosts(rows)

	projectIds := make([]int, 0, len(costs))
	for projectId := range costs {
		projectIds = append(projectIds, projectId)
	}
	sort.Ints(projectIds)

	projects, err := models.GetProjectsById(ctx, projectIds)
	if err != nil {
		config.LogError(logger, "plWorkflow.go", "GeneratePL", "GetProjectsById", projectIds, err)
		return nil, err
	}
	expenseByProject, err := models.SumProjectExpenseItems(ctx, targetMonth)
	if err != nil {
		config.LogError(logger, "plWorkflow.go", "GeneratePL", "SumProjectExpenseItems", targetMonth, err)
		return nil, err
	}

	db := config.GetDB()
	for _, projectId := range projectIds {
		project, ok := projects[projectId]
		if !ok {
			// Allocation against a soft-deleted or unknown project. Skipped,
			// not an error.
			continue
		}

		otherCostAuto, ok := expenseByProject[projectId]
		if !ok {
			otherCostAuto = decimal.Zero
		}
		computed := &ComputedPL{
			ProjectId:     projectId,
			TargetMonth:   targetMonth,
			LaborCost:     costs[projectId].LaborCost,
			ToolCost:      costs[projectId].ToolCost,
			OtherCostAuto: otherCostAuto,
			Pricing:       PricingFor(project),
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			stored, err := models.GetPLRecordForUpdate(ctx, tx, projectId, targetMonth)
			if err != nil {
				return err
			}
			record := MergeComputedWithStored(computed, stored)
			return models.SavePLRecord(ctx, tx, record)
		})
		if err != nil {
			config.LogError(logger, "plWorkflow.go", "GeneratePL", "UpsertPLRecord", projectId, err)
			continue
		}
		result.Generated++
	}

	if result.Generated > 0 {
		_ = config.DeleteRedisKey(models.PLSummaryCacheKey(targetMonth))
	}
	return result, nil
}

// GeneratePreviousMonthPL is the scheduled entry point: on the first of the
// month it closes out the month that just ended.
func GeneratePreviousMonthPL(ctx context.Context, logger *logrus.Logger, now time.Time) (*GeneratePLResult, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	previous := monthStart.AddDate(0, -1, 0)
	return GeneratePL(ctx, logger, previous.Format(utils.MonthLayout))
}
