package workflow

import (
	"context"
	"errors"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/models"
	"github.com/boost-jp/ops_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CashflowManualInput carries the operator-entered cashflow fields. Nil
// pointer means leave the stored value untouched.
type CashflowManualInput struct {
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
	CashInOther    *decimal.Decimal `json:"cash_in_other"`
	CashOutOther   *decimal.Decimal `json:"cash_out_other"`
}

// GetOrUpdateCashflow returns the company's cashflow record for the month,
// recomputing the four automatic columns on every call. A read (nil manual
// input) never writes: a month with no stored row comes back as an unsaved
// view whose opening balance carries forward from the previous month's
// closing. Providing manual fields persists the row; manual fields already
// stored are preserved when not resupplied.
//
// The tool fixed cost deliberately reflects today's subscription roster,
// not a point-in-time snapshot; rereading a past month after subscription
// changes will shift that figure.
func GetOrUpdateCashflow(ctx context.Context, logger *logrus.Logger, company models.Company, targetMonth string, manual *CashflowManualInput) (*models.CashflowRecord, error) {
	if !company.IsValid() {
		return nil, errors.New("invalid company")
	}
	if _, err := utils.ParseTargetMonth(targetMonth); err != nil {
		return nil, err
	}

	cashInClient, err := models.SumClientCashIn(ctx, company, targetMonth)
	if err != nil {
		config.LogError(logger, "cashflowWorkflow.go", "GetOrUpdateCashflow", "SumClientCashIn", company, err)
		return nil, err
	}
	cashOutSalary, err := models.SumMonthlyPayroll(ctx, company)
	if err != nil {
		config.LogError(logger, "cashflowWorkflow.go", "GetOrUpdateCashflow", "SumMonthlyPayroll", company, err)
		return nil, err
	}
	cashOutFixed, err := models.SumToolFixedCost(ctx, company)
	if err != nil {
		config.LogError(logger, "cashflowWorkflow.go", "GetOrUpdateCashflow", "SumToolFixedCost", company, err)
		return nil, err
	}
	cashOutExpense, err := models.SumExpenseLineItems(ctx, company, targetMonth)
	if err != nil {
		config.LogError(logger, "cashflowWorkflow.go", "GetOrUpdateCashflow", "SumExpenseLineItems", company, err)
		return nil, err
	}

	setAutoFields := func(record *models.CashflowRecord) {
		record.CashInClient = cashInClient
		record.CashOutSalary = cashOutSalary
		record.CashOutFixed = cashOutFixed
		record.CashOutExpense = cashOutExpense
	}

	db := config.GetDB()
	if manual == nil {
		stored, err := models.GetCashflowRecord(ctx, company, targetMonth)
		if err != nil {
			config.LogError(logger, "cashflowWorkflow.go", "GetOrUpdateCashflow", "GetCashflowRecord", company, err)
			return nil, err
		}
		if stored == nil {
			opening, err := models.GetPreviousClosingBalance(ctx, db, company, targetMonth)
			if err != nil {
				config.LogError(logger, "cashflowWorkflow.go", "GetOrUpdateCashflow", "GetPreviousClosingBalance", company, err)
				return nil, err
			}
			stored = &models.CashflowRecord{
				Company:        company,
				TargetMonth:    targetMonth,
				OpeningBalance: opening,
			}
		}
		setAutoFields(stored)
		stored.RecomputeClosing()
		return stored, nil
	}

	var record *models.CashflowRecord
	err = db.Transaction(func(tx *gorm.DB) error {
		stored, err := models.GetCashflowRecordForUpdate(ctx, tx, company, targetMonth)
		if err != nil {
			return err
		}
		if stored == nil {
			opening, err := models.GetPreviousClosingBalance(ctx, tx, company, targetMonth)
			if err != nil {
				return err
			}
			stored = &models.CashflowRecord{
				Company:        company,
				TargetMonth:    targetMonth,
				OpeningBalance: opening,
			}
		}

		setAutoFields(stored)
		if manual.OpeningBalance != nil {
			stored.OpeningBalance = *manual.OpeningBalance
		}
		if manual.CashInOther != nil {
			stored.CashInOther = *manual.CashInOther
		}
		if manual.CashOutOther != nil {
			stored.CashOutOther = *manual.CashOutOther
		}
		stored.RecomputeClosing()

		if err := tx.WithContext(ctx).Save(stored).Error; err != nil {
			return err
		}
		record = stored
		return nil
	})
	if err != nil {
		config.LogError(logger, "cashflowWorkflow.go", "GetOrUpdateCashflow", "UpsertCashflowRecord", company, err)
		return nil, err
	}
	return record, nil
}
