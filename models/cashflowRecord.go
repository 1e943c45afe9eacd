package models

import (
	"context"
	"errors"
	"time"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CashflowRecord is one company's monthly cash position. The four automatic
// columns (cashInClient, cashOutSalary, cashOutFixed, cashOutExpense) are
// recomputed on every read; openingBalance, cashInOther and cashOutOther are
// operator-entered and survive recomputation.
type CashflowRecord struct {
	ID             int             `gorm:"primary_key" json:"id"`
	Company        Company         `gorm:"size:16;uniqueIndex:idx_cashflow_company_month,priority:1;not null" json:"company"`
	TargetMonth    string          `gorm:"size:7;uniqueIndex:idx_cashflow_company_month,priority:2;index;not null" json:"target_month"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(20,0);default:0" json:"opening_balance"`
	CashInClient   decimal.Decimal `gorm:"type:decimal(20,0);default:0" json:"cash_in_client"`
	CashInOther    decimal.Decimal `gorm:"type:decimal(20,0);default:0" json:"cash_in_other"`
	CashOutSalary  decimal.Decimal `gorm:"type:decimal(20,0);default:0" json:"cash_out_salary"`
	CashOutFixed   decimal.Decimal `gorm:"type:decimal(20,0);default:0" json:"cash_out_fixed"`
	CashOutExpense decimal.Decimal `gorm:"type:decimal(20,0);default:0" json:"cash_out_expense"`
	CashOutOther   decimal.Decimal `gorm:"type:decimal(20,0);default:0" json:"cash_out_other"`
	ClosingBalance decimal.Decimal `gorm:"type:decimal(20,0);default:0" json:"closing_balance"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// RecomputeClosing refreshes the derived closing balance.
func (record *CashflowRecord) RecomputeClosing() {
	record.ClosingBalance = record.OpeningBalance.
		Add(record.CashInClient).
		Add(record.CashInOther).
		Sub(record.CashOutSalary).
		Sub(record.CashOutFixed).
		Sub(record.CashOutExpense).
		Sub(record.CashOutOther)
}

// GetCashflowRecordForUpdate fetches the company's record for the month
// inside the caller's transaction, locking the row. Returns nil without
// error when no record exists yet.
func GetCashflowRecordForUpdate(ctx context.Context, tx *gorm.DB, company Company, targetMonth string) (*CashflowRecord, error) {
	var record CashflowRecord
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company = ? AND target_month = ?", company, targetMonth).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetCashflowRecord fetches the company's record for the month without
// locking. Returns nil without error when no record exists.
func GetCashflowRecord(ctx context.Context, company Company, targetMonth string) (*CashflowRecord, error) {
	db := config.GetDB()
	var record CashflowRecord
	err := db.WithContext(ctx).
		Where("company = ? AND target_month = ?", company, targetMonth).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetPreviousClosingBalance returns the closing balance of the month before
// targetMonth, or zero when that record does not exist.
func GetPreviousClosingBalance(ctx context.Context, tx *gorm.DB, company Company, targetMonth string) (decimal.Decimal, error) {
	previous, err := utils.PreviousMonth(targetMonth)
	if err != nil {
		return decimal.Zero, err
	}
	var record CashflowRecord
	err = tx.WithContext(ctx).
		Where("company = ? AND target_month = ?", company, previous).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return record.ClosingBalance, nil
}

// ListCashflowRecords returns the company's history over the last `months`
// calendar months ending with the current one.
func ListCashflowRecords(ctx context.Context, company Company, months int) ([]*CashflowRecord, error) {
	if !company.IsValid() {
		return nil, errors.New("invalid company")
	}
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Where("company = ?", company).
		Order("target_month DESC")
	if months > 0 {
		window, err := utils.MonthsBack(utils.FormatMonth(time.Now()), months)
		if err != nil {
			return nil, err
		}
		dbCtx = dbCtx.Where("target_month IN ?", window)
	}
	var records []*CashflowRecord
	if err := dbCtx.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
