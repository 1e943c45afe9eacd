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

// PLRecord is one project's monthly profit and loss line. Generation writes
// the computed columns; revenueExtra, otherCost and markupRate also accept
// manual edits that regeneration must not clobber.
//
// OtherCostAuto tracks the engine-computed share inside OtherCost so a
// regeneration can replace only its own contribution and leave manual
// adjustments in place.
type PLRecord struct {
	ID              int              `gorm:"primary_key" json:"id"`
	ProjectId       int              `gorm:"uniqueIndex:idx_pl_project_month,priority:1;not null" json:"project_id"`
	TargetMonth     string           `gorm:"size:7;uniqueIndex:idx_pl_project_month,priority:2;index;not null" json:"target_month"`
	RecordType      string           `gorm:"size:16;uniqueIndex:idx_pl_project_month,priority:3;not null;default:'pl'" json:"record_type"`
	RevenueContract decimal.Decimal  `gorm:"type:decimal(20,0);default:0" json:"revenue_contract"`
	RevenueExtra    decimal.Decimal  `gorm:"type:decimal(20,0);default:0" json:"revenue_extra"`
	LaborCost       decimal.Decimal  `gorm:"type:decimal(20,0);default:0" json:"labor_cost"`
	ToolCost        decimal.Decimal  `gorm:"type:decimal(20,0);default:0" json:"tool_cost"`
	OtherCost       decimal.Decimal  `gorm:"type:decimal(20,0);default:0" json:"other_cost"`
	OtherCostAuto   decimal.Decimal  `gorm:"type:decimal(20,0);default:0" json:"other_cost_auto"`
	MarkupRate      *decimal.Decimal `gorm:"type:decimal(10,4)" json:"markup_rate"`
	GrossProfit     decimal.Decimal  `gorm:"type:decimal(20,0);default:0" json:"gross_profit"`
	GrossProfitRate decimal.Decimal  `gorm:"type:decimal(10,2);default:0" json:"gross_profit_rate"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetPLRecordForUpdate fetches the project's record for the month inside the
// caller's transaction, locking the row. Returns nil without error when no
// record exists yet.
func GetPLRecordForUpdate(ctx context.Context, tx *gorm.DB, projectId int, targetMonth string) (*PLRecord, error) {
	var record PLRecord
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("project_id = ? AND target_month = ? AND record_type = ?", projectId, targetMonth, PLRecordTypePL).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func SavePLRecord(ctx context.Context, tx *gorm.DB, record *PLRecord) error {
	return tx.WithContext(ctx).Save(record).Error
}

func GetPLRecord(ctx context.Context, projectId int, targetMonth string) (*PLRecord, error) {
	db := config.GetDB()
	var record PLRecord
	err := db.WithContext(ctx).
		Where("project_id = ? AND target_month = ? AND record_type = ?", projectId, targetMonth, PLRecordTypePL).
		First(&record).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &record, nil
}

func ListPLRecords(ctx context.Context, targetMonth string) ([]*PLRecord, error) {
	if _, err := utils.ParseTargetMonth(targetMonth); err != nil {
		return nil, err
	}
	db := config.GetDB()
	var records []*PLRecord
	err := db.WithContext(ctx).
		Where("target_month = ? AND record_type = ?", targetMonth, PLRecordTypePL).
		Order("project_id").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListPLRecordsByProject returns the project's history over the last
// `months` calendar months ending with the current one.
func ListPLRecordsByProject(ctx context.Context, projectId int, months int) ([]*PLRecord, error) {
	if err := utils.ValidateResourceId[Project](ctx, projectId); err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Where("project_id = ? AND record_type = ?", projectId, PLRecordTypePL).
		Order("target_month DESC")
	if months > 0 {
		window, err := utils.MonthsBack(utils.FormatMonth(time.Now()), months)
		if err != nil {
			return nil, err
		}
		dbCtx = dbCtx.Where("target_month IN ?", window)
	}
	var records []*PLRecord
	if err := dbCtx.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

const monthClosedCacheTTL = 10 * time.Minute

// PLSummaryCacheKey names the cached month summary. Every writer to
// pl_records invalidates it.
func PLSummaryCacheKey(targetMonth string) string {
	return "pl_summary:" + targetMonth
}

// MonthClosed reports whether PL generation has already run for the month.
// This runs on every allocation submit, so the positive answer is cached;
// a closed month never reopens, which keeps the cache safe to trust.
func MonthClosed(ctx context.Context, targetMonth string) (bool, error) {
	cacheKey := "month_closed:" + targetMonth
	if val, found, err := config.GetRedisValue(cacheKey); err == nil && found && val == "1" {
		return true, nil
	}
	count, err := utils.ResourceCountWhere[PLRecord](ctx, "target_month = ? AND record_type = ?", targetMonth, PLRecordTypePL)
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}
	_ = config.SetRedisValue(cacheKey, "1", monthClosedCacheTTL)
	return true, nil
}

// PLRecordOverride carries the operator-editable fields. Nil means leave the
// current value untouched.
type PLRecordOverride struct {
	RevenueExtra *decimal.Decimal `json:"revenue_extra"`
	OtherCost    *decimal.Decimal `json:"other_cost"`
	MarkupRate   *decimal.Decimal `json:"markup_rate"`
}

// ApplyPLRecordOverride hand-edits a record's sticky fields and recomputes
// the derived profit columns from the stored values.
func ApplyPLRecordOverride(ctx context.Context, projectId int, targetMonth string, override *PLRecordOverride) (*PLRecord, error) {
	record, err := GetPLRecord(ctx, projectId, targetMonth)
	if err != nil {
		return nil, err
	}

	if override.RevenueExtra != nil {
		record.RevenueExtra = *override.RevenueExtra
	}
	if override.OtherCost != nil {
		if override.OtherCost.IsNegative() {
			return nil, errors.New("other cost cannot be negative")
		}
		record.OtherCost = *override.OtherCost
	}
	if override.MarkupRate != nil {
		if override.MarkupRate.IsNegative() {
			return nil, errors.New("markup rate cannot be negative")
		}
		record.MarkupRate = override.MarkupRate
	}
	RecomputeProfit(record)

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, err
	}
	_ = config.DeleteRedisKey(PLSummaryCacheKey(targetMonth))
	return record, nil
}

// RecomputeProfit refreshes grossProfit and grossProfitRate from the
// record's revenue and cost columns.
func RecomputeProfit(record *PLRecord) {
	revenue := record.RevenueContract.Add(record.RevenueExtra)
	record.GrossProfit = revenue.
		Sub(record.LaborCost).
		Sub(record.ToolCost).
		Sub(record.OtherCost)
	if revenue.IsZero() {
		record.GrossProfitRate = decimal.Zero
		return
	}
	record.GrossProfitRate = record.GrossProfit.
		Div(revenue).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}
