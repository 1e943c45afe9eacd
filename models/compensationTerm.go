package models

import (
	"context"
	"errors"
	"time"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// CompensationTerm holds a member's pay structure. Hourly members carry a
// per-hour rate; monthly members a fixed salary independent of hours worked.
// HR-edited only; the aggregation engine reads it as a snapshot.
type CompensationTerm struct {
	ID           int             `gorm:"primary_key" json:"id"`
	MemberId     int             `gorm:"uniqueIndex;not null" json:"member_id" binding:"required"`
	SalaryType   SalaryType      `gorm:"size:16;not null" json:"salary_type" binding:"required"`
	SalaryAmount decimal.Decimal `gorm:"type:decimal(20,0);not null" json:"salary_amount"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCompensationTerm struct {
	MemberId     int             `json:"member_id"`
	SalaryType   SalaryType      `json:"salary_type" binding:"required"`
	SalaryAmount decimal.Decimal `json:"salary_amount"`
}

func (input *NewCompensationTerm) validate(ctx context.Context) error {
	if !input.SalaryType.IsValid() {
		return errors.New("salary type must be hourly or monthly")
	}
	if input.SalaryAmount.IsNegative() {
		return errors.New("salary amount cannot be negative")
	}
	if err := utils.ValidateResourceId[Member](ctx, input.MemberId); err != nil {
		return errors.New("member not found")
	}
	return nil
}

// UpsertCompensationTerm creates or replaces the member's pay terms.
// One row per member (unique member_id).
func UpsertCompensationTerm(ctx context.Context, input *NewCompensationTerm) (*CompensationTerm, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	term := CompensationTerm{
		MemberId:     input.MemberId,
		SalaryType:   input.SalaryType,
		SalaryAmount: input.SalaryAmount,
	}
	db := config.GetDB()
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"salary_type", "salary_amount", "updated_at"}),
	}).Create(&term).Error
	if err != nil {
		return nil, err
	}

	var saved CompensationTerm
	if err := db.WithContext(ctx).Where("member_id = ?", input.MemberId).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// SumMonthlyPayroll totals the salary of every monthly-paid member in the
// company. Hourly members are excluded; their cost is project-driven and
// does not belong in the fixed payroll line.
func SumMonthlyPayroll(ctx context.Context, company Company) (decimal.Decimal, error) {
	db := config.GetDB()
	total := decimal.Zero
	err := db.WithContext(ctx).Table("compensation_terms ct").
		Joins("JOIN members m ON m.id = ct.member_id AND m.deleted_at IS NULL").
		Where("ct.salary_type = ? AND m.company = ?", SalaryTypeMonthly, company).
		Select("COALESCE(SUM(ct.salary_amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func GetCompensationTerm(ctx context.Context, memberId int) (*CompensationTerm, error) {
	db := config.GetDB()
	var term CompensationTerm
	if err := db.WithContext(ctx).Where("member_id = ?", memberId).First(&term).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &term, nil
}
