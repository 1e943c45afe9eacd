package models

import (
	"context"
	"errors"
	"time"

	"github.com/boost-jp/ops_backend/config"
	"github.com/boost-jp/ops_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ToolSubscription is a recurring per-member SaaS cost billed to one of the
// two entities.
type ToolSubscription struct {
	ID             int             `gorm:"primary_key" json:"id"`
	MemberId       int             `gorm:"index;not null" json:"member_id" binding:"required"`
	ToolName       string          `gorm:"size:255;not null" json:"tool_name" binding:"required"`
	MonthlyCost    decimal.Decimal `gorm:"type:decimal(20,0);not null" json:"monthly_cost"`
	BillingCompany Company         `gorm:"size:16;not null;index" json:"billing_company" binding:"required"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

type NewToolSubscription struct {
	MemberId       int             `json:"member_id" binding:"required"`
	ToolName       string          `json:"tool_name" binding:"required"`
	MonthlyCost    decimal.Decimal `json:"monthly_cost"`
	BillingCompany Company         `json:"billing_company" binding:"required"`
	IsActive       *bool           `json:"is_active"`
}

func (input *NewToolSubscription) validate(ctx context.Context) error {
	if !input.BillingCompany.IsValid() {
		return errors.New("invalid billing company")
	}
	if input.MonthlyCost.IsNegative() {
		return errors.New("monthly cost cannot be negative")
	}
	if err := utils.ValidateResourceId[Member](ctx, input.MemberId); err != nil {
		return errors.New("member not found")
	}
	return nil
}

func CreateToolSubscription(ctx context.Context, input *NewToolSubscription) (*ToolSubscription, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	sub := ToolSubscription{
		MemberId:       input.MemberId,
		ToolName:       input.ToolName,
		MonthlyCost:    input.MonthlyCost,
		BillingCompany: input.BillingCompany,
		IsActive:       input.IsActive,
	}
	if sub.IsActive == nil {
		sub.IsActive = utils.NewTrue()
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func UpdateToolSubscription(ctx context.Context, id int, input *NewToolSubscription) (*ToolSubscription, error) {
	sub, err := utils.FetchModel[ToolSubscription](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	sub.MemberId = input.MemberId
	sub.ToolName = input.ToolName
	sub.MonthlyCost = input.MonthlyCost
	sub.BillingCompany = input.BillingCompany
	if input.IsActive != nil {
		sub.IsActive = input.IsActive
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

func ListToolSubscriptions(ctx context.Context, memberId int) ([]*ToolSubscription, error) {
	if memberId > 0 {
		return utils.FetchModelsWhere[ToolSubscription](ctx, "member_id = ?", memberId)
	}
	return utils.FetchAllModels[ToolSubscription](ctx)
}

func DeleteToolSubscription(ctx context.Context, id int) error {
	db := config.GetDB()
	result := db.WithContext(ctx).Delete(&ToolSubscription{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	return nil
}

// SumToolFixedCost returns the total monthly cost of active subscriptions
// billed to the company. This reflects today's subscription roster, not a
// historical snapshot.
func SumToolFixedCost(ctx context.Context, company Company) (decimal.Decimal, error) {
	db := config.GetDB()
	total := decimal.Zero
	err := db.WithContext(ctx).Model(&ToolSubscription{}).
		Where("billing_company = ? AND is_active = ?", company, true).
		Select("COALESCE(SUM(monthly_cost), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
