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

// WorkAllocation is a member's self-declared hours against one project in a
// month. Several rows per member per month (one per project) are expected;
// they need not sum to any fixed total.
//
// Rows become read-only to everyone once PL generation has run for the month
// (the month is "closed").
type WorkAllocation struct {
	ID            int             `gorm:"primary_key" json:"id"`
	MemberId      int             `gorm:"uniqueIndex:idx_alloc_member_project_month,priority:1;not null" json:"member_id" binding:"required"`
	ProjectId     int             `gorm:"uniqueIndex:idx_alloc_member_project_month,priority:2;not null" json:"project_id" binding:"required"`
	TargetMonth   string          `gorm:"size:7;uniqueIndex:idx_alloc_member_project_month,priority:3;index;not null" json:"target_month" binding:"required"`
	ReportedHours decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"reported_hours"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewWorkAllocation struct {
	MemberId      int             `json:"member_id"`
	ProjectId     int             `json:"project_id" binding:"required"`
	TargetMonth   string          `json:"target_month" binding:"required"`
	ReportedHours decimal.Decimal `json:"reported_hours"`
}

func (input *NewWorkAllocation) validate(ctx context.Context) error {
	if _, err := utils.ParseTargetMonth(input.TargetMonth); err != nil {
		return err
	}
	if input.ReportedHours.IsNegative() {
		return errors.New("reported hours cannot be negative")
	}
	if err := utils.ValidateResourceId[Member](ctx, input.MemberId); err != nil {
		return errors.New("member not found")
	}
	if err := utils.ValidateResourceId[Project](ctx, input.ProjectId); err != nil {
		return errors.New("project not found")
	}
	if config.AllocationLockAfterClose() {
		closed, err := MonthClosed(ctx, input.TargetMonth)
		if err != nil {
			return err
		}
		if closed {
			return utils.ErrorMonthClosed
		}
	}
	return nil
}

// SubmitWorkAllocation creates or updates the member's self-report for one
// (project, month). Re-submission before the month closes overwrites hours.
func SubmitWorkAllocation(ctx context.Context, input *NewWorkAllocation) (*WorkAllocation, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	allocation := WorkAllocation{
		MemberId:      input.MemberId,
		ProjectId:     input.ProjectId,
		TargetMonth:   input.TargetMonth,
		ReportedHours: input.ReportedHours,
	}
	db := config.GetDB()
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_id"}, {Name: "project_id"}, {Name: "target_month"}},
		DoUpdates: clause.AssignmentColumns([]string{"reported_hours", "updated_at"}),
	}).Create(&allocation).Error
	if err != nil {
		return nil, err
	}

	var saved WorkAllocation
	if err := db.WithContext(ctx).
		Where("member_id = ? AND project_id = ? AND target_month = ?", input.MemberId, input.ProjectId, input.TargetMonth).
		First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func ListWorkAllocations(ctx context.Context, targetMonth string, memberId int) ([]*WorkAllocation, error) {
	if _, err := utils.ParseTargetMonth(targetMonth); err != nil {
		return nil, err
	}
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("target_month = ?", targetMonth)
	if memberId > 0 {
		dbCtx = dbCtx.Where("member_id = ?", memberId)
	}
	var allocations []*WorkAllocation
	if err := dbCtx.Order("member_id, project_id").Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

// AllocationRow is one reader-output row for the aggregation engine: a
// (member, project) allocation joined with the member's pay terms and the
// sum of their active tool subscriptions.
type AllocationRow struct {
	MemberId      int             `json:"member_id"`
	ProjectId     int             `json:"project_id"`
	ReportedHours decimal.Decimal `json:"reported_hours"`
	SalaryType    SalaryType      `json:"salary_type"`
	SalaryAmount  decimal.Decimal `json:"salary_amount"`
	ToolCostSum   decimal.Decimal `json:"tool_cost_sum"`
}

// LoadAllocationRows returns every allocation row for the month, regardless
// of project. Zero rows is not an error. Members without compensation terms
// are included with a zero salary so their tool cost still apportions.
func LoadAllocationRows(ctx context.Context, targetMonth string) ([]*AllocationRow, error) {
	if _, err := utils.ParseTargetMonth(targetMonth); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var rows []*AllocationRow
	err := db.WithContext(ctx).Raw(`
		SELECT
			wa.member_id,
			wa.project_id,
			wa.reported_hours,
			COALESCE(ct.salary_type, 'monthly') AS salary_type,
			COALESCE(ct.salary_amount, 0)      AS salary_amount,
			COALESCE(ts.tool_cost_sum, 0)      AS tool_cost_sum
		FROM work_allocations wa
		LEFT JOIN compensation_terms ct ON ct.member_id = wa.member_id
		LEFT JOIN (
			SELECT member_id, SUM(monthly_cost) AS tool_cost_sum
			FROM tool_subscriptions
			WHERE is_active = 1 AND deleted_at IS NULL
			GROUP BY member_id
		) ts ON ts.member_id = wa.member_id
		WHERE wa.target_month = ?
		ORDER BY wa.member_id, wa.project_id
	`, targetMonth).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
