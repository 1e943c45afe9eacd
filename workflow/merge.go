package workflow

import (
	"github.com/boost-jp/ops_backend/models"
	"github.com/shopspring/decimal"
)

// ComputedPL is one project's freshly computed figures for a month, before
// any reconciliation with a previously stored record.
type ComputedPL struct {
	ProjectId     int
	TargetMonth   string
	LaborCost     decimal.Decimal
	ToolCost      decimal.Decimal
	OtherCostAuto decimal.Decimal
	Pricing       Pricing
}

// MergeComputedWithStored reconciles a fresh computation with what is
// already persisted, producing the record to save. Pure.
//
// Computed fields (laborCost, toolCost, revenueContract, profit columns) are
// always overwritten. Sticky fields survive regeneration:
//   - markupRate: derived from the pricing model only when no record exists;
//     a stored rate is reused verbatim afterwards.
//   - revenueExtra: manual addend, never touched here.
//   - otherCost: the engine only layers in the change to its own automatic
//     contribution (newAuto minus the auto share recorded last run), so an
//     operator's manual adjustments are never double-counted or reset.
func MergeComputedWithStored(computed *ComputedPL, stored *models.PLRecord) *models.PLRecord {
	record := &models.PLRecord{
		ProjectId:   computed.ProjectId,
		TargetMonth: computed.TargetMonth,
		RecordType:  models.PLRecordTypePL,
	}

	if stored == nil {
		record.RevenueExtra = decimal.Zero
		record.OtherCost = computed.OtherCostAuto
		record.MarkupRate = computed.Pricing.DefaultMarkupRate(computed.LaborCost, computed.OtherCostAuto)
	} else {
		record.ID = stored.ID
		record.CreatedAt = stored.CreatedAt
		record.RevenueExtra = stored.RevenueExtra
		record.OtherCost = stored.OtherCost.Add(computed.OtherCostAuto.Sub(stored.OtherCostAuto))
		record.MarkupRate = stored.MarkupRate
	}

	record.LaborCost = computed.LaborCost
	record.ToolCost = computed.ToolCost
	record.OtherCostAuto = computed.OtherCostAuto
	record.RevenueContract = computed.Pricing.ContractRevenue(computed.LaborCost, computed.ToolCost, record.MarkupRate)
	models.RecomputeProfit(record)
	return record
}
