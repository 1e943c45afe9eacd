package workflow

import (
	"github.com/boost-jp/ops_backend/models"
	"github.com/shopspring/decimal"
)

var decimalOne = decimal.NewFromInt(1)

// Pricing is the per-project revenue model, one variant per project type.
// Keeping it a closed pair of structs rather than a string switch means the
// calculator cannot half-handle an unknown type.
type Pricing interface {
	// DefaultMarkupRate derives the markup written on first generation.
	// Nil means the model carries no markup (direct contracts).
	DefaultMarkupRate(laborCost, otherCost decimal.Decimal) *decimal.Decimal
	// ContractRevenue computes revenueContract from the allocated costs and
	// the record's effective markup.
	ContractRevenue(laborCost, toolCost decimal.Decimal, markupRate *decimal.Decimal) decimal.Decimal
}

// PassThroughPricing bills the client the project's own labor cost times a
// markup, plus tool cost at face value.
type PassThroughPricing struct{}

// BreakevenMarkup is the rate at which revenue exactly covers labor plus
// other cost. 1.0 when there is no labor cost to mark up.
func BreakevenMarkup(laborCost, otherCost decimal.Decimal) decimal.Decimal {
	if laborCost.IsZero() {
		return decimalOne
	}
	return laborCost.Add(otherCost).Div(laborCost).Round(4)
}

func (PassThroughPricing) DefaultMarkupRate(laborCost, otherCost decimal.Decimal) *decimal.Decimal {
	markup := BreakevenMarkup(laborCost, otherCost)
	return &markup
}

func (PassThroughPricing) ContractRevenue(laborCost, toolCost decimal.Decimal, markupRate *decimal.Decimal) decimal.Decimal {
	markup := decimalOne
	if markupRate != nil {
		markup = *markupRate
	}
	return RoundYen(laborCost.Mul(markup).Add(toolCost))
}

// DirectPricing is a flat operator-set contract value, independent of cost.
type DirectPricing struct {
	ContractAmount decimal.Decimal
}

func (DirectPricing) DefaultMarkupRate(laborCost, otherCost decimal.Decimal) *decimal.Decimal {
	return nil
}

func (pricing DirectPricing) ContractRevenue(laborCost, toolCost decimal.Decimal, markupRate *decimal.Decimal) decimal.Decimal {
	return pricing.ContractAmount
}

// PricingFor selects the revenue model for a project.
func PricingFor(project *models.Project) Pricing {
	if project.ProjectType == models.ProjectTypeDirect {
		return DirectPricing{ContractAmount: project.MonthlyContractAmount}
	}
	return PassThroughPricing{}
}
