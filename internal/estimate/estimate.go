// Package estimate computes the administrative cost breakdown of a project
// from the fee schedule.
package estimate

import (
	"github.com/iwvelando/admin-cost/internal/rates"
	"github.com/iwvelando/admin-cost/pkg/constants"
	"github.com/iwvelando/admin-cost/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var (
	// ExecutionStudyShare is the part of the study fee paid for execution studies.
	ExecutionStudyShare = decimal.RequireFromString("0.45")

	// AssistanceShare is the part of the study fee paid for owner assistance.
	AssistanceShare = decimal.RequireFromString("0.05")

	million = decimal.NewFromInt(constants.MillionDivisor)
)

// Project holds the parameters entered once per run.
type Project struct {
	BaseEstimate decimal.Decimal
	Margin       decimal.Decimal // percent
	Category     rates.Category
}

// Cost is the base estimate raised by the margin.
func (p Project) Cost() decimal.Decimal {
	return p.BaseEstimate.Add(mathutil.ApplyPercentage(p.BaseEstimate, p.Margin))
}

// CostMillions is Cost expressed in millions, the unit of the brackets.
func (p Project) CostMillions() decimal.Decimal {
	return ToMillions(p.Cost())
}

// ToMillions converts an amount to millions of currency units.
func ToMillions(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(million)
}

// Breakdown is the fee breakdown of one site. It is a value: copies never
// share state and nothing modifies it after Compute returns it.
type Breakdown struct {
	ExecutionStudy     decimal.Decimal
	Assistance         decimal.Decimal
	Monitoring         decimal.Decimal
	Total              decimal.Decimal
	ExecutionReduction decimal.Decimal // percent

	StudyRate      decimal.Decimal
	MonitoringRate decimal.Decimal
	Bracket        int
}

// Calculator prices projects against a fee schedule. It holds no state
// between calls and is safe for concurrent use.
type Calculator struct {
	table *rates.Table
}

// NewCalculator returns a calculator over table, or over the regulatory
// schedule when table is nil.
func NewCalculator(table *rates.Table) *Calculator {
	if table == nil {
		table = rates.Default()
	}
	return &Calculator{table: table}
}

// Table returns the schedule used by the calculator.
func (c *Calculator) Table() *rates.Table {
	return c.table
}

// Compute prices one site. Both rate lookups must succeed; a lookup error is
// returned unchanged and no breakdown is produced.
//
// executionReductionPct is not range-checked: values above 100 yield a
// negative execution study fee.
func (c *Calculator) Compute(projectCost, projectCostMillions decimal.Decimal, category rates.Category, executionReductionPct decimal.Decimal) (Breakdown, error) {
	studyRate, err := c.table.Resolve(projectCostMillions, category, rates.KindStudy)
	if err != nil {
		return Breakdown{}, err
	}
	monitoringRate, err := c.table.Resolve(projectCostMillions, category, rates.KindMonitoring)
	if err != nil {
		return Breakdown{}, err
	}
	bracket, err := c.table.BracketIndex(projectCostMillions)
	if err != nil {
		return Breakdown{}, err
	}

	studyFee := projectCost.Mul(studyRate)
	executionStudy := studyFee.Mul(ExecutionStudyShare).Mul(mathutil.Complement(executionReductionPct))
	assistance := studyFee.Mul(AssistanceShare)
	monitoring := projectCost.Mul(monitoringRate)

	return Breakdown{
		ExecutionStudy:     executionStudy,
		Assistance:         assistance,
		Monitoring:         monitoring,
		Total:              executionStudy.Add(assistance).Add(monitoring),
		ExecutionReduction: executionReductionPct,
		StudyRate:          studyRate,
		MonitoringRate:     monitoringRate,
		Bracket:            bracket,
	}, nil
}

// ComputeProject derives the project cost and prices one site.
func (c *Calculator) ComputeProject(p Project, executionReductionPct decimal.Decimal) (Breakdown, error) {
	cost := p.Cost()
	return c.Compute(cost, ToMillions(cost), p.Category, executionReductionPct)
}

var defaultCalculator = NewCalculator(nil)

// Compute prices one site against the regulatory schedule.
func Compute(projectCost, projectCostMillions decimal.Decimal, category rates.Category, executionReductionPct decimal.Decimal) (Breakdown, error) {
	return defaultCalculator.Compute(projectCost, projectCostMillions, category, executionReductionPct)
}
