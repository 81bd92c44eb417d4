// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package optimizer allocates spend across campaigns. Allocation is
// proportional to campaign efficiency with per-campaign bounds; a
// dedicated LP solver is deliberately out of scope, so the documented
// heuristic is the allocation mechanism.
package optimizer

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/adxyz/rtbsim/pkg/log"
)

var (
	ErrNoCampaigns   = errors.New("optimizer: no campaigns to allocate")
	ErrInvalidBudget = errors.New("optimizer: total budget must be positive")
)

// Objective selects what the allocation maximizes.
type Objective string

const (
	MaximizeROAS        Objective = "maximize_roas"
	MaximizeConversions Objective = "maximize_conversions"
)

// Campaign describes one campaign's observed economics.
type Campaign struct {
	ID             string  `json:"campaign_id"`
	Name           string  `json:"name"`
	CurrentCPA     float64 `json:"current_cpa"`
	ConversionRate float64 `json:"conversion_rate"`
	AvgOrderValue  float64 `json:"avg_order_value"`
	DailyVolume    int     `json:"daily_impression_volume"`

	MinBudget decimal.Decimal `json:"min_budget"`
	// MaxBudget zero means unbounded.
	MaxBudget decimal.Decimal `json:"max_budget"`
}

// Allocation is the optimized budget for one campaign.
type Allocation struct {
	CampaignID          string          `json:"campaign_id"`
	Budget              decimal.Decimal `json:"allocated_budget"`
	ExpectedConversions float64         `json:"expected_conversions"`
	ExpectedRevenue     float64         `json:"expected_revenue"`
	ExpectedROAS        float64         `json:"expected_roas"`
}

// Optimizer allocates a total budget across campaigns.
type Optimizer struct {
	log log.Logger
}

// New creates an optimizer.
func New(logger log.Logger) *Optimizer {
	if logger == nil {
		logger = log.NoOp()
	}
	return &Optimizer{log: logger}
}

// Allocate splits totalBudget across the campaigns proportionally to
// their efficiency under the chosen objective, clamped to each
// campaign's min/max bounds.
func (o *Optimizer) Allocate(campaigns []Campaign, totalBudget decimal.Decimal, objective Objective) ([]Allocation, error) {
	if len(campaigns) == 0 {
		return nil, ErrNoCampaigns
	}
	if totalBudget.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidBudget
	}
	for _, c := range campaigns {
		if c.CurrentCPA <= 0 {
			return nil, fmt.Errorf("optimizer: campaign %q has non-positive CPA", c.ID)
		}
	}

	efficiencies := make([]float64, len(campaigns))
	totalEfficiency := 0.0
	for i, c := range campaigns {
		switch objective {
		case MaximizeConversions:
			// Conversions per dollar.
			efficiencies[i] = c.ConversionRate / c.CurrentCPA
		default:
			// Revenue per dollar.
			efficiencies[i] = c.ConversionRate * c.AvgOrderValue / c.CurrentCPA
		}
		totalEfficiency += efficiencies[i]
	}
	if totalEfficiency == 0 {
		return nil, fmt.Errorf("optimizer: all campaigns have zero efficiency")
	}

	allocations := make([]Allocation, 0, len(campaigns))
	for i, c := range campaigns {
		share := decimal.NewFromFloat(efficiencies[i] / totalEfficiency)
		budget := totalBudget.Mul(share)

		if budget.LessThan(c.MinBudget) {
			budget = c.MinBudget
		}
		if c.MaxBudget.IsPositive() && budget.GreaterThan(c.MaxBudget) {
			budget = c.MaxBudget
		}
		budget = budget.Round(2)

		allocations = append(allocations, o.project(c, budget))
	}

	o.log.Info("budget allocated",
		"campaigns", len(campaigns),
		"total", totalBudget.String(),
		"objective", string(objective))

	return allocations, nil
}

// project derives the expected outcome of spending budget on c.
func (o *Optimizer) project(c Campaign, budget decimal.Decimal) Allocation {
	spend, _ := budget.Float64()
	conversions := spend / c.CurrentCPA * c.ConversionRate
	revenue := conversions * c.AvgOrderValue

	roas := 0.0
	if spend > 0 {
		roas = revenue / spend
	}

	return Allocation{
		CampaignID:          c.ID,
		Budget:              budget,
		ExpectedConversions: conversions,
		ExpectedRevenue:     revenue,
		ExpectedROAS:        roas,
	}
}

// Efficiency grades how well an allocated budget was actually spent.
type Efficiency struct {
	BudgetUtilization float64 `json:"budget_utilization"`
	CPA               float64 `json:"cpa"`
	ROAS              float64 `json:"roas"`
	Score             float64 `json:"efficiency_score"`
	Status            string  `json:"status"`
}

// BudgetEfficiency blends budget utilization and ROAS into a 0-100
// score. Full marks need spend close to the allocation and a 5x ROAS;
// utilization is weighted 40%, ROAS 60%.
func (o *Optimizer) BudgetEfficiency(allocated, spent decimal.Decimal, conversions int, revenue float64) Efficiency {
	alloc, _ := allocated.Float64()
	spend, _ := spent.Float64()

	var e Efficiency
	if alloc > 0 {
		e.BudgetUtilization = spend / alloc
	}
	if conversions > 0 {
		e.CPA = spend / float64(conversions)
	}
	if spend > 0 {
		e.ROAS = revenue / spend
	}

	utilizationScore := 100 * (1 - math.Abs(e.BudgetUtilization-1))
	roasScore := math.Min(100, e.ROAS*20)
	e.Score = utilizationScore*0.4 + roasScore*0.6
	e.Status = efficiencyStatus(e.Score)
	return e
}

func efficiencyStatus(score float64) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

// Scenario is the projected outcome of spending one candidate budget
// level across all campaigns.
type Scenario struct {
	Budget              decimal.Decimal `json:"budget"`
	ExpectedConversions float64         `json:"expected_conversions"`
	ExpectedRevenue     float64         `json:"expected_revenue"`
	ExpectedROAS        float64         `json:"expected_roas"`
	RevenuePerThousand  float64         `json:"revenue_per_1000"`
}

// ScenarioAnalysis projects the ROAS-maximizing allocation at each
// candidate total-budget level, one row per level.
func (o *Optimizer) ScenarioAnalysis(campaigns []Campaign, budgets []decimal.Decimal) ([]Scenario, error) {
	scenarios := make([]Scenario, 0, len(budgets))
	for _, budget := range budgets {
		allocations, err := o.Allocate(campaigns, budget, MaximizeROAS)
		if err != nil {
			return nil, err
		}

		s := Scenario{Budget: budget}
		for _, a := range allocations {
			s.ExpectedConversions += a.ExpectedConversions
			s.ExpectedRevenue += a.ExpectedRevenue
		}
		if b, _ := budget.Float64(); b > 0 {
			s.ExpectedROAS = s.ExpectedRevenue / b
			s.RevenuePerThousand = s.ExpectedRevenue / b * 1000
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// DailyPacing splits the unspent remainder of a daily budget over the
// remaining hours. With historical hourly performance weights the
// split follows the weights; otherwise it is even.
func (o *Optimizer) DailyPacing(totalDaily decimal.Decimal, hoursRemaining int, spent decimal.Decimal, hourlyWeights map[int]float64) ([]decimal.Decimal, error) {
	if hoursRemaining <= 0 {
		return nil, fmt.Errorf("optimizer: no hours remaining")
	}

	remaining := totalDaily.Sub(spent)
	if remaining.LessThanOrEqual(decimal.Zero) {
		out := make([]decimal.Decimal, hoursRemaining)
		for i := range out {
			out[i] = decimal.Zero
		}
		return out, nil
	}

	startHour := 24 - hoursRemaining
	weights := make([]float64, hoursRemaining)
	totalWeight := 0.0
	for i := range weights {
		w := 1.0
		if hourlyWeights != nil {
			if hw, ok := hourlyWeights[startHour+i]; ok && hw > 0 {
				w = hw
			}
		}
		weights[i] = w
		totalWeight += w
	}

	out := make([]decimal.Decimal, hoursRemaining)
	for i, w := range weights {
		out[i] = remaining.Mul(decimal.NewFromFloat(w / totalWeight)).Round(2)
	}
	return out, nil
}
