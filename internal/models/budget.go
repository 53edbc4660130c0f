package models

// DefaultWarningThreshold is the budget fraction at which IsWarning trips.
const DefaultWarningThreshold = 0.8

// BudgetInfo tracks the dollar ceiling and live usage for a session.
// Used only ever grows; Remaining is recomputed on every cost application
// and is never set independently.
type BudgetInfo struct {
	TotalBudget      float64 `json:"total_budget"`
	Used             float64 `json:"used"`
	Remaining        float64 `json:"remaining"`
	WarningThreshold float64 `json:"warning_threshold"`
}

// NewBudget returns a fresh budget with the default warning threshold.
func NewBudget(total float64) BudgetInfo {
	return BudgetInfo{
		TotalBudget:      total,
		Used:             0,
		Remaining:        total,
		WarningThreshold: DefaultWarningThreshold,
	}
}

// ApplyCost adds a non-negative cost to the used total and recomputes the
// remainder. Negative amounts are ignored: budgets never decrement.
func (b *BudgetInfo) ApplyCost(cost float64) {
	if cost < 0 {
		return
	}
	b.Used += cost
	b.Remaining = b.TotalBudget - b.Used
}

// IsWarning reports whether usage has crossed the warning threshold.
func (b *BudgetInfo) IsWarning() bool {
	return b.Used >= b.TotalBudget*b.WarningThreshold
}

// IsExceeded reports whether the budget is spent.
func (b *BudgetInfo) IsExceeded() bool {
	return b.Used >= b.TotalBudget
}
