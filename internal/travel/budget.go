package travel

import (
	"fmt"
	"strings"
)

// BudgetCategory is one line of a budget allocation.
type BudgetCategory struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
}

// BudgetAllocation splits a total trip budget across spending categories.
type BudgetAllocation struct {
	Total      float64          `json:"total"`
	Days       int              `json:"days"`
	Travelers  int              `json:"travelers"`
	Categories []BudgetCategory `json:"categories"`
	PerDay     float64          `json:"per_day"`
	PerPerson  float64          `json:"per_person"`
}

// Allocation percentages reflect typical long-haul trip cost patterns.
var budgetSplit = []BudgetCategory{
	{Name: "Flights", Percent: 40},
	{Name: "Accommodation", Percent: 30},
	{Name: "Food & Dining", Percent: 15},
	{Name: "Activities", Percent: 10},
	{Name: "Miscellaneous", Percent: 5},
}

// AllocateBudget splits total across the standard categories and derives
// per-day and per-person figures. Days and travelers are clamped to 1.
func AllocateBudget(total float64, days, travelers int) *BudgetAllocation {
	if days < 1 {
		days = 1
	}
	if travelers < 1 {
		travelers = 1
	}
	alloc := &BudgetAllocation{
		Total:     total,
		Days:      days,
		Travelers: travelers,
		PerDay:    total / float64(days),
		PerPerson: total / float64(travelers),
	}
	for _, c := range budgetSplit {
		alloc.Categories = append(alloc.Categories, BudgetCategory{
			Name:    c.Name,
			Percent: c.Percent,
			Amount:  total * c.Percent / 100,
		})
	}
	return alloc
}

// Markdown renders the allocation as a budget breakdown document. It backs
// the budget tool when the planner agent is unavailable.
func (b *BudgetAllocation) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Budget Allocation for $%.2f** (%d days, %d travelers)\n\n", b.Total, b.Days, b.Travelers)
	for _, c := range b.Categories {
		fmt.Fprintf(&sb, "- **%s: %.0f%%** ($%.2f)\n", c.Name, c.Percent, c.Amount)
	}
	fmt.Fprintf(&sb, "\n- Daily budget: $%.2f\n", b.PerDay)
	fmt.Fprintf(&sb, "- Per traveler: $%.2f\n", b.PerPerson)
	sb.WriteString("\nBuild in a 10-15% contingency buffer for flexibility and unexpected costs.\n")
	return sb.String()
}
