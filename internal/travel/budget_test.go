package travel

import (
	"math"
	"strings"
	"testing"
)

func TestAllocateBudgetSplits(t *testing.T) {
	alloc := AllocateBudget(3000, 7, 2)

	var sum float64
	for _, c := range alloc.Categories {
		sum += c.Amount
	}
	if math.Abs(sum-3000) > 0.01 {
		t.Fatalf("expected category amounts to sum to 3000, got %v", sum)
	}
	if alloc.Categories[0].Name != "Flights" || alloc.Categories[0].Amount != 1200 {
		t.Fatalf("expected flights at $1200, got %+v", alloc.Categories[0])
	}
	if alloc.PerPerson != 1500 {
		t.Fatalf("expected $1500 per person, got %v", alloc.PerPerson)
	}
	if math.Abs(alloc.PerDay-3000.0/7) > 0.01 {
		t.Fatalf("unexpected per-day figure: %v", alloc.PerDay)
	}
}

func TestAllocateBudgetClampsInputs(t *testing.T) {
	alloc := AllocateBudget(1000, 0, -3)
	if alloc.Days != 1 || alloc.Travelers != 1 {
		t.Fatalf("expected days and travelers clamped to 1, got %d/%d", alloc.Days, alloc.Travelers)
	}
	if alloc.PerDay != 1000 || alloc.PerPerson != 1000 {
		t.Fatalf("unexpected derived figures: %v/%v", alloc.PerDay, alloc.PerPerson)
	}
}

func TestBudgetMarkdown(t *testing.T) {
	doc := AllocateBudget(3000, 7, 2).Markdown()
	for _, want := range []string{
		"Budget Allocation for $3000.00",
		"Flights: 40%",
		"Accommodation: 30%",
		"Daily budget",
		"Per traveler: $1500.00",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected markdown to contain %q:\n%s", want, doc)
		}
	}
}
