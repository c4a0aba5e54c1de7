package travel

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nimbusworks/nimbus"
)

// failingProvider simulates a model outage so tool fallbacks kick in.
type failingProvider struct{}

func (failingProvider) Name() string { return "failing-model" }

func (failingProvider) Generate(context.Context, *nimbus.ModelRequest, ...nimbus.ModelOption) (*nimbus.ModelResponse, error) {
	return nil, errors.New("model unavailable")
}

// capturingProvider records the last request and replies with fixed text.
type capturingProvider struct {
	last *nimbus.ModelRequest
}

func (p *capturingProvider) Name() string { return "capturing-model" }

func (p *capturingProvider) Generate(_ context.Context, req *nimbus.ModelRequest, _ ...nimbus.ModelOption) (*nimbus.ModelResponse, error) {
	p.last = req
	return &nimbus.ModelResponse{Message: nimbus.AssistantMessage("ok")}, nil
}

func TestBudgetToolFallsBackToAllocation(t *testing.T) {
	_, service := newTestEnv(t)
	planner := NewPlanner(failingProvider{}, service, nil)

	tool, err := planner.BudgetTool()
	if err != nil {
		t.Fatalf("budget tool: %v", err)
	}
	out, err := tool.Handle(context.Background(), `{"trip_details":"7 days in Paris","budget_amount":3000,"days":7,"travelers":2}`)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(out, "Budget Allocation for $3000.00") {
		t.Fatalf("expected allocation fallback, got:\n%s", out)
	}
}

func TestFlightToolFallsBackToDataSearch(t *testing.T) {
	_, service := newTestEnv(t)
	planner := NewPlanner(failingProvider{}, service, nil)

	tool, err := planner.FlightTool()
	if err != nil {
		t.Fatalf("flight tool: %v", err)
	}
	out, err := tool.Handle(context.Background(), `{"origin":"SYD","destination":"CDG"}`)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(out, "Flight data from SYD to CDG") {
		t.Fatalf("expected raw flight data fallback, got:\n%s", out)
	}
}

func TestOrchestratorDefaults(t *testing.T) {
	_, service := newTestEnv(t)
	provider := &capturingProvider{}
	planner := NewPlanner(provider, service, nil)
	planner.Now = func() time.Time { return testStart }

	orchestrator, err := planner.Orchestrator()
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}
	out, err := orchestrator.Run(context.Background(), nimbus.NewPrompt(nimbus.UserMessage("I want to visit Paris")))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Text() != "ok" {
		t.Fatalf("unexpected reply: %q", out.Text())
	}
	if len(provider.last.Tools) != 6 {
		t.Fatalf("expected 6 specialist tools, got %d", len(provider.last.Tools))
	}
	system := provider.last.Messages[0].Text()
	if !strings.Contains(system, "2025-07-31") {
		t.Fatalf("expected default travel date 2025-07-31 in instructions:\n%s", system)
	}
	if !strings.Contains(system, "compile_itinerary") {
		t.Fatalf("expected mandatory workflow in instructions:\n%s", system)
	}
}

func TestQuickPlanChainsSpecialists(t *testing.T) {
	_, service := newTestEnv(t)
	provider := &capturingProvider{}
	planner := NewPlanner(provider, service, nil)

	plan, err := planner.QuickPlan()
	if err != nil {
		t.Fatalf("quick plan: %v", err)
	}
	out, err := plan.Run(context.Background(), nimbus.NewPrompt(nimbus.UserMessage("a weekend in Tokyo")))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Text() != "ok" {
		t.Fatalf("unexpected reply: %q", out.Text())
	}
	// The compiler runs last, so the final request carries its instructions.
	system := provider.last.Messages[0].Text()
	if !strings.Contains(system, "travel documentation expert") {
		t.Fatalf("expected itinerary compiler instructions in final request:\n%s", system)
	}
}

func TestFormatActivitiesEmpty(t *testing.T) {
	if got := formatActivities("NRT", nil); got != "No activities found in NRT" {
		t.Fatalf("unexpected empty message: %q", got)
	}
}
