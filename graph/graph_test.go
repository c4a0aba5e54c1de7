package graph

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
)

const stepsKey = "steps"

func stepHandler(name string) Handler {
	return func(ctx context.Context, state State) (State, error) {
		return appendStep(state, name), nil
	}
}

func appendStep(state State, name string) State {
	next := state.Clone()
	steps, _ := next[stepsKey].([]string)
	next[stepsKey] = append(steps, name)
	return next
}

func TestGraphCompileValidation(t *testing.T) {
	t.Run("missing entry", func(t *testing.T) {
		g := NewGraph()
		_ = g.AddNode("A", stepHandler("A"))
		_ = g.SetFinishPoint("A")
		if _, err := g.Compile(); err == nil || !strings.Contains(err.Error(), "entry point not set") {
			t.Fatalf("expected missing entry error, got %v", err)
		}
	})

	t.Run("missing finish", func(t *testing.T) {
		g := NewGraph()
		_ = g.AddNode("A", stepHandler("A"))
		_ = g.SetEntryPoint("A")
		if _, err := g.Compile(); err == nil || !strings.Contains(err.Error(), "finish point not set") {
			t.Fatalf("expected missing finish error, got %v", err)
		}
	})

	t.Run("edge from unknown node", func(t *testing.T) {
		g := NewGraph()
		_ = g.AddNode("A", stepHandler("A"))
		_ = g.AddEdge("X", "A")
		_ = g.SetEntryPoint("A")
		_ = g.SetFinishPoint("A")
		if _, err := g.Compile(); err == nil || !strings.Contains(err.Error(), "edge from unknown node") {
			t.Fatalf("expected unknown node error, got %v", err)
		}
	})

	t.Run("unreachable finish", func(t *testing.T) {
		g := NewGraph()
		_ = g.AddNode("A", stepHandler("A"))
		_ = g.AddNode("B", stepHandler("B"))
		_ = g.SetEntryPoint("A")
		_ = g.SetFinishPoint("B")
		if _, err := g.Compile(); err == nil || !strings.Contains(err.Error(), "not reachable") {
			t.Fatalf("expected reachability error, got %v", err)
		}
	})

	t.Run("cycle reported with path", func(t *testing.T) {
		g := NewGraph()
		_ = g.AddNode("A", stepHandler("A"))
		_ = g.AddNode("B", stepHandler("B"))
		_ = g.AddNode("C", stepHandler("C"))
		_ = g.AddEdge("A", "B")
		_ = g.AddEdge("B", "C")
		_ = g.AddEdge("C", "A")
		_ = g.SetEntryPoint("A")
		_ = g.SetFinishPoint("C")
		_, err := g.Compile()
		if err == nil || !strings.Contains(err.Error(), "cycles are not supported") {
			t.Fatalf("expected cycle error, got %v", err)
		}
		if !strings.Contains(err.Error(), "->") {
			t.Fatalf("expected cycle path in error, got %v", err)
		}
	})
}

func TestGraphSequentialOrder(t *testing.T) {
	g := NewGraph(WithParallel(false))
	var mu sync.Mutex
	execOrder := make([]string, 0, 4)
	handlerFor := func(name string) Handler {
		return func(ctx context.Context, state State) (State, error) {
			mu.Lock()
			execOrder = append(execOrder, name)
			mu.Unlock()
			return stepHandler(name)(ctx, state)
		}
	}

	_ = g.AddNode("A", handlerFor("A"))
	_ = g.AddNode("B", handlerFor("B"))
	_ = g.AddNode("C", handlerFor("C"))
	_ = g.AddNode("D", handlerFor("D"))
	_ = g.AddEdge("A", "B")
	_ = g.AddEdge("A", "C")
	_ = g.AddEdge("B", "D")
	_ = g.AddEdge("C", "D")
	_ = g.SetEntryPoint("A")
	_ = g.SetFinishPoint("D")

	executor, err := g.Compile()
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	result, err := executor.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if !reflect.DeepEqual(execOrder, []string{"A", "B", "C", "D"}) {
		t.Fatalf("unexpected execution order: %v", execOrder)
	}
	steps, _ := result[stepsKey].([]string)
	if len(steps) == 0 || steps[len(steps)-1] != "D" {
		t.Fatalf("expected final node D, got %v", steps)
	}
}

func TestGraphSerialStateMerges(t *testing.T) {
	// Handlers that return only their own keys must not erase what earlier
	// nodes produced: the output is a delta over the flowing state.
	g := NewGraph(WithParallel(false))
	_ = g.AddNode("extract", func(ctx context.Context, state State) (State, error) {
		return State{"document": "fields"}, nil
	})
	_ = g.AddNode("judge", func(ctx context.Context, state State) (State, error) {
		return State{"verdict": state["document"] == "fields"}, nil
	})
	_ = g.AddNode("store", func(ctx context.Context, state State) (State, error) {
		return State{"stored": true}, nil
	})
	_ = g.AddEdge("extract", "judge")
	_ = g.AddEdge("judge", "store")
	_ = g.SetEntryPoint("extract")
	_ = g.SetFinishPoint("store")

	executor, err := g.Compile()
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	result, err := executor.Execute(context.Background(), State{"input": "doc.png"})
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	for key, want := range map[string]any{
		"input":    "doc.png",
		"document": "fields",
		"verdict":  true,
		"stored":   true,
	} {
		if result[key] != want {
			t.Fatalf("expected %s=%v in final state, got %v", key, want, result)
		}
	}
}

func TestGraphParallelFanOut(t *testing.T) {
	g := NewGraph()
	_ = g.AddNode("A", stepHandler("A"))
	_ = g.AddNode("B", func(ctx context.Context, state State) (State, error) {
		next := state.Clone()
		next["b"] = true
		return next, nil
	})
	_ = g.AddNode("C", func(ctx context.Context, state State) (State, error) {
		next := state.Clone()
		next["c"] = true
		return next, nil
	})
	_ = g.AddNode("D", stepHandler("D"))
	_ = g.AddEdge("A", "B")
	_ = g.AddEdge("A", "C")
	_ = g.AddEdge("B", "D")
	_ = g.AddEdge("C", "D")
	_ = g.SetEntryPoint("A")
	_ = g.SetFinishPoint("D")

	executor, err := g.Compile()
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	result, err := executor.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	// The join node must see both branch updates merged.
	if result["b"] != true || result["c"] != true {
		t.Fatalf("expected merged branch state, got %v", result)
	}
}

func TestGraphConditionalRouting(t *testing.T) {
	build := func(approved bool) *Graph {
		g := NewGraph()
		_ = g.AddNode("check", func(ctx context.Context, state State) (State, error) {
			next := state.Clone()
			next["approved"] = approved
			return next, nil
		})
		_ = g.AddNode("accept", stepHandler("accept"))
		_ = g.AddNode("reject", stepHandler("reject"))
		_ = g.AddNode("done", stepHandler("done"))
		_ = g.AddEdge("check", "accept", WithEdgeCondition(func(_ context.Context, state State) bool {
			ok, _ := state["approved"].(bool)
			return ok
		}))
		_ = g.AddEdge("check", "reject", WithEdgeCondition(func(_ context.Context, state State) bool {
			ok, _ := state["approved"].(bool)
			return !ok
		}))
		_ = g.AddEdge("accept", "done")
		_ = g.AddEdge("reject", "done")
		_ = g.SetEntryPoint("check")
		_ = g.SetFinishPoint("done")
		return g
	}

	for _, tc := range []struct {
		approved bool
		want     string
	}{
		{approved: true, want: "accept"},
		{approved: false, want: "reject"},
	} {
		t.Run(tc.want, func(t *testing.T) {
			executor, err := build(tc.approved).Compile()
			if err != nil {
				t.Fatalf("compile error: %v", err)
			}
			result, err := executor.Execute(context.Background(), nil)
			if err != nil {
				t.Fatalf("run error: %v", err)
			}
			steps, _ := result[stepsKey].([]string)
			if len(steps) != 2 || steps[0] != tc.want {
				t.Fatalf("expected branch %s, got %v", tc.want, steps)
			}
		})
	}
}

func TestGraphNoConditionMatched(t *testing.T) {
	g := NewGraph()
	_ = g.AddNode("A", stepHandler("A"))
	_ = g.AddNode("B", stepHandler("B"))
	_ = g.AddEdge("A", "B", WithEdgeCondition(func(_ context.Context, _ State) bool {
		return false
	}))
	_ = g.SetEntryPoint("A")
	_ = g.SetFinishPoint("B")

	executor, err := g.Compile()
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if _, err := executor.Execute(context.Background(), nil); err == nil || !strings.Contains(err.Error(), "no condition matched") {
		t.Fatalf("expected no-match error, got %v", err)
	}
}

func TestGraphErrorPropagation(t *testing.T) {
	g := NewGraph()
	_ = g.AddNode("A", stepHandler("A"))
	_ = g.AddNode("B", func(ctx context.Context, state State) (State, error) {
		return state, fmt.Errorf("boom")
	})
	_ = g.AddEdge("A", "B")
	_ = g.SetEntryPoint("A")
	_ = g.SetFinishPoint("B")

	executor, err := g.Compile()
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	_, err = executor.Execute(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "node B") {
		t.Fatalf("expected error from node B, got %v", err)
	}
}

func TestGraphMiddlewareOrder(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	mw := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, state State) (State, error) {
				mu.Lock()
				calls = append(calls, name)
				mu.Unlock()
				return next(ctx, state)
			}
		}
	}

	g := NewGraph(WithMiddleware(mw("outer"), mw("inner")))
	_ = g.AddNode("A", stepHandler("A"))
	_ = g.SetEntryPoint("A")
	_ = g.SetFinishPoint("A")

	executor, err := g.Compile()
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if _, err := executor.Execute(context.Background(), nil); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if !reflect.DeepEqual(calls, []string{"outer", "inner"}) {
		t.Fatalf("unexpected middleware order: %v", calls)
	}
}

func TestGraphRetryMiddleware(t *testing.T) {
	var attempts int
	g := NewGraph(WithMiddleware(Retry(3)))
	_ = g.AddNode("flaky", func(ctx context.Context, state State) (State, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient")
		}
		return appendStep(state, "flaky"), nil
	})
	_ = g.SetEntryPoint("flaky")
	_ = g.SetFinishPoint("flaky")

	executor, err := g.Compile()
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	result, err := executor.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	steps, _ := result[stepsKey].([]string)
	if len(steps) != 1 || steps[0] != "flaky" {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestGraphNodeContext(t *testing.T) {
	var seen string
	g := NewGraph()
	_ = g.AddNode("A", func(ctx context.Context, state State) (State, error) {
		if node, ok := FromNodeContext(ctx); ok {
			seen = node.Name
		}
		return state.Clone(), nil
	})
	_ = g.SetEntryPoint("A")
	_ = g.SetFinishPoint("A")

	executor, err := g.Compile()
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if _, err := executor.Execute(context.Background(), nil); err != nil {
		t.Fatalf("run error: %v", err)
	}
	if seen != "A" {
		t.Fatalf("expected node context A, got %q", seen)
	}
}

func TestGraphExecutorReusable(t *testing.T) {
	g := NewGraph()
	_ = g.AddNode("A", stepHandler("A"))
	_ = g.AddNode("B", stepHandler("B"))
	_ = g.AddEdge("A", "B")
	_ = g.SetEntryPoint("A")
	_ = g.SetFinishPoint("B")

	executor, err := g.Compile()
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	for i := 0; i < 2; i++ {
		result, err := executor.Execute(context.Background(), nil)
		if err != nil {
			t.Fatalf("run %d error: %v", i, err)
		}
		steps, _ := result[stepsKey].([]string)
		if !reflect.DeepEqual(steps, []string{"A", "B"}) {
			t.Fatalf("run %d unexpected steps: %v", i, steps)
		}
	}
}
