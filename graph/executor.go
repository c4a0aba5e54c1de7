package graph

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Executor is a compiled graph. It is safe to call Execute multiple times;
// each call runs with fresh traversal state.
type Executor struct {
	graph *Graph
}

// Execute runs the graph from the entry point with the given initial state
// and returns the state produced by the finish node.
func (e *Executor) Execute(ctx context.Context, state State) (State, error) {
	r := &run{
		graph:   e.graph,
		queue:   []step{{node: e.graph.entryPoint, state: state.Clone()}},
		waiting: make(map[string]int),
		visited: make(map[string]bool, len(e.graph.nodes)),
	}
	return r.execute(ctx)
}

// step is a single pending node execution.
type step struct {
	node         string
	state        State
	allowRevisit bool
}

// edgeResolution is the outcome of resolving a node's outgoing edges.
type edgeResolution struct {
	immediate []step
	fanOut    []edge
	prepend   bool
}

type branchResult struct {
	idx   int
	state State
}

// run holds the mutable traversal state for a single Execute call.
type run struct {
	graph       *Graph
	queue       []step
	waiting     map[string]int
	visited     map[string]bool
	finished    bool
	finishState State
	stepCount   int
}

func (r *run) execute(ctx context.Context) (State, error) {
	for len(r.queue) > 0 {
		if r.stepCount >= r.graph.maxSteps {
			return nil, fmt.Errorf("graph: exceeded maximum steps limit (%d)", r.graph.maxSteps)
		}

		s := r.dequeue()
		if r.shouldSkip(s) {
			continue
		}
		r.stepCount++

		incoming := r.stateFor(s)
		nextState, err := r.executeNode(ctx, s)
		if err != nil {
			return nil, err
		}
		// Node output is a delta over the flowing state, not a replacement.
		flow := mergeStates(incoming, nextState)
		r.finishState = flow
		if s.node == r.graph.finishPoint {
			r.finished = true
			continue
		}
		if err := r.processOutgoingEdges(ctx, s, flow); err != nil {
			return nil, err
		}
	}
	if r.finished {
		return r.finishState, nil
	}
	return nil, fmt.Errorf("graph: finish node not reachable: %s", r.graph.finishPoint)
}

func (r *run) dequeue() step {
	s := r.queue[0]
	r.queue = r.queue[1:]
	return s
}

func (r *run) shouldSkip(s step) bool {
	// Defer while other activated incoming edges are still pending (join).
	if r.waiting[s.node] > 0 && !s.allowRevisit {
		r.queue = append(r.queue, s)
		return true
	}
	if r.visited[s.node] && !s.allowRevisit {
		return true
	}
	return false
}

func (r *run) executeNode(ctx context.Context, s step) (State, error) {
	handler := r.graph.nodes[s.node]
	if handler == nil {
		return nil, fmt.Errorf("graph: node %s handler missing", s.node)
	}
	if len(r.graph.middlewares) > 0 {
		handler = ChainMiddlewares(r.graph.middlewares...)(handler)
	}
	nodeCtx := NewNodeContext(ctx, &NodeContext{Name: s.node})
	nextState, err := handler(nodeCtx, r.stateFor(s))
	if err != nil {
		return nil, fmt.Errorf("graph: node %s: %w", s.node, err)
	}
	r.visited[s.node] = true
	return nextState.Clone(), nil
}

func (r *run) stateFor(s step) State {
	if s.state != nil {
		return s.state
	}
	return r.finishState
}

func (r *run) processOutgoingEdges(ctx context.Context, s step, state State) error {
	resolution, err := r.resolveEdges(ctx, s, state)
	if err != nil {
		return err
	}
	// A single matched conditional edge transitions immediately.
	if len(resolution.immediate) > 0 {
		r.enqueueSteps(resolution.immediate, resolution.prepend)
		return nil
	}
	edges := resolution.fanOut
	if !r.graph.parallel {
		for _, e := range edges {
			// nil state defers to finishState, preserving serial ordering.
			r.enqueue(step{node: e.to, state: nil, allowRevisit: s.allowRevisit})
		}
		return nil
	}
	if len(edges) == 1 {
		r.enqueue(step{
			node:         edges[0].to,
			state:        state.Clone(),
			allowRevisit: s.allowRevisit,
		})
		return nil
	}
	return r.fanOutParallel(ctx, s, state, edges)
}

func (r *run) enqueue(s step) {
	r.queue = append(r.queue, s)
}

func (r *run) enqueueSteps(steps []step, prepend bool) {
	if len(steps) == 0 {
		return
	}
	if prepend {
		r.queue = append(steps, r.queue...)
		return
	}
	r.queue = append(r.queue, steps...)
}

func (r *run) resolveEdges(ctx context.Context, s step, state State) (edgeResolution, error) {
	edges := r.graph.edges[s.node]
	if len(edges) == 0 {
		return edgeResolution{}, fmt.Errorf("graph: no outgoing edges from node %s", s.node)
	}
	conditional, unconditional := classifyEdges(edges)
	// All unconditional: fan out to every edge.
	if len(conditional) == 0 {
		return edgeResolution{fanOut: edges}, nil
	}
	// All conditional: take every matching edge.
	if len(unconditional) == 0 {
		return resolveAllConditional(ctx, state, conditional, s.node)
	}
	// Mixed: evaluate in declaration order, first match wins.
	return resolveMixed(ctx, state, edges, s.node)
}

func classifyEdges(edges []edge) (conditional, unconditional []edge) {
	for _, e := range edges {
		if e.condition != nil {
			conditional = append(conditional, e)
		} else {
			unconditional = append(unconditional, e)
		}
	}
	return
}

func resolveAllConditional(ctx context.Context, state State, edges []edge, node string) (edgeResolution, error) {
	matched := make([]edge, 0, len(edges))
	for _, e := range edges {
		if e.condition(ctx, state) {
			matched = append(matched, e)
		}
	}
	if len(matched) == 0 {
		return edgeResolution{}, fmt.Errorf("graph: no condition matched for edges from node %s", node)
	}
	if len(matched) == 1 {
		return edgeResolution{
			immediate: []step{{node: matched[0].to, state: state.Clone(), allowRevisit: true}},
		}, nil
	}
	return edgeResolution{fanOut: matched}, nil
}

func resolveMixed(ctx context.Context, state State, edges []edge, node string) (edgeResolution, error) {
	for _, e := range edges {
		if e.condition == nil || e.condition(ctx, state) {
			return edgeResolution{
				immediate: []step{{node: e.to, state: state.Clone(), allowRevisit: true}},
				prepend:   true,
			}, nil
		}
	}
	return edgeResolution{}, fmt.Errorf("graph: no condition matched for edges from node %s", node)
}

// fanOutParallel executes all target nodes concurrently and merges their
// results before enqueueing shared successors (join semantics).
func (r *run) fanOutParallel(ctx context.Context, s step, state State, edges []edge) error {
	for _, e := range edges {
		r.waiting[e.to]++
		for _, next := range r.graph.edges[e.to] {
			r.waiting[next.to]++
		}
	}
	results := make([]branchResult, len(edges))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, e := range edges {
		eg.Go(func() error {
			handler := r.graph.nodes[e.to]
			if handler == nil {
				return fmt.Errorf("graph: node %s handler missing", e.to)
			}
			nodeCtx := NewNodeContext(egCtx, &NodeContext{Name: e.to})
			nextState, err := handler(nodeCtx, state.Clone())
			if err != nil {
				return fmt.Errorf("graph: node %s: %w", e.to, err)
			}
			results[i] = branchResult{idx: i, state: nextState.Clone()}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	successorStates := make(map[string]State)
	pending := make(map[string]State)
	merged := state.Clone()
	for _, result := range results {
		e := edges[result.idx]
		r.waiting[e.to]--
		r.stepCount++
		for _, next := range r.graph.edges[e.to] {
			r.waiting[next.to]--
			if pending[next.to] == nil {
				pending[next.to] = state.Clone()
			}
			pending[next.to] = mergeStates(pending[next.to], result.state)
			if r.waiting[next.to] == 0 {
				successorStates[next.to] = pending[next.to].Clone()
				delete(pending, next.to)
			}
		}
		merged = mergeStates(merged, result.state)
		r.visited[e.to] = true
	}
	for successor, successorState := range successorStates {
		r.enqueue(step{
			node:         successor,
			state:        successorState.Clone(),
			allowRevisit: s.allowRevisit,
		})
	}
	r.finishState = merged
	return nil
}
