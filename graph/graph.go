package graph

import (
	"context"
	"fmt"
	"strings"
)

const defaultMaxSteps = 100

// Option configures Graph behavior.
type Option func(*Graph)

// WithParallel toggles parallel fan-out execution. Defaults to true.
func WithParallel(enabled bool) Option {
	return func(g *Graph) {
		g.parallel = enabled
	}
}

// WithMiddleware sets global middlewares applied to every node handler.
func WithMiddleware(ms ...Middleware) Option {
	return func(g *Graph) {
		g.middlewares = ms
	}
}

// WithMaxSteps bounds the number of node executions in a single run.
// Defaults to 100.
func WithMaxSteps(n int) Option {
	return func(g *Graph) {
		g.maxSteps = n
	}
}

// EdgeCondition decides whether an edge should be followed given the state.
type EdgeCondition func(ctx context.Context, state State) bool

// EdgeOption configures an edge before it is added to the graph.
type EdgeOption func(*edge)

// WithEdgeCondition sets a condition that must return true for the edge
// to be taken.
func WithEdgeCondition(condition EdgeCondition) EdgeOption {
	return func(e *edge) {
		e.condition = condition
	}
}

// edge is a directed edge with an optional condition. A nil condition means
// the edge is always followed.
type edge struct {
	to        string
	condition EdgeCondition
}

// Graph is a directed acyclic graph of processing nodes. Build it with
// AddNode and AddEdge, mark entry and finish points, then Compile.
type Graph struct {
	nodes       map[string]Handler
	edges       map[string][]edge
	entryPoint  string
	finishPoint string
	parallel    bool
	maxSteps    int
	middlewares []Middleware
}

// NewGraph creates an empty Graph.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		nodes:    make(map[string]Handler),
		edges:    make(map[string][]edge),
		parallel: true,
		maxSteps: defaultMaxSteps,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// AddNode registers a named node with its handler. Adding a duplicate name
// is a no-op. Returns the graph for chaining.
func (g *Graph) AddNode(name string, handler Handler) *Graph {
	if _, ok := g.nodes[name]; ok {
		return g
	}
	g.nodes[name] = handler
	return g
}

// AddEdge adds a directed edge between two nodes. Duplicate edges are
// ignored. Returns the graph for chaining.
func (g *Graph) AddEdge(from, to string, opts ...EdgeOption) *Graph {
	for _, e := range g.edges[from] {
		if e.to == to {
			return g
		}
	}
	e := edge{to: to}
	for _, opt := range opts {
		opt(&e)
	}
	g.edges[from] = append(g.edges[from], e)
	return g
}

// SetEntryPoint marks the node a run starts from.
func (g *Graph) SetEntryPoint(start string) *Graph {
	g.entryPoint = start
	return g
}

// SetFinishPoint marks the node a run ends at.
func (g *Graph) SetFinishPoint(end string) *Graph {
	g.finishPoint = end
	return g
}

// Compile validates the graph and returns an Executor. The graph must be
// acyclic and the finish point must be reachable from the entry point.
func (g *Graph) Compile() (*Executor, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	if err := g.ensureAcyclic(); err != nil {
		return nil, err
	}
	if err := g.ensureReachable(); err != nil {
		return nil, err
	}
	return &Executor{graph: g}, nil
}

func (g *Graph) validate() error {
	if g.entryPoint == "" {
		return fmt.Errorf("graph: entry point not set")
	}
	if g.finishPoint == "" {
		return fmt.Errorf("graph: finish point not set")
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return fmt.Errorf("graph: start node not found: %s", g.entryPoint)
	}
	if _, ok := g.nodes[g.finishPoint]; !ok {
		return fmt.Errorf("graph: end node not found: %s", g.finishPoint)
	}
	for from, edges := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("graph: edge from unknown node: %s", from)
		}
		for _, e := range edges {
			if _, ok := g.nodes[e.to]; !ok {
				return fmt.Errorf("graph: edge to unknown node: %s", e.to)
			}
		}
	}
	return nil
}

// ensureReachable verifies the finish node can be reached from the entry node.
func (g *Graph) ensureReachable() error {
	if g.entryPoint == g.finishPoint {
		return nil
	}
	queue := []string{g.entryPoint}
	visited := make(map[string]bool, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if visited[node] {
			continue
		}
		visited[node] = true
		if node == g.finishPoint {
			return nil
		}
		for _, e := range g.edges[node] {
			queue = append(queue, e.to)
		}
	}
	return fmt.Errorf("graph: finish node not reachable: %s", g.finishPoint)
}

// ensureAcyclic verifies the graph has no directed cycles, reporting the
// cycle path when one is found.
func (g *Graph) ensureAcyclic() error {
	const (
		stateUnvisited = iota
		stateVisiting
		stateVisited
	)
	states := make(map[string]int, len(g.nodes))
	stack := make([]string, 0, len(g.nodes))

	var visit func(string) error
	visit = func(node string) error {
		states[node] = stateVisiting
		stack = append(stack, node)

		for _, e := range g.edges[node] {
			switch states[e.to] {
			case stateVisiting:
				cycleStart := 0
				for i, name := range stack {
					if name == e.to {
						cycleStart = i
						break
					}
				}
				cycle := append(append([]string{}, stack[cycleStart:]...), e.to)
				return fmt.Errorf("graph: cycles are not supported (cycle: %s)", strings.Join(cycle, " -> "))
			case stateUnvisited:
				if err := visit(e.to); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		states[node] = stateVisited
		return nil
	}

	for name := range g.nodes {
		if states[name] == stateUnvisited {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}
