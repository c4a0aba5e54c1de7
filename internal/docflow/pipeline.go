package docflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nimbusworks/nimbus"
	"github.com/nimbusworks/nimbus/graph"
)

// State keys shared by the pipeline nodes.
const (
	keyImage    = "image"
	keyDocument = "document"
	keyVerdict  = "verdict"
	keyRoute    = "route"
	keyRecords  = "records"
)

// Routes a document can take after rule evaluation.
const (
	RouteAPI   = "api"
	RouteHuman = "human"
)

// Result is the outcome of one pipeline run.
type Result struct {
	Document string
	Verdict  *Verdict
	Route    string
	Records  []string
}

// PipelineOption configures the document pipeline.
type PipelineOption func(*Pipeline)

// WithRuleset replaces the default receipt ruleset.
func WithRuleset(rs *Ruleset) PipelineOption {
	return func(p *Pipeline) { p.ruleset = rs }
}

// WithFieldPrompt replaces the default receipt field prompt.
func WithFieldPrompt(prompt string) PipelineOption {
	return func(p *Pipeline) { p.fieldPrompt = prompt }
}

// WithExtractRetries sets how many attempts the extraction node gets.
func WithExtractRetries(attempts int) PipelineOption {
	return func(p *Pipeline) { p.extractRetries = attempts }
}

// Pipeline extracts document fields with a vision model, validates them
// against the receipt ruleset, and routes the document to automated
// processing or human review.
type Pipeline struct {
	vision         nimbus.ModelProvider
	ruleset        *Ruleset
	fieldPrompt    string
	extractRetries int
	executor       *graph.Executor
}

// NewPipeline compiles the document flow graph. The extraction node runs
// under a retry policy since vision calls are the flaky step.
func NewPipeline(vision nimbus.ModelProvider, opts ...PipelineOption) (*Pipeline, error) {
	p := &Pipeline{
		vision:         vision,
		ruleset:        NewRuleset(),
		fieldPrompt:    ReceiptFieldPrompt,
		extractRetries: 3,
	}
	for _, opt := range opts {
		opt(p)
	}

	g := graph.NewGraph(graph.WithParallel(false))
	g.AddNode("extraction", graph.Retry(p.extractRetries)(p.extractNode))
	g.AddNode("rule", p.ruleNode)
	g.AddNode(RouteHuman, p.humanNode)
	g.AddNode(RouteAPI, p.apiNode)
	g.AddNode("store", p.storeNode)

	g.AddEdge("extraction", "rule")
	g.AddEdge("rule", RouteAPI, graph.WithEdgeCondition(func(ctx context.Context, s graph.State) bool {
		verdict, ok := s[keyVerdict].(*Verdict)
		return ok && verdict.Success
	}))
	g.AddEdge("rule", RouteHuman, graph.WithEdgeCondition(func(ctx context.Context, s graph.State) bool {
		verdict, ok := s[keyVerdict].(*Verdict)
		return !ok || !verdict.Success
	}))
	g.AddEdge(RouteAPI, "store")
	g.AddEdge(RouteHuman, "store")
	g.SetEntryPoint("extraction")
	g.SetFinishPoint("store")

	executor, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("docflow: compile pipeline: %w", err)
	}
	p.executor = executor
	return p, nil
}

func (p *Pipeline) extractNode(ctx context.Context, state graph.State) (graph.State, error) {
	image, ok := state[keyImage].([]byte)
	if !ok || len(image) == 0 {
		return nil, fmt.Errorf("docflow: state is missing the document image")
	}
	document, err := ExtractDocument(ctx, p.vision, image, nimbus.MIMEImagePNG, p.fieldPrompt)
	if err != nil {
		return nil, err
	}
	slog.Debug("document fields extracted", "bytes", len(document))
	return graph.State{keyDocument: document}, nil
}

func (p *Pipeline) ruleNode(ctx context.Context, state graph.State) (graph.State, error) {
	document, _ := state[keyDocument].(string)
	verdict, err := p.ruleset.EvaluateJSON(document)
	if err != nil {
		return nil, err
	}
	slog.Info("receipt rules evaluated", "success", verdict.Success, "rules", len(verdict.Rules))
	return graph.State{keyVerdict: verdict}, nil
}

func (p *Pipeline) humanNode(ctx context.Context, state graph.State) (graph.State, error) {
	return graph.State{
		keyRoute:   RouteHuman,
		keyRecords: appendRecord(state, "Forwarded to Human for review"),
	}, nil
}

func (p *Pipeline) apiNode(ctx context.Context, state graph.State) (graph.State, error) {
	return graph.State{
		keyRoute:   RouteAPI,
		keyRecords: appendRecord(state, "Forwarded to API for processing"),
	}, nil
}

// storeNode appends the extraction and verdict records. It stands in for
// the downstream system of record.
func (p *Pipeline) storeNode(ctx context.Context, state graph.State) (graph.State, error) {
	records := appendRecord(state, "Data stored successfully!")
	return graph.State{keyRecords: records}, nil
}

func appendRecord(state graph.State, record string) []string {
	records, _ := state[keyRecords].([]string)
	return append(records, record)
}

// Run executes the pipeline on one document image.
func (p *Pipeline) Run(ctx context.Context, image []byte) (*Result, error) {
	final, err := p.executor.Execute(ctx, graph.State{keyImage: image})
	if err != nil {
		return nil, err
	}
	verdict, _ := final[keyVerdict].(*Verdict)
	document, _ := final[keyDocument].(string)
	route, _ := final[keyRoute].(string)
	records, _ := final[keyRecords].([]string)
	return &Result{Document: document, Verdict: verdict, Route: route, Records: records}, nil
}
