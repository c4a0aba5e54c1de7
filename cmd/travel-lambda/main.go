// travel-lambda is the Lambda entrypoint for the travel orchestrator. The
// event carries a prompt; the response carries the compiled plan text. The
// relational backend is an Aurora DSQL cluster shared across invocations.
package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/nimbusworks/nimbus"
	"github.com/nimbusworks/nimbus/internal/config"
	"github.com/nimbusworks/nimbus/internal/store"
	"github.com/nimbusworks/nimbus/internal/travel"
	"github.com/nimbusworks/nimbus/middleware"
	"github.com/nimbusworks/nimbus/provider/bedrock"
	"github.com/nimbusworks/nimbus/provider/knowledgebase"
)

// Request is the invocation event.
type Request struct {
	Prompt string `json:"prompt"`
}

// Response carries the orchestrator's reply.
type Response struct {
	Response string `json:"response"`
}

type handler struct {
	planner *travel.Planner
}

func newHandler(ctx context.Context) (*handler, error) {
	bedrockCfg := config.LoadBedrockConfig()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(bedrockCfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	dsqlCfg, err := config.LoadDSQLConfig()
	if err != nil {
		return nil, err
	}
	db, err := store.OpenDSQL(ctx, awsCfg, dsqlCfg)
	if err != nil {
		return nil, err
	}
	repo, err := travel.NewRepository(db)
	if err != nil {
		return nil, err
	}
	service := travel.NewService(db, repo)

	provider := bedrock.NewConverseProvider(bedrockCfg.ModelID, bedrockruntime.NewFromConfig(awsCfg))
	var kb travel.KnowledgeBase
	if bedrockCfg.KnowledgeBaseID != "" {
		kb = knowledgebase.NewRetriever(bedrockCfg.KnowledgeBaseID, bedrockagentruntime.NewFromConfig(awsCfg))
	}
	return &handler{planner: travel.NewPlanner(provider, service, kb)}, nil
}

func (h *handler) handle(ctx context.Context, req Request) (*Response, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("prompt must not be empty")
	}
	orchestrator, err := h.planner.Orchestrator(
		middleware.Logging(slog.Default()),
		middleware.Tracing(middleware.WithSystem("aws.bedrock")),
	)
	if err != nil {
		return nil, err
	}
	reply, err := orchestrator.Run(ctx, nimbus.NewPrompt(nimbus.UserMessage(req.Prompt)))
	if err != nil {
		return nil, err
	}
	return &Response{Response: reply.Text()}, nil
}

func main() {
	h, err := newHandler(context.Background())
	if err != nil {
		slog.Error("travel-lambda init failed", "error", err)
		panic(err)
	}
	lambda.Start(h.handle)
}
