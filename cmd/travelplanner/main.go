// travelplanner runs the travel orchestrator once over a prompt and prints
// the compiled plan. It works against a seeded local SQLite store, using
// either Bedrock or an OpenAI-compatible endpoint as the model provider.
//
// Usage:
//
//	travelplanner "Plan a 5-day trip from Sydney to Tokyo under $4000"
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

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
	"github.com/nimbusworks/nimbus/provider/openai"
)

var (
	providerName = flag.String("provider", "bedrock", "model provider: bedrock or openai")
	model        = flag.String("model", "", "model ID (defaults to BEDROCK_MODEL_ID or gpt-4o)")
	dbPath       = flag.String("db", "travel.db", "SQLite database path")
	seedDays     = flag.Int("seed-days", 30, "days of flight and hotel inventory to seed")
	quick        = flag.Bool("quick", false, "skip live inventory lookup, plan from destination knowledge only")
)

func main() {
	flag.Parse()
	prompt := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if prompt == "" {
		fmt.Fprintln(os.Stderr, "usage: travelplanner [flags] <prompt>")
		os.Exit(2)
	}
	if err := run(context.Background(), prompt); err != nil {
		slog.Error("travelplanner failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, prompt string) error {
	db, err := store.OpenSQLite(*dbPath)
	if err != nil {
		return err
	}
	repo, err := travel.NewRepository(db)
	if err != nil {
		return err
	}
	if err := travel.Seed(db, travel.SeedOptions{Days: *seedDays}); err != nil {
		return err
	}
	service := travel.NewService(db, repo)

	provider, kb, err := buildProvider(ctx)
	if err != nil {
		return err
	}

	planner := travel.NewPlanner(provider, service, kb)
	var runnable nimbus.Runnable
	if *quick {
		runnable, err = planner.QuickPlan()
	} else {
		runnable, err = planner.Orchestrator(middleware.Logging(slog.Default()))
	}
	if err != nil {
		return err
	}

	reply, err := runnable.Run(ctx, nimbus.NewPrompt(nimbus.UserMessage(prompt)))
	if err != nil {
		return err
	}
	fmt.Println(reply.Text())
	return nil
}

func buildProvider(ctx context.Context) (nimbus.ModelProvider, travel.KnowledgeBase, error) {
	switch *providerName {
	case "openai":
		modelID := *model
		if modelID == "" {
			modelID = "gpt-4o"
		}
		return openai.NewChatProvider(modelID), nil, nil
	case "bedrock":
		bedrockCfg := config.LoadBedrockConfig()
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(bedrockCfg.Region))
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		modelID := *model
		if modelID == "" {
			modelID = bedrockCfg.ModelID
		}
		provider := bedrock.NewConverseProvider(modelID, bedrockruntime.NewFromConfig(awsCfg))
		var kb travel.KnowledgeBase
		if bedrockCfg.KnowledgeBaseID != "" {
			kb = knowledgebase.NewRetriever(bedrockCfg.KnowledgeBaseID, bedrockagentruntime.NewFromConfig(awsCfg))
		}
		return provider, kb, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", *providerName)
	}
}
