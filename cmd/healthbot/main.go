// healthbot is an interactive health assistant over a seeded local store.
// It answers symptom questions from a Bedrock knowledge base (when
// configured) and books doctor appointments around the demo calendar.
package main

import (
	"bufio"
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
	"github.com/nimbusworks/nimbus/internal/health"
	"github.com/nimbusworks/nimbus/internal/store"
	"github.com/nimbusworks/nimbus/middleware"
	"github.com/nimbusworks/nimbus/provider/bedrock"
	"github.com/nimbusworks/nimbus/provider/knowledgebase"
)

var dbPath = flag.String("db", "healthbot.db", "SQLite database path")

func main() {
	flag.Parse()
	if err := run(context.Background()); err != nil {
		slog.Error("healthbot failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	db, err := store.OpenSQLite(*dbPath)
	if err != nil {
		return err
	}
	if err := health.Seed(db); err != nil {
		return err
	}
	repo, err := health.NewRepository(db)
	if err != nil {
		return err
	}
	service := health.NewService(repo)

	bedrockCfg := config.LoadBedrockConfig()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(bedrockCfg.Region))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}
	provider := bedrock.NewConverseProvider(bedrockCfg.ModelID, bedrockruntime.NewFromConfig(awsCfg))

	var kb health.KnowledgeBase
	if bedrockCfg.KnowledgeBaseID != "" {
		kb = knowledgebase.NewRetriever(bedrockCfg.KnowledgeBaseID, bedrockagentruntime.NewFromConfig(awsCfg))
	} else {
		slog.Warn("KNOWLEDGE_BASE_ID not set, health knowledge base tool disabled")
	}

	assistant, err := health.NewAssistant(ctx, provider, service, kb,
		middleware.Logging(slog.Default()),
	)
	if err != nil {
		return err
	}
	runner := nimbus.NewRunner(assistant)

	fmt.Println("Health assistant ready. Type a question, or 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		reply, err := runner.Run(ctx, nimbus.NewPrompt(nimbus.UserMessage(line)))
		if err != nil {
			slog.Error("assistant run failed", "error", err)
			continue
		}
		fmt.Println(reply.Text())
	}
	return scanner.Err()
}
