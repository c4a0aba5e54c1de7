// docflow runs the document extraction pipeline over a receipt image and
// prints the extracted fields, the rule verdict, and the route taken.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/nimbusworks/nimbus/internal/docflow"
	"github.com/nimbusworks/nimbus/provider/openai"
)

var (
	model      = flag.String("model", "gpt-4o", "vision model for document extraction")
	totalLimit = flag.Float64("total-limit", 1000, "maximum total due before human review")
	retries    = flag.Int("retries", 3, "extraction attempts before failing")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: docflow [flags] <image>")
		os.Exit(2)
	}
	if err := run(context.Background(), flag.Arg(0)); err != nil {
		slog.Error("docflow failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, imagePath string) error {
	image, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	ruleset := docflow.NewRuleset()
	ruleset.TotalLimit = *totalLimit

	pipeline, err := docflow.NewPipeline(openai.NewChatProvider(*model),
		docflow.WithRuleset(ruleset),
		docflow.WithExtractRetries(*retries),
	)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(ctx, image)
	if err != nil {
		return err
	}

	fmt.Println("Extracted document:")
	fmt.Println(result.Document)
	fmt.Println()
	for _, rule := range result.Verdict.Rules {
		mark := "PASS"
		if !rule.Passed {
			mark = "FAIL"
		}
		fmt.Printf("[%s] %s: %s\n", mark, rule.Name, rule.Description)
	}
	fmt.Println()
	fmt.Printf("Route: %s\n", result.Route)
	for _, record := range result.Records {
		fmt.Printf("  %s\n", record)
	}
	return nil
}
