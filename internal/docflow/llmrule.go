package docflow

import (
	"context"
	"fmt"

	"github.com/nimbusworks/nimbus"
)

const ruleProcessorInstructions = `You are an expert document rule processor which applies the provided
ruleset on the given content. You will receive a json formatted string
with different fields representing different fields in the document. You
will act as per the instructions and rules provided in the user prompt.
The final output will be in json format with a "rules" array holding the
rule name, description and result. The json will be read by machine. Be
very strict about that the output only contains JSON and nothing else.
If any of the rules are not met or failed, set an additional field named
SUCCESS to false, otherwise set it to true.`

// ReceiptRulePrompt mirrors the receipt ruleset for LLM evaluation.
const ReceiptRulePrompt = `Apply the following rules and give me the result in json format.
1. Make sure that the Bank Account Number field has at least 16 characters.
2. Make sure that the Invoice date is not in the future.
3. Make sure that the Invoice date is not more than 3 months in the past.
4. Check that the total due is not more than 1000.`

// ApplyRulesLLM evaluates the ruleset with a summary model instead of the
// local validators and decodes its JSON verdict.
func ApplyRulesLLM(ctx context.Context, provider nimbus.ModelProvider, document, rulePrompt string) (*Verdict, error) {
	req := &nimbus.ModelRequest{
		Model: provider.Name(),
		Messages: []*nimbus.Message{
			nimbus.SystemMessage(ruleProcessorInstructions),
			nimbus.UserMessage(rulePrompt + "\nThe document content is as follows:\n" + document),
		},
	}
	resp, err := provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("docflow: apply rules: %w", err)
	}
	var verdict Verdict
	if err := nimbus.DecodeJSON(resp.Message.Text(), &verdict); err != nil {
		return nil, fmt.Errorf("docflow: decode rule verdict: %w", err)
	}
	return &verdict, nil
}
