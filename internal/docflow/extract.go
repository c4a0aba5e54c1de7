package docflow

import (
	"context"
	"fmt"
	"os"

	"github.com/nimbusworks/nimbus"
)

const parserInstructions = `You are an expert document parser. Extract all the fields from the
supplied image and provide the information in a structured json only
format, no other text or wrapper around json. The json will be read by
machine. Be very strict about that the output only contains JSON and
nothing else. Do not extract any other fields which are not specified in
the prompt.`

// ReceiptFieldPrompt extracts the fields the receipt ruleset validates.
const ReceiptFieldPrompt = `This is a detailed sales receipt. Extract fields including total_due,
bank_account_number, tax_registered_number and invoice_number. Extract the
invoice_date field in YYYY-MM-DD format.`

// ExtractDocument sends the image to a vision model and returns the raw
// JSON field payload, with markdown fences stripped.
func ExtractDocument(ctx context.Context, provider nimbus.ModelProvider, image []byte, mime nimbus.MIMEType, fieldPrompt string) (string, error) {
	req := &nimbus.ModelRequest{
		Model: provider.Name(),
		Messages: []*nimbus.Message{
			nimbus.SystemMessage(parserInstructions),
			nimbus.UserDataMessage(fieldPrompt, mime, "document", image),
		},
	}
	resp, err := provider.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("docflow: extract document: %w", err)
	}
	return nimbus.CleanJSON(resp.Message.Text()), nil
}

// ExtractDocumentFile reads an image from disk and extracts its fields.
func ExtractDocumentFile(ctx context.Context, provider nimbus.ModelProvider, path, fieldPrompt string) (string, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("docflow: read document image: %w", err)
	}
	return ExtractDocument(ctx, provider, image, nimbus.MIMEImagePNG, fieldPrompt)
}
