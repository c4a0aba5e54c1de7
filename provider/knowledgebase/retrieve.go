// Package knowledgebase wraps Amazon Bedrock Knowledge Base retrieval as an
// agent tool.
package knowledgebase

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"

	"github.com/nimbusworks/nimbus"
)

const defaultNumberOfResults = 3

// RetrieveAPI is the subset of the Bedrock agent runtime client used by the
// retriever.
type RetrieveAPI interface {
	Retrieve(ctx context.Context, params *bedrockagentruntime.RetrieveInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error)
}

// Retriever performs vector search against a Bedrock knowledge base.
type Retriever struct {
	knowledgeBaseID string
	numberOfResults int32
	client          RetrieveAPI
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithNumberOfResults sets how many passages a query returns. Defaults to 3.
func WithNumberOfResults(n int32) RetrieverOption {
	return func(r *Retriever) {
		r.numberOfResults = n
	}
}

// NewRetriever creates a Retriever for the given knowledge base ID.
func NewRetriever(knowledgeBaseID string, client RetrieveAPI, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		knowledgeBaseID: knowledgeBaseID,
		numberOfResults: defaultNumberOfResults,
		client:          client,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Query returns the retrieved passages joined into a single context string.
func (r *Retriever) Query(ctx context.Context, query string) (string, error) {
	output, err := r.client.Retrieve(ctx, &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(r.knowledgeBaseID),
		RetrievalQuery: &types.KnowledgeBaseQuery{
			Text: aws.String(query),
		},
		RetrievalConfiguration: &types.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &types.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults: aws.Int32(r.numberOfResults),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("knowledge base retrieve: %w", err)
	}
	passages := make([]string, 0, len(output.RetrievalResults))
	for _, result := range output.RetrievalResults {
		if result.Content == nil || result.Content.Text == nil {
			continue
		}
		passages = append(passages, *result.Content.Text)
	}
	if len(passages) == 0 {
		return "No relevant information found.", nil
	}
	return strings.Join(passages, "\n\n"), nil
}

// Tool exposes the retriever as an agent tool with the given name and
// description.
func (r *Retriever) Tool(name, description string) (*nimbus.Tool, error) {
	type queryInput struct {
		Query string `json:"query" jsonschema:"the search query"`
	}
	return nimbus.NewTool(name, description,
		func(ctx context.Context, in queryInput) (string, error) {
			return r.Query(ctx, in.Query)
		})
}
