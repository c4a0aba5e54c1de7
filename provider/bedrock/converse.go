// Package bedrock adapts the Amazon Bedrock Converse API to the nimbus
// ModelProvider interface.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/nimbusworks/nimbus"
)

// ErrEmptyResponse indicates Converse returned no output message.
var ErrEmptyResponse = errors.New("empty converse response")

// ConverseAPI is the subset of the Bedrock runtime client used by the
// provider.
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// ConverseProvider implements nimbus.ModelProvider on top of the Bedrock
// Converse API.
type ConverseProvider struct {
	modelID string
	client  ConverseAPI
}

// NewConverseProvider constructs a provider for the given Bedrock model ID,
// e.g. "anthropic.claude-3-5-sonnet-20241022-v2:0".
func NewConverseProvider(modelID string, client ConverseAPI) *ConverseProvider {
	return &ConverseProvider{modelID: modelID, client: client}
}

// Name returns the Bedrock model ID.
func (p *ConverseProvider) Name() string {
	return p.modelID
}

// Generate executes a single Converse round-trip.
func (p *ConverseProvider) Generate(ctx context.Context, req *nimbus.ModelRequest, opts ...nimbus.ModelOption) (*nimbus.ModelResponse, error) {
	opt := nimbus.ModelOptions{}
	for _, apply := range opts {
		apply(&opt)
	}
	input, err := p.toConverseInput(req, opt)
	if err != nil {
		return nil, err
	}
	output, err := p.client.Converse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("bedrock converse: %w", err)
	}
	return outputToResponse(output)
}

func (p *ConverseProvider) toConverseInput(req *nimbus.ModelRequest, opt nimbus.ModelOptions) (*bedrockruntime.ConverseInput, error) {
	modelID := req.Model
	if modelID == "" {
		modelID = p.modelID
	}
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(modelID),
	}
	if cfg := toInferenceConfig(opt); cfg != nil {
		input.InferenceConfig = cfg
	}
	toolConfig, err := toToolConfig(req.Tools)
	if err != nil {
		return nil, err
	}
	input.ToolConfig = toolConfig

	for _, msg := range req.Messages {
		switch msg.Role {
		case nimbus.RoleSystem:
			input.System = append(input.System, &types.SystemContentBlockMemberText{Value: msg.Text()})
		case nimbus.RoleUser:
			input.Messages = append(input.Messages, types.Message{
				Role:    types.ConversationRoleUser,
				Content: toContentBlocks(msg),
			})
		case nimbus.RoleAssistant:
			input.Messages = append(input.Messages, types.Message{
				Role:    types.ConversationRoleAssistant,
				Content: toContentBlocks(msg),
			})
		case nimbus.RoleTool:
			// A tool transcript becomes an assistant toolUse message followed
			// by a user toolResult message, per the Converse wire contract.
			use, result, err := toToolMessages(msg)
			if err != nil {
				return nil, err
			}
			input.Messages = append(input.Messages, use, result)
		}
	}
	return input, nil
}

func toInferenceConfig(opt nimbus.ModelOptions) *types.InferenceConfiguration {
	cfg := &types.InferenceConfiguration{}
	set := false
	if opt.MaxOutputTokens > 0 {
		cfg.MaxTokens = aws.Int32(int32(opt.MaxOutputTokens))
		set = true
	}
	if opt.Temperature > 0 {
		cfg.Temperature = aws.Float32(float32(opt.Temperature))
		set = true
	}
	if opt.TopP > 0 {
		cfg.TopP = aws.Float32(float32(opt.TopP))
		set = true
	}
	if len(opt.StopSequences) > 0 {
		cfg.StopSequences = opt.StopSequences
		set = true
	}
	if !set {
		return nil
	}
	return cfg
}

func toToolConfig(tools []*nimbus.Tool) (*types.ToolConfiguration, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	cfg := &types.ToolConfiguration{}
	for _, tool := range tools {
		spec := types.ToolSpecification{
			Name: aws.String(tool.Name),
		}
		if tool.Description != "" {
			spec.Description = aws.String(tool.Description)
		}
		if tool.InputSchema != nil {
			b, err := json.Marshal(tool.InputSchema)
			if err != nil {
				return nil, err
			}
			var schema map[string]any
			if err := json.Unmarshal(b, &schema); err != nil {
				return nil, err
			}
			spec.InputSchema = &types.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(schema)}
		}
		cfg.Tools = append(cfg.Tools, &types.ToolMemberToolSpec{Value: spec})
	}
	return cfg, nil
}

func toContentBlocks(msg *nimbus.Message) []types.ContentBlock {
	blocks := make([]types.ContentBlock, 0, len(msg.Parts))
	for _, part := range msg.Parts {
		switch v := part.(type) {
		case nimbus.TextPart:
			blocks = append(blocks, &types.ContentBlockMemberText{Value: v.Text})
		case nimbus.DataPart:
			if v.MIMEType.Type() != "image" {
				continue
			}
			blocks = append(blocks, &types.ContentBlockMemberImage{
				Value: types.ImageBlock{
					Format: types.ImageFormat(v.MIMEType.Format()),
					Source: &types.ImageSourceMemberBytes{Value: v.Bytes},
				},
			})
		}
	}
	return blocks
}

func toToolMessages(msg *nimbus.Message) (use, result types.Message, err error) {
	use = types.Message{Role: types.ConversationRoleAssistant}
	result = types.Message{Role: types.ConversationRoleUser}
	for _, part := range msg.Parts {
		call, ok := part.(nimbus.ToolPart)
		if !ok {
			continue
		}
		var args map[string]any
		if call.Request != "" {
			if err := json.Unmarshal([]byte(call.Request), &args); err != nil {
				return use, result, fmt.Errorf("tool %s arguments: %w", call.Name, err)
			}
		}
		use.Content = append(use.Content, &types.ContentBlockMemberToolUse{
			Value: types.ToolUseBlock{
				ToolUseId: aws.String(call.ID),
				Name:      aws.String(call.Name),
				Input:     document.NewLazyDocument(args),
			},
		})
		result.Content = append(result.Content, &types.ContentBlockMemberToolResult{
			Value: types.ToolResultBlock{
				ToolUseId: aws.String(call.ID),
				Content: []types.ToolResultContentBlock{
					&types.ToolResultContentBlockMemberText{Value: call.Response},
				},
			},
		})
	}
	return use, result, nil
}

func outputToResponse(output *bedrockruntime.ConverseOutput) (*nimbus.ModelResponse, error) {
	outMsg, ok := output.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, ErrEmptyResponse
	}
	msg := &nimbus.Message{
		Role:         nimbus.RoleAssistant,
		Status:       nimbus.StatusCompleted,
		FinishReason: string(output.StopReason),
	}
	for _, block := range outMsg.Value.Content {
		switch v := block.(type) {
		case *types.ContentBlockMemberText:
			msg.Parts = append(msg.Parts, nimbus.TextPart{Text: v.Value})
		case *types.ContentBlockMemberToolUse:
			args, err := toolUseArguments(v.Value)
			if err != nil {
				return nil, err
			}
			msg.Role = nimbus.RoleTool
			msg.Parts = append(msg.Parts, nimbus.ToolPart{
				ID:      aws.ToString(v.Value.ToolUseId),
				Name:    aws.ToString(v.Value.Name),
				Request: args,
			})
		}
	}
	return &nimbus.ModelResponse{Message: msg}, nil
}

func toolUseArguments(block types.ToolUseBlock) (string, error) {
	if block.Input == nil {
		return "{}", nil
	}
	b, err := block.Input.MarshalSmithyDocument()
	if err != nil {
		return "", fmt.Errorf("tool %s input: %w", aws.ToString(block.Name), err)
	}
	return string(b), nil
}
