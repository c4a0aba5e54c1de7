// Package openai adapts OpenAI-compatible chat completion endpoints to the
// nimbus ModelProvider interface.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/packages/param"

	"github.com/nimbusworks/nimbus"
)

// ErrEmptyResponse indicates the endpoint returned no choices.
var ErrEmptyResponse = errors.New("empty completion response")

// ChatOption configures the chat provider.
type ChatOption func(*ChatOptions)

// WithRequestOptions sets client request options, e.g. option.WithAPIKey or
// option.WithBaseURL for OpenAI-compatible gateways.
func WithRequestOptions(opts ...option.RequestOption) ChatOption {
	return func(o *ChatOptions) {
		o.RequestOpts = opts
	}
}

// ChatOptions holds chat provider configuration.
type ChatOptions struct {
	RequestOpts []option.RequestOption
}

// ChatProvider implements nimbus.ModelProvider for OpenAI-compatible chat
// models. The API key is read from OPENAI_API_KEY and the base URL from
// OPENAI_BASE_URL unless overridden via request options.
type ChatProvider struct {
	model  string
	client openai.Client
}

// NewChatProvider constructs a provider for the given model.
func NewChatProvider(model string, opts ...ChatOption) *ChatProvider {
	chatOpts := ChatOptions{}
	for _, opt := range opts {
		opt(&chatOpts)
	}
	return &ChatProvider{
		model:  model,
		client: openai.NewClient(chatOpts.RequestOpts...),
	}
}

// Name returns the model identifier.
func (p *ChatProvider) Name() string {
	return p.model
}

// Generate executes a non-streaming chat completion request.
func (p *ChatProvider) Generate(ctx context.Context, req *nimbus.ModelRequest, opts ...nimbus.ModelOption) (*nimbus.ModelResponse, error) {
	opt := nimbus.ModelOptions{}
	for _, apply := range opts {
		apply(&opt)
	}
	params, err := p.toChatCompletionParams(req, opt)
	if err != nil {
		return nil, err
	}
	cc, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	return completionToResponse(cc)
}

// toChatCompletionParams converts a generic model request into OpenAI params.
func (p *ChatProvider) toChatCompletionParams(req *nimbus.ModelRequest, opt nimbus.ModelOptions) (openai.ChatCompletionNewParams, error) {
	tools, err := toTools(req.Tools)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	model := req.Model
	if model == "" {
		model = p.model
	}
	params := openai.ChatCompletionNewParams{
		Tools:    tools,
		Model:    model,
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	if opt.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(opt.MaxOutputTokens)
	}
	if opt.Temperature > 0 {
		params.Temperature = param.NewOpt(opt.Temperature)
	}
	if opt.TopP > 0 {
		params.TopP = param.NewOpt(opt.TopP)
	}
	if len(opt.StopSequences) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: opt.StopSequences}
	}
	if req.OutputSchema != nil {
		schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:   "structured_outputs",
			Schema: req.OutputSchema,
			Strict: openai.Bool(true),
		}
		if req.OutputSchema.Title != "" {
			schemaParam.Name = req.OutputSchema.Title
		}
		if req.OutputSchema.Description != "" {
			schemaParam.Description = openai.String(req.OutputSchema.Description)
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		}
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case nimbus.RoleUser, nimbus.RoleAssistant:
			params.Messages = append(params.Messages, openai.UserMessage(toContentParts(msg)))
		case nimbus.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(toTextParts(msg)))
		case nimbus.RoleTool:
			params.Messages = append(params.Messages, toToolCallMessage(msg))
			for _, part := range msg.Parts {
				if v, ok := part.(nimbus.ToolPart); ok {
					params.Messages = append(params.Messages, openai.ToolMessage(v.Response, v.ID))
				}
			}
		}
	}
	return params, nil
}

func toToolCallMessage(msg *nimbus.Message) openai.ChatCompletionMessageParamUnion {
	toolCalls := make([]openai.ChatCompletionMessageToolCallUnionParam, 0, len(msg.Parts))
	for _, part := range msg.Parts {
		v, ok := part.(nimbus.ToolPart)
		if !ok {
			continue
		}
		toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: v.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      v.Name,
					Arguments: v.Request,
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{
		OfAssistant: &openai.ChatCompletionAssistantMessageParam{
			ToolCalls: toolCalls,
		},
	}
}

func toTools(tools []*nimbus.Tool) ([]openai.ChatCompletionToolUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	params := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		fn := openai.FunctionDefinitionParam{
			Name: tool.Name,
		}
		if tool.Description != "" {
			fn.Description = openai.String(tool.Description)
		}
		if tool.InputSchema != nil {
			b, err := json.Marshal(tool.InputSchema)
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(b, &fn.Parameters); err != nil {
				return nil, err
			}
		}
		params = append(params, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{Function: fn},
		})
	}
	return params, nil
}

// toTextParts converts message parts to text-only parts for system messages.
func toTextParts(message *nimbus.Message) []openai.ChatCompletionContentPartTextParam {
	parts := make([]openai.ChatCompletionContentPartTextParam, 0, len(message.Parts))
	for _, part := range message.Parts {
		if v, ok := part.(nimbus.TextPart); ok {
			parts = append(parts, openai.ChatCompletionContentPartTextParam{Text: v.Text})
		}
	}
	return parts
}

// toContentParts converts message parts to multi-modal content parts.
func toContentParts(message *nimbus.Message) []openai.ChatCompletionContentPartUnionParam {
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(message.Parts))
	for _, part := range message.Parts {
		switch v := part.(type) {
		case nimbus.TextPart:
			parts = append(parts, openai.TextContentPart(v.Text))
		case nimbus.DataPart:
			if v.MIMEType.Type() == "image" {
				url := "data:" + string(v.MIMEType) + ";base64," + base64.StdEncoding.EncodeToString(v.Bytes)
				parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: url,
				}))
				continue
			}
			fileParam := openai.ChatCompletionContentPartFileFileParam{
				FileData: param.NewOpt(base64.StdEncoding.EncodeToString(v.Bytes)),
				Filename: param.NewOpt(v.Name),
			}
			parts = append(parts, openai.FileContentPart(fileParam))
		}
	}
	return parts
}

// completionToResponse converts a chat completion into a ModelResponse.
// Tool calls flip the message role to RoleTool so the agent loop executes
// them before the next round-trip.
func completionToResponse(cc *openai.ChatCompletion) (*nimbus.ModelResponse, error) {
	if len(cc.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	msg := &nimbus.Message{
		Role:   nimbus.RoleAssistant,
		Status: nimbus.StatusCompleted,
	}
	for _, choice := range cc.Choices {
		if choice.Message.Content != "" {
			msg.Parts = append(msg.Parts, nimbus.TextPart{Text: choice.Message.Content})
		}
		if choice.FinishReason != "" {
			msg.FinishReason = choice.FinishReason
		}
		for _, call := range choice.Message.ToolCalls {
			msg.Role = nimbus.RoleTool
			msg.Parts = append(msg.Parts, nimbus.ToolPart{
				ID:      call.ID,
				Name:    call.Function.Name,
				Request: call.Function.Arguments,
			})
		}
	}
	return &nimbus.ModelResponse{Message: msg}, nil
}
