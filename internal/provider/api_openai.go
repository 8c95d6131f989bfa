package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/aidf-dev/aidf/internal/aidferr"
	"github.com/aidf-dev/aidf/internal/conversation"
)

// OpenAIAPI is the second api-tool-use provider variant, targeting
// OpenAI's chat-completions tool-calling, demonstrating the provider
// contract is genuinely polymorphic across vendors.
type OpenAIAPI struct {
	Client openai.Client
	Model  openai.ChatModel
	Tools  *Toolbox
	Window *conversation.Window
}

// NewOpenAIAPI constructs an OpenAIAPI provider. model may be empty,
// defaulting to GPT-4o.
func NewOpenAIAPI(apiKey, model string, tools *Toolbox, window *conversation.Window) *OpenAIAPI {
	m := openai.ChatModel(model)
	if model == "" {
		m = openai.ChatModelGPT4o
	}
	return &OpenAIAPI{
		Client: openai.NewClient(option.WithAPIKey(apiKey)),
		Model:  m,
		Tools:  tools,
		Window: window,
	}
}

func (o *OpenAIAPI) Name() string         { return "openai" }
func (o *OpenAIAPI) Variant() VariantKind { return VariantAPIToolUse }
func (o *OpenAIAPI) IsAvailable() bool    { return true }

func openaiToolDefs() []openai.ChatCompletionToolParam {
	def := func(name, description string, params map[string]any) openai.ChatCompletionToolParam {
		return openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        name,
				Description: openai.String(description),
				Parameters:  params,
			},
		}
	}
	return []openai.ChatCompletionToolParam{
		def(string(ToolReadFile), "Read a file under the project root.", map[string]any{
			"type":       "object",
			"properties": map[string]any{"path": map[string]any{"type": "string"}},
			"required":   []string{"path"},
		}),
		def(string(ToolWriteFile), "Write content to a file under the project root.", map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":    map[string]any{"type": "string"},
				"content": map[string]any{"type": "string"},
			},
			"required": []string{"path", "content"},
		}),
		def(string(ToolListFiles), "List files under a directory, optionally glob-filtered.", map[string]any{
			"type": "object",
			"properties": map[string]any{
				"path":    map[string]any{"type": "string"},
				"pattern": map[string]any{"type": "string"},
			},
			"required": []string{"path"},
		}),
		def(string(ToolRunCommand), "Run a shell command in the project root.", map[string]any{
			"type":       "object",
			"properties": map[string]any{"command": map[string]any{"type": "string"}},
			"required":   []string{"command"},
		}),
		def(string(ToolTaskComplete), "Signal the task's Definition of Done is met.", map[string]any{
			"type":       "object",
			"properties": map[string]any{"summary": map[string]any{"type": "string"}},
			"required":   []string{"summary"},
		}),
		def(string(ToolTaskBlocked), "Signal the task cannot proceed.", map[string]any{
			"type": "object",
			"properties": map[string]any{
				"reason":     map[string]any{"type": "string"},
				"attempted":  map[string]any{"type": "string"},
				"suggestion": map[string]any{"type": "string"},
			},
			"required": []string{"reason"},
		}),
	}
}

// Execute mirrors AnthropicAPI.Execute's tool-use loop against OpenAI's
// chat-completions API.
func (o *OpenAIAPI) Execute(ctx context.Context, prompt string, opts Options) (ExecutionResult, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	}

	result := ExecutionResult{TokenUsage: &TokenUsage{}}
	var filesChanged []string

	for {
		resp, err := o.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    o.Model,
			Messages: messages,
			Tools:    openaiToolDefs(),
		})
		if err != nil {
			return classifyOpenAIError(err)
		}
		if len(resp.Choices) == 0 {
			result.Success = true
			result.FilesChanged = filesChanged
			return result, nil
		}

		result.TokenUsage.InputTokens += int(resp.Usage.PromptTokens)
		result.TokenUsage.OutputTokens += int(resp.Usage.CompletionTokens)

		choice := resp.Choices[0]
		result.Output += choice.Message.Content
		messages = append(messages, choice.Message.ToParam())

		if len(choice.Message.ToolCalls) == 0 {
			result.Success = true
			result.FilesChanged = filesChanged
			return result, nil
		}

		for _, call := range choice.Message.ToolCalls {
			toolResult, done, blocked := o.dispatchTool(call)
			messages = append(messages, openai.ToolMessage(toolResult, call.ID))

			if done {
				result.Success = true
				result.IterationComplete = true
				result.CompletionSignal = "task_complete"
				result.FilesChanged = filesChanged
				return result, nil
			}
			if blocked {
				result.Success = false
				result.Error = toolResult
				result.FilesChanged = filesChanged
				return result, nil
			}
			if call.Function.Name == string(ToolWriteFile) {
				var input map[string]any
				_ = json.Unmarshal([]byte(call.Function.Arguments), &input)
				filesChanged = appendUnique(filesChanged, str(input["path"]))
			}
		}

		if o.Window != nil {
			trimmed := o.Window.Trim(toOpenAIConversationMessages(messages))
			if len(trimmed) < len(messages) {
				messages = messages[len(messages)-len(trimmed):]
			}
		}
	}
}

func (o *OpenAIAPI) dispatchTool(call openai.ChatCompletionMessageToolCall) (result string, complete bool, blocked bool) {
	var input map[string]any
	_ = json.Unmarshal([]byte(call.Function.Arguments), &input)

	switch ToolName(call.Function.Name) {
	case ToolReadFile:
		return o.Tools.ReadFile(str(input["path"])), false, false
	case ToolWriteFile:
		return o.Tools.WriteFile(str(input["path"]), str(input["content"])), false, false
	case ToolListFiles:
		return o.Tools.ListFiles(str(input["path"]), str(input["pattern"])), false, false
	case ToolRunCommand:
		return o.Tools.RunCommand(str(input["command"])), false, false
	case ToolTaskComplete:
		return str(input["summary"]), true, false
	case ToolTaskBlocked:
		return fmt.Sprintf("BLOCKED: %s", str(input["reason"])), false, true
	default:
		return fmt.Sprintf("unknown tool %q", call.Function.Name), false, false
	}
}

func toOpenAIConversationMessages(msgs []openai.ChatCompletionMessageParamUnion) []conversation.Message {
	out := make([]conversation.Message, len(msgs))
	for i := range msgs {
		out[i] = conversation.Message{Role: "message"}
	}
	return out
}

func classifyOpenAIError(err error) (ExecutionResult, error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "429"):
		return ExecutionResult{Error: msg, ErrorCategory: aidferr.CategoryProvider, ErrorCode: "RATE_LIMIT"},
			aidferr.ProviderRateLimit("openai rate limited", err)
	case strings.Contains(msg, "401"), strings.Contains(msg, "403"):
		return ExecutionResult{Error: msg, ErrorCategory: aidferr.CategoryPermission, ErrorCode: "API_AUTH"},
			aidferr.PermAPIAuth("openai authentication failed: " + msg)
	case strings.Contains(msg, "500"), strings.Contains(msg, "502"), strings.Contains(msg, "503"):
		return ExecutionResult{Error: msg, ErrorCategory: aidferr.CategoryProvider, ErrorCode: "API_ERROR"},
			aidferr.ProviderAPIError("openai server error", true, err)
	default:
		return ExecutionResult{Error: msg, ErrorCategory: aidferr.CategoryProvider, ErrorCode: "API_ERROR"},
			aidferr.ProviderAPIError("openai API error", false, err)
	}
}
