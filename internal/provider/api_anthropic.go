package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/aidf-dev/aidf/internal/aidferr"
	"github.com/aidf-dev/aidf/internal/conversation"
)

// AnthropicAPI is the api-tool-use provider variant targeting Anthropic's
// Messages API with native tool-calling.
type AnthropicAPI struct {
	Client  anthropic.Client
	Model   anthropic.Model
	Tools   *Toolbox
	Window  *conversation.Window
}

// NewAnthropicAPI constructs an AnthropicAPI provider. model may be empty,
// defaulting to Claude Sonnet.
func NewAnthropicAPI(apiKey, model string, tools *Toolbox, window *conversation.Window) *AnthropicAPI {
	m := anthropic.Model(model)
	if model == "" {
		m = anthropic.ModelClaudeSonnet4_5
	}
	return &AnthropicAPI{
		Client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		Model:  m,
		Tools:  tools,
		Window: window,
	}
}

func (a *AnthropicAPI) Name() string         { return "anthropic" }
func (a *AnthropicAPI) Variant() VariantKind { return VariantAPIToolUse }
func (a *AnthropicAPI) IsAvailable() bool    { return true }

func anthropicToolDefs() []anthropic.ToolUnionParam {
	def := func(name, description string, schema map[string]any) anthropic.ToolUnionParam {
		return anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        name,
				Description: anthropic.String(description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: schema["properties"],
					Required:   toStringSlice(schema["required"]),
				},
			},
		}
	}
	return []anthropic.ToolUnionParam{
		def(string(ToolReadFile), "Read a file under the project root.", map[string]any{
			"properties": map[string]any{"path": map[string]any{"type": "string"}},
			"required":   []string{"path"},
		}),
		def(string(ToolWriteFile), "Write content to a file under the project root.", map[string]any{
			"properties": map[string]any{
				"path":    map[string]any{"type": "string"},
				"content": map[string]any{"type": "string"},
			},
			"required": []string{"path", "content"},
		}),
		def(string(ToolListFiles), "List files under a directory, optionally glob-filtered.", map[string]any{
			"properties": map[string]any{
				"path":    map[string]any{"type": "string"},
				"pattern": map[string]any{"type": "string"},
			},
			"required": []string{"path"},
		}),
		def(string(ToolRunCommand), "Run a shell command in the project root.", map[string]any{
			"properties": map[string]any{"command": map[string]any{"type": "string"}},
			"required":   []string{"command"},
		}),
		def(string(ToolTaskComplete), "Signal the task's Definition of Done is met.", map[string]any{
			"properties": map[string]any{"summary": map[string]any{"type": "string"}},
			"required":   []string{"summary"},
		}),
		def(string(ToolTaskBlocked), "Signal the task cannot proceed.", map[string]any{
			"properties": map[string]any{
				"reason":     map[string]any{"type": "string"},
				"attempted":  map[string]any{"type": "string"},
				"suggestion": map[string]any{"type": "string"},
			},
			"required": []string{"reason"},
		}),
	}
}

func toStringSlice(v any) []string {
	arr, ok := v.([]string)
	if !ok {
		return nil
	}
	return arr
}

// Execute runs the tool-use loop: append a user message with prompt, then
// repeatedly call the Messages API and dispatch any tool_use blocks through
// Toolbox until task_complete/task_blocked is invoked or the model returns
// with no tool calls (spec §4.3).
func (a *AnthropicAPI) Execute(ctx context.Context, prompt string, opts Options) (ExecutionResult, error) {
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	}

	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	result := ExecutionResult{TokenUsage: &TokenUsage{}}
	var filesChanged []string

	for {
		resp, err := a.Client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     a.Model,
			MaxTokens: maxTokens,
			Messages:  messages,
			Tools:     anthropicToolDefs(),
		})
		if err != nil {
			return classifyAnthropicError(err)
		}

		result.TokenUsage.InputTokens += int(resp.Usage.InputTokens)
		result.TokenUsage.OutputTokens += int(resp.Usage.OutputTokens)

		var toolResults []anthropic.ContentBlockParamUnion
		sawToolUse := false
		assistantText := ""

		for _, block := range resp.Content {
			switch variant := block.AsAny().(type) {
			case anthropic.TextBlock:
				assistantText += variant.Text
				result.Output += variant.Text
			case anthropic.ToolUseBlock:
				sawToolUse = true
				toolResult, done, blocked := a.dispatchTool(variant)
				toolResults = append(toolResults, anthropic.NewToolResultBlock(variant.ID, toolResult, false))
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
				if variant.Name == string(ToolWriteFile) {
					filesChanged = appendUnique(filesChanged, extractPath(variant.Input))
				}
			}
		}

		messages = append(messages, resp.ToParam())
		if !sawToolUse {
			result.Success = true
			result.FilesChanged = filesChanged
			return result, nil
		}
		messages = append(messages, anthropic.NewUserMessage(toolResults...))

		if a.Window != nil {
			trimmed := a.Window.Trim(toConversationMessages(messages))
			messages = fromConversationMessages(trimmed, messages)
		}
	}
}

func (a *AnthropicAPI) dispatchTool(block anthropic.ToolUseBlock) (result string, complete bool, blocked bool) {
	var input map[string]any
	_ = json.Unmarshal(block.Input, &input)

	switch ToolName(block.Name) {
	case ToolReadFile:
		return a.Tools.ReadFile(str(input["path"])), false, false
	case ToolWriteFile:
		return a.Tools.WriteFile(str(input["path"]), str(input["content"])), false, false
	case ToolListFiles:
		return a.Tools.ListFiles(str(input["path"]), str(input["pattern"])), false, false
	case ToolRunCommand:
		return a.Tools.RunCommand(str(input["command"])), false, false
	case ToolTaskComplete:
		return str(input["summary"]), true, false
	case ToolTaskBlocked:
		return fmt.Sprintf("BLOCKED: %s", str(input["reason"])), false, true
	default:
		return fmt.Sprintf("unknown tool %q", block.Name), false, false
	}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func extractPath(raw json.RawMessage) string {
	var m map[string]any
	_ = json.Unmarshal(raw, &m)
	return str(m["path"])
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func toConversationMessages(msgs []anthropic.MessageParam) []conversation.Message {
	out := make([]conversation.Message, len(msgs))
	for i, m := range msgs {
		out[i] = conversation.Message{Role: string(m.Role)}
	}
	return out
}

// fromConversationMessages maps a trimmed conversation.Message slice back
// onto the original anthropic messages by matching suffix/prefix length,
// since conversation.Window only reasons about role/content, not the
// richer anthropic content-block structure.
func fromConversationMessages(trimmed []conversation.Message, original []anthropic.MessageParam) []anthropic.MessageParam {
	if len(trimmed) >= len(original) {
		return original
	}
	return original[len(original)-len(trimmed):]
}

func classifyAnthropicError(err error) (ExecutionResult, error) {
	msg := err.Error()
	switch {
	case containsAny(msg, "429"):
		return ExecutionResult{Error: msg, ErrorCategory: aidferr.CategoryProvider, ErrorCode: "RATE_LIMIT"},
			aidferr.ProviderRateLimit("anthropic rate limited", err)
	case containsAny(msg, "401", "403"):
		return ExecutionResult{Error: msg, ErrorCategory: aidferr.CategoryPermission, ErrorCode: "API_AUTH"},
			aidferr.PermAPIAuth("anthropic authentication failed: " + msg)
	case containsAny(msg, "500", "502", "503", "504"):
		return ExecutionResult{Error: msg, ErrorCategory: aidferr.CategoryProvider, ErrorCode: "API_ERROR"},
			aidferr.ProviderAPIError("anthropic server error", true, err)
	default:
		return ExecutionResult{Error: msg, ErrorCategory: aidferr.CategoryProvider, ErrorCode: "API_ERROR"},
			aidferr.ProviderAPIError("anthropic API error", false, err)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
