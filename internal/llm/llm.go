package llm

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/madrasa-panel/madrasa/internal/llm/prompts"
	"github.com/madrasa-panel/madrasa/internal/model"
)

//go:embed prompts/*.txt
var promptFS embed.FS

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api     *openai.Client
	model   string
	variant prompts.PromptVariant
}

// New creates a new LLM client writing summaries in the given prompt variant.
func New(baseURL, apiKey, modelName, variant string) (*Client, error) {
	if err := prompts.Load(promptFS); err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	if !prompts.IsValidVariant(variant) {
		return nil, fmt.Errorf("invalid prompt variant %q", variant)
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		variant: prompts.PromptVariant(variant),
	}, nil
}

// Ping checks that the endpoint answers and serves the configured model.
func (c *Client) Ping(ctx context.Context) error {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	for _, m := range list.Models {
		if m.ID == c.model || strings.TrimSuffix(m.ID, ":latest") == c.model {
			return nil
		}
	}
	return fmt.Errorf("model %q not served by endpoint", c.model)
}

// SummarizeProgress asks the model for a short progress note on a student.
// reports should be oldest first.
func (c *Client) SummarizeProgress(ctx context.Context, student model.Student, reports []model.DailyReport) (string, error) {
	if len(reports) == 0 {
		return "", fmt.Errorf("no reports to summarise for %s", student.ID)
	}
	prompt, err := prompts.BuildSummaryPrompt(c.variant, student, reports)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: "Write the progress note now."},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug("LLM summary", "student_id", student.ID, "chars", len(text))
	if text == "" {
		return "", fmt.Errorf("LLM returned an empty summary")
	}
	return text, nil
}
