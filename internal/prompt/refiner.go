// Package prompt refines inpainting prompts through an OpenAI-compatible
// chat endpoint (OpenAI itself or a local Ollama).
package prompt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are an expert Stable Diffusion prompt engineer for interior design.
Rewrite the user's short description of an object into a detailed inpainting prompt.
Keep the object the user asked for. Add material, lighting and quality boosters (photorealistic, 8k).
Respond with JSON only: {"optimized_prompt": "..."}`

// Options configures a Refiner.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
}

type Refiner struct {
	client *openai.Client
	model  string
}

func NewRefiner(opts Options) *Refiner {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	model := opts.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Refiner{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Refine returns a more detailed version of prompt.
func (r *Refiner) Refine(ctx context.Context, prompt string) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("refine prompt: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("refine prompt: empty response")
	}
	return parseRefined(resp.Choices[0].Message.Content)
}

// parseRefined accepts the JSON shape asked for, optionally inside a code
// fence, and falls back to plain text.
func parseRefined(content string) (string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "{") {
		var out struct {
			OptimizedPrompt string `json:"optimized_prompt"`
		}
		if err := json.Unmarshal([]byte(content), &out); err != nil {
			return "", fmt.Errorf("refine prompt: decode: %w", err)
		}
		content = strings.TrimSpace(out.OptimizedPrompt)
	}
	if content == "" {
		return "", errors.New("refine prompt: empty prompt")
	}
	return content, nil
}
