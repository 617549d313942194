// internal/llm/llm.go
package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Client generates repository summaries through a chat-completion endpoint.
type Client struct {
	client      *openai.Client
	model       string
	readmeLimit int
}

// NewClient configures a summarizer against an OpenAI-compatible endpoint.
// readmeLimit bounds how much README text is sent per request.
func NewClient(baseURL, apiKey, model string, readmeLimit int) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		readmeLimit: readmeLimit,
	}
}

const systemPrompt = `Using the repository's description and README, write a concise 100-200 word summary of what the project does and why it is notable. Return plain text only.`

// Summarize produces a short synopsis for one repository from its description
// and README text. The README is truncated to the configured limit.
func (c *Client) Summarize(ctx context.Context, fullName, description, readme string) (string, error) {
	if len(readme) > c.readmeLimit {
		readme = readme[:c.readmeLimit]
	}
	prompt := fmt.Sprintf("Repository: %s\nDescription: %s\n\n----\n<README>\n%s\n</README>", fullName, description, readme)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("LLM call for %s: %w", fullName, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned for %s", fullName)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
