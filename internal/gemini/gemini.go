package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const model = "gemini-1.5-flash"

// Input guard against over-long prompts; callers already truncate harder.
const maxPromptRunes = 6000

type Client struct {
	client *genai.Client
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Summarize produces a three-line summary of news content. May fail or be
// slow; callers own retry, timeout and fallback policy.
func (c *Client) Summarize(ctx context.Context, content string) (string, error) {
	m := c.client.GenerativeModel(model)

	prompt := fmt.Sprintf(
		"Summarize the following news content in three concise lines, capturing the main points clearly. "+
			"Each line should be a key aspect or development. Avoid HTML tags or boilerplate text. "+
			"Return only the summary text, with lines separated by newlines.\n\n%s",
		sanitize(content))

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	var text string
	if t, ok := resp.Candidates[0].Content.Parts[0].(genai.Text); ok {
		text = string(t)
	} else {
		text = fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty summary from Gemini")
	}
	return text, nil
}

// sanitize collapses whitespace and limits prompt size, cutting on a rune
// boundary and preferring a sentence end.
func sanitize(content string) string {
	content = strings.ReplaceAll(content, "\r", "")
	content = strings.Join(strings.Fields(content), " ")

	if utf8.RuneCountInString(content) <= maxPromptRunes {
		return content
	}

	runes := []rune(content)
	trimmed := string(runes[:maxPromptRunes])
	if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed + "\n[TRUNCATED]"
}
