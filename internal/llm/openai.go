package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/starford/vetbridge/internal/models"
)

const defaultOpenAIURL = "https://api.openai.com/v1"

// OpenAI talks to an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	Model   string
	BaseURL string
	apiKey  string
	client  *http.Client
}

// NewOpenAI returns an OpenAI client. An empty baseURL selects the public API.
func NewOpenAI(model, baseURL, apiKey string, client *http.Client) *OpenAI {
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAI{Model: model, BaseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client}
}

// Chat sends the conversation and returns the first choice.
func (o *OpenAI) Chat(ctx context.Context, system string, messages []models.Message, opts Options) (string, error) {
	body := map[string]any{
		"model":       o.Model,
		"messages":    conversation(system, messages),
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		body["max_tokens"] = opts.MaxTokens
	}
	if opts.JSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("llm: openai returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return result.Choices[0].Message.Content, nil
}
