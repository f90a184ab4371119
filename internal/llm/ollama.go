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

// Ollama talks to a local Ollama server's /api/chat endpoint.
type Ollama struct {
	Model   string
	BaseURL string
	client  *http.Client
}

// NewOllama returns an Ollama client.
func NewOllama(model, baseURL string, client *http.Client) *Ollama {
	if client == nil {
		client = http.DefaultClient
	}
	return &Ollama{Model: model, BaseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Chat sends the conversation and returns the assistant's reply.
func (o *Ollama) Chat(ctx context.Context, system string, messages []models.Message, opts Options) (string, error) {
	body := map[string]any{
		"model":    o.Model,
		"messages": conversation(system, messages),
		"stream":   false,
		"options": map[string]any{
			"num_predict": opts.MaxTokens,
			"temperature": opts.Temperature,
		},
	}
	if opts.JSON {
		body["format"] = "json"
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("llm: ollama returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if strings.TrimSpace(result.Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return result.Message.Content, nil
}
