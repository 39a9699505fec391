// Package ai calls an OpenAI-compatible chat completion endpoint to
// generate example sentences for saved entries.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single chat completion round-trip; a call
// exceeding it is treated as failed.
const DefaultTimeout = 15 * time.Second

// Client is a thin chat-completions client. The base URL is
// configurable so a self-hosted proxy can stand in for the vendor API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient creates a chat client for the given endpoint and model.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateExample asks the model for one short example sentence that
// naturally uses the word in the sense of the given definition.
func (c *Client) GenerateExample(ctx context.Context, word, definition string) (string, error) {
	prompt := fmt.Sprintf(
		"Write one short, natural English example sentence using the word %q in the sense of: %s. Reply with the sentence only.",
		word, definition,
	)

	reply, err := c.complete(ctx, 100, []chatMessage{
		{Role: "system", Content: "You are an assistant helping English learners. You write clear, everyday example sentences."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(reply), `"`), nil
}

// AnalyzeSentence asks the model to coach the learner through the
// sentence: the mistranslation a learner is likely to produce, where
// the two languages' thinking diverges, a reusable pattern extracted
// from the sentence and two fresh examples built on that pattern.
func (c *Client) AnalyzeSentence(ctx context.Context, sentence string) (string, error) {
	prompt := fmt.Sprintf(
		"Analyze this English sentence for a learner: %q. Answer in four short sections: "+
			"1. the mistranslation a learner would most likely produce, "+
			"2. where their native-language thinking diverges from English here, "+
			"3. a reusable pattern template extracted from the sentence (like: Subject + spend + [Time] + doing...), "+
			"4. two new everyday example sentences built on that pattern.",
		sentence,
	)

	reply, err := c.complete(ctx, 600, []chatMessage{
		{Role: "system", Content: "You are an assistant coaching English learners. You explain grammar through contrast and patterns, not rules."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (c *Client) complete(ctx context.Context, maxTokens int, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if cr.Error != nil {
		return "", fmt.Errorf("chat completion failed: %s", cr.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return cr.Choices[0].Message.Content, nil
}
