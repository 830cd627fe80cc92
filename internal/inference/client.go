package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"webshot/internal/log"
)

// Message is one role-tagged chat message. Content is either a plain string
// or a slice of Part values mixing text and inline image data.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// Part is one element of a mixed-content message.
type Part struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// Text builds a plain text message.
func Text(role, text string) Message {
	return Message{Role: role, Content: text}
}

// ImagePrompt builds a user message pairing a caption with an inline
// base64-encoded PNG.
func ImagePrompt(caption, imageBase64 string) Message {
	return Message{
		Role: "user",
		Content: []Part{
			{Type: "text", Text: caption},
			{Type: "image_url", ImageURL: &ImageURL{URL: "data:image/png;base64," + imageBase64}},
		},
	}
}

// Options carry the fixed sampling parameters for every completion request.
// TopK is a provider extension field outside the standard completion schema.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	opts       Options
	httpClient *http.Client
}

func New(opts Options) *Client {
	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type completionRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
	TopK        int       `json:"top_k"`
	Messages    []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat request and returns the completion text.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model:       c.opts.Model,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
		TopP:        c.opts.TopP,
		TopK:        c.opts.TopK,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	endpoint := strings.TrimSuffix(c.opts.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Logger.Error("completion request failed",
			zap.String("model", c.opts.Model),
			zap.Error(err),
		)
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Logger.Error("completion endpoint returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("model", c.opts.Model),
		)
		return "", fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	log.Logger.Info("completion finished",
		zap.String("model", c.opts.Model),
		zap.Duration("duration", time.Since(start)),
	)
	return parsed.Choices[0].Message.Content, nil
}
