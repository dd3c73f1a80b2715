package genapi

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

type storyRequest struct {
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

type storyResponse struct {
	Text string `json:"text"`
}

// GenerateStory produces a text story for the prompt.
func (c *Client) GenerateStory(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug("submitting story request", zap.String("model", c.storyModel))
	body, err := c.doPost(ctx, "/"+c.storyModel, storyRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("story generation failed: %w", err)
	}

	var resp storyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal story response: %w, body: %s", err, string(body))
	}
	if resp.Text == "" {
		return "", fmt.Errorf("empty story in response: %s", string(body))
	}
	return resp.Text, nil
}
