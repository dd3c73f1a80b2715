package genapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

type imageRequest struct {
	Prompt       string `json:"prompt"`
	ImageSize    string `json:"image_size,omitempty"`
	NumImages    int    `json:"num_images,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`
}

type imageResponse struct {
	Images []struct {
		Data        string `json:"data"` // base64
		ContentType string `json:"content_type"`
	} `json:"images"`
}

// GenerateAvatar renders one avatar image and returns its raw bytes.
func (c *Client) GenerateAvatar(ctx context.Context, prompt, size string) ([]byte, string, error) {
	c.logger.Debug("submitting avatar request", zap.String("model", c.avatarModel))
	payload := imageRequest{
		Prompt:       prompt,
		ImageSize:    size,
		NumImages:    1,
		OutputFormat: "jpeg",
	}
	body, err := c.doPost(ctx, "/"+c.avatarModel, payload)
	if err != nil {
		return nil, "", fmt.Errorf("avatar generation failed: %w", err)
	}

	var resp imageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal avatar response: %w, body: %s", err, string(body))
	}
	if len(resp.Images) == 0 {
		return nil, "", fmt.Errorf("no image in avatar response: %s", string(body))
	}

	img := resp.Images[0]
	data, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode avatar image data: %w", err)
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}
