package genapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

type speechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

type speechResponse struct {
	Audio struct {
		Data        string `json:"data"` // base64
		ContentType string `json:"content_type"`
	} `json:"audio"`
}

// SynthesizeSpeech turns text into audio bytes.
func (c *Client) SynthesizeSpeech(ctx context.Context, text, voice string) ([]byte, string, error) {
	c.logger.Debug("submitting speech request", zap.String("model", c.speechModel), zap.Int("chars", len(text)))
	body, err := c.doPost(ctx, "/"+c.speechModel, speechRequest{Text: text, Voice: voice})
	if err != nil {
		return nil, "", fmt.Errorf("speech synthesis failed: %w", err)
	}

	var resp speechResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal speech response: %w, body: %s", err, string(body))
	}
	if resp.Audio.Data == "" {
		return nil, "", fmt.Errorf("no audio in speech response: %s", string(body))
	}

	data, err := base64.StdEncoding.DecodeString(resp.Audio.Data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode audio data: %w", err)
	}
	contentType := resp.Audio.ContentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return data, contentType, nil
}
