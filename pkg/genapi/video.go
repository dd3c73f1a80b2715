package genapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Video generation runs as a queued long-running operation: submit, poll the
// status endpoint, then fetch the result. The poll loop is bounded by the
// caller's context deadline.

type videoRequest struct {
	Prompt string `json:"prompt"`
}

type submitResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

type statusResponse struct {
	Status string `json:"status"` // IN_QUEUE, IN_PROGRESS, COMPLETED, FAILED
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type videoResultResponse struct {
	Video struct {
		URL         string `json:"url"`
		ContentType string `json:"content_type"`
	} `json:"video"`
}

// SubmitVideo queues a video generation and returns the request id.
func (c *Client) SubmitVideo(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug("submitting video request", zap.String("model", c.videoModel))
	body, err := c.doPost(ctx, "/"+c.videoModel, videoRequest{Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("video submission failed: %w", err)
	}

	var resp submitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal submission response: %w, body: %s", err, string(body))
	}
	if resp.RequestID == "" {
		return "", fmt.Errorf("request_id not found in submission response: %s", string(body))
	}
	return resp.RequestID, nil
}

func (c *Client) videoStatus(ctx context.Context, requestID string) (*statusResponse, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("%s/%s/requests/%s/status", c.baseURL, c.videoModel, requestID))
	if err != nil {
		return nil, err
	}
	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status response: %w, body: %s", err, string(body))
	}
	return &resp, nil
}

func (c *Client) videoResult(ctx context.Context, requestID string) ([]byte, string, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("%s/%s/requests/%s", c.baseURL, c.videoModel, requestID))
	if err != nil {
		return nil, "", err
	}
	var resp videoResultResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal video result: %w, body: %s", err, string(body))
	}
	if resp.Video.URL == "" {
		return nil, "", fmt.Errorf("no video url in result: %s", string(body))
	}
	data, contentType, err := c.download(ctx, resp.Video.URL)
	if err != nil {
		return nil, "", err
	}
	if resp.Video.ContentType != "" {
		contentType = resp.Video.ContentType
	}
	if contentType == "" {
		contentType = "video/mp4"
	}
	return data, contentType, nil
}

// PollVideo polls until the operation completes, then downloads the result.
func (c *Client) PollVideo(ctx context.Context, requestID string, pollInterval time.Duration) ([]byte, string, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, "", fmt.Errorf("polling timed out for request %s: %w", requestID, ctx.Err())
		case <-ticker.C:
			status, err := c.videoStatus(ctx, requestID)
			if err != nil {
				return nil, "", fmt.Errorf("error polling status for %s: %w", requestID, err)
			}

			c.logger.Debug("polling video status", zap.String("request_id", requestID), zap.String("status", status.Status))

			switch status.Status {
			case "COMPLETED":
				return c.videoResult(ctx, requestID)
			case "FAILED":
				if status.Error != nil {
					return nil, "", fmt.Errorf("video generation failed: %s (request_id: %s)", status.Error.Message, requestID)
				}
				return nil, "", fmt.Errorf("video generation failed (request_id: %s)", requestID)
			case "IN_PROGRESS", "IN_QUEUE":
				continue
			default:
				return nil, "", fmt.Errorf("unknown status %q for request %s", status.Status, requestID)
			}
		}
	}
}

// GenerateVideo runs the full submit/poll/download lifecycle.
func (c *Client) GenerateVideo(ctx context.Context, prompt string, pollInterval time.Duration) ([]byte, string, error) {
	requestID, err := c.SubmitVideo(ctx, prompt)
	if err != nil {
		return nil, "", err
	}
	return c.PollVideo(ctx, requestID, pollInterval)
}
