// Package objstore stores generated artifact bytes and hands back public URLs.
package objstore

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/musegen/muse-server/internal/config"
)

// Store uploads artifact bytes and returns a publicly resolvable URL.
type Store interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// New picks the backend from config.
func New(cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Store(cfg.S3)
	case "local":
		return NewLocalStore(cfg.Local.Dir, cfg.Local.BaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// DecodeDataURI splits a data URI into raw bytes and content type. Clients
// upload avatars and reference images this way.
func DecodeDataURI(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, "", fmt.Errorf("not a data URI")
	}
	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URI")
	}
	contentType := meta
	base64Encoded := false
	if strings.HasSuffix(meta, ";base64") {
		contentType = strings.TrimSuffix(meta, ";base64")
		base64Encoded = true
	}
	if contentType == "" {
		contentType = "text/plain"
	}
	if !base64Encoded {
		return []byte(payload), contentType, nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data URI: %w", err)
	}
	return data, contentType, nil
}

func extensionFromContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav":
		return ".wav"
	case "video/mp4":
		return ".mp4"
	case "text/plain":
		return ".txt"
	default:
		return ".bin"
	}
}
