package objstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreWritesAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8080/artifacts/")
	require.NoError(t, err)

	url, err := store.Upload(context.Background(), []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/artifacts/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	rel := strings.TrimPrefix(url, "http://localhost:8080/artifacts/")
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestLocalStoreRejectsEmptyUpload(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), nil, "image/png")
	assert.Error(t, err)
}

func TestDecodeDataURI(t *testing.T) {
	data, contentType, err := DecodeDataURI("data:image/png;base64,cG5nLWJ5dGVz")
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestDecodeDataURIPlainText(t *testing.T) {
	data, contentType, err := DecodeDataURI("data:,hello")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", contentType)
	assert.Equal(t, []byte("hello"), data)
}

func TestDecodeDataURIRejectsOtherSchemes(t *testing.T) {
	_, _, err := DecodeDataURI("https://example.com/x.png")
	assert.Error(t, err)
}

func TestExtensionFromContentType(t *testing.T) {
	assert.Equal(t, ".png", extensionFromContentType("image/png"))
	assert.Equal(t, ".mp3", extensionFromContentType("audio/mpeg"))
	assert.Equal(t, ".mp4", extensionFromContentType("video/mp4"))
	assert.Equal(t, ".bin", extensionFromContentType("application/x-unknown"))
}
