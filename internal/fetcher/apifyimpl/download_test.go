package apifyimpl

import (
	"testing"

	"github.com/snapwatch/tiktok-monitor/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestExtensionOf(t *testing.T) {
	assert.Equal(t, ".jpg", extensionOf("https://cdn.example.com/a.jpg?sig=1"))
	assert.Equal(t, ".jpg", extensionOf("https://cdn.example.com/a.jpeg"))
	assert.Equal(t, ".jpg", extensionOf("https://cdn.example.com/a.webp"))
	assert.Equal(t, ".mp4", extensionOf("https://cdn.example.com/a?mime=video"))
}

func TestPostIDOf(t *testing.T) {
	assert.Equal(t, "123", postIDOf(domain.RawPost{"aweme_id": "123"}))
	assert.Equal(t, "456", postIDOf(domain.RawPost{"video_id": "456"}))
	assert.Equal(t, "123", postIDOf(domain.RawPost{"aweme_id": "123", "video_id": "456"}))
	assert.Equal(t, "unknown", postIDOf(domain.RawPost{}))
}
