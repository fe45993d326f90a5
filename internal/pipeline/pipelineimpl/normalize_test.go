package pipelineimpl

import (
	"testing"
	"time"

	"github.com/snapwatch/tiktok-monitor/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeMetadataIDFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		raw  domain.RawPost
		want string
	}{
		{"aweme_id wins", domain.RawPost{"aweme_id": "111", "video_id": "222"}, "111"},
		{"video_id fallback", domain.RawPost{"video_id": "222"}, "222"},
		{"numeric aweme_id", domain.RawPost{"aweme_id": float64(7345)}, "7345"},
		{"nothing usable", domain.RawPost{"desc": "hi"}, UnknownPostID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeMetadata("alice", tt.raw, fixedNow)
			assert.Equal(t, tt.want, got.PostID)
		})
	}
}

func TestNormalizeMetadataSourceURL(t *testing.T) {
	got := normalizeMetadata("alice", domain.RawPost{"aweme_id": "99"}, fixedNow)
	assert.Equal(t, "https://www.tiktok.com/@alice/video/99", got.SourceURL)

	got = normalizeMetadata("alice", domain.RawPost{
		"aweme_id":       "99",
		"video_url_base": "https://vt.tiktok.com/ZS99",
	}, fixedNow)
	assert.Equal(t, "https://vt.tiktok.com/ZS99", got.SourceURL)
}

func TestNormalizeMetadataCaptionFallsBackToTitle(t *testing.T) {
	got := normalizeMetadata("alice", domain.RawPost{"desc": "first choice", "title": "second"}, fixedNow)
	assert.Equal(t, "first choice", got.Caption)

	got = normalizeMetadata("alice", domain.RawPost{"title": "second"}, fixedNow)
	assert.Equal(t, "second", got.Caption)
}

func TestNormalizeMetadataHashtagsAndTranscript(t *testing.T) {
	raw := domain.RawPost{
		"aweme_id": "1",
		"text_extra": []any{
			map[string]any{"hashtag_name": "fyp"},
			map[string]any{"hashtag_name": ""},
			map[string]any{"hashtag_name": "dance"},
			map[string]any{"hashtag_name": "fyp"},
		},
	}

	got := normalizeMetadata("alice", raw, fixedNow)
	assert.Equal(t, []string{"fyp", "dance"}, got.Hashtags)
	// No subtitles, so the hashtags stand in for the transcript.
	assert.Equal(t, "fyp dance", got.Transcript)

	raw["subtitles"] = "spoken words"
	got = normalizeMetadata("alice", raw, fixedNow)
	assert.Equal(t, "spoken words", got.Transcript)
}

func TestNormalizeMetadataNoHashtagsYieldsEmptySlice(t *testing.T) {
	got := normalizeMetadata("alice", domain.RawPost{"aweme_id": "1"}, fixedNow)

	// An empty slice, never nil: nil would reach the NOT NULL hashtags
	// column as SQL NULL and fail the insert.
	assert.NotNil(t, got.Hashtags)
	assert.Empty(t, got.Hashtags)
}

func TestNormalizePublishedAt(t *testing.T) {
	tests := []struct {
		name string
		raw  domain.RawPost
		want string
	}{
		{"epoch float", domain.RawPost{"create_time": float64(1700000000)}, "2023-11-14T22:13:20Z"},
		{"epoch string", domain.RawPost{"create_time": "1700000000"}, "2023-11-14T22:13:20Z"},
		{"unparseable string kept raw", domain.RawPost{"create_time": "soonish"}, "soonish"},
		{"zero epoch uses fetch time", domain.RawPost{"create_time": float64(0)}, fixedNow.Format(time.RFC3339)},
		{"zero epoch string uses fetch time", domain.RawPost{"create_time": "0"}, fixedNow.Format(time.RFC3339)},
		{"absent uses fetch time", domain.RawPost{}, fixedNow.Format(time.RFC3339)},
		{"nil uses fetch time", domain.RawPost{"create_time": nil}, fixedNow.Format(time.RFC3339)},
		{"empty uses fetch time", domain.RawPost{"create_time": ""}, fixedNow.Format(time.RFC3339)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePublishedAt(tt.raw, fixedNow))
		})
	}
}
