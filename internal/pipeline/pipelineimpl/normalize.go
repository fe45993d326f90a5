package pipelineimpl

import (
	"fmt"
	"strings"
	"time"

	"github.com/snapwatch/tiktok-monitor/internal/domain"
)

// UnknownPostID is the sentinel used when an item carries neither of the
// actor's ID fields. Records with this ID all dedup against each other, so
// the pipeline logs loudly whenever it shows up.
const UnknownPostID = "unknown"

// normalizeMetadata maps one raw actor item onto the record fields. Pure
// function, no I/O; now supplies the fetch-time fallback timestamp.
func normalizeMetadata(username string, raw domain.RawPost, now time.Time) domain.Post {
	postID := raw.StringVal("aweme_id")
	if postID == "" {
		postID = raw.StringVal("video_id")
	}
	if postID == "" {
		postID = UnknownPostID
	}

	sourceURL := fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", username, postID)
	if base := raw.StringVal("video_url_base"); base != "" {
		sourceURL = base
	}

	caption := raw.StringVal("desc")
	if caption == "" {
		caption = raw.StringVal("title")
	}

	textExtra := raw.Maps("text_extra")
	hashtags := extractHashtags(textExtra)

	transcript := raw.StringVal("subtitles")
	if transcript == "" && len(hashtags) > 0 {
		transcript = strings.Join(hashtags, " ")
	}

	return domain.Post{
		PostID:      postID,
		Author:      username,
		PublishedAt: normalizePublishedAt(raw, now),
		SourceURL:   sourceURL,
		Caption:     caption,
		Transcript:  transcript,
		Hashtags:    hashtags,
	}
}

// extractHashtags collects hashtag names from the text_extra annotations in
// order, dropping duplicates and empties. The result is never nil: the
// hashtags column is NOT NULL and a nil slice would reach it as SQL NULL.
func extractHashtags(textExtra []domain.RawPost) []string {
	tags := []string{}
	seen := make(map[string]struct{})
	for _, item := range textExtra {
		name := item.StringVal("hashtag_name")
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		tags = append(tags, name)
	}
	return tags
}

// normalizePublishedAt converts create_time from epoch seconds to ISO-8601.
// A present but unparseable value is stringified as-is; an absent or zero
// value falls back to the fetch time.
func normalizePublishedAt(raw domain.RawPost, now time.Time) string {
	v, present := raw["create_time"]
	if !present || v == nil || v == "" {
		return now.UTC().Format(time.RFC3339)
	}

	if epoch, ok := raw.Int64Val("create_time"); ok {
		if epoch == 0 {
			return now.UTC().Format(time.RFC3339)
		}
		if epoch > 0 {
			return time.Unix(epoch, 0).UTC().Format(time.RFC3339)
		}
	}

	return fmt.Sprint(v)
}
