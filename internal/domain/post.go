package domain

import "time"

// Post is the persisted record of one processed TikTok video.
//
// PublishedAt stays a string: the source timestamp is epoch seconds when we
// are lucky and an arbitrary value when we are not, and the original value
// must survive round-trips. ISO-8601 strings order correctly either way.
type Post struct {
	ID          int64
	PostID      string
	Author      string
	PublishedAt string
	SourceURL   string
	Caption     string
	Transcript  string
	Hashtags    []string
	ArchiveURL  string
	IngestedAt  time.Time
	Notified    bool
}
