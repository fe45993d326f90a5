package slackimpl

import (
	"fmt"

	"github.com/snapwatch/tiktok-monitor/internal/domain"
	"github.com/snapwatch/tiktok-monitor/pkg/formatter"
)

const transcriptLimit = 500

type textObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type block struct {
	Type   string       `json:"type"`
	Text   *textObject  `json:"text,omitempty"`
	Fields []textObject `json:"fields,omitempty"`
}

type message struct {
	Blocks []block `json:"blocks"`
	Text   string  `json:"text"`
}

// buildMessage renders the Block Kit alert for one new video.
func buildMessage(post domain.Post) message {
	blocks := []block{
		{
			Type: "header",
			Text: &textObject{
				Type: "plain_text",
				Text: fmt.Sprintf("🎬 New TikTok video: @%s", post.Author),
			},
		},
		{
			Type: "section",
			Fields: []textObject{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Published:*\n%s", post.PublishedAt)},
			},
		},
	}

	if len(post.Hashtags) > 0 {
		blocks[1].Fields = append(blocks[1].Fields, textObject{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*Hashtags:*\n%s", formatter.EscapeSlackText(formatter.JoinHashtags(post.Hashtags))),
		})
	}

	if post.Caption != "" {
		blocks = append(blocks, block{
			Type: "section",
			Text: &textObject{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*Caption:*\n%s", formatter.EscapeSlackText(post.Caption)),
			},
		})
	}

	transcript := "Not available"
	if post.Transcript != "" {
		transcript = formatter.TruncateRunes(formatter.EscapeSlackText(post.Transcript), transcriptLimit)
	}
	blocks = append(blocks, block{
		Type: "section",
		Text: &textObject{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*Transcript:*\n%s", transcript),
		},
	})

	urlText := fmt.Sprintf("*TikTok:* <%s|View on TikTok>\n", post.SourceURL)
	if post.ArchiveURL != "" {
		urlText += fmt.Sprintf("*Internal video:* <%s|View on Google Drive>", post.ArchiveURL)
	} else {
		urlText += "*Internal video:* Video download not permitted; sharing TikTok link instead."
	}
	blocks = append(blocks, block{
		Type: "section",
		Text: &textObject{Type: "mrkdwn", Text: urlText},
	})

	blocks = append(blocks, block{Type: "divider"})

	return message{
		Blocks: blocks,
		Text:   fmt.Sprintf("New TikTok video from @%s", post.Author),
	}
}
