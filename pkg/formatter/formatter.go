package formatter

import "strings"

// TruncateRunes cuts s to at most limit runes, appending "..." when anything
// was dropped.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// JoinHashtags renders tag names as a "#a #b #c" line.
func JoinHashtags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, tag := range tags {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('#')
		sb.WriteString(tag)
	}
	return sb.String()
}

// EscapeSlackText escapes the three characters Slack requires escaping in
// message text.
func EscapeSlackText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
