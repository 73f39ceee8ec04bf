package news

import (
	"strings"
	"time"
)

const (
	displayLayout  = "Jan 02, 2006 15:04"
	descriptionCap = 150
)

// DisplayDate renders an RFC 3339 timestamp for the news panel and
// returns raw unchanged when it does not parse.
func DisplayDate(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Format(displayLayout)
}

// ShortDescription cuts d to the panel width. Any non-empty description
// gets a trailing ellipsis.
func ShortDescription(d string) string {
	if d == "" {
		return ""
	}
	r := []rune(d)
	if len(r) > descriptionCap {
		r = r[:descriptionCap]
	}
	return string(r) + "..."
}

// Match keeps items whose lower-cased title or description contains any
// whitespace token of text, in feed order, up to limit.
func Match(items []Item, text string, limit int) []Item {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 || limit <= 0 {
		return nil
	}
	var out []Item
	for _, it := range items {
		title := strings.ToLower(it.Title)
		desc := strings.ToLower(it.Description)
		for _, tok := range tokens {
			if strings.Contains(title, tok) || strings.Contains(desc, tok) {
				out = append(out, it)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out
}
