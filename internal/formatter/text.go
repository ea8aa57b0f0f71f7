package formatter

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

// Trim removes leading and trailing whitespace, including byte order marks.
type Trim struct{}

func (Trim) Name() string { return "trim" }

func (Trim) Apply(text string, _ *Context) (string, error) {
	return strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	}), nil
}

// mentionCandidate is shortened per match until it ends on a word boundary
// that is not followed by '@', so "user@host" never yields a mention.
var mentionCandidate = regexp.MustCompile(`\B@[\w.]+`)

// MentionHighlighter wraps @name tokens in <strong>.
type MentionHighlighter struct{}

func (MentionHighlighter) Name() string { return "mentions" }

func (MentionHighlighter) Apply(text string, _ *Context) (string, error) {
	locs := mentionCandidate.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text, nil
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		if loc[0] > 0 && text[loc[0]-1] == '@' {
			continue
		}
		end := mentionEnd(text, loc[0], loc[1])
		if end < 0 {
			continue
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString("<strong>")
		b.WriteString(text[loc[0]:end])
		b.WriteString("</strong>")
		last = end
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

// mentionEnd returns the longest end in (start+1, hi] at a word boundary not
// followed by '@', or -1.
func mentionEnd(text string, start, hi int) int {
	for end := hi; end > start+1; end-- {
		if end < len(text) && text[end] == '@' {
			continue
		}
		if isWordByte(text[end-1]) != (end < len(text) && isWordByte(text[end])) {
			return end
		}
	}
	return -1
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

var roomPattern = regexp.MustCompile(`\B#([a-z0-9_]+)\b`)

// RoomLinkResolver turns #slug tokens of known rooms into join links.
type RoomLinkResolver struct {
	Route string
}

func (RoomLinkResolver) Name() string { return "rooms" }

func (r RoomLinkResolver) Apply(text string, c *Context) (string, error) {
	if !c.HasRooms() {
		return text, nil
	}
	route := r.Route
	if route == "" {
		route = defaultRoomRoute
	}
	return replaceSubmatches(roomPattern, text, func(g []string) string {
		room, ok := c.Room(g[1])
		if !ok {
			return g[0]
		}
		return `<a href="` + route + html.EscapeString(room.ID) + `">&#35;` + g[1] + `</a>`
	}), nil
}

var uploadPattern = regexp.MustCompile(`(?i)^\s*(upload://[-A-Z0-9+&*@#/%?=~_|!:,.;'"!()]*)\s*$`)

// UploadLinkResolver rewrites a message consisting of a single upload://
// reference into an absolute URL under the page's base URL.
type UploadLinkResolver struct{}

func (UploadLinkResolver) Name() string { return "uploads" }

func (UploadLinkResolver) Apply(text string, c *Context) (string, error) {
	m := uploadPattern.FindStringSubmatch(text)
	if m == nil {
		return text, nil
	}
	return c.Location().BaseURL() + m[1][len("upload://"):], nil
}
