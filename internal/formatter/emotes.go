package formatter

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

var emotePattern = regexp.MustCompile(`(?i)\B(:[a-z0-9_+\-]+:?)`)

// EmoteSubstituter replaces :key: tokens of catalogued emotes with images.
type EmoteSubstituter struct {
	DefaultSize int
}

func (EmoteSubstituter) Name() string { return "emotes" }

func (s EmoteSubstituter) Apply(text string, c *Context) (string, error) {
	return replaceSubmatches(emotePattern, text, func(g []string) string {
		key := strings.Split(g[1], ":")[1]
		emote, ok := c.Emote(key)
		if !ok {
			return g[0]
		}
		size := emote.Size
		if size <= 0 {
			size = s.DefaultSize
		}
		if size <= 0 {
			size = defaultEmoteSize
		}
		name := html.EscapeString(":" + emote.Key + ":")
		px := html.EscapeString(strconv.Itoa(size))
		return `<img class="emote" src="` + html.EscapeString(emote.ImageURL) + `" title="` + name +
			`" alt="` + name + `" width="` + px + `" height="` + px + `" />`
	}), nil
}

// CustomReplacer applies the context's replacement rules in order, each rule
// seeing the output of the previous one.
type CustomReplacer struct{}

func (CustomReplacer) Name() string { return "replacements" }

func (CustomReplacer) Apply(text string, c *Context) (string, error) {
	if c == nil {
		return text, nil
	}
	for _, r := range c.rules {
		if r.err != nil {
			return "", r.err
		}
		text = r.re.ReplaceAllString(text, r.template)
	}
	return text, nil
}
