package formatter

import (
	"html"
	"regexp"
	"strings"
)

const (
	urlBody  = `(?:https?|ftp)://[-A-Z0-9+&@#/%?=~_|!:,.;'"!()]*[-A-Z0-9+&@#/%=~_|]`
	wholeURL = `(?i)^\s*(` + urlBody + `[.]({ext}))\s*$`
)

var (
	imagePattern = regexp.MustCompile(strings.Replace(wholeURL, "{ext}", `jpe?g|png|gif`, 1))
	videoPattern = regexp.MustCompile(strings.Replace(wholeURL, "{ext}", `webm|mp4`, 1))
	audioPattern = regexp.MustCompile(strings.Replace(wholeURL, "{ext}", `mp3|wav|ogg`, 1))
	linkPattern  = regexp.MustCompile(`(?i)(?:https?|ftp)://[-A-Z0-9+&*@#/%?=~_|!:,.;'"!()]*[-A-Z0-9+&@#/%=~_|]`)
)

var audioTypes = map[string]string{
	"mp3": "audio/mpeg",
	"wav": "audio/wav",
	"ogg": "audio/ogg",
}

// MediaLinkDetector embeds a message that is a lone image, video or audio URL,
// and otherwise linkifies every URL in it. Exactly one branch runs.
type MediaLinkDetector struct {
	LoadingImage string
}

func (MediaLinkDetector) Name() string { return "media" }

func (d MediaLinkDetector) Apply(text string, _ *Context) (string, error) {
	if m := imagePattern.FindStringSubmatch(text); m != nil {
		loading := d.LoadingImage
		if loading == "" {
			loading = defaultLoadingImage
		}
		uri := encodeURI(html.UnescapeString(m[1]))
		return `<a class="thumbnail" href="` + uri + `" target="_blank"><img data-src="` + uri +
			`" src="` + loading + `" alt="Pasted Image" /></a>`, nil
	}
	if m := videoPattern.FindStringSubmatch(text); m != nil {
		uri := encodeURI(html.UnescapeString(m[1]))
		return `<video controls loop preload="metadata" style="width: auto; max-height: 420px;"><source src="` +
			uri + `"></video>`, nil
	}
	if m := audioPattern.FindStringSubmatch(text); m != nil {
		uri := encodeURI(html.UnescapeString(m[1]))
		return `<audio controls preload="metadata"><source src="` + uri + `" type="` +
			audioTypes[strings.ToLower(m[2])] + `"></audio>`, nil
	}
	return linkPattern.ReplaceAllStringFunc(text, func(u string) string {
		return `<a href="` + encodeURI(html.UnescapeString(u)) + `" target="_blank">` + u + `</a>`
	}), nil
}

const hexDigits = "0123456789ABCDEF"

// encodeURI percent-encodes every byte outside the URI reserved and unreserved
// sets. Existing %XX escapes are kept, anything else that could break out of a
// double-quoted attribute is encoded.
func encodeURI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(c)
		case isWordByte(c) || strings.IndexByte(";,/?:@&=+$-.!~*'()#", c) >= 0:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0x0f])
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
