package formatter

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidPattern is returned when a custom replacement pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid replacement pattern")

// Room is an entry of the room directory.
type Room struct {
	ID   string
	Slug string
}

// Emote is an entry of the emote catalog. A zero Size means the default size.
type Emote struct {
	Key      string
	ImageURL string
	Size     int
}

// ReplacementRule is an operator-defined, case-insensitive substitution.
type ReplacementRule struct {
	Pattern  string
	Template string
}

// Location is the page the message is displayed on.
type Location struct {
	Origin string // scheme://host[:port]
	Path   string
}

// ParseLocation splits an absolute page URL into its origin and path.
func ParseLocation(rawURL string) (Location, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Location{}, fmt.Errorf("parsing location %q: %w", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Location{}, fmt.Errorf("location %q is not an absolute URL", rawURL)
	}
	return Location{Origin: u.Scheme + "://" + u.Host, Path: u.EscapedPath()}, nil
}

// BaseURL drops the last non-empty path segment and returns origin + remaining
// segments with a trailing slash.
func (l Location) BaseURL() string {
	var parts []string
	for _, p := range strings.Split(l.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		parts = parts[:len(parts)-1]
	}
	base := l.Origin
	if len(parts) > 0 {
		base += "/" + strings.Join(parts, "/")
	}
	return base + "/"
}

type compiledRule struct {
	re       *regexp.Regexp
	template string
	err      error
}

// Context is the read-only data a formatting call consults. Build it with
// NewContext; it is safe for concurrent use.
type Context struct {
	rooms    map[string]Room
	emotes   map[string]Emote
	rules    []compiledRule
	location Location
}

// NewContext indexes rooms by slug and emotes by key and compiles the
// replacement rules. The first entry wins when slugs or keys repeat. A nil
// rooms slice disables room linking. Rules that fail to compile are kept and
// reported when the replacement stage runs.
func NewContext(rooms []Room, emotes []Emote, rules []ReplacementRule, loc Location) *Context {
	c := &Context{
		emotes:   make(map[string]Emote, len(emotes)),
		rules:    make([]compiledRule, 0, len(rules)),
		location: loc,
	}
	if rooms != nil {
		c.rooms = make(map[string]Room, len(rooms))
		for _, r := range rooms {
			if _, ok := c.rooms[r.Slug]; !ok {
				c.rooms[r.Slug] = r
			}
		}
	}
	for _, e := range emotes {
		if _, ok := c.emotes[e.Key]; !ok {
			c.emotes[e.Key] = e
		}
	}
	for i, r := range rules {
		re, err := CompilePattern(r.Pattern)
		if err != nil {
			err = fmt.Errorf("rule %d: %w", i, err)
		}
		groups := 0
		if re != nil {
			groups = re.NumSubexp()
		}
		c.rules = append(c.rules, compiledRule{re: re, template: ExpandTemplate(r.Template, groups), err: err})
	}
	return c
}

// WithLocation returns a Context sharing c's indexes but displayed at loc.
func (c *Context) WithLocation(loc Location) *Context {
	if c == nil {
		return &Context{location: loc}
	}
	cp := *c
	cp.location = loc
	return &cp
}

// Room looks up a room by exact slug.
func (c *Context) Room(slug string) (Room, bool) {
	if c == nil || c.rooms == nil {
		return Room{}, false
	}
	r, ok := c.rooms[slug]
	return r, ok
}

// HasRooms reports whether a room directory was supplied.
func (c *Context) HasRooms() bool {
	return c != nil && c.rooms != nil
}

// Emote looks up an emote by exact key.
func (c *Context) Emote(key string) (Emote, bool) {
	if c == nil {
		return Emote{}, false
	}
	e, ok := c.emotes[key]
	return e, ok
}

// Location returns the page location.
func (c *Context) Location() Location {
	if c == nil {
		return Location{}
	}
	return c.location
}

// CompilePattern compiles a replacement pattern the way the replacement stage
// applies it: case-insensitive, matching globally.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
	}
	return re, nil
}

// ExpandTemplate rewrites a replacement template into regexp.Expand syntax for
// a pattern with the given number of groups. "$&" is the whole match, "$$" a
// literal '$', and "$N" or "$NN" a group reference that takes two digits only
// when that group exists, so "$1cents" stays group 1 followed by "cents".
// "${N}" and "${name}" pass through. Any other '$' is literal.
func ExpandTemplate(template string, groups int) string {
	var b strings.Builder
	for i := 0; i < len(template); i++ {
		ch := template[i]
		if ch != '$' || i+1 == len(template) {
			if ch == '$' {
				b.WriteString("$$")
			} else {
				b.WriteByte(ch)
			}
			continue
		}
		next := template[i+1]
		switch {
		case next == '$':
			b.WriteString("$$")
			i++
		case next == '&':
			b.WriteString("${0}")
			i++
		case next == '{':
			if end := strings.IndexByte(template[i:], '}'); end > 0 {
				b.WriteString(template[i : i+end+1])
				i += end
			} else {
				b.WriteString("$$")
			}
		case isDigit(next):
			n := int(next - '0')
			width := 1
			if i+2 < len(template) && isDigit(template[i+2]) {
				if nn := n*10 + int(template[i+2]-'0'); nn >= 1 && nn <= groups {
					n, width = nn, 2
				}
			}
			if n < 1 || n > groups {
				b.WriteString("$$")
				continue
			}
			fmt.Fprintf(&b, "${%d}", n)
			i += width
		default:
			b.WriteString("$$")
		}
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
