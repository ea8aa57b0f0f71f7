// Package formatter renders raw chat message text into an HTML fragment by
// running it through a fixed, ordered sequence of pure text stages.
package formatter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

const (
	defaultLoadingImage = "/media/img/loading.gif"
	defaultRoomRoute    = "#!/room/"
	defaultEmoteSize    = 20
)

// Stage is one step of the pipeline. Apply must not modify the Context.
type Stage interface {
	Name() string
	Apply(text string, c *Context) (string, error)
}

// Formatter runs its stages in order, feeding each stage's output to the next.
type Formatter struct {
	stages []Stage
	logger zerolog.Logger
}

// Option configures a Formatter.
type Option func(*options)

type options struct {
	loadingImage string
	roomRoute    string
	emoteSize    int
	logger       zerolog.Logger
}

// WithLoadingImage sets the placeholder src used for embedded images.
func WithLoadingImage(src string) Option {
	return func(o *options) { o.loadingImage = src }
}

// WithRoomRoute sets the href prefix room links are rendered with.
func WithRoomRoute(prefix string) Option {
	return func(o *options) { o.roomRoute = prefix }
}

// WithDefaultEmoteSize sets the size of emotes that carry none.
func WithDefaultEmoteSize(px int) Option {
	return func(o *options) { o.emoteSize = px }
}

// WithLogger enables a debug trace of every stage.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a Formatter with the standard pipeline.
func New(opts ...Option) *Formatter {
	o := options{
		loadingImage: defaultLoadingImage,
		roomRoute:    defaultRoomRoute,
		emoteSize:    defaultEmoteSize,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return NewWithStages(o.logger,
		Trim{},
		MentionHighlighter{},
		RoomLinkResolver{Route: o.roomRoute},
		UploadLinkResolver{},
		MediaLinkDetector{LoadingImage: o.loadingImage},
		EmoteSubstituter{DefaultSize: o.emoteSize},
		CustomReplacer{},
	)
}

// NewWithStages creates a Formatter running exactly the given stages.
func NewWithStages(logger zerolog.Logger, stages ...Stage) *Formatter {
	return &Formatter{stages: stages, logger: logger}
}

// Stages returns the stage names in execution order.
func (f *Formatter) Stages() []string {
	names := make([]string, len(f.stages))
	for i, s := range f.stages {
		names[i] = s.Name()
	}
	return names
}

// Format renders text. A nil Context behaves as an empty one. The only failure
// is a replacement rule whose pattern does not compile; it aborts the call.
func (f *Formatter) Format(text string, c *Context) (string, error) {
	for _, s := range f.stages {
		out, err := s.Apply(text, c)
		if err != nil {
			return "", fmt.Errorf("stage %s: %w", s.Name(), err)
		}
		if out != text {
			f.logger.Debug().Str("stage", s.Name()).Int("in_len", len(text)).Int("out_len", len(out)).Msg("Stage rewrote message")
		}
		text = out
	}
	return text, nil
}

// replaceSubmatches replaces every match of re in text with repl(submatches).
func replaceSubmatches(re *regexp.Regexp, text string, repl func(groups []string) string) string {
	locs := re.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = text[loc[2*i]:loc[2*i+1]]
			}
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(repl(groups))
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
