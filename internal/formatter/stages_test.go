package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stageCase struct {
	name string
	in   string
	want string
}

func runStage(t *testing.T, s Stage, c *Context, cases []stageCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.Apply(tc.in, c)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMentionHighlighter(t *testing.T) {
	runStage(t, MentionHighlighter{}, nil, []stageCase{
		{"simple", "@alice hi", "<strong>@alice</strong> hi"},
		{"email untouched", "a@b.com", "a@b.com"},
		{"dotted name", "hey @alice.smith!", "hey <strong>@alice.smith</strong>!"},
		{"trailing dot dropped", "ping @alice.", "ping <strong>@alice</strong>."},
		{"followed by at", "@bob@host", "@bob@host"},
		{"preceded by at", "@@alice", "@@alice"},
		{"two mentions", "@a and @b", "<strong>@a</strong> and <strong>@b</strong>"},
		{"bare at", "@ noon", "@ noon"},
		{"adjacent after dot", "@a.@b", "<strong>@a</strong>.<strong>@b</strong>"},
	})
}

func TestRoomLinkResolver(t *testing.T) {
	c := NewContext([]Room{{ID: "5", Slug: "general"}, {ID: "6", Slug: "general"}, {ID: "7", Slug: "dev_2"}}, nil, nil, Location{})
	runStage(t, RoomLinkResolver{}, c, []stageCase{
		{"known room", "join #general", `join <a href="#!/room/5">&#35;general</a>`},
		{"unknown room", "#unknown", "#unknown"},
		{"digits and underscore", "#dev_2 now", `<a href="#!/room/7">&#35;dev_2</a> now`},
		{"uppercase is not a slug", "#General", "#General"},
		{"inside a word", "a#general", "a#general"},
		{"punctuation after", "(#general)", `(<a href="#!/room/5">&#35;general</a>)`},
	})
}

func TestRoomLinkResolver_NoDirectory(t *testing.T) {
	runStage(t, RoomLinkResolver{}, NewContext(nil, nil, nil, Location{}), []stageCase{
		{"disabled", "join #general", "join #general"},
	})
	runStage(t, RoomLinkResolver{}, NewContext([]Room{}, nil, nil, Location{}), []stageCase{
		{"empty directory", "join #general", "join #general"},
	})
}

func TestRoomLinkResolver_EscapesID(t *testing.T) {
	c := NewContext([]Room{{ID: `a"b`, Slug: "x"}}, nil, nil, Location{})
	got, err := RoomLinkResolver{Route: "/r/"}.Apply("#x", c)
	require.NoError(t, err)
	assert.Equal(t, `<a href="/r/a&#34;b">&#35;x</a>`, got)
}

func TestUploadLinkResolver(t *testing.T) {
	c := NewContext(nil, nil, nil, Location{Origin: "https://chat.test", Path: "/app/rooms/lobby"})
	runStage(t, UploadLinkResolver{}, c, []stageCase{
		{"whole text", "upload://ab12/cat.png", "https://chat.test/app/rooms/ab12/cat.png"},
		{"case-insensitive scheme", "UPLOAD://ab12/x.txt", "https://chat.test/app/rooms/ab12/x.txt"},
		{"surrounded by whitespace", "  upload://f/a.txt\n", "https://chat.test/app/rooms/f/a.txt"},
		{"extra text before", "see upload://f/a.txt", "see upload://f/a.txt"},
		{"extra text after", "upload://f/a.txt now", "upload://f/a.txt now"},
		{"other scheme", "https://f/a.txt", "https://f/a.txt"},
	})
}

func TestLocation_BaseURL(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", "https://chat.test/"},
		{"/", "https://chat.test/"},
		{"/lobby", "https://chat.test/"},
		{"/app/lobby", "https://chat.test/app/"},
		{"/app/lobby/", "https://chat.test/app/"},
		{"//a//b//c", "https://chat.test/a/b/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Location{Origin: "https://chat.test", Path: tt.path}.BaseURL(), "path %q", tt.path)
	}
}

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation("https://chat.test:8443/app/room?x=1#frag")
	require.NoError(t, err)
	assert.Equal(t, Location{Origin: "https://chat.test:8443", Path: "/app/room"}, loc)

	_, err = ParseLocation("/relative/only")
	assert.Error(t, err)
	_, err = ParseLocation("http://[::1")
	assert.Error(t, err)
}

func TestMediaLinkDetector(t *testing.T) {
	runStage(t, MediaLinkDetector{}, nil, []stageCase{
		{
			"image", "https://x.test/a.png",
			`<a class="thumbnail" href="https://x.test/a.png" target="_blank"><img data-src="https://x.test/a.png" src="/media/img/loading.gif" alt="Pasted Image" /></a>`,
		},
		{
			"image with padding", " http://x.test/b.JPEG ",
			`<a class="thumbnail" href="http://x.test/b.JPEG" target="_blank"><img data-src="http://x.test/b.JPEG" src="/media/img/loading.gif" alt="Pasted Image" /></a>`,
		},
		{
			"image with entity", "https://x.test/p?a=1&amp;b=2.gif",
			`<a class="thumbnail" href="https://x.test/p?a=1&b=2.gif" target="_blank"><img data-src="https://x.test/p?a=1&b=2.gif" src="/media/img/loading.gif" alt="Pasted Image" /></a>`,
		},
		{
			"video", "ftp://x.test/v.MP4",
			`<video controls loop preload="metadata" style="width: auto; max-height: 420px;"><source src="ftp://x.test/v.MP4"></video>`,
		},
		{
			"audio mp3", "https://x.test/s.mp3",
			`<audio controls preload="metadata"><source src="https://x.test/s.mp3" type="audio/mpeg"></audio>`,
		},
		{
			"audio wav", "https://x.test/s.wav",
			`<audio controls preload="metadata"><source src="https://x.test/s.wav" type="audio/wav"></audio>`,
		},
		{
			"audio uppercase ogg", "https://x.test/s.OGG",
			`<audio controls preload="metadata"><source src="https://x.test/s.OGG" type="audio/ogg"></audio>`,
		},
		{
			"image not alone", "see https://x.test/a.png here",
			`see <a href="https://x.test/a.png" target="_blank">https://x.test/a.png</a> here`,
		},
		{
			"every url linked", "a http://one.test b ftp://two.test/x.",
			`a <a href="http://one.test" target="_blank">http://one.test</a> b <a href="ftp://two.test/x" target="_blank">ftp://two.test/x</a>.`,
		},
		{"no url", "plain text", "plain text"},
	})
}

func TestEncodeURI(t *testing.T) {
	assert.Equal(t, "https://x.test/caf%C3%A9", encodeURI("https://x.test/café"))
	assert.Equal(t, "a%22b%3Cc%3E", encodeURI(`a"b<c>`))
	assert.Equal(t, "100%25", encodeURI("100%"))
	assert.Equal(t, "https://x.test/a%20b", encodeURI("https://x.test/a%20b"))
	assert.Equal(t, "a%2Fb%25zz", encodeURI("a%2Fb%zz"))
	assert.Equal(t, "?q=1&r=2#top", encodeURI("?q=1&r=2#top"))
	assert.Equal(t, "a%20b", encodeURI("a b"))
}

func TestEmoteSubstituter(t *testing.T) {
	c := NewContext(nil, []Emote{
		{Key: "smile", ImageURL: "/e/smile.png", Size: 24},
		{Key: "smile", ImageURL: "/e/shadowed.png"},
		{Key: "wave", ImageURL: "/e/wave.gif"},
		{Key: "+1", ImageURL: "/e/up.png"},
		{Key: "evil", ImageURL: `/e/"><script>`},
	}, nil, Location{})
	runStage(t, EmoteSubstituter{}, c, []stageCase{
		{"sized", ":smile:", `<img class="emote" src="/e/smile.png" title=":smile:" alt=":smile:" width="24" height="24" />`},
		{"default size", "hi :wave:", `hi <img class="emote" src="/e/wave.gif" title=":wave:" alt=":wave:" width="20" height="20" />`},
		{"plus key", ":+1:", `<img class="emote" src="/e/up.png" title=":+1:" alt=":+1:" width="20" height="20" />`},
		{"trailing colon optional", ":wave", `<img class="emote" src="/e/wave.gif" title=":wave:" alt=":wave:" width="20" height="20" />`},
		{"escaped attributes", ":evil:", `<img class="emote" src="/e/&#34;&gt;&lt;script&gt;" title=":evil:" alt=":evil:" width="20" height="20" />`},
		{"unknown", ":unknown:", ":unknown:"},
		{"key lookup is exact", ":SMILE:", ":SMILE:"},
		{"after word char", "a:smile:", "a:smile:"},
		{"clock time", "at 10:30", "at 10:30"},
	})
}

func TestEmoteSubstituter_EmptyCatalog(t *testing.T) {
	runStage(t, EmoteSubstituter{}, NewContext(nil, nil, nil, Location{}), []stageCase{
		{"passthrough", ":smile:", ":smile:"},
	})
}

func TestCustomReplacer(t *testing.T) {
	tests := []struct {
		name  string
		rules []ReplacementRule
		in    string
		want  string
	}{
		{"cumulative in order", []ReplacementRule{{"foo", "bar"}, {"bar", "baz"}}, "foo", "baz"},
		{"reverse order is independent", []ReplacementRule{{"bar", "baz"}, {"foo", "bar"}}, "foo", "bar"},
		{"case-insensitive and global", []ReplacementRule{{"hello", "hi"}}, "HELLO hello HeLLo", "hi hi hi"},
		{"numbered group", []ReplacementRule{{`(\d+)c\b`, "${1} cents"}}, "5c", "5 cents"},
		{"group followed by word characters", []ReplacementRule{{`(\d+)c\b`, "$1cents"}}, "5c", "5cents"},
		{"two-digit reference falls back to one digit", []ReplacementRule{{`(a)`, "$10"}}, "a", "a0"},
		{"literal dollar", []ReplacementRule{{`(\d+) usd`, "$$$1"}}, "5 USD", "$5"},
		{"whole match", []ReplacementRule{{"colou?r", "<em>$&</em>"}}, "Colour", "<em>Colour</em>"},
		{"no rules", nil, "same", "same"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CustomReplacer{}.Apply(tt.in, NewContext(nil, nil, tt.rules, Location{}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandTemplate(t *testing.T) {
	tests := []struct {
		template string
		groups   int
		want     string
	}{
		{"$1cents", 1, "${1}cents"},
		{"$12", 12, "${12}"},
		{"$12", 2, "${1}2"},
		{"$3", 2, "$$3"},
		{"$0", 1, "$$0"},
		{"$&!", 0, "${0}!"},
		{"$$", 0, "$$"},
		{"cost $", 0, "cost $$"},
		{"$x", 0, "$$x"},
		{"${name}px", 1, "${name}px"},
		{"${open", 0, "$${open"},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandTemplate(tt.template, tt.groups))
		})
	}
}

func TestCustomReplacer_InvalidPattern(t *testing.T) {
	_, err := CustomReplacer{}.Apply("x", NewContext(nil, nil, []ReplacementRule{{Pattern: "[a-", Template: ""}}, Location{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestContext_WithLocation(t *testing.T) {
	base := NewContext([]Room{{ID: "1", Slug: "a"}}, nil, nil, Location{Origin: "https://one.test"})
	derived := base.WithLocation(Location{Origin: "https://two.test"})

	assert.Equal(t, "https://one.test", base.Location().Origin)
	assert.Equal(t, "https://two.test", derived.Location().Origin)
	r, ok := derived.Room("a")
	require.True(t, ok)
	assert.Equal(t, "1", r.ID)

	var none *Context
	assert.False(t, none.HasRooms())
	assert.Equal(t, "https://three.test", none.WithLocation(Location{Origin: "https://three.test"}).Location().Origin)
}
