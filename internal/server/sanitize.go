package server

import "github.com/microcosm-cc/bluemonday"

// OutputPolicy allows exactly the elements and attributes the formatting
// pipeline emits and strips everything else.
func OutputPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowURLSchemes("http", "https", "ftp")
	p.AllowRelativeURLs(true)

	p.AllowElements("strong")
	p.AllowAttrs("href", "class", "target").OnElements("a")
	p.AllowAttrs("src", "class", "title", "alt", "width", "height").OnElements("img")
	p.AllowDataAttributes()
	p.AllowAttrs("controls", "preload").OnElements("video", "audio")
	p.AllowAttrs("loop").OnElements("video")
	p.AllowStyles("width", "max-height").OnElements("video")
	p.AllowAttrs("src", "type").OnElements("source")
	return p
}
