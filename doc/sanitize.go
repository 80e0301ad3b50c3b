package doc

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	alignValues = regexp.MustCompile(`^(left|center|right|justify)$`)
	cssLength   = regexp.MustCompile(`^(\d+(\.\d+)?(px|%)|auto|none)$`)
	cssColor    = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-z]+)$`)
	linkTarget  = regexp.MustCompile(`^_blank$`)
	linkRel     = regexp.MustCompile(`^[a-z ]+$`)
	imageID     = regexp.MustCompile(`^[0-9A-Za-z_-]{1,64}$`)

	policy = newPolicy()
)

var textBlockTags = []string{"p", "div", "pre", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6", "li"}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowURLSchemes("http", "https", "mailto", "tel")

	p.AllowElements(textBlockTags...)
	p.AllowElements("ul", "ol", "br", "b", "strong", "i", "em", "u", "span", "code")
	p.AllowStyles("text-align").Matching(alignValues).OnElements(textBlockTags...)
	p.AllowAttrs("dir").Matching(regexp.MustCompile(`^(ltr|rtl|auto)$`)).OnElements(textBlockTags...)
	p.AllowStyles("font-weight", "font-style", "text-decoration").OnElements("span")

	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("target").Matching(linkTarget).OnElements("a")
	p.AllowAttrs("rel").Matching(linkRel).OnElements("a")
	p.AllowStyles("color").Matching(cssColor).OnElements("a")
	p.AllowStyles("text-decoration").OnElements("a")

	p.AllowImages()
	p.AllowDataURIImages()
	p.AllowAttrs(ImageIDAttr).Matching(imageID).OnElements("img")
	p.AllowStyles("width", "height", "max-width").Matching(cssLength).OnElements("img")
	return p
}

// Sanitize strips markup that the editor does not author, such as scripts,
// event handlers and unknown styles.
func Sanitize(markup string) string {
	return policy.Sanitize(markup)
}
