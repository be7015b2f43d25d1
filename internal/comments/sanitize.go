package comments

import (
	"html"
	"regexp"
	"strings"
)

// allowedTags is the closed whitelist of HTML tags that survive
// sanitization. Everything else is stripped, its inner text kept.
var allowedTags = map[string]bool{
	"a":      true,
	"code":   true,
	"i":      true,
	"strong": true,
}

var (
	// Matches one HTML-escaped tag: &lt;...&gt;. Attribute values are
	// escaped too, so no raw angle bracket can appear inside.
	tagRe = regexp.MustCompile(`(?s)&lt;(/?)([a-zA-Z][a-zA-Z0-9]*)(.*?)&gt;`)

	// href/title values sit between escaped quotes (&#34; or &#39;)
	hrefRe  = regexp.MustCompile(`(?is)href\s*=\s*&#3[49];(.*?)&#3[49];`)
	titleRe = regexp.MustCompile(`(?is)title\s*=\s*&#3[49];(.*?)&#3[49];`)
)

// Sanitize renders untrusted text safe for direct HTML output. All
// markup is entity-escaped first, then exactly the whitelisted tags
// are decoded back. Opening <a> tags keep only href and title, with
// values left entity-encoded; every other attribute is dropped.
// Sanitize is pure: equal input always yields equal output.
func Sanitize(input string) string {
	escaped := html.EscapeString(input)
	return tagRe.ReplaceAllStringFunc(escaped, rewriteTag)
}

func rewriteTag(match string) string {
	sub := tagRe.FindStringSubmatch(match)
	closing := sub[1] == "/"
	name := strings.ToLower(sub[2])
	attrs := sub[3]

	if !allowedTags[name] {
		// Tag removed entirely, surrounding text untouched
		return ""
	}
	if closing {
		return "</" + name + ">"
	}
	if name == "a" {
		return rewriteAnchor(attrs)
	}
	return "<" + name + ">"
}

func rewriteAnchor(attrs string) string {
	var b strings.Builder
	b.WriteString("<a")
	if m := hrefRe.FindStringSubmatch(attrs); m != nil {
		b.WriteString(` href="`)
		b.WriteString(m[1])
		b.WriteString(`"`)
	}
	if m := titleRe.FindStringSubmatch(attrs); m != nil {
		b.WriteString(` title="`)
		b.WriteString(m[1])
		b.WriteString(`"`)
	}
	b.WriteString(">")
	return b.String()
}
