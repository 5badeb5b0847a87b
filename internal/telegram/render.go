package telegram

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

// Telegram accepts only a small HTML subset (b, i, s, u, code, pre,
// a). The model answers in markdown, so we render it to HTML and then
// squash everything Telegram would reject.

var (
	tagReplacer = strings.NewReplacer(
		"<strong>", "<b>", "</strong>", "</b>",
		"<em>", "<i>", "</em>", "</i>",
		"<del>", "<s>", "</del>", "</s>",
		"<li>", "• ", "</li>", "\n",
		"<blockquote>", "", "</blockquote>", "",
		"<ul>", "", "</ul>", "\n",
		"<ol>", "", "</ol>", "\n",
		"<p>", "", "</p>", "\n\n",
		"<hr>", "", "<br>", "\n",
	)

	headingRe = regexp.MustCompile(`</?h[1-6][^>]*>`)
	anyTagRe  = regexp.MustCompile(`<[^>]+>`)

	allowedTags = map[string]bool{
		"b": true, "i": true, "s": true, "u": true,
		"code": true, "pre": true, "a": true,
	}
)

// RenderHTML converts model markdown into Telegram-safe HTML. When the
// markdown cannot be rendered the raw text comes back unchanged, so
// the caller can always fall back to plain sends.
func RenderHTML(markdown string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return markdown
	}

	out := buf.String()
	out = headingRe.ReplaceAllStringFunc(out, func(tag string) string {
		if strings.HasPrefix(tag, "</") {
			return "</b>\n"
		}
		return "<b>"
	})
	out = tagReplacer.Replace(out)
	out = anyTagRe.ReplaceAllStringFunc(out, keepAllowed)

	out = strings.ReplaceAll(out, "&quot;", "\"")
	out = strings.ReplaceAll(out, "&#39;", "'")
	return strings.TrimSpace(out)
}

func keepAllowed(tag string) string {
	name := strings.ToLower(strings.TrimLeft(tag, "</"))
	name = strings.TrimRight(name, ">")
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		name = name[:i]
	}
	if allowedTags[name] {
		return tag
	}
	return ""
}
