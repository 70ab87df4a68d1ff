// Package markup converts the compose-box markup subset into an HTML email
// fragment and a plain-text fallback. Both render paths operate on the same
// already variable-substituted string, so server-side sends and client-side
// previews stay identical.
package markup

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	boldRe      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe    = regexp.MustCompile(`\*([^*]+)\*`)
	underlineRe = regexp.MustCompile(`<u>(.+?)</u>`)
	linkRe      = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	tokenRe     = regexp.MustCompile(`\{\{[^}]*\}\}`)
	anchorRe    = regexp.MustCompile(`<a href="([^"]*)"[^>]*>(.*?)</a>`)
	tagRe       = regexp.MustCompile(`<[^>]+>`)
	headingRe   = regexp.MustCompile(`(?m)^#{1,2}\s+`)
	blankRunRe  = regexp.MustCompile(`\n{3,}`)
)

// highlightPalette maps the user preference enum to an inline color. Unknown
// values fall back to blue.
var highlightPalette = map[string]string{
	"blue":   "#3b82f6",
	"purple": "#8b5cf6",
	"pink":   "#ec4899",
	"green":  "#22c55e",
	"orange": "#f97316",
	"red":    "#ef4444",
}

// ToHTML converts the markup subset into an HTML fragment. Rule order: bold,
// italic, underline, links, headings, list grouping, blank lines dropped,
// remaining lines wrapped in paragraphs. Unresolved {{name}} tokens are
// wrapped in a colored span as the final step, so values substituted before
// the call are never highlighted.
func ToHTML(body, highlightColor string) string {
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))
	inList := false

	closeList := func() {
		if inList {
			out = append(out, "</ul>")
			inList = false
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			closeList()
		case strings.HasPrefix(trimmed, "## "):
			closeList()
			out = append(out, "<h2>"+inline(strings.TrimPrefix(trimmed, "## "))+"</h2>")
		case strings.HasPrefix(trimmed, "# "):
			closeList()
			out = append(out, "<h1>"+inline(strings.TrimPrefix(trimmed, "# "))+"</h1>")
		case strings.HasPrefix(trimmed, "- "):
			// Contiguous runs of list items share one enclosing <ul>.
			if !inList {
				out = append(out, "<ul>")
				inList = true
			}
			out = append(out, "<li>"+inline(strings.TrimPrefix(trimmed, "- "))+"</li>")
		default:
			closeList()
			out = append(out, "<p>"+inline(trimmed)+"</p>")
		}
	}
	closeList()

	return highlightTokens(strings.Join(out, "\n"), highlightColor)
}

// inline applies the inline rules in their fixed order. Bold runs before
// italic so "**x**" never half-matches as emphasis.
func inline(s string) string {
	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicRe.ReplaceAllString(s, "<em>$1</em>")
	s = underlineRe.ReplaceAllString(s, `<span style="text-decoration: underline;">$1</span>`)
	s = linkRe.ReplaceAllString(s, `<a href="$2" target="_blank" rel="noopener noreferrer">$1</a>`)
	return s
}

// highlightTokens wraps unresolved variable tokens in a visually distinct
// span keyed by the user's highlight color preference.
func highlightTokens(s, color string) string {
	hex, ok := highlightPalette[color]
	if !ok {
		hex = highlightPalette["blue"]
	}
	return tokenRe.ReplaceAllStringFunc(s, func(token string) string {
		return fmt.Sprintf(`<span style="color: %s; font-weight: 600;">%s</span>`, hex, token)
	})
}

// ToPlainText strips the markup subset and any HTML produced by ToHTML,
// yielding the text/plain MIME alternative. Links keep their destination as
// "text (url)".
func ToPlainText(body string) string {
	s := body

	s = linkRe.ReplaceAllString(s, "$1 ($2)")
	s = anchorRe.ReplaceAllString(s, "$2 ($1)")
	s = boldRe.ReplaceAllString(s, "$1")
	s = italicRe.ReplaceAllString(s, "$1")
	s = headingRe.ReplaceAllString(s, "")

	// Structural tags terminate lines; everything else is dropped.
	for _, closer := range []string{"</p>", "</h1>", "</h2>", "</li>", "</ul>", "<br>", "<br/>", "<br />"} {
		s = strings.ReplaceAll(s, closer, "\n")
	}
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	s = blankRunRe.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
