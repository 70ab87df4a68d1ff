package markup_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"template-mailer/pkg/markup"
)

func TestToHTML(t *testing.T) {
	t.Parallel()

	t.Run("bold", func(t *testing.T) {
		t.Parallel()
		got := markup.ToHTML("hello **world**", "blue")
		require.Contains(t, got, "<strong>world</strong>")
	})

	t.Run("italic", func(t *testing.T) {
		t.Parallel()
		got := markup.ToHTML("hello *world*", "blue")
		require.Contains(t, got, "<em>world</em>")
	})

	t.Run("bold takes precedence over italic", func(t *testing.T) {
		t.Parallel()
		got := markup.ToHTML("**bold** and *italic*", "blue")
		require.Contains(t, got, "<strong>bold</strong>")
		require.Contains(t, got, "<em>italic</em>")
	})

	t.Run("underline becomes styled span", func(t *testing.T) {
		t.Parallel()
		got := markup.ToHTML("<u>important</u>", "blue")
		require.Contains(t, got, `<span style="text-decoration: underline;">important</span>`)
	})

	t.Run("link opens in new tab with noopener", func(t *testing.T) {
		t.Parallel()
		got := markup.ToHTML("[docs](https://example.com)", "blue")
		require.Contains(t, got, `<a href="https://example.com" target="_blank" rel="noopener noreferrer">docs</a>`)
	})

	t.Run("headings", func(t *testing.T) {
		t.Parallel()
		got := markup.ToHTML("# Title\n## Subtitle", "blue")
		require.Contains(t, got, "<h1>Title</h1>")
		require.Contains(t, got, "<h2>Subtitle</h2>")
	})

	t.Run("contiguous list items share one ul", func(t *testing.T) {
		t.Parallel()
		got := markup.ToHTML("- one\n- two\n\ntext\n\n- three", "blue")
		require.Equal(t, 2, strings.Count(got, "<ul>"))
		require.Equal(t, 2, strings.Count(got, "</ul>"))
		require.Equal(t, 3, strings.Count(got, "<li>"))
	})

	t.Run("blank lines dropped, text wrapped in paragraphs", func(t *testing.T) {
		t.Parallel()
		got := markup.ToHTML("first\n\n\nsecond", "blue")
		require.Contains(t, got, "<p>first</p>")
		require.Contains(t, got, "<p>second</p>")
	})

	t.Run("unresolved tokens are highlighted", func(t *testing.T) {
		t.Parallel()
		got := markup.ToHTML("Hi {{name}}", "green")
		require.Contains(t, got, `color: #22c55e`)
		require.Contains(t, got, "{{name}}")
	})

	t.Run("unknown highlight color falls back to blue", func(t *testing.T) {
		t.Parallel()
		got := markup.ToHTML("Hi {{name}}", "chartreuse")
		require.Contains(t, got, `color: #3b82f6`)
	})

	t.Run("substituted values are not highlighted", func(t *testing.T) {
		t.Parallel()
		// The substituted value arrives as plain text before formatting,
		// so only the leftover token gets a span.
		got := markup.ToHTML("Hi Ana, your code is {{code}}", "blue")
		require.Equal(t, 1, strings.Count(got, "<span"))
	})
}

func TestToPlainText(t *testing.T) {
	t.Parallel()

	t.Run("strips inline markup", func(t *testing.T) {
		t.Parallel()
		got := markup.ToPlainText("**bold** *em* <u>under</u>")
		require.Equal(t, "bold em under", got)
	})

	t.Run("links keep their url", func(t *testing.T) {
		t.Parallel()
		got := markup.ToPlainText("[docs](https://example.com)")
		require.Equal(t, "docs (https://example.com)", got)
	})

	t.Run("heading markers removed", func(t *testing.T) {
		t.Parallel()
		got := markup.ToPlainText("# Title\nbody")
		require.Equal(t, "Title\nbody", got)
	})

	t.Run("round trip through html has no markup delimiters", func(t *testing.T) {
		t.Parallel()
		body := "# Hello {{name}}\n\n**bold** and *italic* and <u>underline</u>\n\n- item [link](https://example.com)\n- second"

		text := markup.ToPlainText(markup.ToHTML(body, "purple"))
		require.NotContains(t, text, "**")
		require.NotContains(t, text, "<")
		require.NotContains(t, text, "#")
		require.Contains(t, text, "Hello {{name}}")
		require.Contains(t, text, "link (https://example.com)")
	})
}
