package variables_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"template-mailer/pkg/variables"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("empty input yields empty slice", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, variables.Extract(""))
	})

	t.Run("no tokens yields empty slice", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, variables.Extract("plain text without tokens"))
	})

	t.Run("dedup preserves first-seen order", func(t *testing.T) {
		t.Parallel()
		got := variables.Extract("Hi {{name}}, re {{name}}")
		require.Equal(t, []string{"name"}, got)
	})

	t.Run("multiple tokens in order", func(t *testing.T) {
		t.Parallel()
		got := variables.Extract("{{greeting}} {{name}}, from {{sender}}")
		require.Equal(t, []string{"greeting", "name", "sender"}, got)
	})

	t.Run("whitespace inside braces is trimmed", func(t *testing.T) {
		t.Parallel()
		got := variables.Extract("Hello {{  name  }}")
		require.Equal(t, []string{"name"}, got)
	})

	t.Run("nested braces are not matched as nested", func(t *testing.T) {
		t.Parallel()
		// Single-pass scan: the first closing pair terminates the token.
		got := variables.Extract("{{a{{b}}}}")
		require.Equal(t, []string{"a{{b"}, got)
	})

	t.Run("arbitrary trimmed content is returned", func(t *testing.T) {
		t.Parallel()
		got := variables.Extract("{{ first name! }}")
		require.Equal(t, []string{"first name!"}, got)
	})
}

func TestReplace(t *testing.T) {
	t.Parallel()

	t.Run("replaces all occurrences", func(t *testing.T) {
		t.Parallel()
		got := variables.Replace("Hi {{name}}, bye {{name}}", map[string]string{"name": "Ana"})
		require.Equal(t, "Hi Ana, bye Ana", got)
	})

	t.Run("whitespace-tolerant token match", func(t *testing.T) {
		t.Parallel()
		got := variables.Replace("Hi {{ name }}", map[string]string{"name": "Ana"})
		require.Equal(t, "Hi Ana", got)
	})

	t.Run("empty value leaves token intact", func(t *testing.T) {
		t.Parallel()
		got := variables.Replace("Hi {{name}} from {{city}}", map[string]string{
			"name": "Ana",
			"city": "",
		})
		require.Equal(t, "Hi Ana from {{city}}", got)
	})

	t.Run("round trip recovers unresolved tokens", func(t *testing.T) {
		t.Parallel()
		tmpl := "{{a}} and {{b}} and {{c}}"
		vars := map[string]string{"a": "1", "b": "", "c": "3"}

		result := variables.Replace(tmpl, vars)
		unresolved := variables.Extract(result)
		require.Equal(t, []string{"b"}, unresolved)
	})

	t.Run("replacement values are literal", func(t *testing.T) {
		t.Parallel()
		// $1-style expansion in values must not be interpreted.
		got := variables.Replace("x={{x}}", map[string]string{"x": "$1.00"})
		require.Equal(t, "x=$1.00", got)
	})

	t.Run("value containing another key's token is not rescanned", func(t *testing.T) {
		t.Parallel()
		vars := map[string]string{"a": "{{b}}", "b": "X"}
		for i := 0; i < 200; i++ {
			require.Equal(t, "{{b}}", variables.Replace("{{a}}", vars))
		}
	})

	t.Run("deterministic across map iteration orders", func(t *testing.T) {
		t.Parallel()
		tmpl := "{{a}} {{b}} {{c}}"
		vars := map[string]string{"a": "{{c}}", "b": "2", "c": "{{a}}"}

		first := variables.Replace(tmpl, vars)
		for i := 0; i < 200; i++ {
			require.Equal(t, first, variables.Replace(tmpl, vars))
		}
	})
}

func TestInsertAtCursor(t *testing.T) {
	t.Parallel()

	t.Run("splices token at offset", func(t *testing.T) {
		t.Parallel()
		tmpl, cursor := variables.InsertAtCursor("ab", "x", 1)
		require.Equal(t, "a{{x}}b", tmpl)
		require.Equal(t, 6, cursor)
	})

	t.Run("clamps negative offset", func(t *testing.T) {
		t.Parallel()
		tmpl, cursor := variables.InsertAtCursor("ab", "x", -5)
		require.Equal(t, "{{x}}ab", tmpl)
		require.Equal(t, 5, cursor)
	})

	t.Run("clamps offset past end", func(t *testing.T) {
		t.Parallel()
		tmpl, cursor := variables.InsertAtCursor("ab", "x", 99)
		require.Equal(t, "ab{{x}}", tmpl)
		require.Equal(t, 7, cursor)
	})
}

func TestUnused(t *testing.T) {
	t.Parallel()

	t.Run("keys without tokens are reported", func(t *testing.T) {
		t.Parallel()
		got := variables.Unused("Hi {{name}}", map[string]string{
			"name":    "Ana",
			"company": "Acme",
			"city":    "Berlin",
		})
		require.Equal(t, []string{"city", "company"}, got)
	})

	t.Run("all used yields empty slice", func(t *testing.T) {
		t.Parallel()
		got := variables.Unused("{{a}} {{b}}", map[string]string{"a": "1", "b": "2"})
		require.Empty(t, got)
	})
}

func TestExportImport(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		def := variables.Definition{
			Name:      "welcome",
			Content:   "Subject: Hi {{name}}\n\nWelcome aboard, {{name}}!",
			Variables: map[string]string{"name": ""},
		}

		exported, err := variables.Export(def)
		require.NoError(t, err)

		imported, ok := variables.Import(exported)
		require.True(t, ok)
		require.Equal(t, def, imported)
	})

	t.Run("malformed input fails closed", func(t *testing.T) {
		t.Parallel()
		_, ok := variables.Import("not json at all {")
		require.False(t, ok)
	})

	t.Run("schema mismatch fails closed", func(t *testing.T) {
		t.Parallel()
		_, ok := variables.Import(`{"something":"else"}`)
		require.False(t, ok)
	})

	t.Run("missing variables map defaults to empty", func(t *testing.T) {
		t.Parallel()
		def, ok := variables.Import(`{"name":"n","content":"c"}`)
		require.True(t, ok)
		require.NotNil(t, def.Variables)
		require.Empty(t, def.Variables)
	})
}
