// Package variables implements the template variable engine: extracting
// {{name}} tokens, substituting values, and moving template definitions
// in and out of their exported form.
package variables

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches a single non-nested {{...}} span. The scan is a
// single pass; "{{a{{b}}}}" matches "{{a{{b}}" with inner content "a{{b",
// never a nested token.
var tokenPattern = regexp.MustCompile(`\{\{([^}]*)\}\}`)

// Extract returns the variable names found in template, trimmed and
// de-duplicated preserving first-seen order. Any trimmed content between
// double braces is accepted; name validation is the caller's concern.
func Extract(template string) []string {
	matches := tokenPattern.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return []string{}
	}

	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Replace substitutes every whitespace-tolerant occurrence of {{ key }}
// with its value in a single pass over the template. Keys with empty
// values are skipped so their tokens stay intact: re-extracting from the
// result recovers the unresolved tokens. Values are inserted literally and
// never rescanned, so a value containing brace syntax cannot trigger
// further substitution.
func Replace(template string, vars map[string]string) string {
	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := strings.TrimSpace(token[2 : len(token)-2])
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		return token
	})
}

// InsertAtCursor splices "{{name}}" into template at byte offset pos and
// returns the new template with the cursor position just after the token.
// Out-of-range positions are clamped to the template bounds.
func InsertAtCursor(template, name string, pos int) (string, int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(template) {
		pos = len(template)
	}
	token := "{{" + name + "}}"
	return template[:pos] + token + template[pos:], pos + len(name) + 4
}

// Unused returns the variable keys present in vars that have no
// corresponding token in the template, in sorted key order.
func Unused(template string, vars map[string]string) []string {
	present := make(map[string]struct{})
	for _, name := range Extract(template) {
		present[name] = struct{}{}
	}

	unused := make([]string, 0)
	for _, key := range sortedKeys(vars) {
		if _, ok := present[key]; !ok {
			unused = append(unused, key)
		}
	}
	return unused
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Definition is the exported form of a template: name, raw content and the
// variable map. It round-trips through Export/Import.
type Definition struct {
	Name      string            `json:"name"`
	Content   string            `json:"content"`
	Variables map[string]string `json:"variables"`
}

// Export serializes a template definition to its structured text form.
func Export(def Definition) (string, error) {
	if def.Variables == nil {
		def.Variables = map[string]string{}
	}
	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Import parses an exported definition. It fails closed: malformed input
// or a schema mismatch returns (zero, false) and never panics, keeping the
// caller's control flow simple.
func Import(data string) (Definition, bool) {
	var def Definition
	if err := json.Unmarshal([]byte(data), &def); err != nil {
		return Definition{}, false
	}
	if def.Name == "" || def.Content == "" {
		return Definition{}, false
	}
	if def.Variables == nil {
		def.Variables = map[string]string{}
	}
	return def, true
}
