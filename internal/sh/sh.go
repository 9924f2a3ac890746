package sh

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
)

var unsafe = regexp.MustCompile(`[^\w@%+=:,./-]`)

// Quote quotes a string for safe use in shell commands.
func Quote(s string) string {
	if s == "" {
		return `''`
	}
	if !unsafe.MatchString(s) {
		return s
	}
	return `'` + strings.ReplaceAll(s, `'`, `'\''`) + `'`
}

// Join joins command arguments with proper shell quoting.
func Join(parts []string) string {
	quotedParts := make([]string, len(parts))
	for i, part := range parts {
		quotedParts[i] = Quote(part)
	}
	return strings.Join(quotedParts, " ")
}

// sortkeys returns the sorted keys of a map.
func sortkeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Line renders a command line as it would be typed into a shell:
// environment assignments, quoted, followed by command verbatim.
// command is already shell text and is not quoted.
func Line(env map[string]string, command string) string {
	var ret strings.Builder
	for _, k := range sortkeys(env) {
		ret.WriteString(k + "=" + Quote(env[k]) + " ")
	}
	ret.WriteString(command)
	return ret.String()
}

// Fields splits a command line into words.
// Single and double quotes group words and a backslash escapes the
// following character; there is no other expansion.
func Fields(command string) []string {
	var (
		words  []string
		word   strings.Builder
		quote  rune
		escape bool
		inword bool
	)
	for _, r := range command {
		switch {
		case escape:
			if quote == '"' && !strings.ContainsRune("\\\"$`", r) {
				word.WriteRune('\\')
			}
			word.WriteRune(r)
			escape = false
		case r == '\\' && quote != '\'':
			escape = true
			inword = true
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			word.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			inword = true
		case r == ' ' || r == '\t' || r == '\n':
			if inword {
				words = append(words, word.String())
				word.Reset()
				inword = false
			}
		default:
			word.WriteRune(r)
			inword = true
		}
	}
	if inword {
		words = append(words, word.String())
	}
	return words
}
