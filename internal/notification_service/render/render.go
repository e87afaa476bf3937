// Package render substitutes {placeholder} tokens in template bodies.
package render

import "strings"

func isIdentChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// Render replaces every {identifier} token in body with its value from
// values. Tokens whose identifier is absent from values are left literal in
// the output and reported in missing, so an operator can spot an unmapped
// field in a sent message instead of receiving a blank. Render is total
// over any input: unbalanced braces and tokens with non-identifier
// characters pass through unchanged.
func Render(body string, values map[string]string) (string, []string) {
	var sb strings.Builder
	sb.Grow(len(body))

	var missing []string
	seen := map[string]bool{}

	for i := 0; i < len(body); {
		if body[i] != '{' {
			sb.WriteByte(body[i])
			i++
			continue
		}

		// Scan for a well-formed {identifier}.
		j := i + 1
		for j < len(body) && isIdentChar(body[j]) {
			j++
		}
		if j >= len(body) || body[j] != '}' || j == i+1 {
			// Not a token: lone/unbalanced brace or empty braces.
			sb.WriteByte(body[i])
			i++
			continue
		}

		name := body[i+1 : j]
		if value, ok := values[name]; ok {
			sb.WriteString(value)
		} else {
			sb.WriteString(body[i : j+1])
			if !seen[name] {
				seen[name] = true
				missing = append(missing, name)
			}
		}
		i = j + 1
	}

	return sb.String(), missing
}
