package raopt

import (
	"strings"
)

// AttributeList builds an AttributeList token by joining attrs with the
// configured delimiter.
func (c Config) AttributeList(attrs []string) Token {
	return Token{Kind: KindAttributeList, Payload: strings.Join(attrs, c.delimiter())}
}

// Tokenize splits an AttributeList or Condition-free attribute string on the
// configured delimiter, trimming whitespace and dropping empty segments.
func (c Config) Tokenize(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, c.delimiter())
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Join is the inverse of Tokenize: it re-serializes attrs with the
// configured delimiter.
func (c Config) Join(attrs []string) string {
	return strings.Join(attrs, c.delimiter())
}

// IsSubset reports whether |a| <= |b| and every element of a appears in b.
// The length check comes first, so an a with repeated names can be rejected
// even when each of its names appears in b.
func IsSubset(a, b []string) bool {
	if len(a) > len(b) {
		return false
	}
	set := make(map[string]struct{}, len(b))
	for _, x := range b {
		set[x] = struct{}{}
	}
	for _, x := range a {
		if _, ok := set[x]; !ok {
			return false
		}
	}
	return true
}

// SetEqual reports whether a and b contain the same attribute names,
// ignoring order. Duplicates are not ignored: because IsSubset compares
// lengths, ["a","a","b"] and ["a","b"] are not equal.
func SetEqual(a, b []string) bool {
	return IsSubset(a, b) && IsSubset(b, a)
}

// ConditionAttrs extracts the attribute names delimited by the configured
// escape character from a condition's raw text, e.g. "`a`=`c`" yields
// ["a", "c"].
func (c Config) ConditionAttrs(raw string) []string {
	esc := c.escape()
	if esc == "" {
		return nil
	}
	var out []string
	parts := strings.Split(raw, esc)
	// Split on a delimiter that occurs in pairs puts every attribute name at
	// an odd index: parts[0] is text before the first escape, parts[1] is
	// the attribute name, parts[2] is text between the pair and the next, etc.
	for i := 1; i < len(parts); i += 2 {
		name := strings.TrimSpace(parts[i])
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// FilterToSchema retains only the attrs that appear in schema, preserving
// the order attrs was given in.
func FilterToSchema(attrs, schema []string) []string {
	set := make(map[string]struct{}, len(schema))
	for _, s := range schema {
		set[s] = struct{}{}
	}
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if _, ok := set[a]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Dedup preserves first-occurrence order while dropping repeats.
func Dedup(attrs []string) []string {
	seen := make(map[string]struct{}, len(attrs))
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
