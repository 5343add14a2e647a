package elsterxml

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TagMapping maps one internal field name to its output tag.
type TagMapping struct {
	Key string
	Tag string
}

// Mapping is the ordered per-section translation table. Mapped keys are
// emitted first, in mapping order; keys without an entry fall back to
// DefaultTag.
type Mapping []TagMapping

func (m Mapping) tag(key string) (string, bool) {
	for _, tm := range m {
		if tm.Key == key {
			return tm.Tag, true
		}
	}
	return "", false
}

// SerializeSection emits rec's fields as children of parent.
//
// Keys present in the mapping are processed first, in the mapping's
// declared order. Remaining keys follow in record order with their tags
// derived via DefaultTag. The record itself is never mutated; processed
// keys are tracked on the side.
func SerializeSection(parent *Element, rec *Record, mapping Mapping) error {
	processed := make(map[string]bool, len(mapping))

	for _, tm := range mapping {
		value, ok := rec.Get(tm.Key)
		if !ok {
			continue
		}
		processed[tm.Key] = true
		if err := appendChild(parent, tm.Tag, value); err != nil {
			return err
		}
	}

	for _, f := range rec.Fields() {
		if processed[f.Key] {
			continue
		}
		tag, ok := mapping.tag(f.Key)
		if !ok {
			tag = DefaultTag(f.Key)
		}
		if err := appendChild(parent, tag, f.Value); err != nil {
			return err
		}
	}

	return nil
}

// appendChild emits one child element for value, dispatching on kind:
// sequences fan out into sibling elements with the same tag, nested
// records recurse with an empty mapping, scalars become element text.
func appendChild(parent *Element, tag string, value Value) error {
	switch value.Kind() {
	case KindList:
		for _, item := range value.Items() {
			if item.IsAbsent() {
				continue
			}
			if err := appendChild(parent, tag, item); err != nil {
				return err
			}
		}
		return nil

	case KindRecord:
		child := parent.Add(tag)
		return SerializeSection(child, value.Record(), nil)

	default:
		text, err := value.formatScalar()
		if err != nil {
			return err
		}
		parent.Add(tag).Text = text
		return nil
	}
}

// DefaultTag derives the output tag for a key without a mapping entry.
//
// Keys that already look final (leading uppercase without separators, or
// entirely uppercase) pass through. Keys with the reserved "kz" prefix
// used for form-line codes get the kz-specific treatment. Everything
// else is title-cased per underscore segment and concatenated.
func DefaultTag(key string) string {
	if key == "" {
		return key
	}

	first, _ := utf8.DecodeRuneInString(key)
	if unicode.IsUpper(first) && !strings.Contains(key, "_") {
		return key
	}
	if isUpper(key) {
		return key
	}
	if len(key) >= 2 && strings.EqualFold(key[:2], "kz") {
		return transformKzKey(key)
	}

	parts := strings.Split(key, "_")
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(upperFirst(part))
	}
	return b.String()
}

// transformKzKey capitalizes only the first two characters of the
// leading segment and title-cases the rest, keeping the underscores.
// The two-letter prefix check is a heuristic the wire format depends
// on; it must not be tightened.
func transformKzKey(key string) string {
	parts := strings.Split(key, "_")
	first := parts[0]
	transformed := make([]string, 0, len(parts))
	transformed = append(transformed, capitalize(first[:2])+first[2:])
	for _, part := range parts[1:] {
		transformed = append(transformed, upperFirst(part))
	}
	return strings.Join(transformed, "_")
}

// isUpper reports whether key contains a cased character and no
// lowercase ones.
func isUpper(key string) bool {
	hasCased := false
	for _, r := range key {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}

// upperFirst uppercases the first character, leaving the rest alone.
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// capitalize uppercases the first character and lowercases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
