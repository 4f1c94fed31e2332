package source

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"AquaScanner/internal/domain"
)

const indentUnit = "  "

// keyOrder fixes the position of known keys; other keys follow alphabetically.
var keyOrder = []string{
	"id", "name", "nameEn", "image", "minVolume", "maxCount", "zone", "temperament",
	"schooling", "minSchoolSize", "difficulty", "compatibleTypes", "incompatibleWith",
	"description", "careLevel", "waterParams",
	"phMin", "phMax", "tempMin", "tempMax", "salinity",
	"sizeCm", "familyGroup", "incompatibleTags",
}

var keyRank = func() map[string]int {
	m := make(map[string]int, len(keyOrder))
	for i, k := range keyOrder {
		m[k] = i
	}
	return m
}()

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Format renders doc back into source text. The same document always
// produces the same text.
func Format(doc *domain.SourceDocument) string {
	var b strings.Builder
	b.WriteString(doc.Prefix)

	values := make([]any, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		values = append(values, map[string]any(e))
	}
	writeArray(&b, values, 0)

	b.WriteString(doc.Suffix)
	return b.String()
}

func writeValue(b *strings.Builder, v any, depth int) {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case string:
		b.WriteString(quote(t))
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case float64:
		b.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	case int:
		b.WriteString(strconv.Itoa(t))
	case []any:
		writeArray(b, t, depth)
	case []string:
		items := make([]any, 0, len(t))
		for _, s := range t {
			items = append(items, s)
		}
		writeArray(b, items, depth)
	case map[string]any:
		writeObject(b, t, depth)
	case domain.SourceEntry:
		writeObject(b, t, depth)
	default:
		b.WriteString("null")
	}
}

func writeArray(b *strings.Builder, items []any, depth int) {
	if len(items) == 0 {
		b.WriteString("[]")
		return
	}
	if allScalar(items) {
		b.WriteString("[")
		for i, it := range items {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, it, depth)
		}
		b.WriteString("]")
		return
	}

	inner := strings.Repeat(indentUnit, depth+1)
	b.WriteString("[\n")
	for _, it := range items {
		b.WriteString(inner)
		writeValue(b, it, depth+1)
		b.WriteString(",\n")
	}
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteString("]")
}

func writeObject(b *strings.Builder, obj map[string]any, depth int) {
	if len(obj) == 0 {
		b.WriteString("{}")
		return
	}

	inner := strings.Repeat(indentUnit, depth+1)
	b.WriteString("{\n")
	for _, k := range sortedKeys(obj) {
		b.WriteString(inner)
		b.WriteString(formatKey(k))
		b.WriteString(": ")
		writeValue(b, obj[k], depth+1)
		b.WriteString(",\n")
	}
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteString("}")
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, iKnown := keyRank[keys[i]]
		rj, jKnown := keyRank[keys[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func allScalar(items []any) bool {
	for _, it := range items {
		switch it.(type) {
		case []any, []string, map[string]any, domain.SourceEntry:
			return false
		}
	}
	return true
}

func formatKey(k string) string {
	if identifier.MatchString(k) {
		return k
	}
	return quote(k)
}

// quote renders s as a single-quoted literal.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
