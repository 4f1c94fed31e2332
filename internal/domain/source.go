package domain

import (
	"strconv"
	"strings"
)

// SourceEntry is one object of the generated source data file. Values are
// decoded JSON5: string, float64, bool, []any, map[string]any or nil.
type SourceEntry map[string]any

// String returns the value under key when it is a string or a number.
func (e SourceEntry) String(key string) string {
	switch v := e[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (e SourceEntry) ID() string          { return e.String("id") }
func (e SourceEntry) Name() string        { return e.String("name") }
func (e SourceEntry) ForeignName() string { return e.String("nameEn") }
func (e SourceEntry) Image() string       { return e.String("image") }
func (e SourceEntry) Description() string { return e.String("description") }

// SourceDocument is the generated data file split around its record array.
// Prefix and Suffix are kept verbatim so only the array is rewritten.
type SourceDocument struct {
	Prefix  string
	Entries []SourceEntry
	Suffix  string
}

// Entry returns the entry with the given id.
func (d *SourceDocument) Entry(id string) (SourceEntry, bool) {
	for _, e := range d.Entries {
		if strings.EqualFold(e.ID(), id) {
			return e, true
		}
	}
	return nil, false
}
