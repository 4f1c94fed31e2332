package source

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/titanous/json5"

	"AquaScanner/internal/domain"
)

// DefaultArrayName is the variable holding the fish records.
const DefaultArrayName = "BASE_FISH_DATABASE"

var (
	ErrArrayNotFound     = errors.New("array declaration not found")
	ErrUnterminatedArray = errors.New("array literal is not terminated")
	ErrUnsupportedValue  = errors.New("array literal is not plain data")
)

// Parse locates the array literal assigned to arrayName and decodes it.
// Text around the literal is kept verbatim for Format.
func Parse(content, arrayName string) (*domain.SourceDocument, error) {
	open, err := findArrayStart(content, arrayName)
	if err != nil {
		return nil, err
	}
	end, err := matchBracket(content, open)
	if err != nil {
		return nil, err
	}

	var raw []map[string]any
	if err := json5.Unmarshal([]byte(content[open:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedValue, arrayName, err)
	}

	entries := make([]domain.SourceEntry, 0, len(raw))
	for _, r := range raw {
		entries = append(entries, domain.SourceEntry(r))
	}

	return &domain.SourceDocument{
		Prefix:  content[:open],
		Entries: entries,
		Suffix:  content[end+1:],
	}, nil
}

func findArrayStart(content, arrayName string) (int, error) {
	decl := regexp.MustCompile(`\b` + regexp.QuoteMeta(arrayName) + `\b\s*(?::[^=\n;]*)?=\s*\[`)
	loc := decl.FindStringIndex(content)
	if loc == nil {
		return 0, fmt.Errorf("%w: %s", ErrArrayNotFound, arrayName)
	}
	return loc[1] - 1, nil
}

// matchBracket returns the index of the ']' closing the '[' at open. Brackets
// inside string literals and comments are ignored.
func matchBracket(content string, open int) (int, error) {
	depth := 0
	for i := open; i < len(content); i++ {
		switch c := content[i]; c {
		case '\'', '"', '`':
			i = skipString(content, i, c)
		case '/':
			if i+1 < len(content) {
				switch content[i+1] {
				case '/':
					i = skipUntil(content, i+2, "\n")
				case '*':
					i = skipUntil(content, i+2, "*/")
				}
			}
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, ErrUnterminatedArray
}

// skipString returns the index of the quote closing the literal at start.
func skipString(content string, start int, quote byte) int {
	for i := start + 1; i < len(content); i++ {
		switch content[i] {
		case '\\':
			i++
		case quote:
			return i
		}
	}
	return len(content)
}

// skipUntil returns the index of the last byte of the terminator.
func skipUntil(content string, from int, terminator string) int {
	for i := from; i+len(terminator) <= len(content); i++ {
		if content[i:i+len(terminator)] == terminator {
			return i + len(terminator) - 1
		}
	}
	return len(content)
}
