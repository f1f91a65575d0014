// Package preset models named generator option sets. A preset stores
// options only, never a generated password.
package preset

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/passforge/internal/generator"
)

// MaxNameChars bounds preset names, counted in runes.
const MaxNameChars = 64

// Preset is a saved set of generator options addressed by name.
type Preset struct {
	// ID is a ULID assigned on first save
	ID string `json:"id"`

	// NameRaw is the name as provided by the user
	NameRaw string `json:"name"`

	// NameNorm is the lookup key (lowercased, trimmed, collapsed spaces)
	NameNorm string `json:"-"`

	Options generator.Options `json:"options"`

	// CreatedAt and UpdatedAt are Unix timestamps
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize trims, lowercases and collapses internal whitespace so that
// "My  Preset" and "my preset" address the same row.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// ValidName reports whether name normalizes to something non-empty that fits
// within MaxNameChars.
func ValidName(name string) bool {
	norm := Normalize(name)
	return norm != "" && utf8.RuneCountInString(norm) <= MaxNameChars
}
