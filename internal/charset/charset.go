// Package charset assembles character pools from class toggles and
// exclusion filters.
package charset

import "strings"

// Class is one of the four character categories.
type Class int

const (
	Lowercase Class = iota
	Uppercase
	Digits
	Symbols
)

// AllClasses lists the classes in the stable order pools are built in.
var AllClasses = []Class{Lowercase, Uppercase, Digits, Symbols}

// Fixed alphabets.
const (
	LowercaseAlphabet = "abcdefghijklmnopqrstuvwxyz"
	UppercaseAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	DigitsAlphabet    = "0123456789"
	SymbolsAlphabet   = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// Exclusion sets.
const (
	Similar   = "il1Lo0O"
	Ambiguous = "{}[]()/\\'\"`~,;.<>"
)

// String returns the lowercase class name.
func (c Class) String() string {
	switch c {
	case Lowercase:
		return "lowercase"
	case Uppercase:
		return "uppercase"
	case Digits:
		return "numbers"
	case Symbols:
		return "symbols"
	default:
		return "unknown"
	}
}

// Alphabet returns the full, unfiltered alphabet of the class.
func (c Class) Alphabet() string {
	switch c {
	case Lowercase:
		return LowercaseAlphabet
	case Uppercase:
		return UppercaseAlphabet
	case Digits:
		return DigitsAlphabet
	case Symbols:
		return SymbolsAlphabet
	default:
		return ""
	}
}

// Toggles selects which classes contribute to a pool.
type Toggles struct {
	Lowercase bool `json:"lowercase"`
	Uppercase bool `json:"uppercase"`
	Numbers   bool `json:"numbers"`
	Symbols   bool `json:"symbols"`
}

// AllToggles enables every class.
func AllToggles() Toggles {
	return Toggles{Lowercase: true, Uppercase: true, Numbers: true, Symbols: true}
}

// Enabled reports whether class c is selected.
func (t Toggles) Enabled(c Class) bool {
	switch c {
	case Lowercase:
		return t.Lowercase
	case Uppercase:
		return t.Uppercase
	case Digits:
		return t.Numbers
	case Symbols:
		return t.Symbols
	default:
		return false
	}
}

// Any reports whether at least one class is selected.
func (t Toggles) Any() bool {
	return t.Lowercase || t.Uppercase || t.Numbers || t.Symbols
}

// Classes returns the selected classes in stable order.
func (t Toggles) Classes() []Class {
	classes := make([]Class, 0, len(AllClasses))
	for _, c := range AllClasses {
		if t.Enabled(c) {
			classes = append(classes, c)
		}
	}
	return classes
}

// Exclusions selects which fixed character sets are removed from a pool.
type Exclusions struct {
	Similar   bool
	Ambiguous bool
}

// Pool is an indexable sequence of eligible characters.
type Pool []rune

// Len returns the number of characters in the pool.
func (p Pool) Len() int { return len(p) }

// String returns the pool as a string.
func (p Pool) String() string { return string(p) }

// Contains reports whether r is in the pool.
func (p Pool) Contains(r rune) bool {
	for _, c := range p {
		if c == r {
			return true
		}
	}
	return false
}

// Build concatenates the alphabets of every selected class.
// Classes are disjoint, so no de-duplication is needed.
func Build(t Toggles) Pool {
	var sb strings.Builder
	for _, c := range t.Classes() {
		sb.WriteString(c.Alphabet())
	}
	return Pool(sb.String())
}

// ApplyExclusions removes the similar and/or ambiguous sets from p.
// The result may be empty.
func ApplyExclusions(p Pool, ex Exclusions) Pool {
	if !ex.Similar && !ex.Ambiguous {
		return p
	}
	out := make(Pool, 0, len(p))
	for _, r := range p {
		if ex.Similar && strings.ContainsRune(Similar, r) {
			continue
		}
		if ex.Ambiguous && strings.ContainsRune(Ambiguous, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ForClass returns the filtered pool of a single class.
func ForClass(c Class, ex Exclusions) Pool {
	return ApplyExclusions(Pool(c.Alphabet()), ex)
}

// Effective returns the aggregate pool for t with exclusions applied.
func Effective(t Toggles, ex Exclusions) Pool {
	return ApplyExclusions(Build(t), ex)
}
