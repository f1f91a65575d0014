// Package strength scores passwords with length, variety and pattern heuristics.
package strength

import (
	"strings"

	"github.com/hpungsan/passforge/internal/charset"
)

// Tier is a discrete strength rating.
type Tier string

const (
	VeryWeak   Tier = "very-weak"
	Weak       Tier = "weak"
	Medium     Tier = "medium"
	Strong     Tier = "strong"
	VeryStrong Tier = "very-strong"
)

// MaxScore is the highest attainable score.
const MaxScore = 4

var tiers = [MaxScore + 1]Tier{VeryWeak, Weak, Medium, Strong, VeryStrong}

// Label returns a human-facing name for the tier.
func (t Tier) Label() string {
	switch t {
	case VeryWeak:
		return "Very Weak"
	case Weak:
		return "Weak"
	case Medium:
		return "Medium"
	case Strong:
		return "Strong"
	case VeryStrong:
		return "Very Strong"
	default:
		return "Unknown"
	}
}

// TierForScore maps a score in [0,4] to its tier. Out-of-range scores clamp.
func TierForScore(score int) Tier {
	return tiers[clamp(score)]
}

// Result is the outcome of Evaluate.
type Result struct {
	Score      int     `json:"score"`
	Tier       Tier    `json:"tier"`
	Label      string  `json:"label"`
	Percentage float64 `json:"percentage"`
}

// Suggestion texts, in the order Suggestions emits them.
const (
	SuggestMin8       = "Use at least 8 characters"
	SuggestMin12      = "Consider 12 or more characters for stronger security"
	SuggestVariety    = "Mix letters, numbers and symbols"
	SuggestRepeating  = "Avoid repeating patterns"
	SuggestSequential = `Avoid sequences like "abc" or "123"`
)

// sequences are the reference orderings checked for 3-character runs.
var sequences = []string{
	charset.LowercaseAlphabet,
	charset.UppercaseAlphabet,
	charset.DigitsAlphabet,
	"qwertyuiopasdfghjklzxcvbnm",
	"QWERTYUIOPASDFGHJKLZXCVBNM",
}

// sequenceWindows holds every 3-rune window of sequences, forward and reversed.
var sequenceWindows = buildSequenceWindows()

func buildSequenceWindows() []string {
	var windows []string
	for _, seq := range sequences {
		for i := 0; i+3 <= len(seq); i++ {
			w := seq[i : i+3]
			windows = append(windows, w, string([]byte{w[2], w[1], w[0]}))
		}
	}
	return windows
}

// Evaluate scores password. The toggles describe the configured classes but
// do not affect scoring: variety is measured on the password itself.
func Evaluate(password string, _ charset.Toggles) Result {
	score := 0
	if password != "" {
		score = rawScore(password)
	}
	score = clamp(score)
	tier := TierForScore(score)

	return Result{
		Score:      score,
		Tier:       tier,
		Label:      tier.Label(),
		Percentage: float64(score) / MaxScore * 100,
	}
}

func rawScore(password string) int {
	score := 0

	n := len([]rune(password))
	if n >= 8 {
		score++
	}
	if n >= 12 {
		score++
	}
	if n >= 16 {
		score++
	}

	variety := Variety(password)
	if variety >= 2 {
		score++
	}
	if variety >= 3 {
		score++
	}
	if variety >= 4 {
		score++
	}

	if HasRepeatingPattern(password) {
		score--
	}
	if HasSequentialPattern(password) {
		score--
	}
	return score
}

func clamp(score int) int {
	return max(0, min(MaxScore, score))
}

// Variety counts which of lowercase, uppercase, digit and other characters
// occur in password.
func Variety(password string) int {
	var lower, upper, digit, other bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			other = true
		}
	}

	variety := 0
	for _, present := range []bool{lower, upper, digit, other} {
		if present {
			variety++
		}
	}
	return variety
}

// HasRepeatingPattern reports whether a two-character substring recurs later
// in password without overlapping, or any character repeats 3+ times in a row.
func HasRepeatingPattern(password string) bool {
	rs := []rune(password)

	for i := 0; i+1 < len(rs); i++ {
		for j := i + 2; j+1 < len(rs); j++ {
			if rs[i] == rs[j] && rs[i+1] == rs[j+1] {
				return true
			}
		}
	}

	for i := 0; i+2 < len(rs); i++ {
		if rs[i] == rs[i+1] && rs[i] == rs[i+2] {
			return true
		}
	}
	return false
}

// HasSequentialPattern reports whether password contains any 3-character run
// of the alphabet, digits or a QWERTY row, forward or reversed.
func HasSequentialPattern(password string) bool {
	for _, w := range sequenceWindows {
		if strings.Contains(password, w) {
			return true
		}
	}
	return false
}

// Suggestions returns advisory texts for improving password, in fixed order.
func Suggestions(password string, _ charset.Toggles) []string {
	suggestions := make([]string, 0, 5)
	n := len([]rune(password))

	if n < 8 {
		suggestions = append(suggestions, SuggestMin8)
	}
	if n < 12 {
		suggestions = append(suggestions, SuggestMin12)
	}
	if Variety(password) < 3 {
		suggestions = append(suggestions, SuggestVariety)
	}
	if HasRepeatingPattern(password) {
		suggestions = append(suggestions, SuggestRepeating)
	}
	if HasSequentialPattern(password) {
		suggestions = append(suggestions, SuggestSequential)
	}
	return suggestions
}
