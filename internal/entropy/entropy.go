// Package entropy estimates theoretical password entropy and brute-force
// crack time from the configured pool size.
package entropy

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/hpungsan/passforge/internal/generator"
)

// DefaultAttemptsPerSecond is the assumed guess rate of an attacker.
const DefaultAttemptsPerSecond = 1e9

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
	secondsPerYear   = 31536000

	// yearsCap is the point past which durations collapse to one message.
	yearsCap = 1e12
)

// OverCapMessage is returned by FormatDuration beyond a trillion years.
const OverCapMessage = "over 1 trillion years"

// Bits returns log2(poolSize^length) for password under o, where poolSize is
// the size of the pool o would sample from. It is an upper bound that assumes
// uniform sampling, not a measurement of password itself.
func Bits(password string, o generator.Options) float64 {
	return BitsForPool(utf8.RuneCountInString(password), o.Pool().Len())
}

// BitsForPool returns length * log2(poolSize), which equals
// log2(poolSize^length) without overflowing.
func BitsForPool(length, poolSize int) float64 {
	if length <= 0 || poolSize <= 1 {
		return 0
	}
	return float64(length) * math.Log2(float64(poolSize))
}

// CrackTimeSeconds returns the average time to search half the keyspace of a
// password with the given entropy. A non-positive rate uses the default.
func CrackTimeSeconds(bits, attemptsPerSecond float64) float64 {
	if attemptsPerSecond <= 0 {
		attemptsPerSecond = DefaultAttemptsPerSecond
	}
	return math.Pow(2, bits-1) / attemptsPerSecond
}

// FormatDuration renders seconds in the largest unit below the next
// threshold: seconds, minutes, hours, days, then years.
func FormatDuration(seconds float64) string {
	switch {
	case seconds < secondsPerMinute:
		return plural(math.Round(seconds), "second")
	case seconds < secondsPerHour:
		return plural(math.Round(seconds/secondsPerMinute), "minute")
	case seconds < secondsPerDay:
		return plural(math.Round(seconds/secondsPerHour), "hour")
	case seconds < secondsPerYear:
		return plural(math.Round(seconds/secondsPerDay), "day")
	}

	years := seconds / secondsPerYear
	if years > yearsCap {
		return OverCapMessage
	}
	return plural(math.Round(years), "year")
}

func plural(n float64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%s %ss", humanize.Comma(int64(n)), unit)
}
