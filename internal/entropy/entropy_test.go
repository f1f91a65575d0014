package entropy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hpungsan/passforge/internal/generator"
)

func TestBits(t *testing.T) {
	alnum := generator.Options{Length: 16, Lowercase: true, Uppercase: true, Numbers: true}

	tests := []struct {
		name     string
		password string
		opts     generator.Options
		want     float64
	}{
		{"empty password", "", alnum, 0},
		{"alphanumeric 16", "aaaaaaaaaaaaaaaa", alnum, 16 * math.Log2(62)},
		{"digits only", "1234", generator.Options{Length: 4, Numbers: true}, 4 * math.Log2(10)},
		{"similar excluded", "2345", generator.Options{Length: 4, Numbers: true, ExcludeSimilar: true}, 4 * math.Log2(8)},
		{"all classes", "x", generator.Options{Length: 4, Lowercase: true, Uppercase: true, Numbers: true, Symbols: true}, math.Log2(88)},
		{"no classes", "abc", generator.Options{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Bits(tt.password, tt.opts), 1e-9)
		})
	}
}

func TestBits_UsesConfiguredPoolNotObservedVariety(t *testing.T) {
	opts := generator.Options{Length: 8, Lowercase: true, Uppercase: true, Numbers: true, Symbols: true}
	assert.Equal(t, Bits("aaaaaaaa", opts), Bits("aB3!aB3!", opts))
}

func TestBitsForPool(t *testing.T) {
	assert.Equal(t, 0.0, BitsForPool(0, 62))
	assert.Equal(t, 0.0, BitsForPool(10, 1))
	assert.Equal(t, 0.0, BitsForPool(10, 0))
	assert.InDelta(t, 128*math.Log2(88), BitsForPool(128, 88), 1e-9)
}

func TestCrackTimeSeconds(t *testing.T) {
	tests := []struct {
		name string
		bits float64
		rate float64
		want float64
	}{
		{"zero bits", 0, 1e9, 0.5e-9},
		{"40 bits default rate", 40, DefaultAttemptsPerSecond, math.Pow(2, 39) / 1e9},
		{"custom rate", 10, 512, 1},
		{"non-positive rate uses default", 31, 0, math.Pow(2, 30) / 1e9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CrackTimeSeconds(tt.bits, tt.rate), tt.want*1e-9)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0 seconds"},
		{1, "1 second"},
		{45, "45 seconds"},
		{59.4, "59 seconds"},
		{90, "2 minutes"},
		{60, "1 minute"},
		{7200, "2 hours"},
		{86399, "24 hours"},
		{86400, "1 day"},
		{864000, "10 days"},
		{31536000, "1 year"},
		{31536000 * 1234567, "1,234,567 years"},
		{90000000000000, "2,853,881 years"},
		{31536000 * 1e12, "1,000,000,000,000 years"},
		{31536000 * 2e12, OverCapMessage},
		{math.Inf(1), OverCapMessage},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.seconds))
		})
	}
}
