package charset

import (
	"strings"
	"testing"
)

func TestAlphabetSizes(t *testing.T) {
	tests := []struct {
		class Class
		want  int
	}{
		{Lowercase, 26},
		{Uppercase, 26},
		{Digits, 10},
		{Symbols, 26},
	}

	for _, tt := range tests {
		t.Run(tt.class.String(), func(t *testing.T) {
			if got := len(tt.class.Alphabet()); got != tt.want {
				t.Errorf("len(Alphabet()) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		toggles Toggles
		want    string
	}{
		{"none", Toggles{}, ""},
		{"lowercase only", Toggles{Lowercase: true}, LowercaseAlphabet},
		{"digits and symbols", Toggles{Numbers: true, Symbols: true}, DigitsAlphabet + SymbolsAlphabet},
		{"all in class order", AllToggles(), LowercaseAlphabet + UppercaseAlphabet + DigitsAlphabet + SymbolsAlphabet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Build(tt.toggles).String(); got != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuild_AllSize(t *testing.T) {
	if got := Build(AllToggles()).Len(); got != 88 {
		t.Errorf("Build(all).Len() = %d, want 88", got)
	}
}

func TestApplyExclusions(t *testing.T) {
	all := Build(AllToggles())

	t.Run("no exclusions returns pool unchanged", func(t *testing.T) {
		if got := ApplyExclusions(all, Exclusions{}); got.String() != all.String() {
			t.Errorf("ApplyExclusions() = %q, want %q", got, all)
		}
	})

	t.Run("similar removed", func(t *testing.T) {
		got := ApplyExclusions(all, Exclusions{Similar: true})
		for _, r := range Similar {
			if got.Contains(r) {
				t.Errorf("pool still contains similar char %q", r)
			}
		}
		if got.Len() != all.Len()-len(Similar) {
			t.Errorf("Len() = %d, want %d", got.Len(), all.Len()-len(Similar))
		}
	})

	t.Run("ambiguous removed", func(t *testing.T) {
		got := ApplyExclusions(all, Exclusions{Ambiguous: true})
		for _, r := range Ambiguous {
			if got.Contains(r) {
				t.Errorf("pool still contains ambiguous char %q", r)
			}
		}
		// Letters and digits are untouched.
		if !strings.Contains(got.String(), LowercaseAlphabet+UppercaseAlphabet+DigitsAlphabet) {
			t.Errorf("letters/digits should survive ambiguous filtering: %q", got)
		}
	})

	t.Run("order of removal does not matter", func(t *testing.T) {
		both := ApplyExclusions(all, Exclusions{Similar: true, Ambiguous: true})
		chained := ApplyExclusions(ApplyExclusions(all, Exclusions{Ambiguous: true}), Exclusions{Similar: true})
		if both.String() != chained.String() {
			t.Errorf("combined = %q, chained = %q", both, chained)
		}
	})

	t.Run("can become empty", func(t *testing.T) {
		got := ApplyExclusions(Pool("il1"), Exclusions{Similar: true})
		if got.Len() != 0 {
			t.Errorf("Len() = %d, want 0", got.Len())
		}
	})
}

func TestForClass(t *testing.T) {
	tests := []struct {
		name  string
		class Class
		ex    Exclusions
		want  string
	}{
		{"digits without similar", Digits, Exclusions{Similar: true}, "23456789"},
		{"lowercase without similar", Lowercase, Exclusions{Similar: true}, "abcdefghjkmnpqrstuvwxyz"},
		{"uppercase without similar", Uppercase, Exclusions{Similar: true}, "ABCDEFGHIJKMNPQRSTUVWXYZ"},
		{"symbols without ambiguous", Symbols, Exclusions{Ambiguous: true}, "!@#$%^&*_+-=|:?"},
		{"symbols unaffected by similar", Symbols, Exclusions{Similar: true}, SymbolsAlphabet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForClass(tt.class, tt.ex).String(); got != tt.want {
				t.Errorf("ForClass() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEffective_MatchesPerClassUnion(t *testing.T) {
	ex := Exclusions{Similar: true, Ambiguous: true}
	toggles := AllToggles()

	var union strings.Builder
	for _, c := range toggles.Classes() {
		union.WriteString(ForClass(c, ex).String())
	}

	if got := Effective(toggles, ex).String(); got != union.String() {
		t.Errorf("Effective() = %q, want per-class union %q", got, union.String())
	}
}

func TestToggles(t *testing.T) {
	if (Toggles{}).Any() {
		t.Error("zero Toggles should select nothing")
	}
	tg := Toggles{Uppercase: true, Symbols: true}
	if !tg.Any() {
		t.Error("Any() = false, want true")
	}
	classes := tg.Classes()
	if len(classes) != 2 || classes[0] != Uppercase || classes[1] != Symbols {
		t.Errorf("Classes() = %v, want [uppercase symbols]", classes)
	}
}
