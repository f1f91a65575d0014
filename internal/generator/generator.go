// Package generator composes random passwords from charset pools.
package generator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/passforge/internal/charset"
	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/random"
)

// Length and batch limits.
const (
	MinLength = 4
	MaxLength = 128
	MinBatch  = 1
	MaxBatch  = 50

	DefaultLength      = 16
	DefaultConcurrency = 4
)

// Options configures a single generation request.
type Options struct {
	Length           int  `json:"length"`
	Lowercase        bool `json:"lowercase"`
	Uppercase        bool `json:"uppercase"`
	Numbers          bool `json:"numbers"`
	Symbols          bool `json:"symbols"`
	ExcludeSimilar   bool `json:"exclude_similar"`
	ExcludeAmbiguous bool `json:"exclude_ambiguous"`
	EnsureAllTypes   bool `json:"ensure_all_types"`
}

// DefaultOptions returns the options used when a caller supplies none.
func DefaultOptions() Options {
	return Options{
		Length:         DefaultLength,
		Lowercase:      true,
		Uppercase:      true,
		Numbers:        true,
		EnsureAllTypes: true,
	}
}

// Toggles returns the class selection of o.
func (o Options) Toggles() charset.Toggles {
	return charset.Toggles{
		Lowercase: o.Lowercase,
		Uppercase: o.Uppercase,
		Numbers:   o.Numbers,
		Symbols:   o.Symbols,
	}
}

// Exclusions returns the exclusion filters of o.
func (o Options) Exclusions() charset.Exclusions {
	return charset.Exclusions{
		Similar:   o.ExcludeSimilar,
		Ambiguous: o.ExcludeAmbiguous,
	}
}

// Pool returns the aggregate pool o draws from.
func (o Options) Pool() charset.Pool {
	return charset.Effective(o.Toggles(), o.Exclusions())
}

// Validate checks length bounds and class selection.
func Validate(o Options) error {
	if o.Length < MinLength {
		return errors.NewValidation("length", fmt.Sprintf("length must be at least %d, got %d", MinLength, o.Length))
	}
	if o.Length > MaxLength {
		return errors.NewValidation("length", fmt.Sprintf("length must be at most %d, got %d", MaxLength, o.Length))
	}
	if !o.Toggles().Any() {
		return errors.NewValidation("classes", "at least one character type must be selected")
	}
	return nil
}

// Generator produces passwords from a Random. It holds no per-call state
// and is safe for concurrent use.
type Generator struct {
	rng         *random.Random
	concurrency int
	classPool   func(charset.Class, charset.Exclusions) charset.Pool
}

// Option configures a Generator.
type Option func(*Generator)

// WithConcurrency bounds the number of passwords a batch generates in parallel.
func WithConcurrency(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// New creates a Generator drawing from rng.
func New(rng *random.Random, opts ...Option) *Generator {
	g := &Generator{rng: rng, concurrency: DefaultConcurrency, classPool: charset.ForClass}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Secure reports whether the underlying random source is cryptographic.
func (g *Generator) Secure() bool {
	return g.rng.Secure()
}

// Generate returns a password of exactly o.Length characters.
func (g *Generator) Generate(o Options) (string, error) {
	if err := Validate(o); err != nil {
		return "", err
	}

	pool := g.pool(o)
	if pool.Len() == 0 {
		return "", errors.NewEmptyPool("no characters available with the selected options")
	}

	if o.EnsureAllTypes {
		return g.generateWithAllTypes(o)
	}
	return g.fill(o.Length, pool)
}

// pool concatenates the filtered pools of every selected class.
func (g *Generator) pool(o Options) charset.Pool {
	var p charset.Pool
	for _, c := range o.Toggles().Classes() {
		p = append(p, g.classPool(c, o.Exclusions())...)
	}
	return p
}

// fill draws length independent characters from pool.
func (g *Generator) fill(length int, pool charset.Pool) (string, error) {
	out := make([]rune, length)
	for i := range out {
		c, err := g.rng.Character(pool)
		if err != nil {
			return "", err
		}
		out[i] = c
	}
	return string(out), nil
}

// generateWithAllTypes draws one character from each selected class, fills
// the rest from the union of those class pools, and shuffles the result.
// A class whose pool is emptied by exclusions contributes neither a required
// character nor filler. The caller has already rejected an empty union.
func (g *Generator) generateWithAllTypes(o Options) (string, error) {
	ex := o.Exclusions()
	required := make([]rune, 0, len(charset.AllClasses))
	var filler charset.Pool

	for _, c := range o.Toggles().Classes() {
		sub := g.classPool(c, ex)
		if sub.Len() == 0 {
			continue
		}
		ch, err := g.rng.Character(sub)
		if err != nil {
			return "", err
		}
		required = append(required, ch)
		filler = append(filler, sub...)
	}

	if len(required) > o.Length {
		return "", errors.NewInsufficientLength(len(required), o.Length)
	}
	chars := make([]rune, 0, o.Length)
	chars = append(chars, required...)
	for len(chars) < o.Length {
		ch, err := g.rng.Character(filler)
		if err != nil {
			return "", err
		}
		chars = append(chars, ch)
	}

	shuffled, err := random.Shuffle(g.rng, chars)
	if err != nil {
		return "", err
	}
	return string(shuffled), nil
}

// GenerateBatch returns count independently generated passwords in a stable
// order. Uniqueness across the batch is not guaranteed.
func (g *Generator) GenerateBatch(ctx context.Context, count int, o Options) ([]string, error) {
	if count < MinBatch || count > MaxBatch {
		return nil, errors.NewRange(MinBatch, MaxBatch, count)
	}
	if err := Validate(o); err != nil {
		return nil, err
	}

	out := make([]string, count)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)

	for i := range out {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pw, err := g.Generate(o)
			if err != nil {
				return err
			}
			out[i] = pw
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Overrides carries individually set option fields. Nil fields leave the
// base value untouched.
type Overrides struct {
	Length           *int  `json:"length,omitempty"`
	Lowercase        *bool `json:"lowercase,omitempty"`
	Uppercase        *bool `json:"uppercase,omitempty"`
	Numbers          *bool `json:"numbers,omitempty"`
	Symbols          *bool `json:"symbols,omitempty"`
	ExcludeSimilar   *bool `json:"exclude_similar,omitempty"`
	ExcludeAmbiguous *bool `json:"exclude_ambiguous,omitempty"`
	EnsureAllTypes   *bool `json:"ensure_all_types,omitempty"`
}

// Apply returns base with every non-nil override applied.
func (ov Overrides) Apply(base Options) Options {
	setInt(&base.Length, ov.Length)
	setBool(&base.Lowercase, ov.Lowercase)
	setBool(&base.Uppercase, ov.Uppercase)
	setBool(&base.Numbers, ov.Numbers)
	setBool(&base.Symbols, ov.Symbols)
	setBool(&base.ExcludeSimilar, ov.ExcludeSimilar)
	setBool(&base.ExcludeAmbiguous, ov.ExcludeAmbiguous)
	setBool(&base.EnsureAllTypes, ov.EnsureAllTypes)
	return base
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
