package ops

import (
	"context"

	"github.com/hpungsan/passforge/internal/entropy"
	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/generator"
	"github.com/hpungsan/passforge/internal/strength"
)

// AnalyzeInput contains parameters for the Analyze operation.
type AnalyzeInput struct {
	Password  string
	Options   *generator.Options // pool the password is assumed drawn from
	Preset    string             // ignored when Options is set
	Overrides generator.Overrides
}

// Analysis describes the strength of one password.
type Analysis struct {
	Strength         strength.Result `json:"strength"`
	Suggestions      []string        `json:"suggestions"`
	EntropyBits      float64         `json:"entropy_bits"`
	CrackTimeSeconds float64         `json:"crack_time_seconds"`
	CrackTime        string          `json:"crack_time"`
}

// Analyze scores a password and estimates its entropy. Entropy is computed
// from the pool the options describe, so it is an upper bound for passwords
// that were not drawn uniformly from that pool.
func Analyze(ctx context.Context, deps Deps, input AnalyzeInput) (*Analysis, error) {
	opts, err := resolveOptions(ctx, deps, input.Options, input.Preset, input.Overrides)
	if err != nil {
		deps.Metrics.IncrementError("analyze", string(errors.CodeOf(err)))
		return nil, err
	}

	a := analyze(deps, input.Password, opts)
	return &a, nil
}

func analyze(deps Deps, password string, opts generator.Options) Analysis {
	toggles := opts.Toggles()
	res := strength.Evaluate(password, toggles)
	bits := entropy.Bits(password, opts)

	rate := entropy.DefaultAttemptsPerSecond
	if deps.Config != nil && deps.Config.AttemptsPerSecond > 0 {
		rate = deps.Config.AttemptsPerSecond
	}
	seconds := entropy.CrackTimeSeconds(bits, rate)

	deps.Metrics.IncrementTier(string(res.Tier))

	return Analysis{
		Strength:         res,
		Suggestions:      strength.Suggestions(password, toggles),
		EntropyBits:      bits,
		CrackTimeSeconds: seconds,
		CrackTime:        entropy.FormatDuration(seconds),
	}
}
