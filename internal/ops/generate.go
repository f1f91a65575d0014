package ops

import (
	"context"
	"fmt"
	"time"

	"github.com/hpungsan/passforge/internal/errors"
	"github.com/hpungsan/passforge/internal/generator"
)

// GenerateInput contains parameters for the Generate operation.
type GenerateInput struct {
	Options   *generator.Options // nil: use Preset or config defaults
	Preset    string             // preset name, ignored when Options is set
	Overrides generator.Overrides
	Count     *int // nil: 1; otherwise must be within [1, generator.MaxBatch]
	Analyze   bool // attach an Analysis to every password
}

// GeneratedItem is one generated password.
type GeneratedItem struct {
	Password string    `json:"password"`
	Analysis *Analysis `json:"analysis,omitempty"`
}

// GenerateOutput contains the result of the Generate operation.
type GenerateOutput struct {
	Passwords []GeneratedItem   `json:"passwords"`
	Options   generator.Options `json:"options"`
	Secure    bool              `json:"secure"`
	Warning   string            `json:"warning,omitempty"`
}

// Generate produces one or more passwords.
func Generate(ctx context.Context, deps Deps, input GenerateInput) (*GenerateOutput, error) {
	start := time.Now()

	out, err := generate(ctx, deps, input)
	if err != nil {
		deps.Metrics.IncrementError("generate", string(errors.CodeOf(err)))
		return nil, err
	}

	deps.Metrics.ObserveGenerateLatency(time.Since(start))
	deps.Metrics.AddGenerated(len(out.Passwords), out.Secure)
	return out, nil
}

func generate(ctx context.Context, deps Deps, input GenerateInput) (*GenerateOutput, error) {
	if deps.Generator == nil {
		return nil, errors.NewInternal(fmt.Errorf("generator not configured"))
	}

	opts, err := resolveOptions(ctx, deps, input.Options, input.Preset, input.Overrides)
	if err != nil {
		return nil, err
	}

	count := 1
	if input.Count != nil {
		count = *input.Count
	}

	passwords, err := deps.Generator.GenerateBatch(ctx, count, opts)
	if err != nil {
		return nil, err
	}

	out := &GenerateOutput{
		Passwords: make([]GeneratedItem, len(passwords)),
		Options:   opts,
		Secure:    deps.Generator.Secure(),
	}
	if !out.Secure {
		out.Warning = InsecureWarning
		deps.logger().Warn("generated passwords with insecure random source", "count", len(passwords))
	}

	for i, pw := range passwords {
		out.Passwords[i].Password = pw
		if input.Analyze {
			a := analyze(deps, pw, opts)
			out.Passwords[i].Analysis = &a
		}
	}

	return out, nil
}
