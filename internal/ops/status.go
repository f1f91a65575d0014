package ops

import (
	"context"

	"github.com/hpungsan/passforge/internal/db"
	"github.com/hpungsan/passforge/internal/random"
)

// StatusOutput reports runtime capabilities.
type StatusOutput struct {
	SecureRandom bool   `json:"secure_random"`
	Presets      *int   `json:"presets,omitempty"`
	Warning      string `json:"warning,omitempty"`
}

// Status reports whether a cryptographically secure random source is
// available and, when a database is attached, how many presets it holds.
func Status(ctx context.Context, deps Deps) (*StatusOutput, error) {
	out := &StatusOutput{SecureRandom: random.IsSecureAvailable()}
	if deps.Generator != nil && !deps.Generator.Secure() {
		out.SecureRandom = false
	}
	if !out.SecureRandom {
		out.Warning = InsecureWarning
	}

	if deps.DB != nil {
		n, err := db.Count(ctx, deps.DB)
		if err != nil {
			return nil, err
		}
		out.Presets = &n
	}

	return out, nil
}
