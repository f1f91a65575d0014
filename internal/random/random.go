// Package random provides unbiased bounded random integers, character picks
// and shuffles on top of an injectable entropy source.
package random

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"log/slog"
	mrand "math/rand/v2"
	"sync"

	"github.com/hpungsan/passforge/internal/errors"
)

// Source is the entropy primitive a Random draws from.
type Source interface {
	Uint32() (uint32, error)
}

// CryptoSource reads from a cryptographically secure reader.
// The zero value uses crypto/rand.Reader.
type CryptoSource struct {
	Reader io.Reader
}

// Uint32 returns 32 bits read from the underlying reader.
func (s CryptoSource) Uint32() (uint32, error) {
	r := s.Reader
	if r == nil {
		r = rand.Reader
	}
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// FallbackSource is a NON-cryptographic source backed by math/rand/v2.
// It is only used when no secure reader is available.
type FallbackSource struct{}

// Uint32 returns a pseudo-random value. It never fails.
func (FallbackSource) Uint32() (uint32, error) {
	return mrand.Uint32(), nil
}

// Random draws bounded integers from a Source. It is safe for concurrent use.
type Random struct {
	mu     sync.Mutex
	src    Source
	secure bool
}

// New wraps src. The result reports Secure() == false for FallbackSource,
// whether passed by value or by pointer.
func New(src Source) *Random {
	switch src.(type) {
	case FallbackSource, *FallbackSource:
		return NewInsecure(src)
	}
	return &Random{src: src, secure: true}
}

// NewInsecure wraps src and marks it as not cryptographically secure.
func NewInsecure(src Source) *Random {
	return &Random{src: src, secure: false}
}

// Default returns a Random backed by crypto/rand, degrading to FallbackSource
// with a logged warning when the secure reader cannot produce bytes.
func Default(logger *slog.Logger) *Random {
	if IsSecureAvailable() {
		return New(CryptoSource{})
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("secure random source unavailable, using non-cryptographic fallback")
	return New(FallbackSource{})
}

// IsSecureAvailable reports whether crypto/rand currently yields bytes.
func IsSecureAvailable() bool {
	_, err := CryptoSource{}.Uint32()
	return err == nil
}

// Secure reports whether draws come from a cryptographically secure source.
func (r *Random) Secure() bool {
	return r.secure
}

func (r *Random) next() (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Uint32()
}

// Int returns a uniformly distributed integer in [0, max).
// Draws at or above the largest multiple of max below 2^32 are rejected
// so that the modulo carries no bias.
func (r *Random) Int(max int) (int, error) {
	if max <= 0 {
		return 0, errors.NewInvalidArgument("max must be greater than 0")
	}
	const space = uint64(1) << 32
	bound := uint64(max)
	if bound > space {
		return 0, errors.NewInvalidArgument("max must not exceed 2^32")
	}
	limit := (space / bound) * bound

	for {
		v, err := r.next()
		if err != nil {
			return 0, errors.NewInternal(err)
		}
		if uint64(v) < limit {
			return int(uint64(v) % bound), nil
		}
	}
}

// Character returns one rune at a uniformly random index of pool.
func (r *Random) Character(pool []rune) (rune, error) {
	if len(pool) == 0 {
		return 0, errors.NewEmptyPool("cannot pick a character from an empty pool")
	}
	i, err := r.Int(len(pool))
	if err != nil {
		return 0, err
	}
	return pool[i], nil
}

// Shuffle returns a Fisher-Yates permutation of s. The input is not modified.
func Shuffle[T any](r *Random, s []T) ([]T, error) {
	out := make([]T, len(s))
	copy(out, s)

	for i := len(out) - 1; i > 0; i-- {
		j, err := r.Int(i + 1)
		if err != nil {
			return nil, err
		}
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
