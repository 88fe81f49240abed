// Package ids allocates identifiers for blocks finalized from palette templates.
package ids

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Generator returns identifiers that do not collide within the process.
type Generator interface {
	NewID() (string, error)
}

const defaultSuffixLen = 6

// Random returns prefix-<suffix> ids where suffix is lowercase base32 of crypto/rand bytes.
// The zero value yields 6-char suffixes with the "blk" prefix.
type Random struct {
	Prefix    string
	SuffixLen int
}

func (r Random) NewID() (string, error) {
	ln := r.SuffixLen
	if ln <= 0 {
		ln = defaultSuffixLen
	}
	prefix := strings.TrimSpace(r.Prefix)
	if prefix == "" {
		prefix = "blk"
	}
	// 5 random bytes -> 8 base32 chars; read enough to cover ln.
	n := (ln*5 + 7) / 8
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b))
	if len(suffix) > ln {
		suffix = suffix[:ln]
	}
	return prefix + "-" + suffix, nil
}

// UUID returns random (v4) UUID strings.
type UUID struct{}

func (UUID) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Sequence returns prefix-1, prefix-2, ... Useful for scripted replays and tests
// where output must be deterministic.
type Sequence struct {
	Prefix string

	mu   sync.Mutex
	next int
}

func (s *Sequence) NewID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	prefix := s.Prefix
	if prefix == "" {
		prefix = "blk"
	}
	return fmt.Sprintf("%s-%d", prefix, s.next), nil
}

// New returns the generator for a configured style ("random", "uuid", "sequence").
func New(style, prefix string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "", "random":
		return Random{Prefix: prefix}, nil
	case "uuid":
		return UUID{}, nil
	case "sequence", "seq":
		return &Sequence{Prefix: prefix}, nil
	default:
		return nil, fmt.Errorf("unknown id style: %s", style)
	}
}
