package client

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"strings"
)

// Performer score tiers, mirroring the skewed distribution a real
// competition roster tends to have: mostly average scores, a handful
// of standouts, a handful of stragglers.
const (
	tierAverageMin   = 30
	tierAverageRange = 40
	tierHighMin      = 70
	tierHighRange    = 20
	tierLowMin       = 1
	tierLowRange     = 29
	tierEliteMin     = 90
	tierEliteRange   = 10
)

const tierDivisor = 8

// GenerateFile writes a synthetic "<id> <score>" fixture file with n
// competitors, skewed across performer tiers, suitable for driving the
// client without hand-authoring a roster.
func GenerateFile(path string, n int) error {
	if n <= 0 {
		return fmt.Errorf("competitor count must be positive, got %d", n)
	}

	var b strings.Builder
	for id := 1; id <= n; id++ {
		score, err := randomScore()
		if err != nil {
			return fmt.Errorf("generate score for competitor %d: %w", id, err)
		}
		fmt.Fprintf(&b, "%d %d\n", id, score)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write competitors file: %w", err)
	}
	return nil
}

func randomScore() (int64, error) {
	tier, err := rand.Int(rand.Reader, big.NewInt(tierDivisor))
	if err != nil {
		return 0, err
	}

	var min, span int64
	switch tier.Int64() {
	case 0, 1, 2, 3:
		min, span = tierAverageMin, tierAverageRange
	case 4, 5:
		min, span = tierHighMin, tierHighRange
	case 6:
		min, span = tierLowMin, tierLowRange
	default:
		min, span = tierEliteMin, tierEliteRange
	}

	offset, err := rand.Int(rand.Reader, big.NewInt(span+1))
	if err != nil {
		return 0, err
	}
	return min + offset.Int64(), nil
}
