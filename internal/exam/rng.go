package exam

import (
	"crypto/sha256"
	"math/rand/v2"

	"github.com/enem-prep/backend/internal/models"
)

// newRand returns a ChaCha8 generator keyed by the seed's SHA-256, so the
// same seed always reproduces the same shuffles. An empty seed gets a
// randomly seeded PCG.
func newRand(seed string) *rand.Rand {
	if seed == "" {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewChaCha8(sha256.Sum256([]byte(seed))))
}

func shuffle(rng *rand.Rand, items []models.Item) {
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}
