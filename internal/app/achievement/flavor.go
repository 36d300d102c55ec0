package achievement

import "math/rand"

// RandomTextProvider picks a uniformly random variant. The first
// variant of every category is the canonical label, so callers that
// want deterministic output inject CanonicalTextProvider instead.
type RandomTextProvider struct {
	rng *rand.Rand
}

// NewRandomTextProvider seeds a provider. Seed 0 means an arbitrary
// time-based source is fine for the caller.
func NewRandomTextProvider(seed int64) *RandomTextProvider {
	return &RandomTextProvider{rng: rand.New(rand.NewSource(seed))}
}

// Pick returns one of the variants, or the empty string if none exist.
func (p *RandomTextProvider) Pick(_ string, variants []string) string {
	if len(variants) == 0 {
		return ""
	}
	return variants[p.rng.Intn(len(variants))]
}

// CanonicalTextProvider always picks the first variant. Used in tests
// and anywhere stable output matters more than flavor.
type CanonicalTextProvider struct{}

// Pick returns the first variant.
func (CanonicalTextProvider) Pick(_ string, variants []string) string {
	if len(variants) == 0 {
		return ""
	}
	return variants[0]
}
