package metrics

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"
)

// TimelinessPolicy scores how current a chunk is from its originating
// filename. Policies must return a value in [0, 1].
type TimelinessPolicy func(filename string) float64

// FilenameMarker returns 1.0 when filename contains marker and fallback
// otherwise. It is deterministic.
func FilenameMarker(marker string, fallback float64) TimelinessPolicy {
	fallback = clamp01(fallback)
	return func(filename string) float64 {
		if marker != "" && strings.Contains(filename, marker) {
			return 1.0
		}
		return fallback
	}
}

// CoinFlip returns 1.0 when filename contains marker; otherwise it returns
// 1.0 or fallback with equal probability. Each flip is drawn from a PCG
// stream keyed by (seed, filename), so a seed always gives the same value for
// the same file however many workers call the policy and in whatever order.
// A zero seed draws one from the clock.
func CoinFlip(marker string, fallback float64, seed uint64) TimelinessPolicy {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	fallback = clamp01(fallback)
	return func(filename string) float64 {
		if marker != "" && strings.Contains(filename, marker) {
			return 1.0
		}
		h := fnv.New64a()
		h.Write([]byte(filename))
		if rand.New(rand.NewPCG(seed, h.Sum64())).Float64() > 0.5 {
			return 1.0
		}
		return fallback
	}
}

// Fixed always returns v.
func Fixed(v float64) TimelinessPolicy {
	v = clamp01(v)
	return func(string) float64 { return v }
}
