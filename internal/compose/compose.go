package compose

import "math"

// Target is the minimum representation of one bucket: the larger of an
// absolute count and a share of the output size.
type Target struct {
	MinCount int     `yaml:"min_count" json:"minCount"`
	MinShare float64 `yaml:"min_share" json:"minShare"`
}

// Min returns the guaranteed count for an output of the given size, never
// more than size.
func (t Target) Min(size int) int {
	n := t.MinCount
	if share := int(math.Ceil(t.MinShare * float64(size))); share > n {
		n = share
	}
	if n > size {
		n = size
	}
	if n < 0 {
		n = 0
	}
	return n
}

// Shuffle returns a Fisher-Yates permutation of items driven by NewRand(seed).
// items is not modified.
func Shuffle[T any](items []T, seed int64) []T {
	out := make([]T, len(items))
	copy(out, items)
	rnd := NewRand(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Balance picks up to size items. Buckets are visited in order and each
// claims its guaranteed minimum (as far as it has members); the remaining
// slots are then filled from the leftovers in input order. The picks are
// returned in input order, so a shuffled input stays shuffled. Buckets
// absent from targets have no minimum.
func Balance[T any, B comparable](items []T, bucketOf func(T) B, targets map[B]Target, order []B, size int) []T {
	if size > len(items) || size < 0 {
		size = len(items)
	}
	picked := make([]bool, len(items))
	n := 0

	for _, b := range order {
		t, ok := targets[b]
		if !ok {
			continue
		}
		want := t.Min(size)
		for i, it := range items {
			if want == 0 || n == size {
				break
			}
			if !picked[i] && bucketOf(it) == b {
				picked[i] = true
				n++
				want--
			}
		}
	}
	for i := range items {
		if n == size {
			break
		}
		if !picked[i] {
			picked[i] = true
			n++
		}
	}

	out := make([]T, 0, size)
	for i, it := range items {
		if picked[i] {
			out = append(out, it)
		}
	}
	return out
}

// Options control Compose.
type Options[B comparable] struct {
	Seed     string
	Salt     int64
	Symptoms []string
	Size     int // <= 0 means len(items)
	Targets  map[B]Target
	Order    []B
}

// Compose returns items in input order, truncated to Size, when no seed is
// given. With a seed it shuffles deterministically and then balances.
func Compose[T any, B comparable](items []T, bucketOf func(T) B, opts Options[B]) []T {
	size := opts.Size
	if size <= 0 || size > len(items) {
		size = len(items)
	}
	if opts.Seed == "" {
		out := make([]T, size)
		copy(out, items[:size])
		return out
	}
	shuffled := Shuffle(items, DeriveSeed(opts.Seed, opts.Salt, opts.Symptoms))
	return Balance(shuffled, bucketOf, opts.Targets, opts.Order, size)
}
