package field

import "gonum.org/v1/gonum/spatial/r2"

// LinkAlpha maps a pair distance to line opacity. It falls linearly from
// maxAlpha at distance 0 to 0 at threshold and stays 0 beyond it.
func LinkAlpha(d, threshold, maxAlpha float64) float64 {
	if threshold <= 0 || d >= threshold {
		return 0
	}
	if d < 0 {
		d = 0
	}
	return maxAlpha * (1 - d/threshold)
}

// Links calls fn for every unordered pair (i < j) closer than the link
// distance. The pass is O(N²) and meant for fields of a few hundred
// particles at most.
func (f *Field) Links(fn func(i, j int, d, alpha float64)) {
	limit := f.params.LinkDistance
	for i := 0; i < len(f.particles); i++ {
		for j := i + 1; j < len(f.particles); j++ {
			d := r2.Norm(r2.Sub(f.particles[i].Pos, f.particles[j].Pos))
			if d < limit {
				fn(i, j, d, LinkAlpha(d, limit, f.params.MaxLinkAlpha))
			}
		}
	}
}
