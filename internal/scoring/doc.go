// Package scoring computes weighted multi-factor similarity scores between a
// structured play record and a candidate highlight clip. Scores are
// deterministic, range over [0, 1], and carry a per-factor breakdown for
// diagnostics. Animated or graphic clips always score zero.
package scoring
