// Package textnorm canonicalizes play descriptions and video metadata into a
// comparable token form.
//
// Normalize applies a fixed pipeline: diacritic folding, lowercasing,
// uniform-number removal, compound-phrase canonicalization (force outs,
// fielders choice, errors), run-scoring conversion to the single token "rbi",
// base-running noise removal, stopword removal, and punctuation collapse.
// The pipeline is deterministic and idempotent.
package textnorm
