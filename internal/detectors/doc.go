// Package detectors holds the per-line detection primitives: rule pattern
// matching, Shannon entropy scoring and the false-positive filters that keep
// both quiet on comments, markers and structural noise.
//
// Every function here works on a single line of text and is free of shared
// state, so callers may use them from any number of goroutines.
package detectors
