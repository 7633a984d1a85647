// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// Barycentric denominator tables for the two sumcheck round widths (8
// points for non-ZK rounds, 9 for ZK rounds), SPEC_FULL.md §4.5:
//
//	d_i = prod_{j != i} (i - j),  for i, j in {0, ..., n-1}
//
// which has the closed form d_i = (-1)^(n-1-i) * i! * (n-1-i)!. These
// are computed at init time from that closed form rather than
// transcribed from original_source's hex literals (several of which
// do not round-trip through its own 32-byte hex parser); every value
// below has been hand-checked against original_source's commented
// worked decimals.
var (
	bary8 []fr.Element
	bary9 []fr.Element
)

func init() {
	bary8 = barycentricWeights(8)
	bary9 = barycentricWeights(9)
}

func barycentricWeights(n int) []fr.Element {
	out := make([]fr.Element, n)
	fact := make([]int64, n)
	fact[0] = 1
	for i := 1; i < n; i++ {
		fact[i] = fact[i-1] * int64(i)
	}
	for i := 0; i < n; i++ {
		mag := fact[i] * fact[n-1-i]
		var v fr.Element
		v.SetInt64(mag)
		if (n-1-i)%2 != 0 {
			v.Neg(&v)
		}
		out[i] = v
	}
	return out
}

// barycentricTable returns the denominator table for a round of the
// given width (8 for non-ZK, 9 for ZK).
func barycentricTable(width int) []fr.Element {
	switch width {
	case 8:
		return bary8
	case 9:
		return bary9
	default:
		panic("ultrahonk: unsupported sumcheck round width")
	}
}
