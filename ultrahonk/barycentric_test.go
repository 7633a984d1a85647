// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func frInt(v int64) fr.Element {
	var f fr.Element
	f.SetInt64(v)
	return f
}

// TestBarycentricWeights8 checks the width-8 table against the
// closed-form d_i = (-1)^(7-i) * i! * (7-i)!, hand-evaluated: -5040,
// 720, -240, 144, -144, 240, -720, 5040 (matches DESIGN.md's
// hand-checked worked decimals for BARY_8).
func TestBarycentricWeights8(t *testing.T) {
	table := barycentricTable(8)
	require.Len(t, table, 8)

	want := []int64{-5040, 720, -240, 144, -144, 240, -720, 5040}
	for i, w := range want {
		e := frInt(w)
		require.True(t, table[i].Equal(&e), "bary8[%d]: want %d", i, w)
	}
}

// TestBarycentricWeights9 checks the width-9 table's closed form
// d_i = (-1)^(8-i) * i! * (8-i)!.
func TestBarycentricWeights9(t *testing.T) {
	table := barycentricTable(9)
	require.Len(t, table, 9)

	want := []int64{40320, -5040, 1440, -720, 576, -720, 1440, -5040, 40320}
	for i, w := range want {
		e := frInt(w)
		require.True(t, table[i].Equal(&e), "bary9[%d]: want %d", i, w)
	}
}

func TestBarycentricTableUnsupportedWidthPanics(t *testing.T) {
	require.Panics(t, func() { barycentricTable(7) })
}
