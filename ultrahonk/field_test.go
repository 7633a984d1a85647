// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestNegHalfIsHalfOfModulusMinusOne(t *testing.T) {
	h := negHalf()
	var two, doubled, one fr.Element
	two.SetInt64(2)
	one.SetOne()
	doubled.Mul(&h, &two)
	doubled.Add(&doubled, &one)
	require.True(t, doubled.IsZero(), "2*negHalf()+1 must equal r (i.e. 0 mod r)")
}

func TestSplitChallengeLowHalfMatchesTruncate128(t *testing.T) {
	var digest [32]byte
	for i := range digest {
		digest[i] = byte(i + 1)
	}
	lo, hi := splitChallenge(digest)
	tr := truncate128(digest)
	require.True(t, lo.Equal(&tr), "Challenge() must return the same low-128-bit value ChallengeSplit does")
	require.False(t, hi.IsZero())
	require.False(t, lo.Equal(&hi))
}

func TestSplitChallengeZeroDigest(t *testing.T) {
	var digest [32]byte
	lo, hi := splitChallenge(digest)
	require.True(t, lo.IsZero())
	require.True(t, hi.IsZero())
}

func TestReduceDigestToFrMatchesSetBytes(t *testing.T) {
	var digest [32]byte
	digest[31] = 7
	got := reduceDigestToFr(digest)
	var want fr.Element
	want.SetBytes(digest[:])
	require.True(t, got.Equal(&want))
}
