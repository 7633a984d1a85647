// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranscriptDeterministic(t *testing.T) {
	t1 := NewTranscript()
	t2 := NewTranscript()

	t1.AppendU64(42)
	t2.AppendU64(42)

	c1 := t1.Challenge()
	c2 := t2.Challenge()
	require.True(t, c1.Equal(&c2))
}

func TestTranscriptDifferentInputsDiverge(t *testing.T) {
	t1 := NewTranscript()
	t2 := NewTranscript()
	t1.AppendU64(1)
	t2.AppendU64(2)

	c1 := t1.Challenge()
	c2 := t2.Challenge()
	require.False(t, c1.Equal(&c2))
}

// TestTranscriptChallengeChaining verifies the buffer is reset to
// exactly the 32-byte digest after a squeeze, not cleared, so the next
// absorbed value chains against the prior challenge (SPEC_FULL.md
// §4.3).
func TestTranscriptChallengeChaining(t *testing.T) {
	tr := NewTranscript()
	tr.AppendU64(7)
	_ = tr.Challenge()
	// squeeze() resets the buffer to the full 32-byte digest, not the
	// 128-bit-truncated challenge value returned to the caller.
	require.Equal(t, 32, tr.BufferLen())

	// Two transcripts fed the identical operation sequence chain
	// identically: the second challenge depends on the full digest left
	// in the buffer after the first squeeze, not just the returned
	// truncated challenge.
	t1 := NewTranscript()
	t1.AppendU64(7)
	_ = t1.Challenge()
	t1.AppendU64(9)
	c1 := t1.Challenge()

	t2 := NewTranscript()
	t2.AppendU64(7)
	_ = t2.Challenge()
	t2.AppendU64(9)
	c2 := t2.Challenge()

	require.True(t, c1.Equal(&c2))
}

func TestTranscriptChallengeSplitMatchesSingleChallenge(t *testing.T) {
	t1 := NewTranscript()
	t1.AppendU64(123)
	lo, _ := t1.ChallengeSplit()

	t2 := NewTranscript()
	t2.AppendU64(123)
	single := t2.Challenge()

	require.True(t, lo.Equal(&single), "Challenge() and ChallengeSplit()'s low half must agree bit-for-bit")
}

func TestTranscriptAppendG1LimbedMatchesManualLimbedFr(t *testing.T) {
	p := testG1()

	t1 := NewTranscript()
	t1.AppendG1Limbed(p)
	c1 := t1.Challenge()

	x0, x1, y0, y1 := limbedFr(&p)
	t2 := NewTranscript()
	t2.AppendFr(x0)
	t2.AppendFr(x1)
	t2.AppendFr(y0)
	t2.AppendFr(y1)
	c2 := t2.Challenge()

	require.True(t, c1.Equal(&c2))
}
