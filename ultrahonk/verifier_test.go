// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestNewVerifierDefaultsHaveNoSRS(t *testing.T) {
	v := NewVerifier()
	_, err := v.Verify(nil, nil, nil, false)
	require.Error(t, err)
	var ve *VerifyError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, VerifyErrMissingSRS, ve.Kind)
	require.ErrorIs(t, err, ErrMissingSRS)
}

func TestWithSRSOptionIsApplied(t *testing.T) {
	srs := NewSRS(testG2(), testG2())
	v := NewVerifier(WithSRS(srs))
	require.Equal(t, srs, v.srs)
}

func TestVerifyRejectsMalformedVK(t *testing.T) {
	srs := NewSRS(testG2(), testG2())
	v := NewVerifier(WithSRS(srs))

	_, err := v.Verify(make([]byte, 5), nil, nil, false)
	require.Error(t, err)
	var ke *KeyError
	require.ErrorAs(t, err, &ke)
}

func TestVerifyRejectsMalformedProof(t *testing.T) {
	srs := NewSRS(testG2(), testG2())
	v := NewVerifier(WithSRS(srs))

	vkBytes := buildNewFormatKeyBytes(16, 4, PairingPointsSize, 0)
	_, err := v.Verify(vkBytes, make([]byte, 5), []fr.Element{}, false)
	require.Error(t, err)
	var pe *ProofError
	require.ErrorAs(t, err, &pe)
}

func TestVerifyRunsFullPipelineOnWellFormedZeroProof(t *testing.T) {
	srs := NewSRS(testG2(), testG2())
	v := NewVerifier(WithSRS(srs))

	vkBytes := buildNewFormatKeyBytes(16, 4, PairingPointsSize, 0)
	proofBytes := newProofBuilder(false).build()

	// Not asserting true/false here: an all-zero fixture is a
	// structural smoke test for the pipeline wiring, not a substitute
	// for a real accept/reject vector from an actual prover.
	_, err := v.Verify(vkBytes, proofBytes, nil, false)
	if err != nil {
		var ve *VerifyError
		require.ErrorAs(t, err, &ve)
	}
}

func TestNewSegmentStateUsesVerifierSRS(t *testing.T) {
	srs := NewSRS(testG2(), testG2())
	v := NewVerifier(WithSRS(srs))

	vk := testVK(PairingPointsSize)
	proof, err := ParseProof(newProofBuilder(false).build(), 4, false)
	require.NoError(t, err)

	s := v.NewSegmentState(vk, proof, nil)
	require.Equal(t, srs, s.SRS)
}
