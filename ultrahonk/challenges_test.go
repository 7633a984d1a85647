// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func testVK(numPublicInputs uint64) *VerificationKey {
	g := testG1()
	return &VerificationKey{
		CircuitSize:     16,
		Log2CircuitSize: 4,
		Log2DomainSize:  4,
		NumPublicInputs: numPublicInputs,
		PubInputsOffset: 0,
		Commitments:     []bn254.G1Affine{g},
	}
}

func TestDeriveChallengesRejectsWrongPublicInputCount(t *testing.T) {
	vk := testVK(PairingPointsSize + 2)
	proof, err := ParseProof(newProofBuilder(false).build(), 4, false)
	require.NoError(t, err)

	_, _, err = DeriveChallenges(vk, proof, []fr.Element{frInt(1)})
	require.Error(t, err)
	var ve *VerifyError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, VerifyErrPublicInput, ve.Kind)
}

func TestDeriveChallengesDeterministic(t *testing.T) {
	vk := testVK(PairingPointsSize)
	proof, err := ParseProof(newProofBuilder(false).build(), 4, false)
	require.NoError(t, err)

	c1, t1, err := DeriveChallenges(vk, proof, nil)
	require.NoError(t, err)
	c2, _, err := DeriveChallenges(vk, proof, nil)
	require.NoError(t, err)

	require.True(t, c1.Eta.Equal(&c2.Eta))
	require.True(t, c1.Beta.Equal(&c2.Beta))
	require.True(t, c1.Gamma.Equal(&c2.Gamma))
	for i := range c1.Alphas {
		require.True(t, c1.Alphas[i].Equal(&c2.Alphas[i]), "alpha %d", i)
	}
	require.Equal(t, 32, t1.BufferLen())
}

func TestDeriveChallengesEtaPowersConsistent(t *testing.T) {
	vk := testVK(PairingPointsSize)
	proof, err := ParseProof(newProofBuilder(false).build(), 4, false)
	require.NoError(t, err)

	c, _, err := DeriveChallenges(vk, proof, nil)
	require.NoError(t, err)

	var etaTwo, etaThree fr.Element
	etaTwo.Mul(&c.Eta, &c.Eta)
	etaThree.Mul(&etaTwo, &c.Eta)
	require.True(t, c.EtaTwo.Equal(&etaTwo))
	require.True(t, c.EtaThree.Equal(&etaThree))
}

func TestComputePublicInputsDeltaEmptyInputsIsOne(t *testing.T) {
	vk := testVK(PairingPointsSize)
	var beta, gamma fr.Element
	beta.SetInt64(2)
	gamma.SetInt64(3)

	delta, err := computePublicInputsDelta(vk, beta, gamma, nil)
	require.NoError(t, err)
	var one fr.Element
	one.SetOne()
	require.True(t, delta.Equal(&one))
}

func TestNumAlphasMatchesBatchSubrelationsLoopBound(t *testing.T) {
	// BatchSubrelations folds sub[1:NumSubrelations] against
	// alphas[0:numAlphas]; the two must agree exactly.
	require.Equal(t, NumSubrelations-1, numAlphas)
}
