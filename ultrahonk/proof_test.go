// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

// proofBuilder assembles a syntactically valid fixed-size proof blob
// field by field, in SPEC_FULL.md §3's exact order, so ParseProof's
// byte-offset arithmetic can be exercised end to end without a real
// prover.
type proofBuilder struct {
	isZK bool
	buf  []byte
}

func newProofBuilder(isZK bool) *proofBuilder {
	return &proofBuilder{isZK: isZK}
}

func (b *proofBuilder) fr(v fr.Element) {
	enc := v.Bytes()
	b.buf = append(b.buf, enc[:]...)
}

func (b *proofBuilder) zeroFr() {
	var v fr.Element
	b.fr(v)
}

func (b *proofBuilder) g1(p bn254.G1Affine) {
	x0, x1, y0, y1 := limbedFr(&p)
	b.fr(x0)
	b.fr(x1)
	b.fr(y0)
	b.fr(y1)
}

func (b *proofBuilder) zeroG1() {
	var p bn254.G1Affine
	b.g1(p)
}

func (b *proofBuilder) build() []byte {
	g := testG1()

	for i := 0; i < PairingPointsSize; i++ {
		b.zeroFr()
	}
	for i := 0; i < numWitnessComms; i++ {
		b.g1(g)
	}
	if b.isZK {
		b.zeroG1()
		b.zeroFr()
	}

	roundLen := sumcheckRoundsNonZK
	if b.isZK {
		roundLen = sumcheckRoundsZK
	}
	for i := 0; i < LogNMax; i++ {
		for j := 0; j < roundLen; j++ {
			b.zeroFr()
		}
	}
	for i := 0; i < NumAllEntities; i++ {
		b.zeroFr()
	}
	if b.isZK {
		b.zeroFr()
		b.zeroG1()
		b.zeroG1()
		b.zeroG1()
		b.zeroFr()
	}
	for i := 0; i < LogNMax-1; i++ {
		b.zeroG1()
	}
	for i := 0; i < LogNMax; i++ {
		b.zeroFr()
	}
	if b.isZK {
		for i := 0; i < 4; i++ {
			b.zeroFr()
		}
	}
	b.zeroG1()
	b.zeroG1()

	return b.buf
}

func TestParseProofSizes(t *testing.T) {
	zk := newProofBuilder(true).build()
	require.Len(t, zk, zkProofSize)

	nonZK := newProofBuilder(false).build()
	require.Len(t, nonZK, nonZKProofSize)
}

func TestParseProofNonZK(t *testing.T) {
	b := newProofBuilder(false).build()
	p, err := ParseProof(b, 4, false)
	require.NoError(t, err)
	require.False(t, p.IsZK)
	require.Equal(t, 4, p.LogN)
	require.True(t, p.W1.Equal(testRefG1()))
	for _, round := range p.SumcheckUnivariates {
		require.Len(t, round, sumcheckRoundsNonZK)
	}
}

func TestParseProofZK(t *testing.T) {
	b := newProofBuilder(true).build()
	p, err := ParseProof(b, 4, true)
	require.NoError(t, err)
	require.True(t, p.IsZK)
	for _, round := range p.SumcheckUnivariates {
		require.Len(t, round, sumcheckRoundsZK)
	}
}

func TestParseProofWrongSize(t *testing.T) {
	_, err := ParseProof(make([]byte, 10), 4, false)
	require.Error(t, err)
	var pe *ProofError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, ProofErrInvalidSize, pe.Kind)
}

func TestParseProofInvalidLogN(t *testing.T) {
	b := newProofBuilder(false).build()
	_, err := ParseProof(b, 0, false)
	require.Error(t, err)

	_, err = ParseProof(b, LogNMax+1, false)
	require.Error(t, err)
}

func testRefG1() *bn254.G1Affine {
	g := testG1()
	return &g
}
