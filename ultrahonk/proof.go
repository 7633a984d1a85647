// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Proof-layout constants, SPEC_FULL.md §3.
const (
	LogNMax         = 28
	NumAllEntities  = 40
	numWitnessComms = 8
	sumcheckRoundsZK    = 9
	sumcheckRoundsNonZK = 8

	zkProofSize    = 16224
	nonZKProofSize = 14592
)

// Proof is a parsed fixed-size bb 0.87 UltraHonk proof. Parsing is a
// single length check followed by one decode pass over every field
// (not a lazy byte-offset view); downstream code then reads the typed
// slices directly, which keeps Sumcheck/Shplemini free of further
// offset arithmetic.
type Proof struct {
	IsZK bool
	LogN int

	PairingPointObject [PairingPointsSize]fr.Element

	W1, W2, W3, W4           bn254.G1Affine
	LookupReadCounts         bn254.G1Affine
	LookupReadTags           bn254.G1Affine
	LookupInverses           bn254.G1Affine
	ZPerm                    bn254.G1Affine

	LibraCommitment0 bn254.G1Affine // ZK only
	LibraSum         fr.Element     // ZK only

	SumcheckUnivariates [LogNMax][]fr.Element // length 9 (ZK) or 8 (non-ZK) each
	SumcheckEvaluations [NumAllEntities]fr.Element

	LibraEvaluation   fr.Element // ZK only
	LibraCommitment1  bn254.G1Affine // ZK only
	LibraCommitment2  bn254.G1Affine // ZK only

	GeminiMaskingPoly bn254.G1Affine // ZK only
	GeminiMaskingEval fr.Element     // ZK only

	GeminiFoldComms [LogNMax - 1]bn254.G1Affine
	GeminiAEvals    [LogNMax]fr.Element

	LibraPolyEvals [4]fr.Element // ZK only

	ShplonkQ    bn254.G1Affine
	KZGQuotient bn254.G1Affine
}

// byteReader walks a byte slice left to right, matching the fixed
// field order of SPEC_FULL.md §3; out-of-bounds reads are impossible
// once the total length has been checked up front.
type byteReader struct {
	b   []byte
	pos int
}

func (r *byteReader) take(n int) []byte {
	out := r.b[r.pos : r.pos+n]
	r.pos += n
	return out
}

func (r *byteReader) fr() fr.Element {
	var v fr.Element
	v.SetBytes(r.take(fieldSize))
	return v
}

func (r *byteReader) g1() (bn254.G1Affine, error) {
	return decodeG1Limbed(r.take(g1LimbedSize))
}

// ParseProof decodes a fixed-size UltraHonk proof blob. logN comes
// from the matching VerificationKey (SPEC_FULL.md §4.2: "Proof
// parsing... is a zero-copy length check; reject unless the blob is
// exactly the ZK or non-ZK fixed size").
func ParseProof(b []byte, logN int, isZK bool) (*Proof, error) {
	expected := nonZKProofSize
	if isZK {
		expected = zkProofSize
	}
	if len(b) != expected {
		return nil, newProofError(ProofErrInvalidSize, expected, len(b))
	}
	if logN <= 0 || logN > LogNMax {
		return nil, newProofError(ProofErrInvalidSize, 0, logN)
	}

	r := &byteReader{b: b}
	p := &Proof{IsZK: isZK, LogN: logN}
	var err error

	for i := 0; i < PairingPointsSize; i++ {
		p.PairingPointObject[i] = r.fr()
	}

	if p.W1, err = r.g1(); err != nil {
		return nil, err
	}
	if p.W2, err = r.g1(); err != nil {
		return nil, err
	}
	if p.W3, err = r.g1(); err != nil {
		return nil, err
	}
	if p.LookupReadCounts, err = r.g1(); err != nil {
		return nil, err
	}
	if p.LookupReadTags, err = r.g1(); err != nil {
		return nil, err
	}
	if p.W4, err = r.g1(); err != nil {
		return nil, err
	}
	if p.LookupInverses, err = r.g1(); err != nil {
		return nil, err
	}
	if p.ZPerm, err = r.g1(); err != nil {
		return nil, err
	}

	if isZK {
		if p.LibraCommitment0, err = r.g1(); err != nil {
			return nil, err
		}
		p.LibraSum = r.fr()
	}

	roundLen := sumcheckRoundsNonZK
	if isZK {
		roundLen = sumcheckRoundsZK
	}
	for i := 0; i < LogNMax; i++ {
		round := make([]fr.Element, roundLen)
		for j := 0; j < roundLen; j++ {
			round[j] = r.fr()
		}
		p.SumcheckUnivariates[i] = round
	}

	for i := 0; i < NumAllEntities; i++ {
		p.SumcheckEvaluations[i] = r.fr()
	}

	if isZK {
		p.LibraEvaluation = r.fr()
		if p.LibraCommitment1, err = r.g1(); err != nil {
			return nil, err
		}
		if p.LibraCommitment2, err = r.g1(); err != nil {
			return nil, err
		}
		if p.GeminiMaskingPoly, err = r.g1(); err != nil {
			return nil, err
		}
		p.GeminiMaskingEval = r.fr()
	}

	for i := 0; i < LogNMax-1; i++ {
		if p.GeminiFoldComms[i], err = r.g1(); err != nil {
			return nil, err
		}
	}
	for i := 0; i < LogNMax; i++ {
		p.GeminiAEvals[i] = r.fr()
	}

	if isZK {
		for i := 0; i < 4; i++ {
			p.LibraPolyEvals[i] = r.fr()
		}
	}

	if p.ShplonkQ, err = r.g1(); err != nil {
		return nil, err
	}
	if p.KZGQuotient, err = r.g1(); err != nil {
		return nil, err
	}

	if r.pos != len(b) {
		return nil, newProofError(ProofErrInvalidSize, len(b), r.pos)
	}
	return p, nil
}
