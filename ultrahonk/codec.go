// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

const (
	fieldSize     = 32
	g1RawSize     = 2 * fieldSize  // x || y
	g1LimbedSize  = 4 * fieldSize  // x0 || x1 || y0 || y1
	g2RawSize     = 4 * fieldSize  // x.a0 || x.a1 || y.a0 || y.a1
	limbLowBytes  = 17             // low limb's significant byte count (136 bits / 8)
	limbHighBytes = 15             // high limb's significant byte count
)

// decodeG1Raw parses a 64-byte x||y affine G1 point. An all-zero blob
// decodes to the point at infinity, matching SPEC_FULL.md §3.
func decodeG1Raw(b []byte) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	if len(b) != g1RawSize {
		return p, newProofError(ProofErrInvalidG1Point, g1RawSize, len(b))
	}
	if isAllZero(b) {
		return p, nil
	}
	p.X.SetBytes(b[0:fieldSize])
	p.Y.SetBytes(b[fieldSize:g1RawSize])
	if !p.IsOnCurve() {
		return p, newProofError(ProofErrInvalidG1Point, 0, 0)
	}
	return p, nil
}

// encodeG1Raw serializes a G1 point as 64-byte x||y, big endian.
func encodeG1Raw(p *bn254.G1Affine) [g1RawSize]byte {
	var out [g1RawSize]byte
	if p.IsInfinity() {
		return out
	}
	xb := p.X.Bytes()
	yb := p.Y.Bytes()
	copy(out[0:fieldSize], xb[:])
	copy(out[fieldSize:g1RawSize], yb[:])
	return out
}

// decodeG1Limbed reconstructs an affine G1 point from Barretenberg's
// recursive-friendly 128-byte limbed encoding: x0||x1||y0||y1, each a
// 32-byte big-endian limb, where coord = low | (high << 136).
//
// Per DESIGN.md's resolution of spec.md's Open Question (a), the
// unused high bytes of each limb (everything above the low 17 bytes
// of the low limb, and above the low 15 bytes of the high limb) must
// be zero; a nonzero reserved byte is an ambiguous encoding and is
// rejected rather than silently ignored.
func decodeG1Limbed(b []byte) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	if len(b) != g1LimbedSize {
		return p, newProofError(ProofErrInvalidG1Point, g1LimbedSize, len(b))
	}
	x0 := b[0*fieldSize : 1*fieldSize]
	x1 := b[1*fieldSize : 2*fieldSize]
	y0 := b[2*fieldSize : 3*fieldSize]
	y1 := b[3*fieldSize : 4*fieldSize]

	if isAllZero(b) {
		return p, nil
	}

	x, err := recombineLimbs(x0, x1)
	if err != nil {
		return p, err
	}
	y, err := recombineLimbs(y0, y1)
	if err != nil {
		return p, err
	}
	p.X.SetBytes(x[:])
	p.Y.SetBytes(y[:])
	if !p.IsOnCurve() {
		return p, newProofError(ProofErrInvalidG1Point, 0, 0)
	}
	return p, nil
}

// recombineLimbs reconstructs a single 32-byte big-endian field
// coordinate from its low and high 32-byte limbs, bit-exact per
// SPEC_FULL.md §4.2: the low 17 bytes come from the low limb, the
// high 15 bytes come from the low 15 bytes of the high limb.
func recombineLimbs(low, high []byte) ([fieldSize]byte, error) {
	var out [fieldSize]byte

	// Reserved (non-significant) region of the low limb: bytes
	// [0, fieldSize-limbLowBytes) must be zero.
	for _, bb := range low[:fieldSize-limbLowBytes] {
		if bb != 0 {
			return out, newProofError(ProofErrInvalidScalar, 0, 0)
		}
	}
	// Reserved region of the high limb: bytes [0, fieldSize-limbHighBytes)
	// must be zero (only the low 15 bytes of the high limb are significant).
	for _, bb := range high[:fieldSize-limbHighBytes] {
		if bb != 0 {
			return out, newProofError(ProofErrInvalidScalar, 0, 0)
		}
	}

	copy(out[fieldSize-limbLowBytes:], low[fieldSize-limbLowBytes:])
	// high contributes bits [136, 136+120), i.e. big-endian bytes
	// [0, 15) of the reconstructed 32-byte value, taken from high's
	// low 15 bytes.
	copy(out[0:fieldSize-limbLowBytes], high[fieldSize-limbHighBytes:])
	return out, nil
}

// splitLimbs is the exact inverse of recombineLimbs: it decomposes a
// 32-byte big-endian field coordinate into its low and high 32-byte
// limbs (low 17 bytes, high 15 bytes significant respectively).
func splitLimbs(coord [fieldSize]byte) (low, high [fieldSize]byte) {
	copy(low[fieldSize-limbLowBytes:], coord[fieldSize-limbLowBytes:])
	copy(high[fieldSize-limbHighBytes:], coord[0:fieldSize-limbLowBytes])
	return low, high
}

// limbedFr returns a G1 point's four limbs (x0, x1, y0, y1) as field
// elements, the representation the transcript absorbs verbatim
// (SPEC_FULL.md §4.4: "each in limbed 4-Fr form, matching Solidity's
// transcript representation").
func limbedFr(p *bn254.G1Affine) (x0, x1, y0, y1 fr.Element) {
	xb := p.X.Bytes()
	yb := p.Y.Bytes()
	xlo, xhi := splitLimbs(xb)
	ylo, yhi := splitLimbs(yb)
	x0.SetBytes(xlo[:])
	x1.SetBytes(xhi[:])
	y0.SetBytes(ylo[:])
	y1.SetBytes(yhi[:])
	return x0, x1, y0, y1
}

// decodeG2Raw parses a 128-byte G2 point as x.a0||x.a1||y.a0||y.a1.
func decodeG2Raw(b []byte) (bn254.G2Affine, error) {
	var p bn254.G2Affine
	if len(b) != g2RawSize {
		return p, newBn254Error(Bn254ErrInvalidG2, nil)
	}
	p.X.A0.SetBytes(b[0*fieldSize : 1*fieldSize])
	p.X.A1.SetBytes(b[1*fieldSize : 2*fieldSize])
	p.Y.A0.SetBytes(b[2*fieldSize : 3*fieldSize])
	p.Y.A1.SetBytes(b[3*fieldSize : 4*fieldSize])
	if p.X.A0.IsZero() && p.X.A1.IsZero() && p.Y.A0.IsZero() && p.Y.A1.IsZero() {
		return p, nil
	}
	if !p.IsOnCurve() {
		return p, newBn254Error(Bn254ErrInvalidG2, nil)
	}
	return p, nil
}

func isAllZero(b []byte) bool {
	for _, bb := range b {
		if bb != 0 {
			return false
		}
	}
	return true
}
