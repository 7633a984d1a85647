// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// negHalfBytes is (r-1)/2 for the BN254 scalar field, big-endian, used
// by the arithmetic subrelation (SPEC_FULL.md §4.1, §4.6). Hard-coded
// per spec: this value is a protocol constant, not derivable from
// gnark-crypto's exported API without an extra big.Int division on
// every use.
var negHalfBytes = [32]byte{
	0x18, 0x32, 0x27, 0x39, 0x70, 0x98, 0xd0, 0x14,
	0xdc, 0x28, 0x22, 0xdb, 0x40, 0xc0, 0xac, 0x2e,
	0x94, 0x19, 0xf4, 0x24, 0x3c, 0xdc, 0xb8, 0x48,
	0xa1, 0xf0, 0xfa, 0xc9, 0xf8, 0x00, 0x00, 0x00,
}

// negHalf returns (r-1)/2 as an Fr element.
func negHalf() fr.Element {
	var v fr.Element
	v.SetBytes(negHalfBytes[:])
	return v
}

// rModulus is the BN254 scalar field modulus, as a big.Int. Nothing in
// this package calls it; reduceDigestToFr reduces through
// fr.Element.SetBytes instead.
func rModulus() *big.Int {
	return fr.Modulus()
}

// reduceDigestToFr reduces a 256-bit big-endian digest modulo r via
// fr.Element.SetBytes, which performs the full reduction internally
// (no iterated subtraction loop); this is a thin wrapper kept
// distinct from raw SetBytes to document that the
// reduction is total (a squeezed Keccak256 digest is always < 2^256
// and thus always reducible, never itself an error path per
// SPEC_FULL.md §4.3).
func reduceDigestToFr(digest [32]byte) fr.Element {
	var v fr.Element
	v.SetBytes(digest[:])
	return v
}

// splitChallenge implements the 128-bit decomposition used by
// Transcript.ChallengeSplit (SPEC_FULL.md §4.3): given the 32-byte
// unreduced digest, lo is the low 16 bytes zero-extended to Fr and hi
// is the high 16 bytes shifted down and zero-extended to Fr.
func splitChallenge(digest [32]byte) (lo, hi fr.Element) {
	var loBytes, hiBytes [32]byte
	copy(loBytes[16:], digest[16:32])
	copy(hiBytes[16:], digest[0:16])
	lo.SetBytes(loBytes[:])
	hi.SetBytes(hiBytes[:])
	return lo, hi
}

// truncate128 keeps only the low 128 bits of a full 32-byte digest,
// zero-extended to Fr, matching Transcript.Challenge's single-value
// return (SPEC_FULL.md §4.3: "the 128-bit truncation is
// protocol-mandated even for single-valued challenges").
func truncate128(digest [32]byte) fr.Element {
	var loBytes [32]byte
	copy(loBytes[16:], digest[16:32])
	var v fr.Element
	v.SetBytes(loBytes[:])
	return v
}
