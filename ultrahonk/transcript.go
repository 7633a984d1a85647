// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"encoding/binary"

	luxcrypto "github.com/luxfi/crypto"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Transcript is the Keccak256 Fiat-Shamir sponge used to derive every
// verifier challenge, SPEC_FULL.md §4.3. It is a buffered
// absorb-then-squeeze construction with "challenge chaining": each
// squeeze clears the buffer and re-seeds it with the full 32-byte
// digest, not the Fr-reduced value.
type Transcript struct {
	buf []byte
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// AppendFr absorbs a field element as its canonical 32-byte big-endian
// encoding.
func (t *Transcript) AppendFr(v fr.Element) {
	b := v.Bytes()
	t.buf = append(t.buf, b[:]...)
}

// AppendG1 absorbs a G1 point as its canonical 64-byte x||y encoding.
func (t *Transcript) AppendG1(p bn254.G1Affine) {
	enc := encodeG1Raw(&p)
	t.buf = append(t.buf, enc[:]...)
}

// AppendG1Limbed absorbs a G1 point as its four-limb decomposition
// (x0, x1, y0, y1), each a 32-byte field element — the form the
// transcript actually uses for commitments, matching Solidity's
// on-chain representation (SPEC_FULL.md §4.4).
func (t *Transcript) AppendG1Limbed(p bn254.G1Affine) {
	x0, x1, y0, y1 := limbedFr(&p)
	t.AppendFr(x0)
	t.AppendFr(x1)
	t.AppendFr(y0)
	t.AppendFr(y1)
}

// AppendU64 absorbs a u64 as a 32-byte big-endian integer.
func (t *Transcript) AppendU64(v uint64) {
	var enc [32]byte
	binary.BigEndian.PutUint64(enc[24:], v)
	t.buf = append(t.buf, enc[:]...)
}

// AppendBytes absorbs raw bytes as-is.
func (t *Transcript) AppendBytes(b []byte) {
	t.buf = append(t.buf, b...)
}

// squeeze hashes the current buffer with Keccak256, then resets the
// buffer to exactly that 32-byte digest — the "challenge chaining"
// invariant of SPEC_FULL.md §4.3.
func (t *Transcript) squeeze() [32]byte {
	digest := luxcrypto.Keccak256(t.buf)
	var out [32]byte
	copy(out[:], digest)
	t.buf = append(t.buf[:0], out[:]...)
	return out
}

// Challenge hashes the buffer and returns the low 128 bits of the
// digest as a field element, per the protocol-mandated truncation.
func (t *Transcript) Challenge() fr.Element {
	digest := t.squeeze()
	return truncate128(digest)
}

// ChallengeSplit hashes the buffer and returns (low128, high128) as
// two separate field elements.
func (t *Transcript) ChallengeSplit() (lo, hi fr.Element) {
	digest := t.squeeze()
	return splitChallenge(digest)
}

// BufferLen reports the current unhashed buffer length, so callers
// (and the tests) can check the chaining invariant: the buffer is
// exactly 32 bytes right after a challenge, per SPEC_FULL.md §4.3.
func (t *Transcript) BufferLen() int {
	return len(t.buf)
}
