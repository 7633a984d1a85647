// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ultrahonk verifies Barretenberg bb v0.87+ UltraHonk zero-
// knowledge proofs over BN254 with a Keccak256 Fiat-Shamir transcript.
// It is a single-threaded, cooperative verifier: one call in, one
// boolean (or rejection reason) out, with no internal concurrency and
// no partial success on any failure path.
package ultrahonk

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	log "github.com/luxfi/log"
)

// Verifier verifies UltraHonk proofs against a fixed trusted setup. It
// holds no per-proof state; every Verify call is independent and
// side-effect-free, matching SPEC_FULL.md §8's invariant 2.
type Verifier struct {
	srs *SRS
	log log.Logger
}

// Option configures a Verifier at construction time.
type Option func(*Verifier)

// WithLogger overrides the verifier's logger (defaults to a quiet test
// logger, matching threshold.NewThresholdClient's convention).
func WithLogger(l log.Logger) Option {
	return func(v *Verifier) { v.log = l }
}

// WithSRS supplies the trusted-setup G2 constants the final pairing
// check needs. Required before calling Verify; omitting it is a
// configuration error surfaced at Verify time as ErrMissingSRS rather
// than at construction, so a Verifier can be built before its SRS is
// available (e.g. while it loads asynchronously).
func WithSRS(srs *SRS) Option {
	return func(v *Verifier) { v.srs = srs }
}

// NewVerifier builds a Verifier from the given options.
func NewVerifier(opts ...Option) *Verifier {
	v := &Verifier{
		log: log.NewTestLogger(log.InfoLevel),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify runs the full five-phase pipeline of SPEC_FULL.md §4.8:
// challenge derivation, sumcheck verification, Shplemini scalar
// preparation, the Shplemini MSM, and the final pairing check. Inputs
// are raw byte slices exactly as they arrive at the host boundary;
// publicInputs is the caller-supplied flat list of field elements
// (the embedded pairing-point object is read from the proof itself,
// not from this slice).
func (v *Verifier) Verify(vkBytes, proofBytes []byte, publicInputs []fr.Element, isZK bool) (bool, error) {
	if v.srs == nil {
		return false, &VerifyError{Kind: VerifyErrMissingSRS, Err: ErrMissingSRS}
	}

	vk, err := ParseVerificationKey(vkBytes)
	if err != nil {
		if ke, ok := err.(*KeyError); ok {
			return false, wrapKeyError(ke)
		}
		return false, err
	}

	proof, err := ParseProof(proofBytes, int(vk.Log2CircuitSize), isZK)
	if err != nil {
		if pe, ok := err.(*ProofError); ok {
			return false, wrapProofError(pe)
		}
		return false, err
	}

	challenges, _, err := DeriveChallenges(vk, proof, publicInputs)
	if err != nil {
		return false, err
	}

	relParams := RelationParametersFrom(challenges)
	sc, err := VerifySumcheck(proof, challenges, relParams)
	if err != nil {
		return false, err
	}
	if !sc.Valid {
		v.log.Debug("ultrahonk: sumcheck grand relation mismatch")
		return false, errVerificationFailed
	}

	points, err := VerifyShplemini(proof, vk, challenges)
	if err != nil {
		return false, err
	}

	ok, err := v.pairingCheck(points.P0, points.P1)
	if err != nil {
		return false, err
	}
	if !ok {
		v.log.Debug("ultrahonk: pairing check failed")
		return false, errVerificationFailed
	}
	return true, nil
}

// pairingCheck asserts e(P0, G2) * e(P1, tau*G2) == 1, the single
// external primitive the whole pipeline reduces to (SPEC_FULL.md §6).
// Grounded on zk/verifier.go's groth16PairingCheck: parse points,
// negate/scale as needed, then hand the pairs to the curve library's
// native pairing check.
func (v *Verifier) pairingCheck(p0, p1 bn254.G1Affine) (bool, error) {
	return pairingCheck(v.srs, p0, p1)
}

// pairingCheck is the free-function form used directly by the
// segmented driver (segment.go), which has no Verifier to call
// through once a SegmentState has been handed its own *SRS.
func pairingCheck(srs *SRS, p0, p1 bn254.G1Affine) (bool, error) {
	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{p0, p1},
		[]bn254.G2Affine{srs.G2Generator, srs.G2Tau},
	)
	if err != nil {
		return false, wrapBn254Error(newBn254Error(Bn254ErrPairingFailed, err))
	}
	return ok, nil
}

// NewSegmentState starts a segmented verification run using this
// Verifier's configured SRS, SPEC_FULL.md §5/§12. The caller drives it
// to completion with repeated RunSegment calls.
func (v *Verifier) NewSegmentState(vk *VerificationKey, proof *Proof, publicInputs []fr.Element) *SegmentState {
	return NewSegmentState(vk, proof, publicInputs, v.srs)
}
