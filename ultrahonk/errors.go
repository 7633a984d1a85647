// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"errors"
	"fmt"
)

// KeyError reports a malformed or unsupported verification key.
type KeyError struct {
	Kind     string
	Expected int
	Actual   int
}

func (e *KeyError) Error() string {
	if e.Expected != 0 || e.Actual != 0 {
		return fmt.Sprintf("ultrahonk: key error (%s): expected %d, got %d", e.Kind, e.Expected, e.Actual)
	}
	return fmt.Sprintf("ultrahonk: key error (%s)", e.Kind)
}

func newKeyError(kind string, expected, actual int) *KeyError {
	return &KeyError{Kind: kind, Expected: expected, Actual: actual}
}

// Key error kinds, per SPEC_FULL.md §7.
const (
	KeyErrInvalidSize         = "invalid_size"
	KeyErrInvalidCircuitSize  = "invalid_circuit_size"
	KeyErrInvalidDomainSize   = "invalid_domain_size"
	KeyErrInvalidFieldSize    = "invalid_field_size"
	KeyErrFieldOverflow       = "field_overflow"
	KeyErrPointNotOnCurve     = "point_not_on_curve"
	KeyErrNonZeroReservedBits = "nonzero_reserved_bits"
)

// ProofError reports a malformed proof blob.
type ProofError struct {
	Kind     string
	Expected int
	Actual   int
}

func (e *ProofError) Error() string {
	if e.Expected != 0 || e.Actual != 0 {
		return fmt.Sprintf("ultrahonk: proof error (%s): expected %d, got %d", e.Kind, e.Expected, e.Actual)
	}
	return fmt.Sprintf("ultrahonk: proof error (%s)", e.Kind)
}

func newProofError(kind string, expected, actual int) *ProofError {
	return &ProofError{Kind: kind, Expected: expected, Actual: actual}
}

// Proof error kinds, per SPEC_FULL.md §7.
const (
	ProofErrInvalidSize    = "invalid_size"
	ProofErrInvalidG1Point = "invalid_g1_point"
	ProofErrInvalidScalar  = "invalid_scalar"
)

// Bn254Error reports a curve-primitive failure.
type Bn254Error struct {
	Kind string
	Err  error
}

func (e *Bn254Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ultrahonk: bn254 error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("ultrahonk: bn254 error (%s)", e.Kind)
}

func (e *Bn254Error) Unwrap() error { return e.Err }

func newBn254Error(kind string, err error) *Bn254Error {
	return &Bn254Error{Kind: kind, Err: err}
}

// Bn254 error kinds, per SPEC_FULL.md §7.
const (
	Bn254ErrInvalidG1      = "invalid_g1"
	Bn254ErrInvalidG2      = "invalid_g2"
	Bn254ErrPairingFailed  = "pairing_failed"
	Bn254ErrDivisionByZero = "division_by_zero"
)

// VerifyError is the top-level error returned by Verify and the
// segmented API. It wraps one of KeyError, ProofError, Bn254Error, or
// carries one of the four verifier-level kinds below.
type VerifyError struct {
	Kind string
	Msg  string
	Err  error
}

func (e *VerifyError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("ultrahonk: verify error (%s): %s", e.Kind, e.Msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("ultrahonk: verify error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("ultrahonk: verify error (%s)", e.Kind)
}

func (e *VerifyError) Unwrap() error { return e.Err }

// Verifier-level error kinds, per SPEC_FULL.md §7.
const (
	VerifyErrPublicInput         = "public_input"
	VerifyErrTranscript          = "transcript"
	VerifyErrVerificationFailed  = "verification_failed"
	VerifyErrMissingSRS          = "missing_srs"
)

func wrapKeyError(err *KeyError) *VerifyError {
	return &VerifyError{Kind: "key", Err: err}
}

func wrapProofError(err *ProofError) *VerifyError {
	return &VerifyError{Kind: "proof", Err: err}
}

func wrapBn254Error(err *Bn254Error) *VerifyError {
	return &VerifyError{Kind: "bn254", Err: err}
}

func publicInputError(msg string) *VerifyError {
	return &VerifyError{Kind: VerifyErrPublicInput, Msg: msg}
}

func transcriptError(msg string) *VerifyError {
	return &VerifyError{Kind: VerifyErrTranscript, Msg: msg}
}

// errVerificationFailed is returned whenever a sumcheck round, the
// grand relation check, or the final pairing rejects. Per §7 no
// further diagnostic is meaningful to a caller.
var errVerificationFailed = &VerifyError{Kind: VerifyErrVerificationFailed, Msg: "proof rejected"}

// ErrMissingSRS is returned when no trusted-setup τ·G₂ point has been
// configured via WithSRS or LoadSRS. See srs.go and SPEC_FULL.md §11.1.
var ErrMissingSRS = errors.New("ultrahonk: no trusted setup configured; use WithSRS or LoadSRS")
