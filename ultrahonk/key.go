// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bn254"
)

const (
	maxLog2CircuitSize = 30

	// PairingPointsSize is the number of public-input slots reserved
	// for the embedded pairing-point object (SPEC_FULL.md §6).
	PairingPointsSize = 16

	numCommitmentsNewFormat    = 27
	numCommitmentsLegacyFormat = 28

	newFormatHeaderSize = 4 * 8 // circuit_size, log2_circuit_size, num_public_inputs, pub_inputs_offset
	newFormatSize       = newFormatHeaderSize + numCommitmentsNewFormat*g1RawSize

	legacyFormatHeaderSize = 3 * fieldSize // log2_circuit_size, log2_domain_size, num_public_inputs
	legacyFormatSize       = legacyFormatHeaderSize + numCommitmentsLegacyFormat*g1RawSize
)

// VerificationKey is the parsed, immutable view of a Barretenberg
// UltraHonk verification key (SPEC_FULL.md §3, §4.2).
type VerificationKey struct {
	CircuitSize      uint64
	Log2CircuitSize  uint64
	Log2DomainSize   uint64 // equals Log2CircuitSize; kept distinct per DESIGN.md Open Question (b)
	NumPublicInputs  uint64
	PubInputsOffset  uint64
	Commitments      []bn254.G1Affine // 27 (new) or 28 (legacy) selector/permutation/table commitments
	Legacy           bool
}

// ParseVerificationKey auto-detects the wire format by byte length and
// parses accordingly (SPEC_FULL.md §4.2).
func ParseVerificationKey(b []byte) (*VerificationKey, error) {
	switch len(b) {
	case newFormatSize:
		return parseNewFormatKey(b)
	case legacyFormatSize:
		return parseLegacyFormatKey(b)
	default:
		return nil, newKeyError(KeyErrInvalidSize, 0, len(b))
	}
}

func parseNewFormatKey(b []byte) (*VerificationKey, error) {
	vk := &VerificationKey{
		CircuitSize:     binary.BigEndian.Uint64(b[0:8]),
		Log2CircuitSize: binary.BigEndian.Uint64(b[8:16]),
		NumPublicInputs: binary.BigEndian.Uint64(b[16:24]),
		PubInputsOffset: binary.BigEndian.Uint64(b[24:32]),
	}
	vk.Log2DomainSize = vk.Log2CircuitSize

	if err := validateCircuitSize(vk.CircuitSize, vk.Log2CircuitSize); err != nil {
		return nil, err
	}

	commitments, err := parseCommitments(b[newFormatHeaderSize:], numCommitmentsNewFormat)
	if err != nil {
		return nil, err
	}
	vk.Commitments = commitments
	return vk, nil
}

// parseLegacyFormatKey parses the old 1888-byte key layout: three
// leading 32-byte header fields holding log2_circuit_size,
// log2_domain_size, and num_public_inputs (each a small integer in its
// low 4 bytes), per original_source's `from_bytes_old`. Unlike the new
// format, pub_inputs_offset is not present on the wire and is always 0.
func parseLegacyFormatKey(b []byte) (*VerificationKey, error) {
	log2CircuitSize, err := parseLegacyField(b[0:fieldSize])
	if err != nil {
		return nil, err
	}
	log2DomainSize, err := parseLegacyField(b[fieldSize : 2*fieldSize])
	if err != nil {
		return nil, err
	}
	numPublicInputs, err := parseLegacyField(b[2*fieldSize : 3*fieldSize])
	if err != nil {
		return nil, err
	}

	if log2CircuitSize > maxLog2CircuitSize {
		return nil, newKeyError(KeyErrInvalidCircuitSize, maxLog2CircuitSize, int(log2CircuitSize))
	}
	if log2DomainSize > maxLog2CircuitSize {
		return nil, newKeyError(KeyErrInvalidDomainSize, maxLog2CircuitSize, int(log2DomainSize))
	}
	if log2CircuitSize != log2DomainSize {
		return nil, newKeyError(KeyErrInvalidDomainSize, int(log2CircuitSize), int(log2DomainSize))
	}

	vk := &VerificationKey{
		CircuitSize:     uint64(1) << log2CircuitSize,
		Log2CircuitSize: log2CircuitSize,
		Log2DomainSize:  log2DomainSize,
		NumPublicInputs: numPublicInputs,
		PubInputsOffset: 0,
		Legacy:          true,
	}

	commitments, err := parseCommitments(b[legacyFormatHeaderSize:], numCommitmentsLegacyFormat)
	if err != nil {
		return nil, err
	}
	vk.Commitments = commitments
	return vk, nil
}

// parseLegacyField decodes one of the legacy key's 32-byte fields,
// which store a u32 value in its low 4 bytes; the high 28 bytes must
// be zero (original_source's `read_u32_from_field`).
func parseLegacyField(b []byte) (uint64, error) {
	if len(b) != fieldSize {
		return 0, newKeyError(KeyErrInvalidFieldSize, fieldSize, len(b))
	}
	for _, bb := range b[:fieldSize-4] {
		if bb != 0 {
			return 0, newKeyError(KeyErrFieldOverflow, 0, 0)
		}
	}
	return uint64(binary.BigEndian.Uint32(b[fieldSize-4:])), nil
}

func validateCircuitSize(circuitSize, log2CircuitSize uint64) error {
	if log2CircuitSize > maxLog2CircuitSize {
		return newKeyError(KeyErrInvalidCircuitSize, maxLog2CircuitSize, int(log2CircuitSize))
	}
	if circuitSize == 0 || circuitSize != uint64(1)<<log2CircuitSize {
		return newKeyError(KeyErrInvalidCircuitSize, 0, 0)
	}
	return nil
}

func parseCommitments(b []byte, n int) ([]bn254.G1Affine, error) {
	if len(b) != n*g1RawSize {
		return nil, newKeyError(KeyErrInvalidSize, n*g1RawSize, len(b))
	}
	commitments := make([]bn254.G1Affine, n)
	for i := 0; i < n; i++ {
		p, err := decodeG1Raw(b[i*g1RawSize : (i+1)*g1RawSize])
		if err != nil {
			return nil, newKeyError(KeyErrPointNotOnCurve, 0, i)
		}
		commitments[i] = p
	}
	return commitments, nil
}

// NumCircuitPublicInputs returns the caller-supplied public input
// count this key expects, i.e. NumPublicInputs minus the embedded
// pairing-point object slots (SPEC_FULL.md §6).
func (vk *VerificationKey) NumCircuitPublicInputs() uint64 {
	if vk.NumPublicInputs < PairingPointsSize {
		return 0
	}
	return vk.NumPublicInputs - PairingPointsSize
}
