// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildNewFormatKeyBytes(circuitSize, log2CircuitSize, numPublicInputs, pubInputsOffset uint64) []byte {
	b := make([]byte, newFormatHeaderSize, newFormatSize)
	binary.BigEndian.PutUint64(b[0:8], circuitSize)
	binary.BigEndian.PutUint64(b[8:16], log2CircuitSize)
	binary.BigEndian.PutUint64(b[16:24], numPublicInputs)
	binary.BigEndian.PutUint64(b[24:32], pubInputsOffset)

	g := testG1()
	enc := encodeG1Raw(&g)
	for i := 0; i < numCommitmentsNewFormat; i++ {
		b = append(b, enc[:]...)
	}
	return b
}

func TestParseVerificationKeyNewFormat(t *testing.T) {
	b := buildNewFormatKeyBytes(16, 4, 20, 0)
	vk, err := ParseVerificationKey(b)
	require.NoError(t, err)
	require.False(t, vk.Legacy)
	require.Equal(t, uint64(16), vk.CircuitSize)
	require.Equal(t, uint64(4), vk.Log2CircuitSize)
	require.Equal(t, vk.Log2CircuitSize, vk.Log2DomainSize)
	require.Equal(t, uint64(20), vk.NumPublicInputs)
	require.Len(t, vk.Commitments, numCommitmentsNewFormat)
}

func TestParseVerificationKeyWrongSize(t *testing.T) {
	_, err := ParseVerificationKey(make([]byte, 10))
	require.Error(t, err)
	var ke *KeyError
	require.ErrorAs(t, err, &ke)
	require.Equal(t, KeyErrInvalidSize, ke.Kind)
}

func TestParseVerificationKeyRejectsBadCircuitSize(t *testing.T) {
	// circuitSize != 2^log2CircuitSize
	b := buildNewFormatKeyBytes(15, 4, 20, 0)
	_, err := ParseVerificationKey(b)
	require.Error(t, err)
	var ke *KeyError
	require.ErrorAs(t, err, &ke)
	require.Equal(t, KeyErrInvalidCircuitSize, ke.Kind)
}

// buildLegacyFormatKeyBytes builds the old 1888-byte key layout: three
// 32-byte fields (log2_circuit_size, log2_domain_size,
// num_public_inputs), each a u32 in its low 4 bytes, matching
// original_source's `from_bytes_old`/`read_u32_from_field`.
func buildLegacyFormatKeyBytes(log2CircuitSize, log2DomainSize, numPublicInputs uint32) []byte {
	b := make([]byte, legacyFormatHeaderSize, legacyFormatSize)
	binary.BigEndian.PutUint32(b[fieldSize-4:fieldSize], log2CircuitSize)
	binary.BigEndian.PutUint32(b[2*fieldSize-4:2*fieldSize], log2DomainSize)
	binary.BigEndian.PutUint32(b[3*fieldSize-4:3*fieldSize], numPublicInputs)

	g := testG1()
	enc := encodeG1Raw(&g)
	for i := 0; i < numCommitmentsLegacyFormat; i++ {
		b = append(b, enc[:]...)
	}
	return b
}

func TestParseVerificationKeyLegacyFormat(t *testing.T) {
	b := buildLegacyFormatKeyBytes(4, 4, 20)
	vk, err := ParseVerificationKey(b)
	require.NoError(t, err)
	require.True(t, vk.Legacy)
	require.Equal(t, uint64(16), vk.CircuitSize)
	require.Equal(t, uint64(4), vk.Log2CircuitSize)
	require.Equal(t, uint64(4), vk.Log2DomainSize)
	require.Equal(t, uint64(0), vk.PubInputsOffset)
	require.Len(t, vk.Commitments, numCommitmentsLegacyFormat)
}

func TestParseVerificationKeyLegacyRejectsMismatchedDomainSize(t *testing.T) {
	b := buildLegacyFormatKeyBytes(4, 5, 20)
	_, err := ParseVerificationKey(b)
	require.Error(t, err)
	var ke *KeyError
	require.ErrorAs(t, err, &ke)
	require.Equal(t, KeyErrInvalidDomainSize, ke.Kind)
}

func TestParseVerificationKeyLegacyRejectsNonZeroReservedBits(t *testing.T) {
	b := buildLegacyFormatKeyBytes(4, 4, 20)
	b[0] = 0xFF // reserved high byte of log2_circuit_size field
	_, err := ParseVerificationKey(b)
	require.Error(t, err)
	var ke *KeyError
	require.ErrorAs(t, err, &ke)
	require.Equal(t, KeyErrFieldOverflow, ke.Kind)
}

func TestNumCircuitPublicInputs(t *testing.T) {
	vk := &VerificationKey{NumPublicInputs: PairingPointsSize + 3}
	require.Equal(t, uint64(3), vk.NumCircuitPublicInputs())

	small := &VerificationKey{NumPublicInputs: 2}
	require.Equal(t, uint64(0), small.NumCircuitPublicInputs())
}
