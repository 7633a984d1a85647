// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/stretchr/testify/require"
)

func testG2() bn254.G2Affine {
	_, _, _, g2 := bn254.Generators()
	return g2
}

func encodeG2Raw(p *bn254.G2Affine) [g2RawSize]byte {
	var out [g2RawSize]byte
	x0 := p.X.A0.Bytes()
	x1 := p.X.A1.Bytes()
	y0 := p.Y.A0.Bytes()
	y1 := p.Y.A1.Bytes()
	copy(out[0:32], x0[:])
	copy(out[32:64], x1[:])
	copy(out[64:96], y0[:])
	copy(out[96:128], y1[:])
	return out
}

func TestLoadSRSRoundTrip(t *testing.T) {
	gen := testG2()
	tau := testG2()

	genEnc := encodeG2Raw(&gen)
	tauEnc := encodeG2Raw(&tau)
	b := append(append([]byte{}, genEnc[:]...), tauEnc[:]...)

	srs, err := LoadSRS(b)
	require.NoError(t, err)
	require.True(t, srs.G2Generator.Equal(&gen))
	require.True(t, srs.G2Tau.Equal(&tau))
}

func TestLoadSRSWrongSize(t *testing.T) {
	_, err := LoadSRS(make([]byte, 10))
	require.Error(t, err)
}

func TestNewSRS(t *testing.T) {
	gen := testG2()
	tau := testG2()
	srs := NewSRS(gen, tau)
	require.True(t, srs.G2Generator.Equal(&gen))
	require.True(t, srs.G2Tau.Equal(&tau))
}
