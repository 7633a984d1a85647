// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
)

// SRS holds the two fixed G2 constants the pairing check needs: the
// G2 generator and the trusted-setup tau*G2 point (SPEC_FULL.md §6,
// §11.1). Barretenberg derives these from its Ignition/Aztec ceremony
// output; this module does not embed a hard-coded ceremony byte
// literal (original_source never defines g2_generator()/vk_g2()
// either — see DESIGN.md), and instead loads them the way
// kzg4844/contract.go loads its own trusted setup: via an explicit
// constructor a caller feeds with real ceremony bytes.
type SRS struct {
	G2Generator bn254.G2Affine
	G2Tau       bn254.G2Affine
}

// LoadSRS parses an SRS from two 128-byte G2 points (generator, then
// tau*G2), in that order.
func LoadSRS(b []byte) (*SRS, error) {
	if len(b) != 2*g2RawSize {
		return nil, newBn254Error(Bn254ErrInvalidG2, nil)
	}
	gen, err := decodeG2Raw(b[0:g2RawSize])
	if err != nil {
		return nil, err
	}
	tau, err := decodeG2Raw(b[g2RawSize : 2*g2RawSize])
	if err != nil {
		return nil, err
	}
	return &SRS{G2Generator: gen, G2Tau: tau}, nil
}

// NewSRS builds an SRS directly from already-parsed G2 points, for
// callers that source their trusted setup from a host-managed ceremony
// loader rather than this module's flat-byte format.
func NewSRS(generator, tau bn254.G2Affine) *SRS {
	return &SRS{G2Generator: generator, G2Tau: tau}
}
