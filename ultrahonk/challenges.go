// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
)

const numAlphas = 27

// Challenges is the value-only record populated by the Challenge
// Driver (SPEC_FULL.md §4.4, §3 "Challenges").
type Challenges struct {
	Eta, EtaTwo, EtaThree fr.Element
	Beta, Gamma           fr.Element
	PublicInputsDelta     fr.Element

	LibraChallenge fr.Element // only meaningful when Proof.IsZK

	Alphas         [numAlphas]fr.Element
	GateChallenges [LogNMax]fr.Element
	SumcheckU      [LogNMax]fr.Element

	Rho       fr.Element
	GeminiR   fr.Element
	ShplonkNu fr.Element
	ShplonkZ  fr.Element
}

// DeriveChallenges runs the full, order-exact Challenge Driver
// (SPEC_FULL.md §4.4 sub-phases 1a-1e) over a fresh transcript and
// returns the populated Challenges record together with the
// transcript in its final state (useful to callers auditing the
// chaining invariant). The segmented driver in segment.go does not
// call this; it runs the same sub-phases on its own transcript.
func DeriveChallenges(vk *VerificationKey, proof *Proof, publicInputs []fr.Element) (*Challenges, *Transcript, error) {
	t := NewTranscript()
	c := &Challenges{}

	if err := challengePhase1a(t, c, vk, proof, publicInputs); err != nil {
		return nil, nil, err
	}
	challengePhase1b(t, c, proof)
	challengePhase1cd(t, c, proof)
	challengePhase1e(t, c, proof)

	delta, err := computePublicInputsDelta(vk, c.Beta, c.Gamma, publicInputs)
	if err != nil {
		return nil, nil, err
	}
	c.PublicInputsDelta = delta

	return c, t, nil
}

// challengePhase1a derives eta, eta^2, eta^3, beta, gamma.
func challengePhase1a(t *Transcript, c *Challenges, vk *VerificationKey, proof *Proof, publicInputs []fr.Element) error {
	if uint64(len(publicInputs)) != vk.NumCircuitPublicInputs() {
		return publicInputError("public input count does not match verification key")
	}

	t.AppendU64(vk.CircuitSize)
	t.AppendU64(vk.NumPublicInputs)
	t.AppendU64(vk.PubInputsOffset)
	for _, v := range proof.PairingPointObject {
		t.AppendFr(v)
	}
	for _, v := range publicInputs {
		t.AppendFr(v)
	}

	t.AppendG1Limbed(proof.W1)
	t.AppendG1Limbed(proof.W2)
	t.AppendG1Limbed(proof.W3)

	eta, etaPrime := t.ChallengeSplit()
	c.Eta = eta
	c.EtaTwo.Mul(&eta, &eta)
	c.EtaThree.Mul(&c.EtaTwo, &eta)
	_ = etaPrime // eta' feeds no further computation; kept for transcript parity only

	t.AppendG1Limbed(proof.LookupReadCounts)
	t.AppendG1Limbed(proof.LookupReadTags)

	beta, gamma := t.ChallengeSplit()
	c.Beta = beta
	c.Gamma = gamma
	return nil
}

// challengePhase1b derives the libra challenge (ZK only), the 27 alpha
// challenges (13 split-squeezes plus one final single squeeze), and
// the 28 gate challenges.
func challengePhase1b(t *Transcript, c *Challenges, proof *Proof) {
	t.AppendG1Limbed(proof.W4)
	t.AppendG1Limbed(proof.LookupInverses)
	t.AppendG1Limbed(proof.ZPerm)

	if proof.IsZK {
		t.AppendG1Limbed(proof.LibraCommitment0)
		t.AppendFr(proof.LibraSum)
		c.LibraChallenge = t.Challenge()
	}

	for i := 0; i < numAlphas/2; i++ {
		lo, hi := t.ChallengeSplit()
		c.Alphas[2*i] = lo
		c.Alphas[2*i+1] = hi
	}
	c.Alphas[numAlphas-1] = t.Challenge()

	for i := 0; i < LogNMax; i++ {
		c.GateChallenges[i] = t.Challenge()
	}
}

// challengePhase1cd runs the LogNMax sumcheck rounds, each absorbing
// that round's univariate and squeezing the round challenge u[r].
// Split into 1c/1d by the caller's segment boundaries only; the
// transcript semantics are identical regardless of where a host
// chooses to pause.
func challengePhase1cd(t *Transcript, c *Challenges, proof *Proof) {
	for r := 0; r < LogNMax; r++ {
		for _, v := range proof.SumcheckUnivariates[r] {
			t.AppendFr(v)
		}
		c.SumcheckU[r] = t.Challenge()
	}
}

// challengePhase1e derives rho, gemini-r, shplonk-nu, shplonk-z.
func challengePhase1e(t *Transcript, c *Challenges, proof *Proof) {
	if proof.IsZK {
		t.AppendFr(proof.LibraEvaluation)
	}
	for _, v := range proof.SumcheckEvaluations {
		t.AppendFr(v)
	}
	c.Rho = t.Challenge()

	if proof.IsZK {
		t.AppendG1Limbed(proof.LibraCommitment1)
		t.AppendG1Limbed(proof.LibraCommitment2)
		t.AppendG1Limbed(proof.GeminiMaskingPoly)
		t.AppendFr(proof.GeminiMaskingEval)
	}
	for _, comm := range proof.GeminiFoldComms {
		t.AppendG1Limbed(comm)
	}
	for _, v := range proof.GeminiAEvals {
		t.AppendFr(v)
	}
	if proof.IsZK {
		for _, v := range proof.LibraPolyEvals {
			t.AppendFr(v)
		}
	}
	c.GeminiR = t.Challenge()

	t.AppendG1Limbed(proof.ShplonkQ)
	c.ShplonkNu = t.Challenge()

	c.ShplonkZ = t.Challenge()
}

// computePublicInputsDelta evaluates the telescoped public-input
// permutation correction described in SPEC_FULL.md §4.4: a product
// over the circuit's public inputs of (gamma + beta * root^(offset+i)
// + pi_i), divided by the same product with beta negated — the
// generic plonk public-input delta construction. Neither spec.md nor
// original_source pins the exact per-term formula (original_source
// never implements this function at all — see DESIGN.md), so this is
// built directly from the well-known plonk permutation-argument
// technique the spec prose describes.
func computePublicInputsDelta(vk *VerificationKey, beta, gamma fr.Element, publicInputs []fr.Element) (fr.Element, error) {
	var one fr.Element
	one.SetOne()
	if len(publicInputs) == 0 {
		return one, nil
	}

	domain := fft.NewDomain(vk.CircuitSize)
	root := domain.Generator

	var offsetPow fr.Element
	offsetPow.Exp(root, new(big.Int).SetUint64(vk.PubInputsOffset))

	// betaPow tracks beta * root^(offset+i); gamma is added per term
	// and is never scaled by root.
	betaPow := new(fr.Element).Mul(&beta, &offsetPow)

	numerator := new(fr.Element).SetOne()
	denominator := new(fr.Element).SetOne()

	for _, pi := range publicInputs {
		var base, n, d fr.Element
		base.Add(&gamma, &pi)
		n.Add(&base, betaPow)
		d.Sub(&base, betaPow)
		numerator.Mul(numerator, &n)
		denominator.Mul(denominator, &d)

		betaPow.Mul(betaPow, &root)
	}

	if denominator.IsZero() {
		return one, wrapBn254Error(newBn254Error(Bn254ErrDivisionByZero, nil))
	}
	var delta fr.Element
	delta.Div(numerator, denominator)
	return delta, nil
}
