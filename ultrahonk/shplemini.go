// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ShpleminiResult is the (P0, P1) pair a successful pairing check
// accepts: e(P0, G2) * e(P1, tau*G2) == 1, SPEC_FULL.md §4.7.
type ShpleminiResult struct {
	P0, P1 bn254.G1Affine
}

// wireMapping re-orders the proof's eight witness-type commitments
// (w1, w2, w3, lookupReadCounts, lookupReadTags, w4, lookupInverses,
// zPerm) into Shplemini's MSM order (w1, w2, w3, w4, zPerm,
// lookupInverses, lookupReadCounts, lookupReadTags), SPEC_FULL.md §9's
// "Wire-order divergence" design note, grounded on
// original_source/crates/plonk-core/src/shplemini.rs's wire_mapping.
var wireMapping = [8]int{0, 1, 2, 5, 7, 6, 3, 4}

const numShiftedWires = 5 // w1, w2, w3, w4, zPerm get a shifted contribution

// libraSubgroupGenerator is the fixed subgroup generator constant used
// in the Libra opening denominators (SPEC_FULL.md §4.7 step 6),
// transcribed from original_source/crates/plonk-core/src/shplemini.rs.
var libraSubgroupGenerator = func() fr.Element {
	var v fr.Element
	v.SetBytes([]byte{
		0x07, 0xb0, 0xc5, 0x61, 0xa6, 0x14, 0x84, 0x04, 0xf0, 0x86, 0x20, 0x4a, 0x9f, 0x36,
		0xff, 0xb0, 0x61, 0x79, 0x42, 0x54, 0x67, 0x50, 0xf2, 0x30, 0xc8, 0x93, 0x61, 0x91,
		0x74, 0xa5, 0x7a, 0x76,
	})
	return v
}()

// g1Generator returns BN254's standard G1 generator (1, 2).
func g1Generator() bn254.G1Affine {
	var p bn254.G1Affine
	p.X.SetOne()
	p.Y.SetUint64(2)
	return p
}

func frToBigInt(v fr.Element) *big.Int {
	var b big.Int
	v.BigInt(&b)
	return &b
}

// scaleAndAccumulate adds scalar*point into acc, a running Jacobian
// accumulator, matching the ops::g1_scalar_mul + ops::g1_add pattern
// original_source's compute_p0_full chains for every MSM term.
func scaleAndAccumulate(acc *bn254.G1Jac, point *bn254.G1Affine, scalar fr.Element) {
	if point.IsInfinity() || scalar.IsZero() {
		return
	}
	var term bn254.G1Jac
	term.ScalarMultiplication(point, frToBigInt(scalar))
	acc.AddAssign(&term)
}

// VerifyShplemini builds the (P0, P1) pairing-input pair per
// SPEC_FULL.md §4.7, grounded directly on
// original_source/crates/plonk-core/src/shplemini.rs's
// compute_shplemini_pairing_points / compute_p0_full.
func VerifyShplemini(proof *Proof, vk *VerificationKey, c *Challenges) (*ShpleminiResult, error) {
	logN := int(vk.Log2CircuitSize)
	if logN <= 0 || logN > LogNMax {
		return nil, wrapKeyError(newKeyError(KeyErrInvalidCircuitSize, LogNMax, logN))
	}

	// 1) r^(2^i) powers.
	var rPows [LogNMax]fr.Element
	rPows[0] = c.GeminiR
	for i := 1; i < LogNMax; i++ {
		rPows[i].Mul(&rPows[i-1], &rPows[i-1])
	}

	// 2) Shplonk weight constants.
	var zMinusR0, zPlusR0 fr.Element
	zMinusR0.Sub(&c.ShplonkZ, &rPows[0])
	zPlusR0.Add(&c.ShplonkZ, &rPows[0])
	if zMinusR0.IsZero() || zPlusR0.IsZero() {
		return nil, wrapBn254Error(newBn254Error(Bn254ErrDivisionByZero, nil))
	}
	var pos0, neg0 fr.Element
	pos0.Inverse(&zMinusR0)
	neg0.Inverse(&zPlusR0)

	var unshiftedScalar, shiftedScalar fr.Element
	unshiftedScalar.Mul(&c.ShplonkNu, &neg0)
	unshiftedScalar.Add(&unshiftedScalar, &pos0)

	if c.GeminiR.IsZero() {
		return nil, wrapBn254Error(newBn254Error(Bn254ErrDivisionByZero, nil))
	}
	var rInv fr.Element
	rInv.Inverse(&c.GeminiR)
	shiftedScalar.Mul(&c.ShplonkNu, &neg0)
	shiftedScalar.Sub(&pos0, &shiftedScalar)
	shiftedScalar.Mul(&shiftedScalar, &rInv)

	// 3) Batched evaluation accumulator.
	var evalAcc fr.Element
	if proof.IsZK {
		evalAcc = proof.GeminiMaskingEval
	}
	rhoPow := c.Rho
	for i := 0; i < NumAllEntities; i++ {
		var term fr.Element
		term.Mul(&proof.SumcheckEvaluations[i], &rhoPow)
		evalAcc.Add(&evalAcc, &term)
		rhoPow.Mul(&rhoPow, &c.Rho)
	}

	// 4) Backward gemini fold.
	var foldPos [LogNMax]fr.Element
	cur := evalAcc
	var two fr.Element
	two.SetInt64(2)
	for j := logN; j >= 1; j-- {
		r2 := rPows[j-1]
		u := c.SumcheckU[j-1]

		var term1, oneMinusU, r2OneMinusU, bracket, term2, num fr.Element
		term1.Mul(&r2, &cur)
		term1.Mul(&term1, &two)

		oneMinusU.SetOne()
		oneMinusU.Sub(&oneMinusU, &u)
		r2OneMinusU.Mul(&r2, &oneMinusU)
		bracket.Sub(&r2OneMinusU, &u)
		term2.Mul(&proof.GeminiAEvals[j-1], &bracket)
		num.Sub(&term1, &term2)

		var den fr.Element
		den.Add(&r2OneMinusU, &u)
		if den.IsZero() {
			return nil, wrapBn254Error(newBn254Error(Bn254ErrDivisionByZero, nil))
		}
		var denInv fr.Element
		denInv.Inverse(&den)

		cur.Mul(&num, &denInv)
		foldPos[j-1] = cur
	}

	// 5) Constant accumulator seed.
	var constAcc fr.Element
	{
		var t1, t2 fr.Element
		t1.Mul(&foldPos[0], &pos0)
		t2.Mul(&proof.GeminiAEvals[0], &c.ShplonkNu)
		t2.Mul(&t2, &neg0)
		constAcc.Add(&t1, &t2)
	}

	// 6) Further gemini-fold scalar accumulation; v_pow must advance
	// on every iteration, including dummy rounds (SPEC_FULL.md §9).
	var geminiScalars [LogNMax - 1]fr.Element
	var vPow fr.Element
	vPow.Mul(&c.ShplonkNu, &c.ShplonkNu)
	for i := 0; i < LogNMax-1; i++ {
		dummy := i >= logN-1
		if !dummy {
			j := i + 1
			var zMinusRj, zPlusRj fr.Element
			zMinusRj.Sub(&c.ShplonkZ, &rPows[j])
			zPlusRj.Add(&c.ShplonkZ, &rPows[j])
			if zMinusRj.IsZero() || zPlusRj.IsZero() {
				return nil, wrapBn254Error(newBn254Error(Bn254ErrDivisionByZero, nil))
			}
			var posInv, negInv fr.Element
			posInv.Inverse(&zMinusRj)
			negInv.Inverse(&zPlusRj)

			var sp, sn fr.Element
			sp.Mul(&vPow, &posInv)
			sn.Mul(&vPow, &c.ShplonkNu)
			sn.Mul(&sn, &negInv)

			var scalar fr.Element
			scalar.Add(&sn, &sp)
			scalar.Neg(&scalar)
			geminiScalars[i] = scalar

			var contrib, a, b fr.Element
			a.Mul(&proof.GeminiAEvals[j], &sn)
			b.Mul(&foldPos[j], &sp)
			contrib.Add(&a, &b)
			constAcc.Add(&constAcc, &contrib)
		}
		vPow.Mul(&vPow, &c.ShplonkNu)
		vPow.Mul(&vPow, &c.ShplonkNu)
	}

	// 7) Libra contributions (ZK only).
	var libraScalars [3]fr.Element
	if proof.IsZK {
		var denom0Den, denom1Den fr.Element
		denom0Den.Sub(&c.ShplonkZ, &c.GeminiR)
		var grTimesGen fr.Element
		grTimesGen.Mul(&libraSubgroupGenerator, &c.GeminiR)
		denom1Den.Sub(&c.ShplonkZ, &grTimesGen)
		if denom0Den.IsZero() || denom1Den.IsZero() {
			return nil, wrapBn254Error(newBn254Error(Bn254ErrDivisionByZero, nil))
		}
		var denom0, denom1 fr.Element
		denom0.Inverse(&denom0Den)
		denom1.Inverse(&denom1Den)
		denominators := [4]fr.Element{denom0, denom1, denom0, denom0}

		vPow.Mul(&vPow, &c.ShplonkNu)
		vPow.Mul(&vPow, &c.ShplonkNu)

		var batching [4]fr.Element
		for i := 0; i < 4; i++ {
			var scaling fr.Element
			scaling.Mul(&denominators[i], &vPow)
			var negScaling fr.Element
			negScaling.Neg(&scaling)
			batching[i] = negScaling

			var contrib fr.Element
			contrib.Mul(&scaling, &proof.LibraPolyEvals[i])
			constAcc.Add(&constAcc, &contrib)
			vPow.Mul(&vPow, &c.ShplonkNu)
		}

		libraScalars[0] = batching[0]
		libraScalars[1].Add(&batching[1], &batching[2])
		libraScalars[2] = batching[3]
	}

	// 8) Build P0 via one large MSM, in exact Solidity order.
	var p0 bn254.G1Jac
	p0.FromAffine(&proof.ShplonkQ)

	if proof.IsZK {
		var negUnshifted fr.Element
		negUnshifted.Neg(&unshiftedScalar)
		scaleAndAccumulate(&p0, &proof.GeminiMaskingPoly, negUnshifted)
	}

	var negUnshifted, negShifted fr.Element
	negUnshifted.Neg(&unshiftedScalar)
	negShifted.Neg(&shiftedScalar)

	rhoPow = c.Rho
	for i := range vk.Commitments {
		var scalar fr.Element
		scalar.Mul(&negUnshifted, &rhoPow)
		scaleAndAccumulate(&p0, &vk.Commitments[i], scalar)
		rhoPow.Mul(&rhoPow, &c.Rho)
	}

	witnessCommitments := [8]bn254.G1Affine{
		proof.W1, proof.W2, proof.W3, proof.LookupReadCounts,
		proof.LookupReadTags, proof.W4, proof.LookupInverses, proof.ZPerm,
	}
	for solIdx, ourIdx := range wireMapping {
		commitment := witnessCommitments[ourIdx]

		var scalar fr.Element
		scalar.Mul(&negUnshifted, &rhoPow)

		if solIdx < numShiftedWires {
			shiftedRhoIdx := numberOfUnshiftedEntities + 1 + solIdx
			var shiftedRhoPow fr.Element
			shiftedRhoPow.SetOne()
			for k := 0; k < shiftedRhoIdx; k++ {
				shiftedRhoPow.Mul(&shiftedRhoPow, &c.Rho)
			}
			var shiftedContrib fr.Element
			shiftedContrib.Mul(&negShifted, &shiftedRhoPow)
			scalar.Add(&scalar, &shiftedContrib)
		}

		scaleAndAccumulate(&p0, &commitment, scalar)
		rhoPow.Mul(&rhoPow, &c.Rho)
	}

	for i := 0; i < LogNMax-1; i++ {
		scaleAndAccumulate(&p0, &proof.GeminiFoldComms[i], geminiScalars[i])
	}

	if proof.IsZK {
		scaleAndAccumulate(&p0, &proof.LibraCommitment0, libraScalars[0])
		scaleAndAccumulate(&p0, &proof.LibraCommitment1, libraScalars[1])
		scaleAndAccumulate(&p0, &proof.LibraCommitment2, libraScalars[2])
	}

	gen := g1Generator()
	scaleAndAccumulate(&p0, &gen, constAcc)
	scaleAndAccumulate(&p0, &proof.KZGQuotient, c.ShplonkZ)

	var p0Affine bn254.G1Affine
	p0Affine.FromJacobian(&p0)

	// P1 = -kzg_quotient.
	var p1 bn254.G1Affine
	p1.Neg(&proof.KZGQuotient)

	return &ShpleminiResult{P0: p0Affine, P1: p1}, nil
}

// numberOfUnshiftedEntities is NUMBER_UNSHIFTED (35) from
// shplemini.rs: the count of evaluation slots that receive only the
// unshifted scalar contribution, used to compute the rho power at
// which the shifted-wire contributions begin.
const numberOfUnshiftedEntities = NumAllEntities - numShiftedWires
