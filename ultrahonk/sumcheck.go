// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

// SumcheckResult is the verifier-facing outcome of running the full
// sumcheck protocol over a proof's LogN rounds, SPEC_FULL.md §4.5: the
// final pow-partial scalar the grand relation check is weighted by,
// and whether every round's consistency check and the final grand
// check both held.
type SumcheckResult struct {
	PowPartial fr.Element
	Valid      bool
}

// VerifySumcheck runs the LogN-round sumcheck consistency check
// described in SPEC_FULL.md §4.5, grounded on
// original_source/crates/plonk-core/src/sumcheck.rs: each round
// asserts U(0)+U(1) equals the running target, interpolates the next
// target at u[r] via the closed-form barycentric weights
// (barycentric.go), and folds the pow-partial accumulator
// pow *= 1 + u[r]*(gateChallenge[r]-1). After the last round the
// target must equal pow_partial times the batched grand relation
// evaluated at the proof's final sumcheck evaluations.
func VerifySumcheck(proof *Proof, c *Challenges, relParams RelationParameters) (*SumcheckResult, error) {
	var target fr.Element
	if proof.IsZK {
		// ZK proofs fold the Libra masking sum into round 0's target
		// instead of starting the zero-check at 0.
		target.Mul(&proof.LibraSum, &c.LibraChallenge)
	}
	var pow fr.Element
	pow.SetOne()

	roundWidth := sumcheckRoundsNonZK
	if proof.IsZK {
		roundWidth = sumcheckRoundsZK
	}

	var one fr.Element
	one.SetOne()

	for r := 0; r < proof.LogN; r++ {
		round := proof.SumcheckUnivariates[r]
		if len(round) != roundWidth {
			return nil, transcriptError("sumcheck round has unexpected width")
		}

		var sum fr.Element
		sum.Add(&round[0], &round[1])
		if sum != target {
			return &SumcheckResult{Valid: false}, nil
		}

		u := c.SumcheckU[r]
		target = barycentricEvaluate(round, u)

		var gateMinusOne, delta fr.Element
		gateMinusOne.Sub(&c.GateChallenges[r], &one)
		delta.Mul(&u, &gateMinusOne)
		delta.Add(&delta, &one)
		pow.Mul(&pow, &delta)
	}

	var evals [NumAllEntities]fr.Element
	copy(evals[:], proof.SumcheckEvaluations[:])

	var sub [NumSubrelations]fr.Element
	AccumulateRelations(&sub, &evals, relParams, pow)
	grand := BatchSubrelations(&sub, &c.Alphas)

	return &SumcheckResult{PowPartial: pow, Valid: grand == target}, nil
}

// barycentricEvaluate interpolates the unique degree-(width-1)
// polynomial through (0, values[0]), (1, values[1]), ..., and
// evaluates it at u, using the precomputed barycentric denominator
// table for the round's width (8 or 9), SPEC_FULL.md §4.5:
//
//	p(u) = L(u) * sum_i values[i] / (d_i * (u - i))
//
// where L(u) = prod_i (u - i) and d_i is barycentricTable(width)[i].
// If u coincides exactly with a node i, values[i] is returned directly
// (the general formula has a removable 0/0 singularity there).
func barycentricEvaluate(values []fr.Element, u fr.Element) fr.Element {
	width := len(values)
	weights := barycentricTable(width)

	diffs := make([]fr.Element, width)
	var lagrange fr.Element
	lagrange.SetOne()
	for i := 0; i < width; i++ {
		var node, diff fr.Element
		node.SetInt64(int64(i))
		diff.Sub(&u, &node)
		if diff.IsZero() {
			return values[i]
		}
		diffs[i] = diff
		lagrange.Mul(&lagrange, &diff)
	}

	var acc fr.Element
	for i := 0; i < width; i++ {
		var denom, term fr.Element
		denom.Mul(&weights[i], &diffs[i])
		term.Div(&values[i], &denom)
		acc.Add(&acc, &term)
	}
	acc.Mul(&acc, &lagrange)
	return acc
}
