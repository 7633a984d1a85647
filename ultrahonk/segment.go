// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ultrahonk

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Phase is the coarse-grained stage of a segmented verification run,
// SPEC_FULL.md §5/§12. A caller that cannot afford the whole pipeline
// in one call (e.g. a host metering compute per step) drives a
// SegmentState through these phases one RunSegment call at a time.
// Adapted from original_source/programs/ultrahonk-verifier/src/
// phased.rs's Phase enum; this module has no account/ABI layout to
// honor, so the enum is a plain Go type rather than a repr(u8) cast
// target read back out of raw account bytes.
type Phase uint8

const (
	PhaseUninitialized Phase = iota
	PhaseChallengesInProgress
	PhaseChallengesGenerated
	PhaseSumcheckVerified
	PhaseMSMComputed
	PhaseComplete
	PhaseFailed Phase = 255
)

// ChallengeSubPhase further splits PhaseChallengesInProgress into the
// steps of SPEC_FULL.md §4.4, so a single segment never has to absorb
// more than a handful of transcript entries or run more than half the
// sumcheck rounds.
type ChallengeSubPhase uint8

const (
	SubPhaseNotStarted ChallengeSubPhase = iota
	SubPhaseEtaBetaGammaDone
	SubPhaseAlphasGatesDone
	SubPhaseSumcheckHalfDone
	SubPhaseAllChallengesDone
	SubPhaseDeltaComputed
)

// sumcheckHalf is the round index that separates sub-phase 1c from 1d:
// rounds [0, sumcheckHalf) run in 1c, the remainder in 1d, matching
// phased.rs's "sumcheck rounds 0-13 / 14-27" split for LogNMax=28.
const sumcheckHalf = LogNMax / 2

// SegmentState is the value a caller threads across RunSegment calls.
// Only what a later phase actually needs survives between calls: the
// transcript and partially-filled Challenges record while
// PhaseChallengesInProgress, the completed Challenges record once
// PhaseChallengesGenerated is reached, and the (P0, P1) pair once
// PhaseMSMComputed is reached. Grounded on phased.rs's
// VerificationState, stripped of its repr(C) byte layout
// (SIZE/from_bytes/from_bytes_mut) since nothing here is read back out
// of raw account memory — a caller that needs to persist a
// SegmentState across process boundaries serializes it however its
// own transport requires.
type SegmentState struct {
	Phase    Phase
	SubPhase ChallengeSubPhase

	VK           *VerificationKey
	Proof        *Proof
	PublicInputs []fr.Element
	SRS          *SRS

	transcript *Transcript
	challenges *Challenges

	SumcheckPassed bool
	P0, P1         bn254.G1Affine
	Verified       bool

	// Err holds the rejection or configuration error once Phase is
	// PhaseFailed; RunSegment returns that same error from the call
	// that failed. A segment that merely has more work to do returns
	// nil and leaves Err unset.
	Err error
}

// NewSegmentState starts a fresh segmented verification run. The
// returned state is in PhaseUninitialized; the first RunSegment call
// opens the transcript and advances it to PhaseChallengesInProgress.
func NewSegmentState(vk *VerificationKey, proof *Proof, publicInputs []fr.Element, srs *SRS) *SegmentState {
	return &SegmentState{
		Phase:        PhaseUninitialized,
		SubPhase:     SubPhaseNotStarted,
		VK:           vk,
		Proof:        proof,
		PublicInputs: publicInputs,
		SRS:          srs,
	}
}

// Done reports whether the state has reached a terminal phase, so a
// driving loop knows when to stop calling RunSegment.
func (s *SegmentState) Done() bool {
	return s.Phase == PhaseComplete || s.Phase == PhaseFailed
}

// RunSegment advances a SegmentState by exactly one bounded step of
// work and returns. It never runs more than one challenge sub-phase,
// the sumcheck verification, the Shplemini MSM, or the final pairing
// check per call — the unit a host with a per-call compute budget
// segments the pipeline by (SPEC_FULL.md §5). A returned error always
// also parks PhaseFailed with Err set, so a caller inspecting state
// after a failed RunSegment sees the same outcome either way.
func (s *SegmentState) RunSegment() error {
	if s.Done() {
		return nil
	}

	switch s.Phase {
	case PhaseUninitialized:
		if s.SRS == nil {
			return s.fail(&VerifyError{Kind: VerifyErrMissingSRS, Err: ErrMissingSRS})
		}
		s.transcript = NewTranscript()
		s.challenges = &Challenges{}
		s.Phase = PhaseChallengesInProgress
		s.SubPhase = SubPhaseNotStarted
		return nil

	case PhaseChallengesInProgress:
		return s.runChallengeSubPhase()

	case PhaseChallengesGenerated:
		relParams := RelationParametersFrom(s.challenges)
		sc, err := VerifySumcheck(s.Proof, s.challenges, relParams)
		if err != nil {
			return s.fail(err)
		}
		s.SumcheckPassed = sc.Valid
		if !sc.Valid {
			return s.fail(errVerificationFailed)
		}
		s.Phase = PhaseSumcheckVerified
		return nil

	case PhaseSumcheckVerified:
		points, err := VerifyShplemini(s.Proof, s.VK, s.challenges)
		if err != nil {
			return s.fail(err)
		}
		s.P0, s.P1 = points.P0, points.P1
		s.Phase = PhaseMSMComputed
		return nil

	case PhaseMSMComputed:
		ok, err := pairingCheck(s.SRS, s.P0, s.P1)
		if err != nil {
			return s.fail(err)
		}
		if !ok {
			return s.fail(errVerificationFailed)
		}
		s.Verified = true
		s.Phase = PhaseComplete
		return nil
	}

	return s.fail(transcriptError("segment state in unreachable phase"))
}

func (s *SegmentState) fail(err error) error {
	s.Phase = PhaseFailed
	s.Err = err
	return err
}

// runChallengeSubPhase runs one sub-phase of SPEC_FULL.md §4.4 against
// the segment's own transcript, advancing SubPhase and, once the
// public-input delta is computed, promoting Phase to
// PhaseChallengesGenerated.
func (s *SegmentState) runChallengeSubPhase() error {
	t, c := s.transcript, s.challenges

	switch s.SubPhase {
	case SubPhaseNotStarted:
		if err := challengePhase1a(t, c, s.VK, s.Proof, s.PublicInputs); err != nil {
			return s.fail(err)
		}
		s.SubPhase = SubPhaseEtaBetaGammaDone

	case SubPhaseEtaBetaGammaDone:
		challengePhase1b(t, c, s.Proof)
		s.SubPhase = SubPhaseAlphasGatesDone

	case SubPhaseAlphasGatesDone:
		runSumcheckChallengeRounds(t, c, s.Proof, 0, sumcheckHalf)
		s.SubPhase = SubPhaseSumcheckHalfDone

	case SubPhaseSumcheckHalfDone:
		runSumcheckChallengeRounds(t, c, s.Proof, sumcheckHalf, LogNMax)
		challengePhase1e(t, c, s.Proof)
		s.SubPhase = SubPhaseAllChallengesDone

	case SubPhaseAllChallengesDone:
		delta, err := computePublicInputsDelta(s.VK, c.Beta, c.Gamma, s.PublicInputs)
		if err != nil {
			return s.fail(err)
		}
		c.PublicInputsDelta = delta
		s.SubPhase = SubPhaseDeltaComputed
		s.Phase = PhaseChallengesGenerated
	}

	return nil
}

// runSumcheckChallengeRounds absorbs and squeezes sumcheck rounds
// [from, to), the same per-round body as challengePhase1cd but scoped
// to a half-open range so a segment can pause midway through the
// LogNMax rounds (sub-phases 1c/1d of SPEC_FULL.md §4.4).
func runSumcheckChallengeRounds(t *Transcript, c *Challenges, proof *Proof, from, to int) {
	for r := from; r < to; r++ {
		for _, v := range proof.SumcheckUnivariates[r] {
			t.AppendFr(v)
		}
		c.SumcheckU[r] = t.Challenge()
	}
}
