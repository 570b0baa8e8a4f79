package consensus_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/model/testapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/testutils"
)

// newRoundRobinConsensus returns a test consensus holding a chain of
// chainLength units authored by the witnesses in turn
func newRoundRobinConsensus(t *testing.T, config *consensus.Config, testName string,
	chainLength int) (testapi.TestConsensus, []*externalapi.DomainHash, func()) {

	tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, testName)
	if err != nil {
		t.Fatalf("Error setting up consensus: %+v", err)
	}
	chain := testutils.AddChain(t, tc, config.GenesisHash, chainLength, roundRobinWitnesses(tc))
	return tc, chain, teardown
}

func TestWitnessProof(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, chain, teardown := newRoundRobinConsensus(t, config, "TestWitnessProof", 40)
		defer teardown()

		if lastStableMCI := testutils.LastStableMCI(t, tc); lastStableMCI != 27 {
			t.Fatalf("expected last stable mci 27, got %d", lastStableMCI)
		}

		proof, err := tc.GetWitnessProof(context.Background(), config.GenesisWitnesses, 0)
		if err != nil {
			t.Fatalf("GetWitnessProof: %+v", err)
		}

		// The last stable unit references the unit at mci 13 as its last
		// ball, so everything above it is served newest first
		if len(proof.UnstableMCJoints) != 27 {
			t.Fatalf("expected 27 unstable main chain joints, got %d", len(proof.UnstableMCJoints))
		}
		if !proof.UnstableMCJoints[0].UnitHash.Equal(chain[39]) {
			t.Fatalf("expected the proof to start at the main chain tip")
		}
		if proof.LastBallMCI != 20 || !proof.LastBallUnit.Equal(chain[19]) {
			t.Fatalf("expected last ball unit %s at mci 20, got %s at mci %d", chain[19],
				proof.LastBallUnit, proof.LastBallMCI)
		}
		if len(proof.WitnessChangeAndDefinitionJoints) != 1 ||
			!proof.WitnessChangeAndDefinitionJoints[0].UnitHash.Equal(config.GenesisHash) {
			t.Fatalf("expected the genesis to be the only definition joint")
		}

		verified, err := tc.WitnessProofManager().VerifyWitnessProof(proof, config.GenesisWitnesses)
		if err != nil {
			t.Fatalf("VerifyWitnessProof: %+v", err)
		}
		expectedLastBall, err := tc.GetBall(chain[19])
		if err != nil {
			t.Fatalf("GetBall: %+v", err)
		}
		if !verified.LastBall.Equal(expectedLastBall) {
			t.Fatalf("expected last ball %s, got %s", expectedLastBall, verified.LastBall)
		}

		// The claimed mci of the last ball is not covered by any hash, so it
		// must not change what verification vouches for
		tamperedProof := *proof
		tamperedProof.LastBallMCI = 1000
		verifiedTampered, err := tc.WitnessProofManager().VerifyWitnessProof(&tamperedProof, config.GenesisWitnesses)
		if err != nil {
			t.Fatalf("VerifyWitnessProof: %+v", err)
		}
		if !reflect.DeepEqual(verified, verifiedTampered) {
			t.Fatalf("verifying a proof with a different claimed mci gave a different result:\n%s\n%s",
				spew.Sdump(verified), spew.Sdump(verifiedTampered))
		}

		_, err = tc.GetWitnessProof(context.Background(), config.GenesisWitnesses, 20)
		if !errors.Is(err, ruleerrors.ErrAlreadyCurrent) {
			t.Fatalf("expected ErrAlreadyCurrent, got: %+v", err)
		}
	})
}

func TestWitnessProofVerificationFailures(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, _, teardown := newRoundRobinConsensus(t, config, "TestWitnessProofVerificationFailures", 40)
		defer teardown()

		newProof := func() *externalapi.WitnessProof {
			proof, err := tc.GetWitnessProof(context.Background(), config.GenesisWitnesses, 0)
			if err != nil {
				t.Fatalf("GetWitnessProof: %+v", err)
			}
			return proof
		}
		verifier := tc.WitnessProofManager()

		proof := newProof()
		proof.WitnessChangeAndDefinitionJoints = nil
		_, err := verifier.VerifyWitnessProof(proof, config.GenesisWitnesses)
		if !errors.Is(err, ruleerrors.ErrMissingWitnessDefinition) {
			t.Fatalf("expected ErrMissingWitnessDefinition, got: %+v", err)
		}
		if !ruleerrors.IsIncompleteProof(err) {
			t.Fatalf("expected an incomplete proof error, got: %+v", err)
		}

		proof = newProof()
		tamperedJoint := *proof.UnstableMCJoints[3]
		tamperedJoint.Unit = tamperedJoint.Unit.Clone()
		tamperedJoint.Unit.Payload = []byte("tampered")
		proof.UnstableMCJoints[3] = &tamperedJoint
		_, err = verifier.VerifyWitnessProof(proof, config.GenesisWitnesses)
		if !errors.Is(err, ruleerrors.ErrInvalidWitnessProof) {
			t.Fatalf("expected ErrInvalidWitnessProof for a tampered joint, got: %+v", err)
		}

		proof = newProof()
		proof.UnstableMCJoints = append(proof.UnstableMCJoints[:5:5], proof.UnstableMCJoints[6:]...)
		_, err = verifier.VerifyWitnessProof(proof, config.GenesisWitnesses)
		if !errors.Is(err, ruleerrors.ErrInvalidWitnessProof) {
			t.Fatalf("expected ErrInvalidWitnessProof for a broken chain, got: %+v", err)
		}

		proof = newProof()
		proof.UnstableMCJoints = proof.UnstableMCJoints[:3]
		_, err = verifier.VerifyWitnessProof(proof, config.GenesisWitnesses)
		if !errors.Is(err, ruleerrors.ErrNotEnoughWitnesses) {
			t.Fatalf("expected ErrNotEnoughWitnesses, got: %+v", err)
		}
	})
}

func TestCatchupChainFromGenesis(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		peer, chain, teardown := newRoundRobinConsensus(t, config, "TestCatchupChainFromGenesis", 40)
		defer teardown()

		node, nodeTeardown, err := consensus.NewFactory().NewTestConsensus(config, "TestCatchupChainFromGenesis-node")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer nodeTeardown()

		catchupChain, err := peer.PrepareCatchupChain(context.Background(), &externalapi.CatchupRequest{
			Witnesses: config.GenesisWitnesses,
		})
		if err != nil {
			t.Fatalf("PrepareCatchupChain: %+v", err)
		}
		if catchupChain.IsCurrent {
			t.Fatalf("a node holding only the genesis is not current")
		}

		expectedUnits := []*externalapi.DomainHash{chain[19], chain[5], config.GenesisHash}
		if len(catchupChain.StableLastBallJoints) != len(expectedUnits) {
			t.Fatalf("expected %d stable last ball joints, got %d", len(expectedUnits),
				len(catchupChain.StableLastBallJoints))
		}
		for i, joint := range catchupChain.StableLastBallJoints {
			if !joint.UnitHash.Equal(expectedUnits[i]) {
				t.Fatalf("stable last ball joint #%d: expected %s, got %s", i, expectedUnits[i], joint.UnitHash)
			}
		}

		chainBalls, err := node.ProcessCatchupChain(context.Background(), config.GenesisWitnesses, catchupChain)
		if err != nil {
			t.Fatalf("ProcessCatchupChain: %+v", err)
		}
		if len(chainBalls) != len(expectedUnits) {
			t.Fatalf("expected %d chain balls, got %d", len(expectedUnits), len(chainBalls))
		}
		for i, ball := range chainBalls {
			expectedBall, err := peer.GetBall(expectedUnits[len(expectedUnits)-1-i])
			if err != nil {
				t.Fatalf("GetBall: %+v", err)
			}
			if !ball.Equal(expectedBall) {
				t.Fatalf("chain ball #%d: expected %s, got %s", i, expectedBall, ball)
			}
		}

		// Nothing stable is left to send a requester whose last known mci
		// is still unstable here
		currentChain, err := peer.PrepareCatchupChain(context.Background(), &externalapi.CatchupRequest{
			LastStableMCI: 27,
			LastKnownMCI:  30,
			Witnesses:     config.GenesisWitnesses,
		})
		if err != nil {
			t.Fatalf("PrepareCatchupChain: %+v", err)
		}
		if !currentChain.IsCurrent {
			t.Fatalf("expected the requester to be current")
		}

		_, err = peer.PrepareCatchupChain(context.Background(), &externalapi.CatchupRequest{
			LastStableMCI: 10,
			LastKnownMCI:  5,
			Witnesses:     config.GenesisWitnesses,
		})
		if !errors.Is(err, ruleerrors.ErrInvalidCatchupRequest) {
			t.Fatalf("expected ErrInvalidCatchupRequest, got: %+v", err)
		}
	})
}
