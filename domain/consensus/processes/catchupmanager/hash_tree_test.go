package catchupmanager_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/model/testapi"
	"github.com/witnessdag/witnessd/domain/consensus/processes/catchupmanager"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/consensushashing"
	"github.com/witnessdag/witnessd/domain/consensus/utils/testutils"
	"golang.org/x/crypto/ed25519"
)

// countingMainChainStore counts range queries so tests can tell whether a
// request was rejected before touching the store
type countingMainChainStore struct {
	model.MainChainStore
	rangeQueries int
}

func (s *countingMainChainStore) UnitsByMCIRange(dbContext model.DBReader, stagingArea *model.StagingArea,
	fromMCI, toMCI uint64, limit int) ([]*externalapi.DomainHash, error) {

	s.rangeQueries++
	return s.MainChainStore.UnitsByMCIRange(dbContext, stagingArea, fromMCI, toMCI, limit)
}

func newCatchupManager(tc testapi.TestConsensus, maxHashTreeSpan uint64, maxHashTreeBalls int,
	mainChainStore model.MainChainStore) model.CatchupManager {

	params := tc.DAGParams()
	return catchupmanager.New(
		params.CountWitnesses,
		maxHashTreeSpan,
		maxHashTreeBalls,
		params.MaxCatchupChainLength,
		tc.DatabaseContext(),
		tc.DAGTopologyManager(),
		tc.WitnessProofManager(),
		tc.UnitStore(),
		tc.UnitPropsStore(),
		tc.BallStore(),
		tc.SkiplistStore(),
		mainChainStore,
		tc.ConsensusStateStore())
}

func stableChain(t *testing.T, tc testapi.TestConsensus, length int) {
	testutils.AddChain(t, tc, tc.DAGParams().GenesisHash, length, func(i int) ed25519.PrivateKey {
		return testutils.WitnessKey(tc, i)
	})
}

func mainChainBall(t *testing.T, tc testapi.TestConsensus, mci uint64) *externalapi.DomainHash {
	unitHash, err := tc.GetMainChainUnit(mci)
	if err != nil {
		t.Fatalf("GetMainChainUnit(%d): %+v", mci, err)
	}
	ball, err := tc.GetBall(unitHash)
	if err != nil {
		t.Fatalf("GetBall(%s): %+v", unitHash, err)
	}
	return ball
}

func TestHashTreeSpanIsCheckedBeforeQuerying(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestHashTreeSpanIsCheckedBeforeQuerying")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		stableChain(t, tc, 20)
		if lastStableMCI := testutils.LastStableMCI(t, tc); lastStableMCI != 7 {
			t.Fatalf("expected last stable mci 7, got %d", lastStableMCI)
		}

		spy := &countingMainChainStore{MainChainStore: tc.MainChainStore()}
		catchupManager := newCatchupManager(tc, 5, config.MaxHashTreeBalls, spy)

		request := &externalapi.HashTreeRequest{
			FromBall: mainChainBall(t, tc, 0),
			ToBall:   mainChainBall(t, tc, 7),
		}
		_, err = catchupManager.GetHashTree(context.Background(), model.NewStagingArea(), request)
		if !errors.Is(err, ruleerrors.ErrHashTreeSpanTooLarge) {
			t.Fatalf("expected ErrHashTreeSpanTooLarge, got: %+v", err)
		}
		if spy.rangeQueries != 0 {
			t.Fatalf("expected no range queries, got %d", spy.rangeQueries)
		}

		request.FromBall = mainChainBall(t, tc, 2)
		response, err := catchupManager.GetHashTree(context.Background(), model.NewStagingArea(), request)
		if err != nil {
			t.Fatalf("GetHashTree: %+v", err)
		}
		if spy.rangeQueries != 5 {
			t.Fatalf("expected a range query per mci, got %d", spy.rangeQueries)
		}
		if !response.Complete || response.LastMCI != 7 || len(response.Balls) != 5 {
			t.Fatalf("unexpected response: complete %t, last mci %d, %d balls", response.Complete,
				response.LastMCI, len(response.Balls))
		}
	})
}

func TestHashTreeRecordsRecomputeToTheirBalls(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestHashTreeRecordsRecomputeToTheirBalls")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		stableChain(t, tc, 30)
		lastStableMCI := testutils.LastStableMCI(t, tc)

		response, err := tc.GetHashTree(context.Background(), &externalapi.HashTreeRequest{
			FromBall: mainChainBall(t, tc, 0),
			ToBall:   mainChainBall(t, tc, lastStableMCI),
		})
		if err != nil {
			t.Fatalf("GetHashTree: %+v", err)
		}
		if uint64(len(response.Balls)) != lastStableMCI {
			t.Fatalf("expected %d balls, got %d", lastStableMCI, len(response.Balls))
		}
		for i, record := range response.Balls {
			mainChainUnit, err := tc.GetMainChainUnit(uint64(i + 1))
			if err != nil {
				t.Fatalf("GetMainChainUnit: %+v", err)
			}
			if !record.Unit.Equal(mainChainUnit) {
				t.Fatalf("record %d is of unit %s, expected %s", i, record.Unit, mainChainUnit)
			}
			ball, err := consensushashing.BallRecordHash(record)
			if err != nil {
				t.Fatalf("BallRecordHash: %+v", err)
			}
			if !ball.Equal(record.Ball) {
				t.Fatalf("record %d: recomputed ball %s, record carries %s", i, ball, record.Ball)
			}
		}
	})
}

func TestHashTreePagination(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestHashTreePagination")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		stableChain(t, tc, 20)
		catchupManager := newCatchupManager(tc, config.MaxHashTreeSpan, 3, tc.MainChainStore())

		request := &externalapi.HashTreeRequest{
			FromBall: mainChainBall(t, tc, 0),
			ToBall:   mainChainBall(t, tc, 7),
		}
		var balls []*externalapi.BallRecord
		for pages := 0; ; pages++ {
			if pages > 7 {
				t.Fatalf("pagination did not terminate")
			}
			response, err := catchupManager.GetHashTree(context.Background(), model.NewStagingArea(), request)
			if err != nil {
				t.Fatalf("GetHashTree: %+v", err)
			}
			balls = append(balls, response.Balls...)
			if response.Complete {
				break
			}
			request.ContinueAfterMCI = response.LastMCI
		}
		if len(balls) != 7 {
			t.Fatalf("expected 7 balls over all pages, got %d", len(balls))
		}

		request.ContinueAfterMCI = 7
		_, err = catchupManager.GetHashTree(context.Background(), model.NewStagingArea(), request)
		if !errors.Is(err, ruleerrors.ErrInvalidHashTree) {
			t.Fatalf("expected ErrInvalidHashTree for a continuation past the range, got: %+v", err)
		}
	})
}

func TestHashTreeRejectsUnknownAndReversedBalls(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestHashTreeRejectsUnknownAndReversedBalls")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		stableChain(t, tc, 20)

		_, err = tc.GetHashTree(context.Background(), &externalapi.HashTreeRequest{
			FromBall: mainChainBall(t, tc, 5),
			ToBall:   mainChainBall(t, tc, 2),
		})
		if !errors.Is(err, ruleerrors.ErrInvalidHashTree) {
			t.Fatalf("expected ErrInvalidHashTree, got: %+v", err)
		}

		_, err = tc.GetHashTree(context.Background(), &externalapi.HashTreeRequest{
			FromBall: mainChainBall(t, tc, 0),
			ToBall:   externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{0xff}),
		})
		if !errors.Is(err, ruleerrors.ErrUnknownBall) {
			t.Fatalf("expected ErrUnknownBall, got: %+v", err)
		}
	})
}
