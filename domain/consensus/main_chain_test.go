package consensus_test

import (
	"testing"

	"github.com/witnessdag/witnessd/domain/consensus"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/model/testapi"
	"github.com/witnessdag/witnessd/domain/consensus/utils/testutils"
	"golang.org/x/crypto/ed25519"
)

func checkGaplessMainChain(t *testing.T, tc testapi.TestConsensus, expectedLastMCI uint64) {
	lastMCI, err := tc.LastMCI()
	if err != nil {
		t.Fatalf("LastMCI: %+v", err)
	}
	if lastMCI != expectedLastMCI {
		t.Fatalf("expected last mci %d, got %d", expectedLastMCI, lastMCI)
	}

	var previous *externalapi.DomainHash
	for mci := uint64(0); mci <= lastMCI; mci++ {
		mainChainUnit, err := tc.GetMainChainUnit(mci)
		if err != nil {
			t.Fatalf("GetMainChainUnit(%d): %+v", mci, err)
		}
		info := testutils.UnitInfo(t, tc, mainChainUnit)
		if !info.IsOnMainChain || !info.HasMCI || info.MainChainIndex != mci {
			t.Fatalf("main chain unit %s is expected to be on the main chain at mci %d, got %+v",
				mainChainUnit, mci, info)
		}
		if previous != nil && !info.BestParent.Equal(previous) {
			t.Fatalf("main chain unit at mci %d does not have the unit at mci %d as its best parent", mci, mci-1)
		}
		previous = mainChainUnit
	}
}

// A competing branch with a better best parent takes the main chain over,
// and the units it pushed off get an mci again once a main chain unit
// includes them.
func TestMainChainReorganization(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestMainChainReorganization")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		common := testutils.AddChain(t, tc, config.GenesisHash, 10, roundRobinWitnesses(tc))
		commonTip := common[len(common)-1]

		outsider := testutils.NewKey(2)
		branchA := testutils.AddChain(t, tc, commonTip, 3, func(int) ed25519.PrivateKey {
			return outsider
		})
		for i, unitHash := range branchA {
			info := testutils.UnitInfo(t, tc, unitHash)
			if !info.IsOnMainChain || info.MainChainIndex != uint64(11+i) {
				t.Fatalf("branch A unit %d is expected on the main chain at mci %d, got %+v", i, 11+i, info)
			}
		}
		checkGaplessMainChain(t, tc, 13)

		// Same witnessed level as branch A with a lower level
		branchB := testutils.AddChain(t, tc, commonTip, 2, func(i int) ed25519.PrivateKey {
			return testutils.WitnessKey(tc, 10+i)
		})
		for i, unitHash := range branchA {
			info := testutils.UnitInfo(t, tc, unitHash)
			if info.IsOnMainChain || info.HasMCI {
				t.Fatalf("branch A unit %d is expected to have left the main chain, got %+v", i, info)
			}
		}
		for i, unitHash := range branchB {
			info := testutils.UnitInfo(t, tc, unitHash)
			if !info.IsOnMainChain || info.MainChainIndex != uint64(11+i) {
				t.Fatalf("branch B unit %d is expected on the main chain at mci %d, got %+v", i, 11+i, info)
			}
		}
		checkGaplessMainChain(t, tc, 12)

		merge, err := tc.AddUnit([]*externalapi.DomainHash{branchA[len(branchA)-1], branchB[len(branchB)-1]},
			[]ed25519.PrivateKey{testutils.WitnessKey(tc, 0)})
		if err != nil {
			t.Fatalf("AddUnit merging both branches: %+v", err)
		}
		mergeInfo := testutils.UnitInfo(t, tc, merge)
		if !mergeInfo.BestParent.Equal(branchB[len(branchB)-1]) {
			t.Fatalf("merging unit is expected to have branch B as its best parent")
		}
		if !mergeInfo.IsOnMainChain || mergeInfo.MainChainIndex != 13 {
			t.Fatalf("merging unit is expected on the main chain at mci 13, got %+v", mergeInfo)
		}
		for i, unitHash := range branchA {
			info := testutils.UnitInfo(t, tc, unitHash)
			if info.IsOnMainChain || !info.HasMCI || info.MainChainIndex != 13 {
				t.Fatalf("branch A unit %d is expected off the main chain at mci 13, got %+v", i, info)
			}
		}
		checkGaplessMainChain(t, tc, 13)

		if lastStableMCI := testutils.LastStableMCI(t, tc); lastStableMCI != 0 {
			t.Fatalf("expected last stable mci 0, got %d", lastStableMCI)
		}
	})
}
