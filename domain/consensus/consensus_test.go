package consensus_test

import (
	"math"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/model/testapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/consensushashing"
	"github.com/witnessdag/witnessd/domain/consensus/utils/staging"
	"github.com/witnessdag/witnessd/domain/consensus/utils/testutils"
	"golang.org/x/crypto/ed25519"
)

func roundRobinWitnesses(tc testapi.TestConsensus) func(i int) ed25519.PrivateKey {
	return func(i int) ed25519.PrivateKey {
		return testutils.WitnessKey(tc, i)
	}
}

func TestGenesisIsStable(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestGenesisIsStable")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		genesisInfo := testutils.UnitInfo(t, tc, config.GenesisHash)
		if !genesisInfo.IsStable || !genesisInfo.IsOnMainChain || genesisInfo.MainChainIndex != 0 {
			t.Fatalf("genesis is expected to be the stable main chain unit at mci 0, got %+v", genesisInfo)
		}
		if !genesisInfo.IsFree {
			t.Fatalf("genesis is expected to be the only free unit")
		}
		if genesisInfo.Ball == nil {
			t.Fatalf("genesis has no ball")
		}
		if testutils.LastStableMCI(t, tc) != 0 {
			t.Fatalf("last stable mci is expected to be 0")
		}
	})
}

// In a chain where every unit is authored by the next witness, a unit's
// witnessed level trails its level by MajorityOfWitnesses, and the main
// chain tip sees majority witnesses within its last MajorityOfWitnesses
// units. Together, the last stable mci trails the tip by twice that, less one.
func TestRoundRobinChainStability(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestRoundRobinChainStability")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		majority := uint64(config.MajorityOfWitnesses)
		const chainLength = 40
		tip := config.GenesisHash
		previousLastStableMCI := uint64(0)
		for i := 0; i < chainLength; i++ {
			tip = testutils.AddChain(t, tc, tip, 1, func(int) ed25519.PrivateKey {
				return testutils.WitnessKey(tc, i)
			})[0]
			level := uint64(i + 1)

			tipInfo := testutils.UnitInfo(t, tc, tip)
			expectedWitnessedLevel := uint64(0)
			if level > majority {
				expectedWitnessedLevel = level - majority
			}
			if tipInfo.WitnessedLevel != expectedWitnessedLevel {
				t.Fatalf("unit at level %d: expected witnessed level %d, got %d", level,
					expectedWitnessedLevel, tipInfo.WitnessedLevel)
			}
			if !tipInfo.IsOnMainChain || tipInfo.MainChainIndex != level {
				t.Fatalf("unit at level %d is expected to be on the main chain at mci %d, got %+v",
					level, level, tipInfo)
			}

			lastStableMCI := testutils.LastStableMCI(t, tc)
			expectedLastStableMCI := uint64(0)
			if level > 2*majority-1 {
				expectedLastStableMCI = level - (2*majority - 1)
			}
			if lastStableMCI != expectedLastStableMCI {
				t.Fatalf("after level %d: expected last stable mci %d, got %d", level,
					expectedLastStableMCI, lastStableMCI)
			}
			if lastStableMCI < previousLastStableMCI {
				t.Fatalf("last stable mci moved back from %d to %d", previousLastStableMCI, lastStableMCI)
			}
			previousLastStableMCI = lastStableMCI
		}

		for mci := uint64(0); mci <= previousLastStableMCI; mci++ {
			mainChainUnit, err := tc.GetMainChainUnit(mci)
			if err != nil {
				t.Fatalf("GetMainChainUnit(%d): %+v", mci, err)
			}
			info := testutils.UnitInfo(t, tc, mainChainUnit)
			if !info.IsStable || info.Ball == nil {
				t.Fatalf("main chain unit at mci %d is expected to be stable with a ball", mci)
			}
		}
	})
}

// A branch of non-witness units off genesis never raises its witnessed
// level, so it keeps the main chain from stabilizing until min_mc_wl climbs
// above the branch's top level.
func TestAlternativeBranchHoldsStability(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestAlternativeBranchHoldsStability")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		const branchLength = 50
		outsider := testutils.NewKey(1)
		branch := testutils.AddChain(t, tc, config.GenesisHash, branchLength, func(int) ed25519.PrivateKey {
			return outsider
		})

		mainBranch := testutils.AddChain(t, tc, config.GenesisHash, 60, roundRobinWitnesses(tc))
		if lastStableMCI := testutils.LastStableMCI(t, tc); lastStableMCI != 0 {
			t.Fatalf("with a main chain of 60 units, expected last stable mci 0, got %d", lastStableMCI)
		}

		stagingArea := model.NewStagingArea()
		maxAltLevel, err := tc.BranchBoundCalculator().MaxAltLevel(stagingArea, branch[:1], 1, math.MaxUint64)
		if err != nil {
			t.Fatalf("MaxAltLevel: %+v", err)
		}
		if maxAltLevel < branchLength {
			t.Fatalf("expected max alt level of at least %d, got %d", branchLength, maxAltLevel)
		}

		tip := mainBranch[len(mainBranch)-1]
		testutils.AddChain(t, tc, tip, 10, func(i int) ed25519.PrivateKey {
			return testutils.WitnessKey(tc, 60+i)
		})
		if lastStableMCI := testutils.LastStableMCI(t, tc); lastStableMCI != 57 {
			t.Fatalf("with a main chain of 70 units, expected last stable mci 57, got %d", lastStableMCI)
		}

		for _, unitHash := range branch {
			info := testutils.UnitInfo(t, tc, unitHash)
			if info.IsOnMainChain || info.IsStable {
				t.Fatalf("alternative branch unit %s is expected to stay off the main chain and unstable", unitHash)
			}
		}
	})
}

func TestStableMainChainConflictHaltsConsensus(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestStableMainChainConflictHaltsConsensus")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		chain := testutils.AddChain(t, tc, config.GenesisHash, 3, roundRobinWitnesses(tc))

		// Force the whole chain stable, which the witnesses never agreed on
		stagingArea := model.NewStagingArea()
		for _, unitHash := range chain {
			props, err := tc.UnitPropsStore().Get(tc.DatabaseContext(), stagingArea, unitHash)
			if err != nil {
				t.Fatalf("UnitPropsStore.Get: %+v", err)
			}
			props = props.Clone()
			props.IsStable = true
			tc.UnitPropsStore().Stage(stagingArea, unitHash, props)
		}
		tc.ConsensusStateStore().StageLastStableMCI(stagingArea, uint64(len(chain)))
		err = staging.CommitAllChanges(tc.DatabaseContext(), stagingArea)
		if err != nil {
			t.Fatalf("CommitAllChanges: %+v", err)
		}

		// A sibling of the first unit is a better best parent than the
		// chain tip, so it would move the stable main chain
		_, err = tc.AddUnit([]*externalapi.DomainHash{config.GenesisHash},
			[]ed25519.PrivateKey{testutils.WitnessKey(tc, 5)})
		if !ruleerrors.IsConsistencyViolation(err) {
			t.Fatalf("expected a consistency violation, got: %+v", err)
		}
		var conflict ruleerrors.ErrStableMainChainConflict
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ErrStableMainChainConflict, got: %+v", err)
		}
		if !tc.IsHalted() {
			t.Fatalf("consensus is expected to be halted")
		}

		_, err = tc.AddUnit([]*externalapi.DomainHash{chain[len(chain)-1]},
			[]ed25519.PrivateKey{testutils.WitnessKey(tc, 3)})
		if !errors.Is(err, ruleerrors.ErrConsensusHalted) {
			t.Fatalf("expected ErrConsensusHalted, got: %+v", err)
		}

		// Reads keep working
		if lastStableMCI := testutils.LastStableMCI(t, tc); lastStableMCI != uint64(len(chain)) {
			t.Fatalf("expected last stable mci %d, got %d", len(chain), lastStableMCI)
		}
	})
}

func TestIncompatibleParentIsRejected(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestIncompatibleParentIsRejected")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		chain := testutils.AddChain(t, tc, config.GenesisHash, 2, roundRobinWitnesses(tc))

		unit, err := tc.BuildUnitWithParents(chain[1:], []ed25519.PrivateKey{testutils.WitnessKey(tc, 2)})
		if err != nil {
			t.Fatalf("BuildUnitWithParents: %+v", err)
		}
		// Replace two witnesses, one more than allowed
		unit.Witnesses = replaceWitnesses(unit.Witnesses, 2)
		unitHash := signUnit(t, unit, testutils.WitnessKey(tc, 2))

		_, err = tc.ValidateAndInsertUnit(unit, externalapi.SequenceGood)
		if !errors.Is(err, ruleerrors.ErrIncompatibleWitnessList) {
			t.Fatalf("expected ErrIncompatibleWitnessList, got: %+v", err)
		}
		if !ruleerrors.IsStructuralError(err) {
			t.Fatalf("expected a structural error, got: %+v", err)
		}
		if tc.IsHalted() {
			t.Fatalf("a structural error must not halt consensus")
		}
		info, err := tc.GetUnitInfo(unitHash)
		if err != nil {
			t.Fatalf("GetUnitInfo: %+v", err)
		}
		if info.Exists {
			t.Fatalf("rejected unit was stored")
		}

		// A single replaced witness is within the allowed mutations
		unit, err = tc.BuildUnitWithParents(chain[1:], []ed25519.PrivateKey{testutils.WitnessKey(tc, 2)})
		if err != nil {
			t.Fatalf("BuildUnitWithParents: %+v", err)
		}
		unit.Witnesses = replaceWitnesses(unit.Witnesses, 1)
		signUnit(t, unit, testutils.WitnessKey(tc, 2))
		_, err = tc.ValidateAndInsertUnit(unit, externalapi.SequenceGood)
		if err != nil {
			t.Fatalf("ValidateAndInsertUnit with one mutation: %+v", err)
		}
	})
}

func TestRelatedParentsAreRejected(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestRelatedParentsAreRejected")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		chain := testutils.AddChain(t, tc, config.GenesisHash, 2, roundRobinWitnesses(tc))
		_, err = tc.AddUnit(chain, []ed25519.PrivateKey{testutils.WitnessKey(tc, 2)})
		if !errors.Is(err, ruleerrors.ErrRelatedParents) {
			t.Fatalf("expected ErrRelatedParents, got: %+v", err)
		}
	})
}

func TestDuplicateAndMissingParents(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestDuplicateAndMissingParents")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		unit, err := tc.BuildUnitWithParents([]*externalapi.DomainHash{config.GenesisHash},
			[]ed25519.PrivateKey{testutils.WitnessKey(tc, 0)})
		if err != nil {
			t.Fatalf("BuildUnitWithParents: %+v", err)
		}
		_, err = tc.ValidateAndInsertUnit(unit, externalapi.SequenceGood)
		if err != nil {
			t.Fatalf("ValidateAndInsertUnit: %+v", err)
		}
		_, err = tc.ValidateAndInsertUnit(unit, externalapi.SequenceGood)
		if !errors.Is(err, ruleerrors.ErrDuplicateUnit) {
			t.Fatalf("expected ErrDuplicateUnit, got: %+v", err)
		}

		orphan := unit.Clone()
		orphan.Parents = []*externalapi.DomainHash{externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})}
		signUnit(t, orphan, testutils.WitnessKey(tc, 0))
		_, err = tc.ValidateAndInsertUnit(orphan, externalapi.SequenceGood)
		var missingParents ruleerrors.ErrMissingParents
		if !errors.As(err, &missingParents) {
			t.Fatalf("expected ErrMissingParents, got: %+v", err)
		}
		if len(missingParents.MissingParentHashes) != 1 {
			t.Fatalf("expected a single missing parent, got %v", missingParents.MissingParentHashes)
		}
	})
}

func TestSelectParentsForNewUnit(t *testing.T) {
	testutils.ForAllNets(t, func(t *testing.T, config *consensus.Config) {
		tc, teardown, err := consensus.NewFactory().NewTestConsensus(config, "TestSelectParentsForNewUnit")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown()

		chainA := testutils.AddChain(t, tc, config.GenesisHash, 20, roundRobinWitnesses(tc))
		chainB := testutils.AddChain(t, tc, chainA[4], 3, func(i int) ed25519.PrivateKey {
			return testutils.NewKey(i)
		})

		selection, err := tc.SelectParentsForNewUnit(config.GenesisWitnesses)
		if err != nil {
			t.Fatalf("SelectParentsForNewUnit: %+v", err)
		}
		expectedParents := []*externalapi.DomainHash{chainA[len(chainA)-1], chainB[len(chainB)-1]}
		externalapi.SortHashes(expectedParents)
		if !externalapi.HashesEqual(selection.Parents, expectedParents) {
			t.Fatalf("expected parents %v, got %v", expectedParents, selection.Parents)
		}

		lastStableMCI := testutils.LastStableMCI(t, tc)
		lastStableUnit, err := tc.GetMainChainUnit(lastStableMCI)
		if err != nil {
			t.Fatalf("GetMainChainUnit: %+v", err)
		}
		if !selection.LastBallUnit.Equal(lastStableUnit) {
			t.Fatalf("expected last ball unit %s, got %s", lastStableUnit, selection.LastBallUnit)
		}
	})
}

func replaceWitnesses(witnesses []string, count int) []string {
	replaced := append([]string(nil), witnesses...)
	for i := 0; i < count; i++ {
		replaced[i] = testutils.AddressOf(testutils.NewKey(100 + i))
	}
	sort.Strings(replaced)
	return replaced
}

func signUnit(t *testing.T, unit *externalapi.DomainUnit,
	key ed25519.PrivateKey) *externalapi.DomainHash {

	unitHash, err := consensushashing.SignUnit(unit,
		map[string]ed25519.PrivateKey{testutils.AddressOf(key): key})
	if err != nil {
		t.Fatalf("SignUnit: %+v", err)
	}
	return unitHash
}
