package stabilitymanager

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/infrastructure/metrics"
)

// IsNextMCIStable returns whether the main chain unit right above the last
// stable main chain index is stable.
//
// Walking down from the main chain tip until a majority of the witnesses
// of that unit have been seen gives min_mc_wl, the lowest witnessed level
// the main chain is known to have. Without alternative branches the unit
// is stable once min_mc_wl reaches its level. Otherwise min_mc_wl must
// exceed the level the alternative branches are bounded by.
func (sm *stabilityManager) IsNextMCIStable(stagingArea *model.StagingArea) (bool, error) {
	lastStableMCI, err := sm.consensusStateStore.LastStableMCI(sm.databaseContext, stagingArea)
	if err != nil {
		return false, err
	}
	lastMCI, err := sm.consensusStateStore.LastMCI(sm.databaseContext, stagingArea)
	if err != nil {
		return false, err
	}
	if lastStableMCI >= lastMCI {
		return false, nil
	}

	lastStableUnit, err := sm.mainChainStore.MainChainUnit(sm.databaseContext, stagingArea, lastStableMCI)
	if err != nil {
		return false, err
	}
	firstUnstableUnit, err := sm.mainChainStore.MainChainUnit(sm.databaseContext, stagingArea, lastStableMCI+1)
	if err != nil {
		return false, err
	}
	firstUnstableRelations, err := sm.unitRelationStore.UnitRelation(sm.databaseContext, stagingArea, firstUnstableUnit)
	if err != nil {
		return false, err
	}
	if len(firstUnstableRelations.Children) == 0 {
		return false, nil
	}
	firstUnstableProps, err := sm.unitPropsStore.Get(sm.databaseContext, stagingArea, firstUnstableUnit)
	if err != nil {
		return false, err
	}

	witnesses, err := sm.witnessListStore.WitnessList(sm.databaseContext, stagingArea, firstUnstableUnit)
	if err != nil {
		return false, err
	}
	tip, err := sm.mainChainManager.MainChainTip(stagingArea)
	if err != nil {
		return false, err
	}
	minMainChainWitnessedLevel, found, err := sm.witnessedLevelManager.MinMainChainWitnessedLevel(
		stagingArea, tip, witnesses)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	altRoots, err := sm.altBranchRoots(stagingArea, lastStableUnit, firstUnstableUnit)
	if err != nil {
		return false, err
	}
	if len(altRoots) == 0 {
		return minMainChainWitnessedLevel >= firstUnstableProps.Level, nil
	}

	maxAltLevel, err := sm.branchBoundCalculator.MaxAltLevel(stagingArea, altRoots, firstUnstableProps.Level,
		minMainChainWitnessedLevel)
	if err != nil {
		if errors.Is(err, ruleerrors.ErrAltBranchTooLarge) {
			log.Errorf("Stability is stalled at mci %d: %s (min_mc_wl %d)", lastStableMCI, err,
				minMainChainWitnessedLevel)
			metrics.RecordStabilityStall(lastStableMCI)
			return false, nil
		}
		return false, err
	}
	log.Tracef("mci %d: min_mc_wl %d, max_alt_level %d", lastStableMCI+1, minMainChainWitnessedLevel, maxAltLevel)

	return minMainChainWitnessedLevel > maxAltLevel, nil
}

// altBranchRoots returns the best children of the last stable main chain
// unit other than the first unstable one
func (sm *stabilityManager) altBranchRoots(stagingArea *model.StagingArea,
	lastStableUnit *externalapi.DomainHash, firstUnstableUnit *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	bestChildren, err := sm.dagTopologyManager.BestChildren(stagingArea, lastStableUnit)
	if err != nil {
		return nil, err
	}

	altRoots := make([]*externalapi.DomainHash, 0, len(bestChildren))
	for _, bestChild := range bestChildren {
		if !bestChild.Equal(firstUnstableUnit) {
			altRoots = append(altRoots, bestChild)
		}
	}
	return altRoots, nil
}
