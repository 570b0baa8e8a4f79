package mainchainmanager

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/hashset"
)

// UpdateMainChain makes the best parent chain of the best free unit the main
// chain. Main chain indexes above the point where the new chain meets the
// current one are unassigned and then assigned again along the new chain.
// It fails with a ConsistencyViolation if that point is below the last
// stable main chain index.
func (mcm *mainChainManager) UpdateMainChain(stagingArea *model.StagingArea) (*model.MainChainChanges, error) {
	tip, err := mcm.bestParentSelector.BestFreeUnit(stagingArea)
	if err != nil {
		return nil, err
	}

	intersection, intersectionMCI, newChain, err := mcm.findIntersection(stagingArea, tip)
	if err != nil {
		return nil, err
	}

	lastStableMCI, err := mcm.consensusStateStore.LastStableMCI(mcm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}
	if intersectionMCI < lastStableMCI {
		return nil, ruleerrors.NewErrStableMainChainConflict(lastStableMCI, intersectionMCI, tip)
	}

	lastMCI, err := mcm.consensusStateStore.LastMCI(mcm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}
	if len(newChain) == 0 && intersectionMCI == lastMCI {
		return &model.MainChainChanges{IntersectionMCI: intersectionMCI}, nil
	}
	log.Debugf("Main chain from tip %s meets the current main chain at %s (mci %d)",
		tip, intersection, intersectionMCI)

	removed, err := mcm.unassignAbove(stagingArea, intersectionMCI, lastMCI)
	if err != nil {
		return nil, err
	}

	for i, mainChainUnit := range newChain {
		err := mcm.assign(stagingArea, intersectionMCI+1+uint64(i), mainChainUnit)
		if err != nil {
			return nil, err
		}
	}

	mcm.consensusStateStore.StageLastMCI(stagingArea, intersectionMCI+uint64(len(newChain)))

	return &model.MainChainChanges{
		IntersectionMCI: intersectionMCI,
		Removed:         removed,
		Added:           newChain,
	}, nil
}

// findIntersection walks down best parents from tip to the first unit that
// is on the main chain. newChain is the walked path above it, in ascending
// order.
func (mcm *mainChainManager) findIntersection(stagingArea *model.StagingArea, tip *externalapi.DomainHash) (
	intersection *externalapi.DomainHash, intersectionMCI uint64, newChain []*externalapi.DomainHash, err error) {

	current := tip
	for {
		props, err := mcm.unitPropsStore.Get(mcm.databaseContext, stagingArea, current)
		if err != nil {
			return nil, 0, nil, err
		}
		if props.IsOnMainChain {
			for i, j := 0, len(newChain)-1; i < j; i, j = i+1, j-1 {
				newChain[i], newChain[j] = newChain[j], newChain[i]
			}
			return current, props.MainChainIndex, newChain, nil
		}
		if props.BestParent == nil {
			return nil, 0, nil, errors.Errorf("unit %s is off the main chain and has no best parent", current)
		}
		newChain = append(newChain, current)
		current = props.BestParent
	}
}

// unassignAbove clears the main chain index of every unit with
// fromMCI < mci <= toMCI and returns the main chain units that were removed,
// in descending order
func (mcm *mainChainManager) unassignAbove(stagingArea *model.StagingArea, fromMCI, toMCI uint64) (
	[]*externalapi.DomainHash, error) {

	removed := make([]*externalapi.DomainHash, 0, toMCI-fromMCI)
	for mci := toMCI; mci > fromMCI; mci-- {
		mainChainUnit, err := mcm.mainChainStore.MainChainUnit(mcm.databaseContext, stagingArea, mci)
		if err != nil {
			return nil, err
		}

		unitsAtMCI, err := mcm.mainChainStore.UnitsAtMCI(mcm.databaseContext, stagingArea, mci)
		if err != nil {
			return nil, err
		}
		for _, unitHash := range unitsAtMCI {
			props, err := mcm.unitPropsStore.Get(mcm.databaseContext, stagingArea, unitHash)
			if err != nil {
				return nil, err
			}
			if props.IsStable {
				return nil, errors.Wrapf(ruleerrors.ErrStableUnitRemovedFromMainChain,
					"cannot unassign mci %d of stable unit %s", mci, unitHash)
			}
			props.HasMCI = false
			props.MainChainIndex = 0
			props.IsOnMainChain = false
			mcm.unitPropsStore.Stage(stagingArea, unitHash, props)
			mcm.mainChainStore.RemoveUnitAtMCI(stagingArea, mci, unitHash)
		}

		mcm.mainChainStore.RemoveMainChainUnit(stagingArea, mci)
		removed = append(removed, mainChainUnit)
	}
	return removed, nil
}

// assign makes mainChainUnit the main chain unit at mci, and gives mci to
// every unit in its past that has no main chain index yet
func (mcm *mainChainManager) assign(stagingArea *model.StagingArea, mci uint64,
	mainChainUnit *externalapi.DomainHash) error {

	mcm.mainChainStore.StageMainChainUnit(stagingArea, mci, mainChainUnit)

	visited := hashset.New()
	queue := []*externalapi.DomainHash{mainChainUnit}
	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]
		if visited.Contains(current) {
			continue
		}
		visited.Add(current)

		props, err := mcm.unitPropsStore.Get(mcm.databaseContext, stagingArea, current)
		if err != nil {
			return err
		}
		if props.HasMCI {
			continue
		}
		if props.IsStable {
			return errors.Wrapf(ruleerrors.ErrStableUnitReassigned, "stable unit %s has no mci", current)
		}

		props.HasMCI = true
		props.MainChainIndex = mci
		props.IsOnMainChain = current.Equal(mainChainUnit)
		mcm.unitPropsStore.Stage(stagingArea, current, props)
		mcm.mainChainStore.StageUnitAtMCI(stagingArea, mci, current)

		parents, err := mcm.dagTopologyManager.Parents(stagingArea, current)
		if err != nil {
			return err
		}
		for _, parent := range parents {
			if !visited.Contains(parent) {
				queue = append(queue, parent)
			}
		}
	}
	return nil
}
