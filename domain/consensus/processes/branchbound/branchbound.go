package branchbound

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/hashset"
)

type branchBoundCalculator struct {
	maxAltBranchSize int

	databaseContext    model.DBReader
	dagTopologyManager model.DAGTopologyManager
	unitPropsStore     model.UnitPropsStore
}

// New instantiates a new BranchBoundCalculator
func New(
	maxAltBranchSize int,
	databaseContext model.DBReader,
	dagTopologyManager model.DAGTopologyManager,
	unitPropsStore model.UnitPropsStore) model.BranchBoundCalculator {

	return &branchBoundCalculator{
		maxAltBranchSize:   maxAltBranchSize,
		databaseContext:    databaseContext,
		dagTopologyManager: dagTopologyManager,
		unitPropsStore:     unitPropsStore,
	}
}

// MaxAltLevel returns a level that the alternative branches rooted at
// altRoots cannot have their witnessed level reach without a unit that is
// already in them raising it.
//
// The branches are the best children closure of altRoots. Within them, the
// units whose witnessed level is not greater than their best parent's did
// not raise the witnessed level, and the result is the highest level among
// those. If every unit raised it, the result is the highest level in the
// branches, and never less than firstUnstableMCLevel.
//
// The walk stops at the first non-raising unit whose level is at least
// minMainChainWitnessedLevel and returns that level, since no higher bound
// changes the stability decision.
func (bbc *branchBoundCalculator) MaxAltLevel(stagingArea *model.StagingArea,
	altRoots []*externalapi.DomainHash, firstUnstableMCLevel uint64, minMainChainWitnessedLevel uint64) (uint64, error) {

	hasNonRaisingUnit := false
	maxNonRaisingLevel := uint64(0)
	maxLevel := firstUnstableMCLevel

	visited := hashset.New()
	queue := externalapi.CloneHashes(altRoots)
	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]
		if visited.Contains(current) {
			continue
		}
		visited.Add(current)
		if len(visited) > bbc.maxAltBranchSize {
			return 0, errors.Wrapf(ruleerrors.ErrAltBranchTooLarge, "alternative branches have more "+
				"than %d units", bbc.maxAltBranchSize)
		}

		props, err := bbc.unitPropsStore.Get(bbc.databaseContext, stagingArea, current)
		if err != nil {
			return 0, err
		}
		bestParentProps, err := bbc.unitPropsStore.Get(bbc.databaseContext, stagingArea, props.BestParent)
		if err != nil {
			return 0, err
		}

		if props.Level > maxLevel {
			maxLevel = props.Level
		}
		if props.WitnessedLevel <= bestParentProps.WitnessedLevel {
			if props.Level >= minMainChainWitnessedLevel {
				log.Tracef("Alternative unit %s at level %d keeps its witnessed level, no need to look further",
					current, props.Level)
				return props.Level, nil
			}
			hasNonRaisingUnit = true
			if props.Level > maxNonRaisingLevel {
				maxNonRaisingLevel = props.Level
			}
		}

		bestChildren, err := bbc.dagTopologyManager.BestChildren(stagingArea, current)
		if err != nil {
			return 0, err
		}
		for _, bestChild := range bestChildren {
			if !visited.Contains(bestChild) {
				queue = append(queue, bestChild)
			}
		}
	}

	if !hasNonRaisingUnit {
		log.Tracef("No alternative unit keeps its witnessed level, bounding by the highest level %d", maxLevel)
		return maxLevel, nil
	}
	return maxNonRaisingLevel, nil
}
