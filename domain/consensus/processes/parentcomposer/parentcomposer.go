package parentcomposer

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
)

type parentComposer struct {
	maxParentsPerUnit int

	databaseContext             model.DBReader
	dagTopologyManager          model.DAGTopologyManager
	bestParentSelector          model.BestParentSelector
	witnessCompatibilityChecker model.WitnessCompatibilityChecker

	ballStore           model.BallStore
	mainChainStore      model.MainChainStore
	consensusStateStore model.ConsensusStateStore
}

// New instantiates a new ParentComposer
func New(
	maxParentsPerUnit int,
	databaseContext model.DBReader,
	dagTopologyManager model.DAGTopologyManager,
	bestParentSelector model.BestParentSelector,
	witnessCompatibilityChecker model.WitnessCompatibilityChecker,
	ballStore model.BallStore,
	mainChainStore model.MainChainStore,
	consensusStateStore model.ConsensusStateStore) model.ParentComposer {

	return &parentComposer{
		maxParentsPerUnit:           maxParentsPerUnit,
		databaseContext:             databaseContext,
		dagTopologyManager:          dagTopologyManager,
		bestParentSelector:          bestParentSelector,
		witnessCompatibilityChecker: witnessCompatibilityChecker,
		ballStore:                   ballStore,
		mainChainStore:              mainChainStore,
		consensusStateStore:         consensusStateStore,
	}
}

// SelectParents picks the parents of a new unit with the given witness
// list: the best free units whose witness lists are compatible with it, in
// sorted order.
func (pc *parentComposer) SelectParents(stagingArea *model.StagingArea,
	witnesses []string) (*externalapi.ParentSelection, error) {

	tips, err := pc.consensusStateStore.Tips(pc.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	candidates := make([]*externalapi.DomainHash, 0, len(tips))
	for _, tip := range tips {
		isCompatible, err := pc.witnessCompatibilityChecker.IsCompatibleWithUnit(stagingArea, witnesses, tip)
		if err != nil {
			return nil, err
		}
		if isCompatible {
			candidates = append(candidates, tip)
		}
	}
	if len(candidates) == 0 {
		return nil, errors.Wrapf(ruleerrors.ErrIncompatibleWitnessList, "none of the %d free units "+
			"is compatible with the witness list", len(tips))
	}

	var sortErr error
	sort.Slice(candidates, func(i, j int) bool {
		isBetter, err := pc.bestParentSelector.Less(stagingArea, candidates[i], candidates[j])
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return isBetter
	})
	if sortErr != nil {
		return nil, sortErr
	}
	if len(candidates) > pc.maxParentsPerUnit {
		candidates = candidates[:pc.maxParentsPerUnit]
	}
	externalapi.SortHashes(candidates)

	lastBall, lastBallUnit, err := pc.LastBallForParents(stagingArea, candidates)
	if err != nil {
		return nil, err
	}

	return &externalapi.ParentSelection{
		Parents:      candidates,
		LastBall:     lastBall,
		LastBallUnit: lastBallUnit,
	}, nil
}

// LastBallForParents returns the ball of the highest stable main chain unit
// that is one of parents or an ancestor of one of them
func (pc *parentComposer) LastBallForParents(stagingArea *model.StagingArea,
	parents []*externalapi.DomainHash) (lastBall, lastBallUnit *externalapi.DomainHash, err error) {

	lastStableMCI, err := pc.consensusStateStore.LastStableMCI(pc.databaseContext, stagingArea)
	if err != nil {
		return nil, nil, err
	}
	for mci := lastStableMCI; ; mci-- {
		mainChainUnit, err := pc.mainChainStore.MainChainUnit(pc.databaseContext, stagingArea, mci)
		if err != nil {
			return nil, nil, err
		}
		isInPast, err := pc.isInPastOfAny(stagingArea, mainChainUnit, parents)
		if err != nil {
			return nil, nil, err
		}
		if isInPast || mci == 0 {
			lastBall, err := pc.ballStore.Ball(pc.databaseContext, stagingArea, mainChainUnit)
			if err != nil {
				return nil, nil, err
			}
			return lastBall, mainChainUnit, nil
		}
	}
}

func (pc *parentComposer) isInPastOfAny(stagingArea *model.StagingArea, unitHash *externalapi.DomainHash,
	parents []*externalapi.DomainHash) (bool, error) {

	for _, parent := range parents {
		if parent.Equal(unitHash) {
			return true, nil
		}
	}
	return pc.dagTopologyManager.IsAncestorOfAny(stagingArea, unitHash, parents)
}
