package bestparentselector

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

type bestParentSelector struct {
	databaseContext     model.DBReader
	unitPropsStore      model.UnitPropsStore
	consensusStateStore model.ConsensusStateStore
}

// New instantiates a new BestParentSelector
func New(
	databaseContext model.DBReader,
	unitPropsStore model.UnitPropsStore,
	consensusStateStore model.ConsensusStateStore) model.BestParentSelector {

	return &bestParentSelector{
		databaseContext:     databaseContext,
		unitPropsStore:      unitPropsStore,
		consensusStateStore: consensusStateStore,
	}
}

// ChooseBestParent returns the best of candidates. The same ordering is
// used when composing units and when validating them.
func (bps *bestParentSelector) ChooseBestParent(stagingArea *model.StagingArea,
	candidates []*externalapi.DomainHash) (*externalapi.DomainHash, error) {

	if len(candidates) == 0 {
		return nil, errors.New("cannot choose a best parent out of no candidates")
	}

	best := candidates[0]
	for _, candidate := range candidates[1:] {
		isBetter, err := bps.Less(stagingArea, candidate, best)
		if err != nil {
			return nil, err
		}
		if isBetter {
			best = candidate
		}
	}
	return best, nil
}

// Less returns whether unitHashA is a better best parent than unitHashB:
// it has a higher witnessed level, or an equal witnessed level and a lower
// level - witnessed level, or both equal and a smaller unit id.
func (bps *bestParentSelector) Less(stagingArea *model.StagingArea,
	unitHashA *externalapi.DomainHash, unitHashB *externalapi.DomainHash) (bool, error) {

	propsA, err := bps.unitPropsStore.Get(bps.databaseContext, stagingArea, unitHashA)
	if err != nil {
		return false, err
	}
	propsB, err := bps.unitPropsStore.Get(bps.databaseContext, stagingArea, unitHashB)
	if err != nil {
		return false, err
	}

	return less(unitHashA, propsA, unitHashB, propsB), nil
}

func less(unitHashA *externalapi.DomainHash, propsA *model.UnitProps,
	unitHashB *externalapi.DomainHash, propsB *model.UnitProps) bool {

	if propsA.WitnessedLevel != propsB.WitnessedLevel {
		return propsA.WitnessedLevel > propsB.WitnessedLevel
	}

	distanceA := propsA.Level - propsA.WitnessedLevel
	distanceB := propsB.Level - propsB.WitnessedLevel
	if distanceA != distanceB {
		return distanceA < distanceB
	}

	return unitHashA.Less(unitHashB)
}

// BestFreeUnit returns the best of the units that have no children yet.
// The main chain is the best parent chain that starts at this unit.
func (bps *bestParentSelector) BestFreeUnit(stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	tips, err := bps.consensusStateStore.Tips(bps.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}
	return bps.ChooseBestParent(stagingArea, tips)
}
