package dagtopologymanager

import (
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/hashset"
)

// dagTopologyManager exposes methods for querying relationships
// between units in the DAG
type dagTopologyManager struct {
	maxAncestorSearchSize int

	databaseContext   model.DBReader
	unitRelationStore model.UnitRelationStore
	unitPropsStore    model.UnitPropsStore
}

// New instantiates a new DAGTopologyManager
func New(
	maxAncestorSearchSize int,
	databaseContext model.DBReader,
	unitRelationStore model.UnitRelationStore,
	unitPropsStore model.UnitPropsStore) model.DAGTopologyManager {

	return &dagTopologyManager{
		maxAncestorSearchSize: maxAncestorSearchSize,
		databaseContext:       databaseContext,
		unitRelationStore:     unitRelationStore,
		unitPropsStore:        unitPropsStore,
	}
}

// Parents returns the DAG parents of the given unitHash
func (dtm *dagTopologyManager) Parents(stagingArea *model.StagingArea,
	unitHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	unitRelations, err := dtm.unitRelationStore.UnitRelation(dtm.databaseContext, stagingArea, unitHash)
	if err != nil {
		return nil, err
	}
	return unitRelations.Parents, nil
}

// Children returns the DAG children of the given unitHash
func (dtm *dagTopologyManager) Children(stagingArea *model.StagingArea,
	unitHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	unitRelations, err := dtm.unitRelationStore.UnitRelation(dtm.databaseContext, stagingArea, unitHash)
	if err != nil {
		return nil, err
	}
	return unitRelations.Children, nil
}

// BestChildren returns the children of unitHash that chose it as their
// best parent
func (dtm *dagTopologyManager) BestChildren(stagingArea *model.StagingArea,
	unitHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	children, err := dtm.Children(stagingArea, unitHash)
	if err != nil {
		return nil, err
	}

	bestChildren := make([]*externalapi.DomainHash, 0, len(children))
	for _, child := range children {
		childProps, err := dtm.unitPropsStore.Get(dtm.databaseContext, stagingArea, child)
		if err != nil {
			return nil, err
		}
		if childProps.BestParent.Equal(unitHash) {
			bestChildren = append(bestChildren, child)
		}
	}
	return bestChildren, nil
}

// IsAncestorOf returns true if unitHashA is a DAG ancestor of unitHashB.
// A unit is not an ancestor of itself.
func (dtm *dagTopologyManager) IsAncestorOf(stagingArea *model.StagingArea,
	unitHashA *externalapi.DomainHash, unitHashB *externalapi.DomainHash) (bool, error) {

	return dtm.IsAncestorOfAny(stagingArea, unitHashA, []*externalapi.DomainHash{unitHashB})
}

// IsAncestorOfAny returns true if unitHash is an ancestor of at least one of
// potentialDescendants. The search walks down from the potential
// descendants and never goes below the level of unitHash.
func (dtm *dagTopologyManager) IsAncestorOfAny(stagingArea *model.StagingArea,
	unitHash *externalapi.DomainHash, potentialDescendants []*externalapi.DomainHash) (bool, error) {

	unitProps, err := dtm.unitPropsStore.Get(dtm.databaseContext, stagingArea, unitHash)
	if err != nil {
		return false, err
	}

	visited := hashset.New()
	queue := make([]*externalapi.DomainHash, 0, len(potentialDescendants))
	for _, descendant := range potentialDescendants {
		if descendant.Equal(unitHash) {
			continue
		}
		queue = append(queue, descendant)
	}

	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]
		if visited.Contains(current) {
			continue
		}
		visited.Add(current)
		if len(visited) > dtm.maxAncestorSearchSize {
			return false, errors.Wrapf(ruleerrors.ErrTooManyParentsToCheck,
				"checking whether %s is an ancestor visited more than %d units", unitHash, dtm.maxAncestorSearchSize)
		}

		currentProps, err := dtm.unitPropsStore.Get(dtm.databaseContext, stagingArea, current)
		if err != nil {
			return false, err
		}
		if currentProps.Level <= unitProps.Level {
			continue
		}

		parents, err := dtm.Parents(stagingArea, current)
		if err != nil {
			return false, err
		}
		for _, parent := range parents {
			if parent.Equal(unitHash) {
				return true, nil
			}
			if !visited.Contains(parent) {
				queue = append(queue, parent)
			}
		}
	}

	return false, nil
}
