package mainchainmanager

import (
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

type mainChainManager struct {
	databaseContext    model.DBReader
	bestParentSelector model.BestParentSelector
	dagTopologyManager model.DAGTopologyManager

	unitPropsStore      model.UnitPropsStore
	mainChainStore      model.MainChainStore
	consensusStateStore model.ConsensusStateStore
}

// New instantiates a new MainChainManager
func New(
	databaseContext model.DBReader,
	bestParentSelector model.BestParentSelector,
	dagTopologyManager model.DAGTopologyManager,
	unitPropsStore model.UnitPropsStore,
	mainChainStore model.MainChainStore,
	consensusStateStore model.ConsensusStateStore) model.MainChainManager {

	return &mainChainManager{
		databaseContext:     databaseContext,
		bestParentSelector:  bestParentSelector,
		dagTopologyManager:  dagTopologyManager,
		unitPropsStore:      unitPropsStore,
		mainChainStore:      mainChainStore,
		consensusStateStore: consensusStateStore,
	}
}

// MainChainTip returns the main chain unit with the highest main chain index
func (mcm *mainChainManager) MainChainTip(stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	lastMCI, err := mcm.consensusStateStore.LastMCI(mcm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}
	return mcm.mainChainStore.MainChainUnit(mcm.databaseContext, stagingArea, lastMCI)
}
