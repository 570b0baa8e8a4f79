package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// ConsensusStateStore represents a store for the current consensus state
type ConsensusStateStore interface {
	Store
	StageLastStableMCI(stagingArea *StagingArea, mci uint64)
	LastStableMCI(dbContext DBReader, stagingArea *StagingArea) (uint64, error)

	StageLastMCI(stagingArea *StagingArea, mci uint64)
	LastMCI(dbContext DBReader, stagingArea *StagingArea) (uint64, error)

	StageTips(stagingArea *StagingArea, tipHashes []*externalapi.DomainHash)
	Tips(dbContext DBReader, stagingArea *StagingArea) ([]*externalapi.DomainHash, error)

	IsInitialized(dbContext DBReader, stagingArea *StagingArea) (bool, error)
}
