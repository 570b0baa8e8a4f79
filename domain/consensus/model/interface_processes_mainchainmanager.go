package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// MainChainChanges describes how a main chain update moved the chain
type MainChainChanges struct {
	IntersectionMCI uint64
	Removed         []*externalapi.DomainHash
	Added           []*externalapi.DomainHash
}

// MainChainManager maintains the main chain and main chain indexes
type MainChainManager interface {
	UpdateMainChain(stagingArea *StagingArea) (*MainChainChanges, error)
	MainChainTip(stagingArea *StagingArea) (*externalapi.DomainHash, error)
}
