package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// DAGTopologyManager exposes methods for querying relationships
// between units in the DAG
type DAGTopologyManager interface {
	Parents(stagingArea *StagingArea, unitHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	Children(stagingArea *StagingArea, unitHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	BestChildren(stagingArea *StagingArea, unitHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
	IsAncestorOf(stagingArea *StagingArea, unitHashA *externalapi.DomainHash, unitHashB *externalapi.DomainHash) (bool, error)
	IsAncestorOfAny(stagingArea *StagingArea, unitHash *externalapi.DomainHash, potentialDescendants []*externalapi.DomainHash) (bool, error)
}
