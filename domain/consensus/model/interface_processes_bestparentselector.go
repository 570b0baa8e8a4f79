package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// BestParentSelector orders units by how good they are as a best parent
type BestParentSelector interface {
	ChooseBestParent(stagingArea *StagingArea, candidates []*externalapi.DomainHash) (*externalapi.DomainHash, error)
	Less(stagingArea *StagingArea, unitHashA *externalapi.DomainHash, unitHashB *externalapi.DomainHash) (bool, error)
	BestFreeUnit(stagingArea *StagingArea) (*externalapi.DomainHash, error)
}
