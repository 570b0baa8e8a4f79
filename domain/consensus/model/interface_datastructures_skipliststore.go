package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// SkiplistStore represents a store of the skiplist units of stable main
// chain units
type SkiplistStore interface {
	Store
	Stage(stagingArea *StagingArea, unitHash *externalapi.DomainHash, skiplistUnits []*externalapi.DomainHash)
	SkiplistUnits(dbContext DBReader, stagingArea *StagingArea, unitHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error)
}
