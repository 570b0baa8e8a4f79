package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// WitnessListStore represents a store of resolved witness lists, keyed by
// the unit that declared or referenced them
type WitnessListStore interface {
	Store
	Stage(stagingArea *StagingArea, unitHash *externalapi.DomainHash, witnesses []string)
	WitnessList(dbContext DBReader, stagingArea *StagingArea, unitHash *externalapi.DomainHash) ([]string, error)
}
