package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// DefinitionStore indexes, per address, the units that carry a definition
// of the address or change it
type DefinitionStore interface {
	Store
	StageDefinitionUnit(stagingArea *StagingArea, address string, unitHash *externalapi.DomainHash)
	DefinitionUnits(dbContext DBReader, stagingArea *StagingArea, address string) ([]*externalapi.DomainHash, error)
}
