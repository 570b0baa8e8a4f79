package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// UnitRelationStore represents a store of UnitRelations
type UnitRelationStore interface {
	Store
	StageUnitRelation(stagingArea *StagingArea, unitHash *externalapi.DomainHash, unitRelations *UnitRelations)
	UnitRelation(dbContext DBReader, stagingArea *StagingArea, unitHash *externalapi.DomainHash) (*UnitRelations, error)
	Has(dbContext DBReader, stagingArea *StagingArea, unitHash *externalapi.DomainHash) (bool, error)
}
