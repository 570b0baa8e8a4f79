package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// UnitStore represents a store of units
type UnitStore interface {
	Store
	Stage(stagingArea *StagingArea, unitHash *externalapi.DomainHash, unit *externalapi.DomainUnit)
	Unit(dbContext DBReader, stagingArea *StagingArea, unitHash *externalapi.DomainHash) (*externalapi.DomainUnit, error)
	HasUnit(dbContext DBReader, stagingArea *StagingArea, unitHash *externalapi.DomainHash) (bool, error)
	Count(stagingArea *StagingArea) uint64
}
