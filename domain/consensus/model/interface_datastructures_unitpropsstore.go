package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// UnitPropsStore represents a store of UnitProps
type UnitPropsStore interface {
	Store
	Stage(stagingArea *StagingArea, unitHash *externalapi.DomainHash, unitProps *UnitProps)
	Get(dbContext DBReader, stagingArea *StagingArea, unitHash *externalapi.DomainHash) (*UnitProps, error)
	Has(dbContext DBReader, stagingArea *StagingArea, unitHash *externalapi.DomainHash) (bool, error)
}
