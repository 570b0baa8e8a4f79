package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// ValidatedUnit is the outcome of validating a unit against the DAG
type ValidatedUnit struct {
	UnitHash  *externalapi.DomainHash
	Props     *UnitProps
	Witnesses []string
}

// UnitValidator exposes a set of validation classes, after which
// it's possible to determine whether a unit is valid
type UnitValidator interface {
	ValidateUnitInIsolation(unit *externalapi.DomainUnit) error
	ValidateUnitInContext(stagingArea *StagingArea, unit *externalapi.DomainUnit, sequence externalapi.Sequence) (*ValidatedUnit, error)
}
