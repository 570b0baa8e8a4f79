package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// WitnessCompatibilityChecker decides whether two witness lists may be
// used by units that reference each other
type WitnessCompatibilityChecker interface {
	AreCompatible(witnessesA []string, witnessesB []string) bool
	ValidateCompatibilityWithParents(stagingArea *StagingArea, witnesses []string, parents []*externalapi.DomainHash) error
	IsCompatibleWithUnit(stagingArea *StagingArea, witnesses []string, unitHash *externalapi.DomainHash) (bool, error)
}
