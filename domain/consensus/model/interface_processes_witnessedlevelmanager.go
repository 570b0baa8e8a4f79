package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// WitnessedLevelManager computes witnessed levels
type WitnessedLevelManager interface {
	WitnessedLevel(stagingArea *StagingArea, bestParent *externalapi.DomainHash, witnesses []string) (uint64, error)
	MinMainChainWitnessedLevel(stagingArea *StagingArea, tip *externalapi.DomainHash, witnesses []string) (minWitnessedLevel uint64, found bool, err error)
}
