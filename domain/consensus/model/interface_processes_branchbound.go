package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// BranchBoundCalculator bounds how far alternative branches could reach
type BranchBoundCalculator interface {
	MaxAltLevel(stagingArea *StagingArea, altRoots []*externalapi.DomainHash, firstUnstableMCLevel uint64,
		minMainChainWitnessedLevel uint64) (uint64, error)
}
