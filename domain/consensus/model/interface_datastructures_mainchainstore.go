package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// MainChainStore indexes units by main chain index. It keeps both the main
// chain unit of every index and the full set of units assigned to it.
type MainChainStore interface {
	Store
	StageMainChainUnit(stagingArea *StagingArea, mci uint64, unitHash *externalapi.DomainHash)
	RemoveMainChainUnit(stagingArea *StagingArea, mci uint64)
	MainChainUnit(dbContext DBReader, stagingArea *StagingArea, mci uint64) (*externalapi.DomainHash, error)
	HasMainChainUnit(dbContext DBReader, stagingArea *StagingArea, mci uint64) (bool, error)

	StageUnitAtMCI(stagingArea *StagingArea, mci uint64, unitHash *externalapi.DomainHash)
	RemoveUnitAtMCI(stagingArea *StagingArea, mci uint64, unitHash *externalapi.DomainHash)
	UnitsAtMCI(dbContext DBReader, stagingArea *StagingArea, mci uint64) ([]*externalapi.DomainHash, error)

	// UnitsByMCIRange returns the units with fromMCI <= mci <= toMCI, ordered
	// by mci. It fails if there are more than limit such units.
	UnitsByMCIRange(dbContext DBReader, stagingArea *StagingArea, fromMCI, toMCI uint64, limit int) ([]*externalapi.DomainHash, error)
}
