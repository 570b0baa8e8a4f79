package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// BallStore represents a store of the balls of stable units
type BallStore interface {
	Store
	Stage(stagingArea *StagingArea, unitHash *externalapi.DomainHash, ball *externalapi.DomainHash)
	Ball(dbContext DBReader, stagingArea *StagingArea, unitHash *externalapi.DomainHash) (*externalapi.DomainHash, error)
	HasBall(dbContext DBReader, stagingArea *StagingArea, unitHash *externalapi.DomainHash) (bool, error)
	UnitByBall(dbContext DBReader, stagingArea *StagingArea, ball *externalapi.DomainHash) (*externalapi.DomainHash, error)
	IsKnownBall(dbContext DBReader, stagingArea *StagingArea, ball *externalapi.DomainHash) (bool, error)
}
