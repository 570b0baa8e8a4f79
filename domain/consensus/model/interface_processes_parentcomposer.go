package model

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// ParentComposer picks the parents and last ball of a new unit
type ParentComposer interface {
	SelectParents(stagingArea *StagingArea, witnesses []string) (*externalapi.ParentSelection, error)
	LastBallForParents(stagingArea *StagingArea, parents []*externalapi.DomainHash) (lastBall, lastBallUnit *externalapi.DomainHash, err error)
}
