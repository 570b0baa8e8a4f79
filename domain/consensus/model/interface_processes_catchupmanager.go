package model

import (
	"context"

	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

// CatchupManager serves and processes catchup chains and hash trees
type CatchupManager interface {
	PrepareCatchupChain(ctx context.Context, stagingArea *StagingArea,
		request *externalapi.CatchupRequest) (*externalapi.CatchupChain, error)
	ProcessCatchupChain(ctx context.Context, stagingArea *StagingArea, witnesses []string,
		chain *externalapi.CatchupChain) ([]*externalapi.DomainHash, error)
	GetHashTree(ctx context.Context, stagingArea *StagingArea,
		request *externalapi.HashTreeRequest) (*externalapi.HashTreeResponse, error)
}
