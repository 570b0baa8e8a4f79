package model

import (
	"context"

	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
)

// WitnessProofManager builds and verifies witness proofs
type WitnessProofManager interface {
	BuildWitnessProof(ctx context.Context, stagingArea *StagingArea, witnesses []string,
		lastStableMCI uint64) (*externalapi.WitnessProof, error)
	VerifyWitnessProof(proof *externalapi.WitnessProof, witnesses []string) (*externalapi.VerifiedWitnessProof, error)
}
