package grpcserver

import "github.com/witnessdag/witnessd/domain/consensus/model/externalapi"

// WitnessProofRequest requests a witness proof for a node whose last
// stable main chain index is LastStableMCI
type WitnessProofRequest struct {
	Witnesses     []string
	LastStableMCI uint64
}

// WitnessProofResponse carries a witness proof, unless the requester is
// already current
type WitnessProofResponse struct {
	IsCurrent bool
	Proof     *externalapi.WitnessProof
}

// JointRequest requests a single joint
type JointRequest struct {
	UnitHash *externalapi.DomainHash
}

// FreeUnitsRequest requests the free units of the peer
type FreeUnitsRequest struct{}

// FreeUnitsResponse lists the free units of the peer
type FreeUnitsResponse struct {
	FreeUnits []*externalapi.DomainHash
}
