package externalapi

import "context"

// Consensus maintains the current core state of the node
type Consensus interface {
	ValidateAndInsertUnit(unit *DomainUnit, sequence Sequence) (*DomainHash, error)

	GetUnit(unitHash *DomainHash) (*DomainUnit, error)
	GetJoint(unitHash *DomainHash) (*DomainJoint, error)
	GetUnitInfo(unitHash *DomainHash) (*UnitInfo, error)
	GetWitnessList(unitHash *DomainHash) ([]string, error)
	GetMainChainUnit(mci uint64) (*DomainHash, error)
	GetUnitsByMCIRange(fromMCI, toMCI uint64, limit int) ([]*DomainHash, error)
	GetFreeUnits() ([]*DomainHash, error)
	GetBall(unitHash *DomainHash) (*DomainHash, error)
	GetUnitByBall(ball *DomainHash) (*DomainHash, error)
	LastStableMCI() (uint64, error)
	LastMCI() (uint64, error)

	SelectParentsForNewUnit(witnesses []string) (*ParentSelection, error)

	GetWitnessProof(ctx context.Context, witnesses []string, lastStableMCI uint64) (*WitnessProof, error)
	PrepareCatchupChain(ctx context.Context, request *CatchupRequest) (*CatchupChain, error)
	ProcessCatchupChain(ctx context.Context, witnesses []string, chain *CatchupChain) (chainBalls []*DomainHash, err error)
	GetHashTree(ctx context.Context, request *HashTreeRequest) (*HashTreeResponse, error)

	IsHalted() bool
}
