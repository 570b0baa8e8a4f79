package externalapi

// UnitInfo contains the consensus data the node holds about a unit
type UnitInfo struct {
	Exists         bool
	Level          uint64
	WitnessedLevel uint64
	BestParent     *DomainHash
	MainChainIndex uint64
	HasMCI         bool
	IsOnMainChain  bool
	IsStable       bool
	IsFree         bool
	Sequence       Sequence
	Ball           *DomainHash
}
