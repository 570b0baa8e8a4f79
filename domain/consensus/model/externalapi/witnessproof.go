package externalapi

// WitnessProof lets a node that trusts a witness list learn a recent stable
// last ball without holding the DAG.
type WitnessProof struct {
	// UnstableMCJoints are main chain joints above the last ball, newest
	// first, each one a parent of the previous one. They carry no balls.
	UnstableMCJoints []*DomainJoint `json:"unstable_mc_joints"`

	// WitnessChangeAndDefinitionJoints are stable joints that define or
	// change the definitions of the witnesses, in main chain order.
	WitnessChangeAndDefinitionJoints []*DomainJoint `json:"witness_change_and_definition_joints,omitempty"`

	LastBallUnit *DomainHash `json:"last_ball_unit"`

	// LastBallMCI is what the sender claims. Verification ignores it.
	LastBallMCI uint64 `json:"last_ball_mci"`
}

// VerifiedWitnessProof is the outcome of verifying a WitnessProof
type VerifiedWitnessProof struct {
	Witnesses []string

	// LastBallUnits are the last ball units referenced by unstable main
	// chain joints once a majority of witnesses had been seen
	LastBallUnits []*DomainHash

	// LastBallByLastBallUnit maps every unit in LastBallUnits to the ball
	// the referencing joint claimed for it
	LastBallByLastBallUnit map[DomainHash]*DomainHash

	// LastBallUnit and LastBall are the trusted stable last ball. Its main
	// chain index is not part of the proof's signed content, so it is only
	// learned once the unit stabilizes locally.
	LastBallUnit *DomainHash
	LastBall     *DomainHash
}
