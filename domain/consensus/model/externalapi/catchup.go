package externalapi

// CatchupRequest is sent by a node that is behind
type CatchupRequest struct {
	LastStableMCI uint64   `json:"last_stable_mci"`
	LastKnownMCI  uint64   `json:"last_known_mci"`
	Witnesses     []string `json:"witnesses"`
}

// CatchupChain is the response to a CatchupRequest. When IsCurrent is set
// every other field is empty.
type CatchupChain struct {
	IsCurrent bool `json:"is_current,omitempty"`

	UnstableMCJoints                 []*DomainJoint `json:"unstable_mc_joints,omitempty"`
	WitnessChangeAndDefinitionJoints []*DomainJoint `json:"witness_change_and_definition_joints,omitempty"`

	// StableLastBallJoints start at the last ball unit of the witness proof
	// and follow last ball references down to the requester's last
	// stable main chain index.
	StableLastBallJoints []*DomainJoint `json:"stable_last_ball_joints,omitempty"`
}

// ParentSelection is what a new unit needs to reference
type ParentSelection struct {
	Parents      []*DomainHash
	LastBall     *DomainHash
	LastBallUnit *DomainHash
}
