package externalapi

// BallRecord is a stable unit as carried by a hash tree: the unit, its ball
// and everything the ball was computed from.
type BallRecord struct {
	Unit          *DomainHash   `json:"unit"`
	Ball          *DomainHash   `json:"ball"`
	ParentBalls   []*DomainHash `json:"parent_balls,omitempty"`
	SkiplistBalls []*DomainHash `json:"skiplist_balls,omitempty"`
	IsNonserial   bool          `json:"is_nonserial,omitempty"`
}

// HashTreeRequest requests the balls of all units with a main chain index
// in (mci(FromBall), mci(ToBall)]. ContinueAfterMCI, when set, resumes a
// paginated response after the given main chain index.
type HashTreeRequest struct {
	FromBall         *DomainHash `json:"from_ball"`
	ToBall           *DomainHash `json:"to_ball"`
	ContinueAfterMCI uint64      `json:"continue_after_mci,omitempty"`
}

// HashTreeResponse is a single page of a hash tree. Pages always end at a
// main chain index boundary.
type HashTreeResponse struct {
	Balls    []*BallRecord `json:"balls"`
	LastMCI  uint64        `json:"last_mci"`
	Complete bool          `json:"complete"`
}
