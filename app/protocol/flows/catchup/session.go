package catchup

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/app/protocol/protocolerrors"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/consensushashing"
	"github.com/witnessdag/witnessd/domain/consensus/utils/hashset"
)

var errSessionClosed = errors.New("catchup session is closed")

// Session is the requester side of catching up from a single peer. It
// holds the balls the peer claimed in its hash trees. Those balls are
// provisional: they only serve to check later hash tree records until the
// unit they belong to stabilizes locally, at which point ConfirmUnit
// compares them to the ball computed here and drops them.
//
// A Session is not safe for concurrent use.
type Session struct {
	id        uuid.UUID
	consensus externalapi.Consensus
	witnesses []string

	chainBalls       []*externalapi.DomainHash
	nextChainBall    int
	continueAfterMCI uint64

	provisionalBallByUnit map[externalapi.DomainHash]*externalapi.DomainHash
	provisionalBalls      hashset.HashSet
	pendingUnits          []*externalapi.DomainHash

	isClosed bool
}

// NewSession creates a catchup session over consensus for the given
// witness list
func NewSession(consensus externalapi.Consensus, witnesses []string) *Session {
	return &Session{
		id:                    uuid.New(),
		consensus:             consensus,
		witnesses:             append([]string(nil), witnesses...),
		provisionalBallByUnit: make(map[externalapi.DomainHash]*externalapi.DomainHash),
		provisionalBalls:      hashset.New(),
	}
}

// ID returns the identifier of the session
func (s *Session) ID() uuid.UUID {
	return s.id
}

// ProcessCatchupChain verifies a catchup chain received from the peer and
// queues the hash trees that have to be requested next. It returns
// ruleerrors.ErrAlreadyCurrent if the peer has nothing to send.
func (s *Session) ProcessCatchupChain(ctx context.Context, chain *externalapi.CatchupChain) error {
	if s.isClosed {
		return errSessionClosed
	}
	if chain == nil {
		return protocolerrors.New(true, "received an empty catchup chain")
	}

	chainBalls, err := s.consensus.ProcessCatchupChain(ctx, s.witnesses, chain)
	if err != nil {
		if errors.Is(err, ruleerrors.ErrAlreadyCurrent) {
			return err
		}
		return protocolerrors.ConvertToBanningProtocolErrorIfRuleError(err, "invalid catchup chain")
	}

	s.chainBalls = chainBalls
	s.nextChainBall = 1
	s.continueAfterMCI = 0
	log.Debugf("Session %s: catchup chain has %d balls", s.id, len(chainBalls))
	return nil
}

// NextHashTreeRequest returns the next hash tree to request from the peer,
// or nil once every hash tree of the catchup chain has been received
func (s *Session) NextHashTreeRequest() *externalapi.HashTreeRequest {
	if s.isClosed || s.nextChainBall >= len(s.chainBalls) {
		return nil
	}
	return &externalapi.HashTreeRequest{
		FromBall:         s.chainBalls[s.nextChainBall-1],
		ToBall:           s.chainBalls[s.nextChainBall],
		ContinueAfterMCI: s.continueAfterMCI,
	}
}

// ProcessHashTree checks a response to the request returned by
// NextHashTreeRequest and caches its balls provisionally. Every record must
// hash to its ball, and must only reference balls that are known locally
// or were received earlier in the session. Nothing of a rejected response
// is cached. It returns the records whose units are not stable locally
// yet, in the order they should be inserted.
func (s *Session) ProcessHashTree(response *externalapi.HashTreeResponse) ([]*externalapi.BallRecord, error) {
	if s.isClosed {
		return nil, errSessionClosed
	}
	request := s.NextHashTreeRequest()
	if request == nil {
		return nil, protocolerrors.New(true, "received an unrequested hash tree")
	}
	if response == nil {
		return nil, protocolerrors.New(true, "received an empty hash tree response")
	}
	if !response.Complete && len(response.Balls) == 0 {
		return nil, protocolerrors.New(true, "received an incomplete hash tree page with no balls")
	}
	if !response.Complete && response.LastMCI <= s.continueAfterMCI {
		return nil, protocolerrors.Errorf(true, "hash tree page ends at mci %d, which does not advance "+
			"past mci %d", response.LastMCI, s.continueAfterMCI)
	}

	pageBallByUnit := make(map[externalapi.DomainHash]*externalapi.DomainHash, len(response.Balls))
	pageBalls := hashset.New()
	newRecords := make([]*externalapi.BallRecord, 0, len(response.Balls))
	for i, record := range response.Balls {
		isNew, err := s.checkBallRecord(record, pageBallByUnit, pageBalls)
		if err != nil {
			return nil, protocolerrors.Wrapf(true, err, "hash tree record #%d", i)
		}
		pageBallByUnit[*record.Unit] = record.Ball
		pageBalls.Add(record.Ball)
		if isNew {
			newRecords = append(newRecords, record)
		}
	}

	if response.Complete {
		if len(response.Balls) > 0 && !response.Balls[len(response.Balls)-1].Ball.Equal(request.ToBall) {
			return nil, protocolerrors.Errorf(true, "complete hash tree does not end with ball %s",
				request.ToBall)
		}
		if len(response.Balls) == 0 && !s.isKnownBall(request.ToBall, pageBalls) {
			return nil, protocolerrors.Errorf(true, "complete hash tree does not include ball %s",
				request.ToBall)
		}
	}

	for _, record := range newRecords {
		s.provisionalBallByUnit[*record.Unit] = record.Ball
		s.provisionalBalls.Add(record.Ball)
		s.pendingUnits = append(s.pendingUnits, record.Unit)
	}
	if response.Complete {
		s.nextChainBall++
		s.continueAfterMCI = 0
	} else {
		s.continueAfterMCI = response.LastMCI
	}

	log.Debugf("Session %s: accepted %d balls, %d of them new", s.id, len(response.Balls), len(newRecords))
	return newRecords, nil
}

// checkBallRecord returns whether record is new to the session and not yet
// stable locally
func (s *Session) checkBallRecord(record *externalapi.BallRecord,
	pageBallByUnit map[externalapi.DomainHash]*externalapi.DomainHash, pageBalls hashset.HashSet) (bool, error) {

	if record == nil || record.Unit == nil || record.Ball == nil {
		return false, errors.Wrapf(ruleerrors.ErrInvalidHashTree, "record is incomplete")
	}
	if _, ok := pageBallByUnit[*record.Unit]; ok {
		return false, errors.Wrapf(ruleerrors.ErrInvalidHashTree, "unit %s appears twice", record.Unit)
	}
	if pageBalls.Contains(record.Ball) {
		return false, errors.Wrapf(ruleerrors.ErrInvalidHashTree, "ball %s appears twice", record.Ball)
	}

	ball, err := consensushashing.BallRecordHash(record)
	if err != nil {
		return false, errors.Wrapf(ruleerrors.ErrInvalidHashTree, "cannot hash the record of unit %s: %s",
			record.Unit, err)
	}
	if !ball.Equal(record.Ball) {
		return false, errors.Wrapf(ruleerrors.ErrBallHashMismatch, "ball of unit %s is %s, but the "+
			"record claims %s", record.Unit, ball, record.Ball)
	}

	for _, referencedBalls := range [][]*externalapi.DomainHash{record.ParentBalls, record.SkiplistBalls} {
		for _, referencedBall := range referencedBalls {
			if referencedBall.Equal(record.Ball) {
				return false, errors.Wrapf(ruleerrors.ErrInvalidHashTree, "ball %s references itself",
					record.Ball)
			}
			if !s.isKnownBall(referencedBall, pageBalls) {
				return false, errors.Wrapf(ruleerrors.ErrInvalidHashTree, "ball %s of unit %s references "+
					"unknown ball %s", record.Ball, record.Unit, referencedBall)
			}
		}
	}

	if provisionalBall, ok := s.provisionalBallByUnit[*record.Unit]; ok {
		if !provisionalBall.Equal(record.Ball) {
			return false, errors.Wrapf(ruleerrors.ErrInvalidHashTree, "unit %s was sent earlier with "+
				"ball %s, now with %s", record.Unit, provisionalBall, record.Ball)
		}
		return false, nil
	}
	if s.provisionalBalls.Contains(record.Ball) {
		return false, errors.Wrapf(ruleerrors.ErrInvalidHashTree, "ball %s was sent earlier for another unit",
			record.Ball)
	}

	localBall, err := s.consensus.GetBall(record.Unit)
	if err == nil {
		if !localBall.Equal(record.Ball) {
			return false, errors.Wrapf(ruleerrors.ErrBallHashMismatch, "unit %s is stable here with ball %s, "+
				"but the record claims %s", record.Unit, localBall, record.Ball)
		}
		return false, nil
	}
	if !errors.Is(err, ruleerrors.ErrUnknownBall) {
		return false, err
	}
	return true, nil
}

func (s *Session) isKnownBall(ball *externalapi.DomainHash, pageBalls hashset.HashSet) bool {
	if pageBalls.Contains(ball) || s.provisionalBalls.Contains(ball) {
		return true
	}
	_, err := s.consensus.GetUnitByBall(ball)
	return err == nil
}

// ConfirmUnit checks the provisional ball of unitHash against the ball
// computed locally. It returns false if the unit is not stable locally yet.
// A mismatch means the peer lied about the ball and is a banning protocol
// error.
func (s *Session) ConfirmUnit(unitHash *externalapi.DomainHash) (bool, error) {
	if s.isClosed {
		return false, errSessionClosed
	}
	provisionalBall, ok := s.provisionalBallByUnit[*unitHash]
	if !ok {
		return false, errors.Errorf("unit %s has no provisional ball in session %s", unitHash, s.id)
	}

	unitInfo, err := s.consensus.GetUnitInfo(unitHash)
	if err != nil {
		return false, err
	}
	if !unitInfo.Exists || !unitInfo.IsStable {
		return false, nil
	}

	s.discard(unitHash, provisionalBall)
	if !unitInfo.Ball.Equal(provisionalBall) {
		return false, protocolerrors.Errorf(true, "unit %s stabilized with ball %s, but the peer "+
			"claimed %s", unitHash, unitInfo.Ball, provisionalBall)
	}
	return true, nil
}

func (s *Session) discard(unitHash *externalapi.DomainHash, provisionalBall *externalapi.DomainHash) {
	delete(s.provisionalBallByUnit, *unitHash)
	s.provisionalBalls.Remove(provisionalBall)
	for i, pendingUnit := range s.pendingUnits {
		if pendingUnit.Equal(unitHash) {
			s.pendingUnits = append(s.pendingUnits[:i], s.pendingUnits[i+1:]...)
			break
		}
	}
}

// PendingUnits returns the units whose provisional balls were not confirmed
// yet, in the order they were received
func (s *Session) PendingUnits() []*externalapi.DomainHash {
	return externalapi.CloneHashes(s.pendingUnits)
}

// Close discards every provisional ball of the session
func (s *Session) Close() {
	if s.isClosed {
		return
	}
	s.isClosed = true
	if len(s.pendingUnits) > 0 {
		log.Debugf("Session %s: discarding %d unconfirmed balls", s.id, len(s.pendingUnits))
	}
	s.provisionalBallByUnit = nil
	s.provisionalBalls = nil
	s.pendingUnits = nil
	s.chainBalls = nil
}
