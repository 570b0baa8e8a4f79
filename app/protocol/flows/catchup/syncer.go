package catchup

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/app/protocol/protocolerrors"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/consensushashing"
	"github.com/witnessdag/witnessd/infrastructure/logger"
)

const (
	defaultMaxCatchupRounds = 16
	defaultMaxMissingUnits  = 10000
)

// Peer is a node that serves catchup requests
type Peer interface {
	fmt.Stringer
	RequestCatchupChain(ctx context.Context, request *externalapi.CatchupRequest) (*externalapi.CatchupChain, error)
	RequestHashTree(ctx context.Context, request *externalapi.HashTreeRequest) (*externalapi.HashTreeResponse, error)
	RequestJoint(ctx context.Context, unitHash *externalapi.DomainHash) (*externalapi.DomainJoint, error)
	RequestFreeUnits(ctx context.Context) ([]*externalapi.DomainHash, error)
}

// SequenceFunc determines the sequence of a received unit from its content.
// It is the hook through which content validation, which lives outside of
// consensus, reports double spends.
type SequenceFunc func(joint *externalapi.DomainJoint) (externalapi.Sequence, error)

func allUnitsAreGood(*externalapi.DomainJoint) (externalapi.Sequence, error) {
	return externalapi.SequenceGood, nil
}

// Syncer brings a node up to date with a peer: it first catches up the
// stable part of the DAG through catchup chains and hash trees, then
// fetches the peer's unstable units starting from its free units.
//
// The is_nonserial flag of hash tree records is never stored. Units are
// inserted with the sequence given by the SequenceFunc, and the flag only
// matters through the ball it is hashed into, which is compared to the
// locally computed ball once the unit stabilizes.
type Syncer struct {
	consensus        externalapi.Consensus
	witnesses        []string
	sequenceOf       SequenceFunc
	maxCatchupRounds int
	maxMissingUnits  int
}

// NewSyncer creates a Syncer that catches up consensus trusting witnesses
func NewSyncer(consensus externalapi.Consensus, witnesses []string) *Syncer {
	return &Syncer{
		consensus:        consensus,
		witnesses:        append([]string(nil), witnesses...),
		sequenceOf:       allUnitsAreGood,
		maxCatchupRounds: defaultMaxCatchupRounds,
		maxMissingUnits:  defaultMaxMissingUnits,
	}
}

// SetSequenceFunc replaces the default SequenceFunc, which considers every
// unit good
func (s *Syncer) SetSequenceFunc(sequenceOf SequenceFunc) {
	s.sequenceOf = sequenceOf
}

// Sync catches up from peer. Protocol errors that warrant banning the peer
// are returned as a *protocolerrors.ProtocolError with ShouldBan set.
func (s *Syncer) Sync(ctx context.Context, peer Peer) error {
	session := NewSession(s.consensus, s.witnesses)
	defer session.Close()

	onEnd := logger.LogAndMeasureExecutionTime(log, fmt.Sprintf("Sync with %s", peer))
	defer onEnd()
	log.Infof("Catching up from %s in session %s", peer, session.ID())

	for round := 0; round < s.maxCatchupRounds; round++ {
		isCurrent, inserted, err := s.catchupRound(ctx, peer, session)
		if err != nil {
			return err
		}
		log.Debugf("Catchup round %d with %s inserted %d units", round, peer, inserted)
		if isCurrent || inserted == 0 {
			break
		}
	}

	inserted, err := s.syncFreeUnits(ctx, peer)
	if err != nil {
		return err
	}
	log.Debugf("Inserted %d unstable units from %s", inserted, peer)

	confirmed, err := s.confirmPendingUnits(session)
	if err != nil {
		return err
	}
	lastStableMCI, err := s.consensus.LastStableMCI()
	if err != nil {
		return err
	}
	log.Infof("Caught up from %s: last stable mci is %d, %d balls confirmed, %d left unconfirmed",
		peer, lastStableMCI, confirmed, len(session.PendingUnits()))
	return nil
}

// catchupRound requests a catchup chain and every hash tree it leads to,
// inserting the units the hash trees carry
func (s *Syncer) catchupRound(ctx context.Context, peer Peer, session *Session) (
	isCurrent bool, inserted int, err error) {

	lastStableMCI, err := s.consensus.LastStableMCI()
	if err != nil {
		return false, 0, err
	}
	lastMCI, err := s.consensus.LastMCI()
	if err != nil {
		return false, 0, err
	}
	if lastStableMCI > 0 && lastStableMCI >= lastMCI {
		// Nothing unstable to ask about. Whatever the peer has above us is
		// fetched with its free units.
		return true, 0, nil
	}

	chain, err := peer.RequestCatchupChain(ctx, &externalapi.CatchupRequest{
		LastStableMCI: lastStableMCI,
		LastKnownMCI:  lastMCI,
		Witnesses:     s.witnesses,
	})
	if err != nil {
		return false, 0, err
	}
	if chain.IsCurrent {
		return true, 0, nil
	}
	err = session.ProcessCatchupChain(ctx, chain)
	if errors.Is(err, ruleerrors.ErrAlreadyCurrent) {
		return true, 0, nil
	}
	if err != nil {
		return false, 0, err
	}

	for request := session.NextHashTreeRequest(); request != nil; request = session.NextHashTreeRequest() {
		response, err := peer.RequestHashTree(ctx, request)
		if err != nil {
			return false, 0, err
		}
		records, err := session.ProcessHashTree(response)
		if err != nil {
			return false, 0, err
		}
		for _, record := range records {
			isInserted, err := s.fetchAndInsert(ctx, peer, record.Unit)
			if err != nil {
				return false, 0, err
			}
			if isInserted {
				inserted++
			}
		}
	}

	_, err = s.confirmPendingUnits(session)
	if err != nil {
		return false, 0, err
	}
	return false, inserted, nil
}

func (s *Syncer) fetchAndInsert(ctx context.Context, peer Peer, unitHash *externalapi.DomainHash) (bool, error) {

	unitInfo, err := s.consensus.GetUnitInfo(unitHash)
	if err != nil {
		return false, err
	}
	if unitInfo.Exists {
		return false, nil
	}

	joint, err := s.requestJoint(ctx, peer, unitHash)
	if err != nil {
		return false, err
	}
	err = s.insertJoint(joint)
	if errors.Is(err, ruleerrors.ErrDuplicateUnit) {
		return false, nil
	}
	if err != nil {
		return false, protocolerrors.ConvertToBanningProtocolErrorIfRuleError(err,
			"unit %s from the hash tree is invalid", unitHash)
	}
	return true, nil
}

func (s *Syncer) insertJoint(joint *externalapi.DomainJoint) error {
	sequence, err := s.sequenceOf(joint)
	if err != nil {
		return protocolerrors.Wrapf(true, err, "content of unit %s is invalid", joint.UnitHash)
	}
	_, err = s.consensus.ValidateAndInsertUnit(joint.Unit, sequence)
	return err
}

func (s *Syncer) requestJoint(ctx context.Context, peer Peer,
	unitHash *externalapi.DomainHash) (*externalapi.DomainJoint, error) {

	joint, err := peer.RequestJoint(ctx, unitHash)
	if err != nil {
		return nil, err
	}
	if joint == nil || joint.Unit == nil || joint.UnitHash == nil || !joint.UnitHash.Equal(unitHash) {
		return nil, protocolerrors.Errorf(true, "peer sent a different joint than %s", unitHash)
	}
	err = consensushashing.ValidateJointHash(joint)
	if err != nil {
		return nil, protocolerrors.Wrapf(true, err, "joint %s", unitHash)
	}
	return joint, nil
}

// syncFreeUnits fetches the free units of the peer and, depth first, every
// ancestor of theirs that is missing locally
func (s *Syncer) syncFreeUnits(ctx context.Context, peer Peer) (int, error) {
	freeUnits, err := peer.RequestFreeUnits(ctx)
	if err != nil {
		return 0, err
	}

	fetchedJoints := make(map[externalapi.DomainHash]*externalapi.DomainJoint)
	stack := externalapi.CloneHashes(freeUnits)
	inserted := 0
	for iterations := 0; len(stack) > 0; iterations++ {
		if err := ctx.Err(); err != nil {
			return 0, errors.WithStack(err)
		}
		if iterations > 2*s.maxMissingUnits {
			return 0, protocolerrors.Errorf(false, "gave up resolving the free units of %s after "+
				"%d iterations", peer, iterations)
		}

		unitHash := stack[len(stack)-1]
		unitInfo, err := s.consensus.GetUnitInfo(unitHash)
		if err != nil {
			return 0, err
		}
		if unitInfo.Exists {
			stack = stack[:len(stack)-1]
			continue
		}

		joint, ok := fetchedJoints[*unitHash]
		if !ok {
			if len(fetchedJoints) >= s.maxMissingUnits {
				return 0, protocolerrors.Errorf(false, "more than %d units are missing to connect the "+
					"free units of %s", s.maxMissingUnits, peer)
			}
			joint, err = s.requestJoint(ctx, peer, unitHash)
			if err != nil {
				return 0, err
			}
			fetchedJoints[*unitHash] = joint
		}

		err = s.insertJoint(joint)
		var missingParents ruleerrors.ErrMissingParents
		if errors.As(err, &missingParents) {
			stack = append(stack, missingParents.MissingParentHashes...)
			continue
		}
		stack = stack[:len(stack)-1]
		if errors.Is(err, ruleerrors.ErrDuplicateUnit) {
			continue
		}
		if err != nil {
			return 0, protocolerrors.ConvertToBanningProtocolErrorIfRuleError(err,
				"unit %s from %s is invalid", unitHash, peer)
		}
		inserted++
	}
	return inserted, nil
}

// confirmPendingUnits checks the provisional balls of every unit that is
// stable locally by now
func (s *Syncer) confirmPendingUnits(session *Session) (int, error) {
	confirmed := 0
	for _, unitHash := range session.PendingUnits() {
		isConfirmed, err := session.ConfirmUnit(unitHash)
		if err != nil {
			return 0, err
		}
		if isConfirmed {
			confirmed++
		}
	}
	return confirmed, nil
}
