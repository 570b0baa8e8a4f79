package consensus

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/infrastructure/metrics"
	"github.com/witnessdag/witnessd/util/prioritylock"
)

type consensus struct {
	lock            *prioritylock.Mutex
	databaseContext model.DBManager
	halted          uint32

	unitProcessor       model.UnitProcessor
	parentComposer      model.ParentComposer
	witnessProofManager model.WitnessProofManager
	catchupManager      model.CatchupManager

	unitStore           model.UnitStore
	unitPropsStore      model.UnitPropsStore
	witnessListStore    model.WitnessListStore
	ballStore           model.BallStore
	mainChainStore      model.MainChainStore
	consensusStateStore model.ConsensusStateStore
}

// ValidateAndInsertUnit validates the given unit and, if valid, adds it to
// the DAG, updates the main chain and advances stability as far as possible
func (s *consensus) ValidateAndInsertUnit(unit *externalapi.DomainUnit,
	sequence externalapi.Sequence) (*externalapi.DomainHash, error) {

	unlock := s.lock.LowPriorityGuard()
	defer unlock()

	if s.IsHalted() {
		return nil, errors.Wrapf(ruleerrors.ErrConsensusHalted, "refusing to insert a unit")
	}

	start := time.Now()
	result, err := s.unitProcessor.ValidateAndInsertUnit(unit, sequence)
	if err != nil {
		s.handleInsertionError(err)
		return nil, err
	}
	metrics.RecordUnitAccepted(time.Since(start).Seconds())

	stagingArea := model.NewStagingArea()
	lastStableMCI, err := s.consensusStateStore.LastStableMCI(s.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}
	lastMCI, err := s.consensusStateStore.LastMCI(s.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}
	rewound := result.MainChainChanges != nil && len(result.MainChainChanges.Removed) > 0
	metrics.RecordMainChainState(lastStableMCI, lastMCI, len(result.NewlyStableMCIs), rewound)

	return result.UnitHash, nil
}

// handleInsertionError halts consensus on a consistency violation. Nothing
// of the failed insertion has been committed at this point.
func (s *consensus) handleInsertionError(err error) {
	category, ok := ruleerrors.CategoryOf(err)
	if !ok {
		metrics.RecordUnitRejected("internal")
		return
	}
	metrics.RecordUnitRejected(category.String())

	if category == ruleerrors.CategoryConsistencyViolation {
		atomic.StoreUint32(&s.halted, 1)
		metrics.RecordHalted()
		log.Criticalf("Consensus halted: %+v", err)
	}
}

// IsHalted returns whether a consistency violation has halted all writes
func (s *consensus) IsHalted() bool {
	return atomic.LoadUint32(&s.halted) == 1
}

func (s *consensus) GetUnit(unitHash *externalapi.DomainHash) (*externalapi.DomainUnit, error) {
	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	return s.unitStore.Unit(s.databaseContext, stagingArea, unitHash)
}

// GetJoint returns the unit together with its ball, if it has one
func (s *consensus) GetJoint(unitHash *externalapi.DomainHash) (*externalapi.DomainJoint, error) {
	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	unit, err := s.unitStore.Unit(s.databaseContext, stagingArea, unitHash)
	if err != nil {
		return nil, err
	}
	joint := &externalapi.DomainJoint{UnitHash: unitHash, Unit: unit}

	hasBall, err := s.ballStore.HasBall(s.databaseContext, stagingArea, unitHash)
	if err != nil {
		return nil, err
	}
	if hasBall {
		joint.Ball, err = s.ballStore.Ball(s.databaseContext, stagingArea, unitHash)
		if err != nil {
			return nil, err
		}
	}
	return joint, nil
}

func (s *consensus) GetUnitInfo(unitHash *externalapi.DomainHash) (*externalapi.UnitInfo, error) {
	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	unitInfo := &externalapi.UnitInfo{}

	exists, err := s.unitPropsStore.Has(s.databaseContext, stagingArea, unitHash)
	if err != nil {
		return nil, err
	}
	if !exists {
		return unitInfo, nil
	}
	unitInfo.Exists = true

	props, err := s.unitPropsStore.Get(s.databaseContext, stagingArea, unitHash)
	if err != nil {
		return nil, err
	}
	unitInfo.Level = props.Level
	unitInfo.WitnessedLevel = props.WitnessedLevel
	unitInfo.BestParent = props.BestParent
	unitInfo.MainChainIndex = props.MainChainIndex
	unitInfo.HasMCI = props.HasMCI
	unitInfo.IsOnMainChain = props.IsOnMainChain
	unitInfo.IsStable = props.IsStable
	unitInfo.Sequence = props.Sequence

	tips, err := s.consensusStateStore.Tips(s.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}
	for _, tip := range tips {
		if tip.Equal(unitHash) {
			unitInfo.IsFree = true
			break
		}
	}

	if props.IsStable {
		unitInfo.Ball, err = s.ballStore.Ball(s.databaseContext, stagingArea, unitHash)
		if err != nil {
			return nil, err
		}
	}
	return unitInfo, nil
}

func (s *consensus) GetWitnessList(unitHash *externalapi.DomainHash) ([]string, error) {
	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	return s.witnessListStore.WitnessList(s.databaseContext, stagingArea, unitHash)
}

func (s *consensus) GetMainChainUnit(mci uint64) (*externalapi.DomainHash, error) {
	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	return s.mainChainStore.MainChainUnit(s.databaseContext, stagingArea, mci)
}

func (s *consensus) GetUnitsByMCIRange(fromMCI, toMCI uint64, limit int) ([]*externalapi.DomainHash, error) {
	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	if fromMCI > toMCI {
		return nil, errors.Errorf("fromMCI %d is above toMCI %d", fromMCI, toMCI)
	}
	stagingArea := model.NewStagingArea()
	return s.mainChainStore.UnitsByMCIRange(s.databaseContext, stagingArea, fromMCI, toMCI, limit)
}

func (s *consensus) GetFreeUnits() ([]*externalapi.DomainHash, error) {
	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	return s.consensusStateStore.Tips(s.databaseContext, stagingArea)
}

// GetBall returns the ball of a stable unit
func (s *consensus) GetBall(unitHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	ball, err := s.ballStore.Ball(s.databaseContext, stagingArea, unitHash)
	if database.IsNotFoundError(err) {
		return nil, errors.Wrapf(ruleerrors.ErrUnknownBall, "unit %s is not stable", unitHash)
	}
	return ball, err
}

// GetUnitByBall returns the stable unit the given ball was computed for
func (s *consensus) GetUnitByBall(ball *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	unitHash, err := s.ballStore.UnitByBall(s.databaseContext, stagingArea, ball)
	if database.IsNotFoundError(err) {
		return nil, errors.Wrapf(ruleerrors.ErrUnknownBall, "ball %s is not known", ball)
	}
	return unitHash, err
}

func (s *consensus) LastMCI() (uint64, error) {
	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	return s.consensusStateStore.LastMCI(s.databaseContext, stagingArea)
}

func (s *consensus) LastStableMCI() (uint64, error) {
	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	return s.consensusStateStore.LastStableMCI(s.databaseContext, stagingArea)
}

// SelectParentsForNewUnit returns the parents and last ball a new unit
// declaring the given witnesses should reference
func (s *consensus) SelectParentsForNewUnit(witnesses []string) (*externalapi.ParentSelection, error) {
	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	return s.parentComposer.SelectParents(stagingArea, witnesses)
}

func (s *consensus) GetWitnessProof(ctx context.Context, witnesses []string,
	lastStableMCI uint64) (*externalapi.WitnessProof, error) {

	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	return s.witnessProofManager.BuildWitnessProof(ctx, stagingArea, witnesses, lastStableMCI)
}

func (s *consensus) PrepareCatchupChain(ctx context.Context,
	request *externalapi.CatchupRequest) (*externalapi.CatchupChain, error) {

	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	return s.catchupManager.PrepareCatchupChain(ctx, stagingArea, request)
}

// ProcessCatchupChain verifies a catchup chain received from a peer against
// the local stable main chain and returns the balls the hash trees should
// be requested between
func (s *consensus) ProcessCatchupChain(ctx context.Context, witnesses []string,
	chain *externalapi.CatchupChain) ([]*externalapi.DomainHash, error) {

	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	return s.catchupManager.ProcessCatchupChain(ctx, stagingArea, witnesses, chain)
}

func (s *consensus) GetHashTree(ctx context.Context,
	request *externalapi.HashTreeRequest) (*externalapi.HashTreeResponse, error) {

	unlock := s.lock.HighPriorityReadGuard()
	defer unlock()

	stagingArea := model.NewStagingArea()
	return s.catchupManager.GetHashTree(ctx, stagingArea, request)
}
