package catchupmanager

import (
	"context"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
)

// PrepareCatchupChain answers a catchup request: a witness proof of a recent
// stable last ball, and the stable joints that lead from that last ball down
// to the requester's last stable main chain index by following last ball
// references.
func (cm *catchupManager) PrepareCatchupChain(ctx context.Context, stagingArea *model.StagingArea,
	request *externalapi.CatchupRequest) (*externalapi.CatchupChain, error) {

	err := cm.validateCatchupRequest(request)
	if err != nil {
		return nil, err
	}

	isCurrent, err := cm.isRequesterCurrent(stagingArea, request.LastKnownMCI)
	if err != nil {
		return nil, err
	}
	if isCurrent {
		return &externalapi.CatchupChain{IsCurrent: true}, nil
	}

	proof, err := cm.witnessProofManager.BuildWitnessProof(ctx, stagingArea, request.Witnesses, request.LastStableMCI)
	if err != nil {
		if errors.Is(err, ruleerrors.ErrAlreadyCurrent) {
			return &externalapi.CatchupChain{IsCurrent: true}, nil
		}
		return nil, err
	}

	stableLastBallJoints, err := cm.stableLastBallJoints(ctx, stagingArea, proof.LastBallUnit, request.LastStableMCI)
	if err != nil {
		return nil, err
	}
	log.Debugf("Prepared a catchup chain of %d stable joints from mci %d down to %d",
		len(stableLastBallJoints), proof.LastBallMCI, request.LastStableMCI)

	return &externalapi.CatchupChain{
		UnstableMCJoints:                 proof.UnstableMCJoints,
		WitnessChangeAndDefinitionJoints: proof.WitnessChangeAndDefinitionJoints,
		StableLastBallJoints:             stableLastBallJoints,
	}, nil
}

func (cm *catchupManager) validateCatchupRequest(request *externalapi.CatchupRequest) error {
	if request.LastStableMCI >= request.LastKnownMCI && (request.LastKnownMCI > 0 || request.LastStableMCI > 0) {
		return errors.Wrapf(ruleerrors.ErrInvalidCatchupRequest, "last stable mci %d is not below "+
			"last known mci %d", request.LastStableMCI, request.LastKnownMCI)
	}
	if len(request.Witnesses) != cm.countWitnesses {
		return errors.Wrapf(ruleerrors.ErrInvalidCatchupRequest, "request has %d witnesses, while it "+
			"should have %d", len(request.Witnesses), cm.countWitnesses)
	}
	return nil
}

// isRequesterCurrent returns whether the main chain unit at the requester's
// last known mci is missing or unstable here, in which case there is
// nothing stable to send
func (cm *catchupManager) isRequesterCurrent(stagingArea *model.StagingArea, lastKnownMCI uint64) (bool, error) {
	hasMainChainUnit, err := cm.mainChainStore.HasMainChainUnit(cm.databaseContext, stagingArea, lastKnownMCI)
	if err != nil {
		return false, err
	}
	if !hasMainChainUnit {
		return true, nil
	}
	mainChainUnit, err := cm.mainChainStore.MainChainUnit(cm.databaseContext, stagingArea, lastKnownMCI)
	if err != nil {
		return false, err
	}
	props, err := cm.unitPropsStore.Get(cm.databaseContext, stagingArea, mainChainUnit)
	if err != nil {
		return false, err
	}
	return !props.IsStable, nil
}

func (cm *catchupManager) stableLastBallJoints(ctx context.Context, stagingArea *model.StagingArea,
	lastBallUnit *externalapi.DomainHash, lastStableMCI uint64) ([]*externalapi.DomainJoint, error) {

	joints := []*externalapi.DomainJoint{}
	current := lastBallUnit
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		if len(joints) >= cm.maxCatchupChainLength {
			return nil, errors.Wrapf(ruleerrors.ErrCatchupChainTooLong, "catchup chain is longer than %d joints",
				cm.maxCatchupChainLength)
		}

		unit, err := cm.unitStore.Unit(cm.databaseContext, stagingArea, current)
		if err != nil {
			return nil, err
		}
		ball, err := cm.ballStore.Ball(cm.databaseContext, stagingArea, current)
		if err != nil {
			return nil, err
		}
		joints = append(joints, &externalapi.DomainJoint{UnitHash: current, Unit: unit, Ball: ball})

		props, err := cm.unitPropsStore.Get(cm.databaseContext, stagingArea, current)
		if err != nil {
			return nil, err
		}
		if props.MainChainIndex <= lastStableMCI || unit.LastBallUnit == nil {
			return joints, nil
		}
		current = unit.LastBallUnit
	}
}
