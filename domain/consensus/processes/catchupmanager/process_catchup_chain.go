package catchupmanager

import (
	"context"

	"github.com/pkg/errors"
	"github.com/witnessdag/witnessd/domain/consensus/database"
	"github.com/witnessdag/witnessd/domain/consensus/model"
	"github.com/witnessdag/witnessd/domain/consensus/model/externalapi"
	"github.com/witnessdag/witnessd/domain/consensus/ruleerrors"
	"github.com/witnessdag/witnessd/domain/consensus/utils/consensushashing"
)

// ProcessCatchupChain verifies a catchup chain received from a peer and
// returns the balls of its stable last ball joints, oldest first. The first
// ball is always the ball of a stable main chain unit known locally, and
// the rest are the balls hash trees have to be requested between.
func (cm *catchupManager) ProcessCatchupChain(ctx context.Context, stagingArea *model.StagingArea,
	witnesses []string, chain *externalapi.CatchupChain) ([]*externalapi.DomainHash, error) {

	if chain.IsCurrent {
		return nil, ruleerrors.ErrAlreadyCurrent
	}
	if len(chain.StableLastBallJoints) == 0 {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidCatchupChain, "catchup chain has no stable joints")
	}
	if len(chain.StableLastBallJoints) > cm.maxCatchupChainLength {
		return nil, errors.Wrapf(ruleerrors.ErrCatchupChainTooLong, "catchup chain has %d stable joints, "+
			"which is more than %d", len(chain.StableLastBallJoints), cm.maxCatchupChainLength)
	}

	firstStableJoint := chain.StableLastBallJoints[0]
	if firstStableJoint == nil || firstStableJoint.UnitHash == nil {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidCatchupChain, "first stable joint is incomplete")
	}
	verifiedProof, err := cm.witnessProofManager.VerifyWitnessProof(&externalapi.WitnessProof{
		UnstableMCJoints:                 chain.UnstableMCJoints,
		WitnessChangeAndDefinitionJoints: chain.WitnessChangeAndDefinitionJoints,
		LastBallUnit:                     firstStableJoint.UnitHash,
	}, witnesses)
	if err != nil {
		return nil, err
	}

	chainBalls, err := verifyStableLastBallJoints(ctx, chain.StableLastBallJoints,
		verifiedProof.LastBallUnit, verifiedProof.LastBall)
	if err != nil {
		return nil, err
	}

	return cm.anchorChainBalls(stagingArea, chainBalls)
}

// verifyStableLastBallJoints checks that every joint is the last ball unit
// of the previous one, with the ball the previous one claims for it. The
// returned balls are ordered oldest first.
func verifyStableLastBallJoints(ctx context.Context, joints []*externalapi.DomainJoint,
	lastBallUnit *externalapi.DomainHash, lastBall *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	chainBalls := make([]*externalapi.DomainHash, len(joints))
	for i, joint := range joints {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		if joint == nil || joint.Ball == nil {
			return nil, errors.Wrapf(ruleerrors.ErrInvalidCatchupChain, "stable joint #%d has no ball", i)
		}
		err := consensushashing.ValidateJointHash(joint)
		if err != nil {
			return nil, errors.Wrapf(ruleerrors.ErrInvalidCatchupChain, "stable joint #%d: %s", i, err)
		}
		if !joint.UnitHash.Equal(lastBallUnit) {
			return nil, errors.Wrapf(ruleerrors.ErrInvalidCatchupChain, "stable joint %s is not the "+
				"last ball unit %s", joint.UnitHash, lastBallUnit)
		}
		if !joint.Ball.Equal(lastBall) {
			return nil, errors.Wrapf(ruleerrors.ErrInvalidCatchupChain, "ball %s of stable joint %s is not "+
				"the last ball %s", joint.Ball, joint.UnitHash, lastBall)
		}
		if joint.Unit.LastBallUnit != nil {
			lastBallUnit = joint.Unit.LastBallUnit
			lastBall = joint.Unit.LastBall
		}
		chainBalls[len(joints)-1-i] = joint.Ball
	}
	return chainBalls, nil
}

// anchorChainBalls makes sure the oldest chain ball is a stable main chain
// ball known locally, and moves it up to the local last stable ball so that
// hash trees start right above what is already known
func (cm *catchupManager) anchorChainBalls(stagingArea *model.StagingArea,
	chainBalls []*externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	firstUnit, err := cm.ballStore.UnitByBall(cm.databaseContext, stagingArea, chainBalls[0])
	if database.IsNotFoundError(err) {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidCatchupChain, "first chain ball %s is not known",
			chainBalls[0])
	}
	if err != nil {
		return nil, err
	}
	firstProps, err := cm.unitPropsStore.Get(cm.databaseContext, stagingArea, firstUnit)
	if err != nil {
		return nil, err
	}
	if !firstProps.IsStable || !firstProps.IsOnMainChain {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidCatchupChain, "first chain ball %s is not a stable "+
			"main chain ball", chainBalls[0])
	}

	lastStableMCI, err := cm.consensusStateStore.LastStableMCI(cm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}
	if firstProps.MainChainIndex > lastStableMCI {
		return nil, errors.Wrapf(ruleerrors.ErrInvalidCatchupChain, "first chain ball mci %d is above the "+
			"last stable mci %d", firstProps.MainChainIndex, lastStableMCI)
	}
	if firstProps.MainChainIndex == lastStableMCI {
		return chainBalls, nil
	}

	lastStableUnit, err := cm.mainChainStore.MainChainUnit(cm.databaseContext, stagingArea, lastStableMCI)
	if err != nil {
		return nil, err
	}
	lastStableBall, err := cm.ballStore.Ball(cm.databaseContext, stagingArea, lastStableUnit)
	if err != nil {
		return nil, err
	}
	chainBalls[0] = lastStableBall

	if len(chainBalls) > 1 {
		secondUnit, err := cm.ballStore.UnitByBall(cm.databaseContext, stagingArea, chainBalls[1])
		if err == nil {
			secondProps, err := cm.unitPropsStore.Get(cm.databaseContext, stagingArea, secondUnit)
			if err != nil {
				return nil, err
			}
			if secondProps.IsStable {
				return nil, errors.Wrapf(ruleerrors.ErrInvalidCatchupChain, "second chain ball %s is "+
					"already stable", chainBalls[1])
			}
		} else if !database.IsNotFoundError(err) {
			return nil, err
		}
	}
	return chainBalls, nil
}
